// FILE: internal/service/credential_service.go
package service

import (
	"context"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/credential"

	"github.com/google/uuid"
)

type ICredentialService interface {
	Set(ctx context.Context, userId uuid.UUID, req *dto.SetCredentialRequest) (*dto.CredentialStatusResponse, error)
	Clear(ctx context.Context, userId uuid.UUID) (*dto.CredentialStatusResponse, error)
	Status(ctx context.Context, userId uuid.UUID) (*dto.CredentialStatusResponse, error)
}

type credentialService struct {
	store      credential.Store
	defaultKey string
	logger     logger.ILogger
}

func NewCredentialService(store credential.Store, defaultKey string, log logger.ILogger) ICredentialService {
	return &credentialService{
		store:      store,
		defaultKey: defaultKey,
		logger:     log,
	}
}

func (s *credentialService) Set(ctx context.Context, userId uuid.UUID, req *dto.SetCredentialRequest) (*dto.CredentialStatusResponse, error) {
	s.store.Set(userId.String(), req.APIKey)
	s.logger.Info("CredentialService", "API key updated", map[string]interface{}{"user_id": userId})
	return s.Status(ctx, userId)
}

func (s *credentialService) Clear(ctx context.Context, userId uuid.UUID) (*dto.CredentialStatusResponse, error) {
	s.store.Clear(userId.String())
	s.logger.Info("CredentialService", "API key cleared", map[string]interface{}{"user_id": userId})
	return s.Status(ctx, userId)
}

// Status never reveals the key itself.
func (s *credentialService) Status(ctx context.Context, userId uuid.UUID) (*dto.CredentialStatusResponse, error) {
	if key, ok := s.store.Get(userId.String()); ok && key != "" {
		return &dto.CredentialStatusResponse{Configured: true, Source: "user"}, nil
	}
	if s.defaultKey != "" {
		return &dto.CredentialStatusResponse{Configured: true, Source: "default"}, nil
	}
	return &dto.CredentialStatusResponse{Configured: false, Source: "none"}, nil
}
