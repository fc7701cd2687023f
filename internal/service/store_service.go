// FILE: internal/service/store_service.go
package service

import (
	"context"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/mapper"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/repository/memory"
	"ai-docstore-be/pkg/events"

	"github.com/google/uuid"
)

type IStoreService interface {
	List(ctx context.Context) ([]dto.StoreResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStoreRequest) (*dto.StoreResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, name string) error
	DeleteSessionStores(ctx context.Context, userId uuid.UUID) (*dto.BulkDeleteResult, error)
}

type storeService struct {
	backend       StoreBackend
	sessionStores *memory.SessionStoreRepository
	events        EventPublisher
	mapper        *mapper.DocumentMapper
	logger        logger.ILogger
}

func NewStoreService(
	backend StoreBackend,
	sessionStores *memory.SessionStoreRepository,
	eventPub EventPublisher,
	log logger.ILogger,
) IStoreService {
	return &storeService{
		backend:       backend,
		sessionStores: sessionStores,
		events:        eventPub,
		mapper:        mapper.NewDocumentMapper(),
		logger:        log,
	}
}

func (s *storeService) List(ctx context.Context) ([]dto.StoreResponse, error) {
	stores, err := s.backend.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.StoreResponse, 0, len(stores))
	for _, st := range stores {
		res = append(res, s.mapper.ToStoreResponse(st))
	}
	return res, nil
}

func (s *storeService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	store, err := s.backend.CreateStore(ctx, req.DisplayName)
	if err != nil {
		return nil, err
	}
	s.sessionStores.Add(userId.String(), store.Name)

	s.logger.Info("StoreService", "Store created", map[string]interface{}{
		"user_id": userId,
		"store":   store.Name,
	})
	res := s.mapper.ToStoreResponse(*store)
	return &res, nil
}

func (s *storeService) Delete(ctx context.Context, userId uuid.UUID, name string) error {
	if err := s.backend.DeleteStore(ctx, name); err != nil {
		return err
	}
	s.sessionStores.Remove(userId.String(), name)
	s.logger.Info("StoreService", "Store deleted", map[string]interface{}{"user_id": userId, "store": name})
	s.publishDeleted(ctx, userId, name)
	return nil
}

func (s *storeService) publishDeleted(ctx context.Context, userId uuid.UUID, name string) {
	if s.events == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       events.StoreDeleted,
		Data:       map[string]interface{}{"user_id": userId.String(), "store_name": name},
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("StoreService", "Failed to publish store event", map[string]interface{}{"store": name, "error": err.Error()})
	}
}

// DeleteSessionStores removes every store the user created in this session.
// Failures are reported per store and the rest are still attempted.
func (s *storeService) DeleteSessionStores(ctx context.Context, userId uuid.UUID) (*dto.BulkDeleteResult, error) {
	res := &dto.BulkDeleteResult{Deleted: []string{}, Failed: []dto.BulkDeleteError{}}
	var errs []error

	for _, name := range s.sessionStores.List(userId.String()) {
		if err := s.backend.DeleteStore(ctx, name); err != nil {
			s.logger.Warn("StoreService", "Failed to delete session store", map[string]interface{}{
				"store": name,
				"error": err.Error(),
			})
			res.Failed = append(res.Failed, bulkError(name, err))
			errs = append(errs, err)
			continue
		}
		s.sessionStores.Remove(userId.String(), name)
		s.publishDeleted(ctx, userId, name)
		res.Deleted = append(res.Deleted, name)
	}

	if err := firstCredentialError(errs); err != nil {
		return res, err
	}
	return res, nil
}
