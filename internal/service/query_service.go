// FILE: internal/service/query_service.go
package service

import (
	"context"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/logger"
)

type IQueryService interface {
	Ask(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	Suggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error)
}

type queryService struct {
	backend         QueryBackend
	defaultLanguage string
	logger          logger.ILogger
}

func NewQueryService(backend QueryBackend, defaultLanguage string, log logger.ILogger) IQueryService {
	return &queryService{
		backend:         backend,
		defaultLanguage: defaultLanguage,
		logger:          log,
	}
}

func (s *queryService) language(lang string) string {
	if lang == "" {
		return s.defaultLanguage
	}
	return lang
}

func (s *queryService) Ask(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	store, err := resolveStore(ctx, s.backend.ListStores, req.Store)
	if err != nil {
		return nil, err
	}

	answer, err := s.backend.Query(ctx, store.Name, req.Question, s.language(req.Language))
	if err != nil {
		return nil, err
	}

	sources := make([]dto.GroundingChunkResponse, 0, len(answer.GroundingChunks))
	for _, gc := range answer.GroundingChunks {
		sources = append(sources, dto.GroundingChunkResponse{Title: gc.Title, Text: gc.Text, URI: gc.URI})
	}
	return &dto.QueryResponse{Answer: answer.Text, Sources: sources}, nil
}

// Suggestions degrades to an empty list on backend errors. Validation and
// lookup errors still surface.
func (s *queryService) Suggestions(ctx context.Context, req *dto.SuggestionsRequest) (*dto.SuggestionsResponse, error) {
	store, err := resolveStore(ctx, s.backend.ListStores, req.Store)
	if err != nil {
		return nil, err
	}

	questions, err := s.backend.SuggestQuestions(ctx, store.Name, s.language(req.Language), req.Count)
	if err != nil {
		s.logger.Warn("QueryService", "Suggestions unavailable", map[string]interface{}{
			"store": store.Name,
			"error": err.Error(),
		})
	}
	if questions == nil {
		questions = []string{}
	}
	return &dto.SuggestionsResponse{Questions: questions}, nil
}
