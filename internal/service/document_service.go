// FILE: internal/service/document_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/mapper"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/catalog"
)

type IDocumentService interface {
	List(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Stats(ctx context.Context) (*dto.DocumentStatsResponse, error)
	Export(ctx context.Context, req *dto.ListDocumentsRequest, w io.Writer) error
	Delete(ctx context.Context, names []string) (*dto.BulkDeleteResult, error)
}

type documentService struct {
	backend DocumentBackend
	mapper  *mapper.DocumentMapper
	logger  logger.ILogger
}

func NewDocumentService(backend DocumentBackend, log logger.ILogger) IDocumentService {
	return &documentService{
		backend: backend,
		mapper:  mapper.NewDocumentMapper(),
		logger:  log,
	}
}

func (s *documentService) load(ctx context.Context) ([]catalog.ManagedDocument, error) {
	stores, docs, err := s.backend.ListAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.EnrichAll(stores, docs), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDay(field, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &apperror.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q", value)}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// criteria converts query parameters; "to" covers the whole day.
func criteria(req *dto.ListDocumentsRequest) (catalog.Criteria, catalog.SortKey, catalog.Direction, error) {
	from, err := parseDay("from", req.From, false)
	if err != nil {
		return catalog.Criteria{}, "", "", err
	}
	to, err := parseDay("to", req.To, true)
	if err != nil {
		return catalog.Criteria{}, "", "", err
	}

	key := catalog.SortKey(req.Sort)
	if key == "" {
		key = catalog.SortLastModified
	}
	dir := catalog.Direction(req.Order)
	if dir == "" {
		dir = catalog.Desc
	}

	return catalog.Criteria{
		Text:     req.Query,
		Stores:   splitList(req.Stores),
		Versions: splitList(req.Versions),
		Tags:     splitList(req.Tags),
		From:     from,
		To:       to,
	}, key, dir, nil
}

func (s *documentService) query(ctx context.Context, req *dto.ListDocumentsRequest) ([]catalog.ManagedDocument, error) {
	c, key, dir, err := criteria(req)
	if err != nil {
		return nil, err
	}
	docs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Sort(catalog.Filter(docs, c), key, dir), nil
}

func (s *documentService) List(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	docs, err := s.query(ctx, req)
	if err != nil {
		return nil, err
	}
	return &dto.ListDocumentsResponse{
		Documents: s.mapper.ToResponses(docs),
		Total:     len(docs),
	}, nil
}

func (s *documentService) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	docs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	res := s.mapper.ToStatsResponse(catalog.AggregateStats(docs))
	return &res, nil
}

// Export writes the filtered, sorted listing as CSV.
func (s *documentService) Export(ctx context.Context, req *dto.ListDocumentsRequest, w io.Writer) error {
	docs, err := s.query(ctx, req)
	if err != nil {
		return err
	}
	return catalog.WriteCSV(w, docs)
}

// Delete removes documents one by one. A single name returns its error
// directly; several names always produce a summary.
func (s *documentService) Delete(ctx context.Context, names []string) (*dto.BulkDeleteResult, error) {
	res := &dto.BulkDeleteResult{Deleted: []string{}, Failed: []dto.BulkDeleteError{}}
	var errs []error

	for _, name := range names {
		if err := s.backend.DeleteDocument(ctx, name); err != nil {
			if len(names) == 1 {
				return nil, err
			}
			s.logger.Warn("DocumentService", "Failed to delete document", map[string]interface{}{
				"document": name,
				"error":    err.Error(),
			})
			res.Failed = append(res.Failed, bulkError(name, err))
			errs = append(errs, err)
			continue
		}
		res.Deleted = append(res.Deleted, name)
	}

	s.logger.Info("DocumentService", "Documents deleted", map[string]interface{}{
		"deleted": len(res.Deleted),
		"failed":  len(res.Failed),
	})
	if err := firstCredentialError(errs); err != nil {
		return res, err
	}
	return res, nil
}
