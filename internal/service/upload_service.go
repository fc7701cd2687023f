// FILE: internal/service/upload_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/entity"
	"ai-docstore-be/internal/mapper"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/repository/memory"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/catalog"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/ingest"
	"ai-docstore-be/pkg/operation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Upload event kinds carried on the in-process topic.
const (
	UploadKindStarted  = "started"
	UploadKindProgress = "progress"
)

type IUploadService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.UploadRequest, files []ingest.File) (*dto.UploadJobResponse, error)
	Get(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.UploadJobResponse, error)
}

type uploadService struct {
	backend       ingest.Backend
	waiter        operation.Waiter
	opts          ingest.Options
	jobs          *memory.UploadJobRepository
	sessionStores *memory.SessionStoreRepository
	publisher     IPublisherService
	mapper        *mapper.UploadJobMapper
	logger        logger.ILogger
	jobTimeout    time.Duration
}

func NewUploadService(
	backend ingest.Backend,
	waiter operation.Waiter,
	opts ingest.Options,
	jobs *memory.UploadJobRepository,
	sessionStores *memory.SessionStoreRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IUploadService {
	return &uploadService{
		backend:       backend,
		waiter:        waiter,
		opts:          opts,
		jobs:          jobs,
		sessionStores: sessionStores,
		publisher:     publisher,
		mapper:        mapper.NewUploadJobMapper(),
		logger:        log,
		jobTimeout:    time.Hour,
	}
}

// BuildMetadata turns the form fields into the metadata attached to every file
// of the batch. Empty fields are omitted.
func BuildMetadata(req *dto.UploadRequest) ingest.MetadataBuilder {
	return func(_ int, _ ingest.File) []gemini.CustomMetadata {
		meta := make([]gemini.CustomMetadata, 0, 4)
		if v := strings.TrimSpace(req.Version); v != "" {
			meta = append(meta, gemini.StringMeta(catalog.KeyVersion, v))
		}
		if v := strings.TrimSpace(req.Notes); v != "" {
			meta = append(meta, gemini.StringMeta(catalog.KeyNotes, v))
		}
		if v := strings.TrimSpace(req.Category); v != "" {
			meta = append(meta, gemini.StringMeta(catalog.KeyCategory, v))
		}
		if tags := splitList(req.Tags); len(tags) > 0 {
			meta = append(meta, gemini.ListMeta(catalog.KeyTags, tags...))
		}
		return meta
	}
}

// sessionBackend records stores created on behalf of a user.
type sessionBackend struct {
	ingest.Backend
	onCreate func(name string)
}

func (b *sessionBackend) CreateStore(ctx context.Context, displayName string) (*gemini.Store, error) {
	store, err := b.Backend.CreateStore(ctx, displayName)
	if err == nil {
		b.onCreate(store.Name)
	}
	return store, err
}

// Start validates the batch synchronously and then runs it in the background.
// Progress and the outcome are published as upload events.
func (s *uploadService) Start(ctx context.Context, userId uuid.UUID, req *dto.UploadRequest, files []ingest.File) (*dto.UploadJobResponse, error) {
	build := BuildMetadata(req)
	orch := ingest.NewOrchestrator(&sessionBackend{
		Backend:  s.backend,
		onCreate: func(name string) { s.sessionStores.Add(userId.String(), name) },
	}, s.waiter, s.opts, s.logger)

	prepared, err := orch.Prepare(files, build)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &entity.UploadJob{
		Id:        uuid.New(),
		UserId:    userId,
		StoreRef:  req.Store,
		Status:    entity.UploadJobPending,
		Progress:  ingest.Progress{Phase: ingest.PhaseStore, FileIndex: -1, FileCount: len(prepared)},
		Files:     pendingFiles(prepared),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs.Save(job)

	s.logger.Info("UploadService", "Upload job accepted", map[string]interface{}{
		"job_id":  job.Id,
		"user_id": userId,
		"store":   req.Store,
		"files":   len(prepared),
	})

	go s.run(job, orch, prepared, build)

	return s.mapper.ToResponse(job), nil
}

func pendingFiles(files []ingest.File) []ingest.FileResult {
	out := make([]ingest.FileResult, len(files))
	for i, f := range files {
		out[i] = ingest.FileResult{Name: f.Name, Status: ingest.FileSkipped}
	}
	return out
}

func (s *uploadService) run(job *entity.UploadJob, orch *ingest.Orchestrator, files []ingest.File, build ingest.MetadataBuilder) {
	// detached from the request: the job outlives it, the user's key does not change
	ctx := credential.WithUser(context.Background(), job.UserId.String())
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	ctx, span := otel.Tracer("upload-service").Start(ctx, "upload.run")
	span.SetAttributes(
		attribute.String("upload.job_id", job.Id.String()),
		attribute.String("upload.store", job.StoreRef),
		attribute.Int("upload.files", len(files)),
	)
	defer span.End()

	var seq atomic.Uint64
	emit := func(msg dto.UploadEventMessage) {
		msg.JobId = job.Id
		msg.UserId = job.UserId
		msg.Seq = seq.Add(1)
		if err := s.publisher.PublishUploadEvent(ctx, msg); err != nil {
			s.logger.Warn("UploadService", "Failed to publish upload event", map[string]interface{}{
				"job_id": job.Id,
				"kind":   msg.Kind,
				"error":  err.Error(),
			})
		}
	}

	emit(dto.UploadEventMessage{Kind: UploadKindStarted})

	result, err := orch.Run(ctx, job.StoreRef, files, build, func(p ingest.Progress) {
		emit(dto.UploadEventMessage{Kind: UploadKindProgress, Progress: &p})
	})

	final := dto.UploadEventMessage{Kind: string(Outcome(err))}
	if result != nil {
		final.Files = result.Files
		if result.Store != nil {
			final.StoreName = result.Store.Name
		}
	}
	if err != nil {
		final.Error = err.Error()
		final.ErrorKind = string(apperror.Classify(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	emit(final)

	s.logger.Info("UploadService", "Upload job finished", map[string]interface{}{
		"job_id": job.Id,
		"status": final.Kind,
	})
}

// Outcome maps a batch result to the terminal job status.
func Outcome(err error) entity.UploadJobStatus {
	if err == nil {
		return entity.UploadJobSucceeded
	}
	var partial *ingest.PartialUploadError
	if errors.As(err, &partial) && partial.Succeeded > 0 {
		return entity.UploadJobPartial
	}
	return entity.UploadJobFailed
}

func (s *uploadService) Get(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.UploadJobResponse, error) {
	job, ok := s.jobs.Get(jobId)
	if !ok || job.UserId != userId {
		return nil, &apperror.NotFoundError{Resource: "upload job", ID: jobId.String()}
	}
	return s.mapper.ToResponse(job), nil
}
