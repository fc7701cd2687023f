package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/operation"
)

type Options struct {
	StoreWeight    int
	MaxBytes       int64
	RequireVersion bool
}

// Orchestrator runs upload batches. It holds no per-batch state, so one
// instance can serve concurrent batches.
type Orchestrator struct {
	backend Backend
	waiter  operation.Waiter
	opts    Options
	logger  logger.ILogger
}

func NewOrchestrator(backend Backend, waiter operation.Waiter, opts Options, log logger.ILogger) *Orchestrator {
	if waiter == nil {
		waiter = operation.NewPoller(0, 0)
	}
	if opts.StoreWeight <= 0 || opts.StoreWeight >= TotalWeight {
		opts.StoreWeight = DefaultStoreWeight
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Orchestrator{backend: backend, waiter: waiter, opts: opts, logger: log}
}

// EnsureStore returns the store whose identifier or display name matches ref,
// creating it when none does. Two concurrent calls for the same new name can
// both miss the lookup and create two stores; the backend has no
// create-if-absent primitive.
func (o *Orchestrator) EnsureStore(ctx context.Context, ref string) (*gemini.Store, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &apperror.ValidationError{Field: "store", Message: "store name is required"}
	}

	stores, err := o.backend.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	for i := range stores {
		if stores[i].Name == ref || stores[i].DisplayName == ref {
			return &stores[i], nil
		}
	}

	if gemini.IsStoreName(ref) {
		return nil, &apperror.NotFoundError{Resource: "store", ID: ref}
	}

	store, err := o.backend.CreateStore(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	o.logger.Info("Ingest", "Store created", map[string]interface{}{
		"name":         store.Name,
		"display_name": store.DisplayName,
	})
	return store, nil
}

// Prepare validates every file and resolves its MIME type and metadata. It
// makes no network calls.
func (o *Orchestrator) Prepare(files []File, build MetadataBuilder) ([]File, error) {
	if len(files) == 0 {
		return nil, &apperror.ValidationError{Field: "files", Message: "at least one file is required"}
	}

	var errs apperror.ValidationErrors
	prepared := make([]File, len(files))
	for i, f := range files {
		if int64(len(f.Data)) > o.opts.MaxBytes {
			errs = append(errs, &apperror.ValidationError{
				Field:   f.Name,
				Message: fmt.Sprintf("file is %d bytes, limit is %d", len(f.Data), o.opts.MaxBytes),
			})
			continue
		}
		if f.MIMEType == "" {
			f.MIMEType = DetectMIME(f.Name, f.Data)
		}
		if build != nil {
			f.Metadata = build(i, f)
		}
		if err := ValidateMetadata(f.Metadata, o.opts.RequireVersion); err != nil {
			for _, ve := range err.(apperror.ValidationErrors) {
				errs = append(errs, &apperror.ValidationError{Field: f.Name + ": " + ve.Field, Message: ve.Message})
			}
			continue
		}
		prepared[i] = f
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return prepared, nil
}

// Run validates the batch, ensures the store and uploads every file.
func (o *Orchestrator) Run(ctx context.Context, storeRef string, files []File, build MetadataBuilder, onProgress ProgressFunc) (*Result, error) {
	prepared, err := o.Prepare(files, build)
	if err != nil {
		return nil, err
	}

	report := newReporter(len(prepared), o.opts.StoreWeight, onProgress)
	report.emit(0, PhaseStore, "Preparing store "+storeRef, -1, "")

	store, err := o.EnsureStore(ctx, storeRef)
	if err != nil {
		report.emit(0, PhaseFailed, err.Error(), -1, "")
		return nil, err
	}
	report.emit(o.opts.StoreWeight, PhaseStore, "Store ready: "+store.DisplayName, -1, "")

	return o.upload(ctx, store, prepared, report)
}

// UploadAll uploads files into an existing store, strictly in order. The first
// failure stops the batch; earlier files are not rolled back.
func (o *Orchestrator) UploadAll(ctx context.Context, store *gemini.Store, files []File, build MetadataBuilder, onProgress ProgressFunc) (*Result, error) {
	prepared, err := o.Prepare(files, build)
	if err != nil {
		return nil, err
	}
	report := newReporter(len(prepared), o.opts.StoreWeight, onProgress)
	return o.upload(ctx, store, prepared, report)
}

func (o *Orchestrator) upload(ctx context.Context, store *gemini.Store, files []File, report *reporter) (*Result, error) {
	result := &Result{Store: store, Files: make([]FileResult, len(files))}
	for i, f := range files {
		result.Files[i] = FileResult{Name: f.Name, Status: FileSkipped}
	}

	for i, f := range files {
		report.file(i, 0, PhaseUploading, fmt.Sprintf("Uploading %s (%d/%d)", f.Name, i+1, len(files)), f.Name)

		docName, err := o.uploadOne(ctx, store.Name, f, func() {
			report.file(i, 0.5, PhaseProcessing, fmt.Sprintf("Processing %s (%d/%d)", f.Name, i+1, len(files)), f.Name)
		})
		if err != nil {
			result.Files[i].Status = FileFailed
			result.Files[i].Error = err.Error()

			partial := &PartialUploadError{
				FileName:  f.Name,
				FileIndex: i,
				Succeeded: i,
				Skipped:   len(files) - i - 1,
				Cause:     err,
			}
			o.logger.Error("Ingest", "Upload batch stopped", map[string]interface{}{
				"store":     store.Name,
				"file":      f.Name,
				"index":     i,
				"succeeded": partial.Succeeded,
				"skipped":   partial.Skipped,
				"error":     err.Error(),
			})
			report.file(i, 0, PhaseFailed, "Failed: "+f.Name+": "+err.Error(), f.Name)
			return result, partial
		}

		result.Files[i].Status = FileSucceeded
		result.Files[i].DocumentName = docName
		report.file(i, 1, PhaseUploading, fmt.Sprintf("Uploaded %s (%d/%d)", f.Name, i+1, len(files)), f.Name)
	}

	report.emit(TotalWeight, PhaseDone, fmt.Sprintf("Uploaded %d files", len(files)), len(files)-1, "")
	return result, nil
}

type uploadResponse struct {
	DocumentName string `json:"documentName"`
}

// uploadOne sends one file and waits for its operation when the backend did
// not finish it inline.
func (o *Orchestrator) uploadOne(ctx context.Context, storeName string, f File, onPending func()) (string, error) {
	op, err := o.backend.UploadFile(ctx, storeName, gemini.Upload{
		DisplayName: f.Name,
		MIMEType:    f.MIMEType,
		Data:        f.Data,
		Metadata:    f.Metadata,
	})
	if err != nil {
		return "", err
	}

	response := op.Response
	switch {
	case op.Done && op.Error != nil:
		return "", &operation.FailedError{Handle: op.Name, Payload: op.Error}
	case !op.Done:
		onPending()
		response, err = o.waiter.Await(ctx, op.Name, o.backend.GetOperation)
		if err != nil {
			return "", err
		}
	}

	// the upload itself succeeded; only the document name is lost
	var res uploadResponse
	if len(response) > 0 {
		if err := json.Unmarshal(response, &res); err != nil {
			o.logger.Debug("Orchestrator", "Unreadable operation response", map[string]interface{}{
				"operation": op.Name,
				"file":      f.Name,
				"error":     err.Error(),
			})
		}
	}
	return res.DocumentName, nil
}
