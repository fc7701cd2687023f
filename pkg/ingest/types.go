// Package ingest uploads a batch of files into a store, one file at a time,
// waiting for each ingestion operation before moving on.
package ingest

import (
	"context"
	"fmt"

	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/operation"
)

const (
	DefaultStoreWeight = 5
	TotalWeight        = 100
	DefaultMaxBytes    = 100 << 20
)

// Backend is the subset of the backend client the orchestrator drives.
type Backend interface {
	ListStores(ctx context.Context) ([]gemini.Store, error)
	CreateStore(ctx context.Context, displayName string) (*gemini.Store, error)
	UploadFile(ctx context.Context, storeName string, up gemini.Upload) (*operation.Status, error)
	GetOperation(ctx context.Context, name string) (*operation.Status, error)
}

// File is one local file queued for upload.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
	Metadata []gemini.CustomMetadata
}

// MetadataBuilder produces the metadata for the file at index. When nil the
// file's own Metadata is used.
type MetadataBuilder func(index int, f File) []gemini.CustomMetadata

type Phase string

const (
	PhaseStore      Phase = "store"
	PhaseUploading  Phase = "uploading"
	PhaseProcessing Phase = "processing"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Progress is one report on the 0..100 scale.
type Progress struct {
	Percent   int    `json:"percent"`
	Phase     Phase  `json:"phase"`
	Message   string `json:"message"`
	FileIndex int    `json:"file_index"`
	FileCount int    `json:"file_count"`
	FileName  string `json:"file_name,omitempty"`
}

type ProgressFunc func(Progress)

type FileStatus string

const (
	FileSucceeded FileStatus = "succeeded"
	FileFailed    FileStatus = "failed"
	FileSkipped   FileStatus = "skipped"
)

type FileResult struct {
	Name         string     `json:"name"`
	Status       FileStatus `json:"status"`
	DocumentName string     `json:"document_name,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Result lists every file in input order with its outcome.
type Result struct {
	Store *gemini.Store `json:"store"`
	Files []FileResult  `json:"files"`
}

func (r *Result) count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

func (r *Result) Succeeded() int { return r.count(FileSucceeded) }

// PartialUploadError reports a batch that stopped at its first failed file.
// Files uploaded before the failure stay in the store.
type PartialUploadError struct {
	FileName  string
	FileIndex int
	Succeeded int
	Skipped   int
	Cause     error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("upload stopped at %q (file %d): %d uploaded, %d skipped: %v",
		e.FileName, e.FileIndex+1, e.Succeeded, e.Skipped, e.Cause)
}

func (e *PartialUploadError) Unwrap() error { return e.Cause }
