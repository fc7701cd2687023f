package dto

import (
	"time"

	"ai-docstore-be/pkg/ingest"

	"github.com/google/uuid"
)

// UploadRequest holds the multipart form fields sent alongside the files.
type UploadRequest struct {
	Store    string `form:"store" validate:"required"`
	Version  string `form:"version" validate:"omitempty,dotted_version"`
	Notes    string `form:"notes" validate:"max=2000"`
	Category string `form:"category" validate:"max=256"`
	Tags     string `form:"tags"`
}

type UploadFileResult struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	DocumentName string `json:"document_name,omitempty"`
	Error        string `json:"error,omitempty"`
}

type UploadProgressResponse struct {
	Percent   int    `json:"percent"`
	Phase     string `json:"phase"`
	Message   string `json:"message"`
	FileIndex int    `json:"file_index"`
	FileCount int    `json:"file_count"`
	FileName  string `json:"file_name,omitempty"`
}

type UploadJobResponse struct {
	Id        uuid.UUID              `json:"id"`
	StoreRef  string                 `json:"store_ref"`
	StoreName string                 `json:"store_name,omitempty"`
	Status    string                 `json:"status"`
	Progress  UploadProgressResponse `json:"progress"`
	Files     []UploadFileResult     `json:"files"`
	Error     string                 `json:"error,omitempty"`
	ErrorKind string                 `json:"error_kind,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// UploadEventMessage travels on the in-process upload topic, from the job
// goroutine to the relay. Seq orders messages of one job.
type UploadEventMessage struct {
	JobId     uuid.UUID           `json:"job_id"`
	UserId    uuid.UUID           `json:"user_id"`
	Seq       uint64              `json:"seq"`
	Kind      string              `json:"kind"`
	Progress  *ingest.Progress    `json:"progress,omitempty"`
	StoreName string              `json:"store_name,omitempty"`
	Files     []ingest.FileResult `json:"files,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorKind string              `json:"error_kind,omitempty"`
}
