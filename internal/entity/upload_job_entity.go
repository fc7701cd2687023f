// internal\entity\upload_job_entity.go
package entity

import (
	"time"

	"ai-docstore-be/pkg/ingest"

	"github.com/google/uuid"
)

type UploadJobStatus string

const (
	UploadJobPending   UploadJobStatus = "pending"
	UploadJobRunning   UploadJobStatus = "running"
	UploadJobSucceeded UploadJobStatus = "succeeded"
	UploadJobPartial   UploadJobStatus = "partial"
	UploadJobFailed    UploadJobStatus = "failed"
)

// Terminal reports whether the job will not change any more.
func (s UploadJobStatus) Terminal() bool {
	return s == UploadJobSucceeded || s == UploadJobPartial || s == UploadJobFailed
}

type UploadJob struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	StoreRef  string
	StoreName string
	Status    UploadJobStatus
	Progress  ingest.Progress
	Files     []ingest.FileResult
	Error     string
	ErrorKind string
	Seq       uint64 // last applied progress sequence
	CreatedAt time.Time
	UpdatedAt time.Time
}
