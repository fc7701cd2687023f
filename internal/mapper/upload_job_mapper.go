package mapper

import (
	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/entity"
	"ai-docstore-be/pkg/ingest"
)

type UploadJobMapper struct{}

func NewUploadJobMapper() *UploadJobMapper {
	return &UploadJobMapper{}
}

func (m *UploadJobMapper) ToProgressResponse(p ingest.Progress) dto.UploadProgressResponse {
	return dto.UploadProgressResponse{
		Percent:   p.Percent,
		Phase:     string(p.Phase),
		Message:   p.Message,
		FileIndex: p.FileIndex,
		FileCount: p.FileCount,
		FileName:  p.FileName,
	}
}

func (m *UploadJobMapper) ToResponse(job *entity.UploadJob) *dto.UploadJobResponse {
	if job == nil {
		return nil
	}
	files := make([]dto.UploadFileResult, 0, len(job.Files))
	for _, f := range job.Files {
		files = append(files, dto.UploadFileResult{
			Name:         f.Name,
			Status:       string(f.Status),
			DocumentName: f.DocumentName,
			Error:        f.Error,
		})
	}
	return &dto.UploadJobResponse{
		Id:        job.Id,
		StoreRef:  job.StoreRef,
		StoreName: job.StoreName,
		Status:    string(job.Status),
		Progress:  m.ToProgressResponse(job.Progress),
		Files:     files,
		Error:     job.Error,
		ErrorKind: job.ErrorKind,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
