package mapper

import (
	"ai-docstore-be/internal/dto"
	"ai-docstore-be/pkg/catalog"
	"ai-docstore-be/pkg/gemini"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToResponse(d catalog.ManagedDocument) dto.DocumentResponse {
	meta := make(map[string]string, len(d.Metadata))
	for _, e := range d.Metadata {
		meta[e.Key] = e.Text()
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.DocumentResponse{
		Name:             d.Name,
		DisplayName:      d.DisplayName,
		StoreName:        d.StoreName,
		StoreDisplayName: d.StoreDisplayName,
		Version:          d.Version,
		Notes:            d.Notes,
		Category:         d.Category,
		Tags:             tags,
		MIMEType:         d.MIMEType,
		SizeBytes:        d.SizeBytes,
		State:            d.State,
		CreatedAt:        d.CreatedAt,
		LastModified:     d.LastModified,
		Metadata:         meta,
	}
}

func (m *DocumentMapper) ToResponses(docs []catalog.ManagedDocument) []dto.DocumentResponse {
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, m.ToResponse(d))
	}
	return out
}

func (m *DocumentMapper) ToStatsResponse(s catalog.Stats) dto.DocumentStatsResponse {
	return dto.DocumentStatsResponse{
		TotalDocuments: s.TotalDocuments,
		TotalBytes:     s.TotalBytes,
		ByStore:        s.ByStore,
		ByVersion:      s.ByVersion,
		Recent:         m.ToResponses(s.Recent),
	}
}

func (m *DocumentMapper) ToStoreResponse(s gemini.Store) dto.StoreResponse {
	return dto.StoreResponse{
		Name:                 s.Name,
		DisplayName:          s.DisplayName,
		ActiveDocumentsCount: s.ActiveDocumentsCount,
		SizeBytes:            s.SizeBytes,
		CreatedAt:            s.CreateTime,
		UpdatedAt:            s.UpdateTime,
	}
}
