package dto

import "time"

type ListDocumentsRequest struct {
	Query    string `query:"q"`
	Stores   string `query:"stores"`
	Versions string `query:"versions"`
	Tags     string `query:"tags"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Sort     string `query:"sort" validate:"omitempty,oneof=name store version category last_modified created size"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
}

type DocumentResponse struct {
	Name             string            `json:"name"`
	DisplayName      string            `json:"display_name"`
	StoreName        string            `json:"store_name"`
	StoreDisplayName string            `json:"store_display_name"`
	Version          string            `json:"version"`
	Notes            string            `json:"notes"`
	Category         *string           `json:"category"`
	Tags             []string          `json:"tags"`
	MIMEType         string            `json:"mime_type"`
	SizeBytes        int64             `json:"size_bytes"`
	State            string            `json:"state"`
	CreatedAt        time.Time         `json:"created_at"`
	LastModified     time.Time         `json:"last_modified"`
	Metadata         map[string]string `json:"metadata"`
}

type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type DocumentStatsResponse struct {
	TotalDocuments int                `json:"total_documents"`
	TotalBytes     int64              `json:"total_bytes"`
	ByStore        map[string]int     `json:"by_store"`
	ByVersion      map[string]int     `json:"by_version"`
	Recent         []DocumentResponse `json:"recent"`
}

type DeleteDocumentsRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required"`
}
