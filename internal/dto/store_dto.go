package dto

import "time"

type CreateStoreRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=512"`
}

type StoreResponse struct {
	Name                 string    `json:"name"`
	DisplayName          string    `json:"display_name"`
	ActiveDocumentsCount int64     `json:"active_documents_count"`
	SizeBytes            int64     `json:"size_bytes"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type DeleteStoreRequest struct {
	Name string `query:"name" validate:"required"`
}

// BulkDeleteResult summarises a delete over several resources. One failure
// never stops the rest.
type BulkDeleteResult struct {
	Deleted []string          `json:"deleted"`
	Failed  []BulkDeleteError `json:"failed"`
}

type BulkDeleteError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
