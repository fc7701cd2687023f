package dto

type SetCredentialRequest struct {
	APIKey string `json:"api_key" validate:"required,min=10"`
}

type CredentialStatusResponse struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"` // "user", "default" or "none"
}
