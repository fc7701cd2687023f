package dto

type QueryRequest struct {
	Store    string `json:"store" validate:"required"`
	Question string `json:"question" validate:"required,max=4000"`
	Language string `json:"language"`
}

type GroundingChunkResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URI   string `json:"uri,omitempty"`
}

type QueryResponse struct {
	Answer  string                   `json:"answer"`
	Sources []GroundingChunkResponse `json:"sources"`
}

type SuggestionsRequest struct {
	Store    string `query:"store" validate:"required"`
	Language string `query:"language"`
	Count    int    `query:"count" validate:"omitempty,min=1,max=10"`
}

type SuggestionsResponse struct {
	Questions []string `json:"questions"`
}
