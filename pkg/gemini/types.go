package gemini

import (
	"strconv"
	"strings"
	"time"
)

// Store is a file search store: a named container of documents.
type Store struct {
	Name                 string    `json:"name"`
	DisplayName          string    `json:"displayName"`
	CreateTime           time.Time `json:"createTime,omitempty"`
	UpdateTime           time.Time `json:"updateTime,omitempty"`
	ActiveDocumentsCount int64     `json:"activeDocumentsCount,string,omitempty"`
	SizeBytes            int64     `json:"sizeBytes,string,omitempty"`
}

// StringList is the list variant of a metadata value.
type StringList struct {
	Values []string `json:"values"`
}

// CustomMetadata is one key/value entry. Exactly one value variant is set.
type CustomMetadata struct {
	Key             string      `json:"key"`
	StringValue     *string     `json:"stringValue,omitempty"`
	StringListValue *StringList `json:"stringListValue,omitempty"`
	NumericValue    *float64    `json:"numericValue,omitempty"`
}

func StringMeta(key, value string) CustomMetadata {
	return CustomMetadata{Key: key, StringValue: &value}
}

func ListMeta(key string, values ...string) CustomMetadata {
	return CustomMetadata{Key: key, StringListValue: &StringList{Values: values}}
}

func NumericMeta(key string, value float64) CustomMetadata {
	return CustomMetadata{Key: key, NumericValue: &value}
}

// Text renders the value as a single string regardless of variant.
func (m CustomMetadata) Text() string {
	switch {
	case m.StringValue != nil:
		return *m.StringValue
	case m.StringListValue != nil:
		return strings.Join(m.StringListValue.Values, ", ")
	case m.NumericValue != nil:
		return strconv.FormatFloat(*m.NumericValue, 'f', -1, 64)
	}
	return ""
}

// Document is a file ingested into a store.
type Document struct {
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
	CreateTime     time.Time        `json:"createTime,omitempty"`
	UpdateTime     time.Time        `json:"updateTime,omitempty"`
	State          string           `json:"state,omitempty"`
	SizeBytes      int64            `json:"sizeBytes,string,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
}

// StoreName derives the parent store from the document name
// ("fileSearchStores/{store}/documents/{doc}").
func (d Document) StoreName() string {
	return StoreOf(d.Name)
}

// StoreOf returns the store prefix of a document or operation name.
func StoreOf(name string) string {
	parts := strings.SplitN(name, "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "/" + parts[1]
}

// IsStoreName reports whether s looks like a store identifier rather than a display name.
func IsStoreName(s string) bool {
	return strings.HasPrefix(s, "fileSearchStores/")
}

// GroundingChunk is a source snippet cited by an answer.
type GroundingChunk struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URI   string `json:"uri,omitempty"`
}

// Answer is the result of a grounded query.
type Answer struct {
	Text            string           `json:"text"`
	GroundingChunks []GroundingChunk `json:"grounding_chunks"`
}
