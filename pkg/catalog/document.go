// Package catalog derives managed document records from raw backend
// documents and filters, sorts, aggregates and exports them.
package catalog

import (
	"strings"
	"time"

	"ai-docstore-be/pkg/gemini"
)

const (
	KeyVersion  = "version"
	KeyNotes    = "notes"
	KeyCategory = "category"
	KeyTags     = "tags"

	NoVersion = "N/A"
	NoNotes   = "—"
)

// ReservedKeys are the metadata keys Enrich lifts into typed fields.
var ReservedKeys = []string{KeyVersion, KeyNotes, KeyCategory, KeyTags}

// ManagedDocument is a backend document with its derived fields.
type ManagedDocument struct {
	Name             string                  `json:"name"`
	DisplayName      string                  `json:"display_name"`
	StoreName        string                  `json:"store_name"`
	StoreDisplayName string                  `json:"store_display_name"`
	Version          string                  `json:"version"`
	Notes            string                  `json:"notes"`
	Category         *string                 `json:"category"`
	Tags             []string                `json:"tags"`
	MIMEType         string                  `json:"mime_type"`
	SizeBytes        int64                   `json:"size_bytes"`
	State            string                  `json:"state,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	LastModified     time.Time               `json:"last_modified"`
	Metadata         []gemini.CustomMetadata `json:"metadata"`
}

// index keeps the first entry per reserved key. Backend keys are not unique.
// Keys match exactly: "Version" is custom metadata, not the version.
func index(entries []gemini.CustomMetadata) map[string]gemini.CustomMetadata {
	idx := make(map[string]gemini.CustomMetadata, len(ReservedKeys))
	for _, e := range entries {
		key := e.Key
		if _, seen := idx[key]; seen {
			continue
		}
		for _, r := range ReservedKeys {
			if key == r {
				idx[key] = e
				break
			}
		}
	}
	return idx
}

// Enrich builds the managed view of doc. storeDisplayName falls back to the
// store identifier when empty.
func Enrich(doc gemini.Document, storeDisplayName string) ManagedDocument {
	storeName := doc.StoreName()
	if storeDisplayName == "" {
		storeDisplayName = storeName
	}
	displayName := doc.DisplayName
	if displayName == "" {
		displayName = doc.Name
	}

	md := ManagedDocument{
		Name:             doc.Name,
		DisplayName:      displayName,
		StoreName:        storeName,
		StoreDisplayName: storeDisplayName,
		Version:          NoVersion,
		Notes:            NoNotes,
		Tags:             []string{},
		MIMEType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		State:            doc.State,
		CreatedAt:        doc.CreateTime,
		LastModified:     doc.UpdateTime,
		Metadata:         doc.CustomMetadata,
	}
	if md.LastModified.IsZero() {
		md.LastModified = doc.CreateTime
	}
	if md.Metadata == nil {
		md.Metadata = []gemini.CustomMetadata{}
	}

	idx := index(doc.CustomMetadata)
	if e, ok := idx[KeyVersion]; ok {
		if v := strings.TrimSpace(e.Text()); v != "" {
			md.Version = v
		}
	}
	if e, ok := idx[KeyNotes]; ok {
		if v := e.Text(); v != "" {
			md.Notes = v
		}
	}
	if e, ok := idx[KeyCategory]; ok {
		if v := e.Text(); v != "" {
			md.Category = &v
		}
	}
	if e, ok := idx[KeyTags]; ok {
		md.Tags = tagsOf(e)
	}
	return md
}

func tagsOf(e gemini.CustomMetadata) []string {
	var raw []string
	switch {
	case e.StringListValue != nil:
		raw = e.StringListValue.Values
	case e.StringValue != nil:
		raw = strings.Split(*e.StringValue, ",")
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// EnrichAll enriches docs, resolving store display names from stores.
func EnrichAll(stores []gemini.Store, docs []gemini.Document) []ManagedDocument {
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.Name] = s.DisplayName
	}
	out := make([]ManagedDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, Enrich(d, names[d.StoreName()]))
	}
	return out
}
