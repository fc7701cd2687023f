package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"ai-docstore-be/pkg/operation"
)

// Upload is one file to ingest into a store.
type Upload struct {
	DisplayName string
	MIMEType    string
	Data        []byte
	Metadata    []CustomMetadata
}

type uploadMetadata struct {
	DisplayName    string           `json:"displayName,omitempty"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
}

// UploadFile sends the file as a multipart upload. The returned operation may
// already be done; otherwise poll it with GetOperation.
func (c *Client) UploadFile(ctx context.Context, storeName string, up Upload) (*operation.Status, error) {
	meta, err := json.Marshal(uploadMetadata{
		DisplayName:    up.DisplayName,
		CustomMetadata: up.Metadata,
		MimeType:       up.MIMEType,
	})
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	metaPart.Write(meta)

	mimeType := up.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	filePart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {mimeType}})
	if err != nil {
		return nil, err
	}
	filePart.Write(up.Data)

	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := c.uploadURL + "/" + storeName + ":uploadToFileSearchStore?uploadType=multipart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")

	var op operation.Status
	if err := c.do(req, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// GetOperation fetches a long-running operation. It satisfies operation.CheckFunc.
func (c *Client) GetOperation(ctx context.Context, name string) (*operation.Status, error) {
	var op operation.Status
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(name, nil), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}
