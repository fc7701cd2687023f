// Package gemini is the REST client for the generative backend: file search
// stores, document ingestion, long-running operations, grounded queries and
// speech. The realtime voice channel lives in live.go.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/credential"
)

const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultUploadURL       = "https://generativelanguage.googleapis.com/upload/v1beta"
	DefaultQueryModel      = "gemini-2.5-flash"
	DefaultSpeechModel     = "gemini-2.5-flash-preview-tts"
	DefaultTranscribeModel = "gemini-2.5-flash"
	DefaultVoice           = "Kore"

	apiKeyHeader = "x-goog-api-key"
	pageSize     = 20
)

type Config struct {
	BaseURL         string
	UploadURL       string
	QueryModel      string
	SpeechModel     string
	TranscribeModel string
	Voice           string
	HTTPClient      *http.Client
}

type Client struct {
	baseURL   string
	uploadURL string
	cfg       Config
	creds     credential.Provider
	http      *http.Client
}

func NewClient(creds credential.Provider, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultUploadURL
	}
	if cfg.QueryModel == "" {
		cfg.QueryModel = DefaultQueryModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = DefaultTranscribeModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		uploadURL: strings.TrimRight(cfg.UploadURL, "/"),
		cfg:       cfg,
		creds:     creds,
		http:      httpClient,
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON sends payload (if any) as JSON and decodes the response into out (if any).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadJson, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(payloadJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do authenticates and executes req. Errors are reclassified so key problems
// surface as credential errors.
func (c *Client) do(req *http.Request, out interface{}) error {
	apiKey, err := c.creds.APIKey(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set(apiKeyHeader, apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &NoResponseError{Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return &NoResponseError{Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apperror.Reclassify(newAPIError(res.StatusCode, resBody))
	}

	if out == nil || len(bytes.TrimSpace(resBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return fmt.Errorf("gemini: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
