package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-docstore-be/pkg/codec"
)

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*part `json:"parts"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type tool struct {
	FileSearch *fileSearchTool `json:"fileSearch,omitempty"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type generateRequest struct {
	Contents          []*content        `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type retrievedContext struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URI   string `json:"uri"`
}

type groundingChunk struct {
	RetrievedContext *retrievedContext `json:"retrievedContext"`
}

type candidate struct {
	Content           *content `json:"content"`
	GroundingMetadata *struct {
		GroundingChunks []groundingChunk `json:"groundingChunks"`
	} `json:"groundingMetadata"`
}

type generateResponse struct {
	Candidates []*candidate `json:"candidates"`
}

var ErrEmptyResponse = errors.New("gemini: empty response")

func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*candidate, error) {
	var res generateResponse
	endpoint := c.endpoint("models/"+model+":generateContent", nil)
	if err := c.doJSON(ctx, http.MethodPost, endpoint, req, &res); err != nil {
		return nil, err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	return res.Candidates[0], nil
}

func (cand *candidate) text() string {
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func languageInstruction(language string) *content {
	if language == "" {
		return nil
	}
	return &content{Parts: []*part{{Text: fmt.Sprintf(
		"Answer in %s using only the documents available through file search. If they do not contain the answer, say so.",
		language,
	)}}}
}

// Query asks a question grounded on the documents of one store.
func (c *Client) Query(ctx context.Context, storeName, question, language string) (*Answer, error) {
	cand, err := c.generate(ctx, c.cfg.QueryModel, &generateRequest{
		Contents:          []*content{{Role: "user", Parts: []*part{{Text: question}}}},
		SystemInstruction: languageInstruction(language),
		Tools:             []tool{{FileSearch: &fileSearchTool{FileSearchStoreNames: []string{storeName}}}},
	})
	if err != nil {
		return nil, err
	}

	answer := &Answer{Text: cand.text(), GroundingChunks: make([]GroundingChunk, 0)}
	if cand.GroundingMetadata != nil {
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.RetrievedContext == nil {
				continue
			}
			answer.GroundingChunks = append(answer.GroundingChunks, GroundingChunk{
				Title: gc.RetrievedContext.Title,
				Text:  gc.RetrievedContext.Text,
				URI:   gc.RetrievedContext.URI,
			})
		}
	}
	return answer, nil
}

// SuggestQuestions asks the model for example questions about the store's contents.
func (c *Client) SuggestQuestions(ctx context.Context, storeName, language string, count int) ([]string, error) {
	if count <= 0 {
		count = 4
	}
	prompt := fmt.Sprintf(
		"Suggest %d short questions a user could ask about these documents. Respond with ONLY a JSON array of strings.",
		count,
	)
	cand, err := c.generate(ctx, c.cfg.QueryModel, &generateRequest{
		Contents:          []*content{{Role: "user", Parts: []*part{{Text: prompt}}}},
		SystemInstruction: languageInstruction(language),
		Tools:             []tool{{FileSearch: &fileSearchTool{FileSearchStoreNames: []string{storeName}}}},
	})
	if err != nil {
		return nil, err
	}

	// clean markdown wrapper
	raw := bytes.TrimSpace([]byte(cand.text()))
	raw = bytes.TrimPrefix(raw, []byte("```json"))
	raw = bytes.TrimPrefix(raw, []byte("```"))
	raw = bytes.TrimSuffix(raw, []byte("```"))
	raw = bytes.TrimSpace(raw)

	var questions []string
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w | raw: %s", err, string(raw))
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// Synthesize renders text to speech and returns base64 PCM16, 24 kHz mono.
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	cand, err := c.generate(ctx, c.cfg.SpeechModel, &generateRequest{
		Contents: []*content{{Parts: []*part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.cfg.Voice}},
			},
		},
	})
	if err != nil {
		return "", err
	}
	for _, p := range cand.Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData.Data, nil
		}
	}
	return "", ErrEmptyResponse
}

// Transcribe converts recorded PCM16 mono audio to text.
func (c *Client) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	wav, err := codec.EncodeWAV(pcm, sampleRate, 1)
	if err != nil {
		return "", err
	}
	cand, err := c.generate(ctx, c.cfg.TranscribeModel, &generateRequest{
		Contents: []*content{{Role: "user", Parts: []*part{
			{Text: "Transcribe this audio verbatim. Respond with the transcript only."},
			{InlineData: &inlineData{MimeType: "audio/wav", Data: codec.EncodeBase64(wav)}},
		}}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(cand.text()), nil
}
