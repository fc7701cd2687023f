package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/operation"
)

// fakeBackend is an in-memory backend covering every service interface.
type fakeBackend struct {
	mu        sync.Mutex
	stores    []gemini.Store
	docs      []gemini.Document
	uploads   []gemini.Upload
	deleted   []string
	failOn    map[string]error
	listErr   error
	answer    *gemini.Answer
	suggested []string
	suggErr   error
	speech    string
	heard     []byte
	nextID    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failOn: map[string]error{}}
}

func (b *fakeBackend) ListStores(ctx context.Context) ([]gemini.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]gemini.Store(nil), b.stores...), nil
}

func (b *fakeBackend) CreateStore(ctx context.Context, displayName string) (*gemini.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	st := gemini.Store{Name: fmt.Sprintf("fileSearchStores/s%d", b.nextID), DisplayName: displayName, CreateTime: time.Now()}
	b.stores = append(b.stores, st)
	return &st, nil
}

func (b *fakeBackend) DeleteStore(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failOn[name]; err != nil {
		return err
	}
	b.deleted = append(b.deleted, name)
	return nil
}

func (b *fakeBackend) UploadFile(ctx context.Context, storeName string, up gemini.Upload) (*operation.Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failOn[up.DisplayName]; err != nil {
		return nil, err
	}
	b.uploads = append(b.uploads, up)
	res, _ := json.Marshal(map[string]string{"documentName": storeName + "/documents/" + up.DisplayName})
	return &operation.Status{Name: storeName + "/operations/1", Done: true, Response: res}, nil
}

func (b *fakeBackend) GetOperation(ctx context.Context, name string) (*operation.Status, error) {
	return &operation.Status{Name: name, Done: true}, nil
}

func (b *fakeBackend) ListAllDocuments(ctx context.Context) ([]gemini.Store, []gemini.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, nil, b.listErr
	}
	return append([]gemini.Store(nil), b.stores...), append([]gemini.Document(nil), b.docs...), nil
}

func (b *fakeBackend) DeleteDocument(ctx context.Context, name string) error {
	return b.DeleteStore(ctx, name)
}

func (b *fakeBackend) Query(ctx context.Context, storeName, question, language string) (*gemini.Answer, error) {
	if b.answer == nil {
		return &gemini.Answer{Text: "no answer"}, nil
	}
	return b.answer, nil
}

func (b *fakeBackend) SuggestQuestions(ctx context.Context, storeName, language string, count int) ([]string, error) {
	return b.suggested, b.suggErr
}

func (b *fakeBackend) Synthesize(ctx context.Context, text string) (string, error) {
	return b.speech, nil
}

func (b *fakeBackend) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	b.heard = pcm
	return fmt.Sprintf("%d bytes at %d Hz", len(pcm), sampleRate), nil
}
