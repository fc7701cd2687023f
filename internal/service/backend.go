package service

import (
	"context"
	"errors"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"
)

// The backend is split by concern so each service only sees what it calls.
// *gemini.Client implements all of them.

type StoreBackend interface {
	ListStores(ctx context.Context) ([]gemini.Store, error)
	CreateStore(ctx context.Context, displayName string) (*gemini.Store, error)
	DeleteStore(ctx context.Context, name string) error
}

type DocumentBackend interface {
	ListAllDocuments(ctx context.Context) ([]gemini.Store, []gemini.Document, error)
	DeleteDocument(ctx context.Context, name string) error
}

type QueryBackend interface {
	ListStores(ctx context.Context) ([]gemini.Store, error)
	Query(ctx context.Context, storeName, question, language string) (*gemini.Answer, error)
	SuggestQuestions(ctx context.Context, storeName, language string, count int) ([]string, error)
}

type SpeechBackend interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}

// resolveStore finds a store by resource name or display name without creating it.
func resolveStore(ctx context.Context, list func(context.Context) ([]gemini.Store, error), ref string) (*gemini.Store, error) {
	if ref == "" {
		return nil, &apperror.ValidationError{Field: "store", Message: "is required"}
	}
	stores, err := list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stores {
		if stores[i].Name == ref || stores[i].DisplayName == ref {
			return &stores[i], nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "store", ID: ref}
}

func bulkError(name string, err error) dto.BulkDeleteError {
	return dto.BulkDeleteError{Name: name, Error: err.Error(), Kind: string(apperror.Classify(err))}
}

// firstCredentialError returns the first credential failure of a bulk run, so
// the caller can prompt for a new key instead of showing a partial result.
func firstCredentialError(errs []error) error {
	for _, err := range errs {
		var ce *apperror.CredentialError
		if errors.As(err, &ce) {
			return err
		}
	}
	return nil
}
