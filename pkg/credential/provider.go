// Package credential resolves the backend API key for a request. Callers bind
// the acting user to the context; the provider never reads ambient global state.
package credential

import (
	"context"
	"strings"

	"ai-docstore-be/pkg/apperror"
)

type ctxKey struct{}

// Store keeps API keys per user.
type Store interface {
	Get(userID string) (string, bool)
	Set(userID, apiKey string)
	Clear(userID string)
}

// Provider yields the API key to use for ctx.
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

// WithUser binds userID to ctx for later key lookups.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the bound user, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}

// Static always returns the same key.
type Static string

func (s Static) APIKey(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", &apperror.CredentialError{}
	}
	return string(s), nil
}

// UserProvider looks up the context user's key and falls back to a default key.
type UserProvider struct {
	store      Store
	defaultKey string
}

func NewUserProvider(store Store, defaultKey string) *UserProvider {
	return &UserProvider{store: store, defaultKey: defaultKey}
}

func (p *UserProvider) APIKey(ctx context.Context) (string, error) {
	if userID, ok := UserFromContext(ctx); ok && p.store != nil {
		if key, found := p.store.Get(userID); found && key != "" {
			return key, nil
		}
	}
	if p.defaultKey != "" {
		return p.defaultKey, nil
	}
	return "", &apperror.CredentialError{}
}
