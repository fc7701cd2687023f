package credential

import (
	"context"
	"testing"

	"ai-docstore-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string]string

func (m mapStore) Get(id string) (string, bool) {
	v, ok := m[id]
	return v, ok
}

func (m mapStore) Set(id, key string) { m[id] = key }

func (m mapStore) Clear(id string) { delete(m, id) }

func TestUserProvider(t *testing.T) {
	store := mapStore{}
	p := NewUserProvider(store, "default-key")

	key, err := p.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default-key", key)

	store.Set("u1", "user-key")
	key, err = p.APIKey(WithUser(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "user-key", key)

	store.Clear("u1")
	key, err = p.APIKey(WithUser(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "default-key", key)
}

func TestUserProviderMissingKey(t *testing.T) {
	p := NewUserProvider(mapStore{}, "")
	_, err := p.APIKey(WithUser(context.Background(), "u2"))
	assert.Equal(t, apperror.KindCredential, apperror.Classify(err))

	_, err = Static("  ").APIKey(context.Background())
	assert.Equal(t, apperror.KindCredential, apperror.Classify(err))
}
