package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/repository/memory"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreServiceCreateRecordsSessionStore(t *testing.T) {
	backend := newFakeBackend()
	sessions := memory.NewSessionStoreRepository(time.Hour)
	svc := NewStoreService(backend, sessions, nil, logger.NewNopLogger())
	user := uuid.New()

	res, err := svc.Create(context.Background(), user, &dto.CreateStoreRequest{DisplayName: "manuals"})
	require.NoError(t, err)
	assert.Equal(t, "manuals", res.DisplayName)
	assert.Equal(t, []string{res.Name}, sessions.List(user.String()))

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreServiceDeleteSessionStores(t *testing.T) {
	backend := newFakeBackend()
	sessions := memory.NewSessionStoreRepository(time.Hour)
	ev := &fakeEvents{}
	svc := NewStoreService(backend, sessions, ev, logger.NewNopLogger())
	user := uuid.New()

	sessions.Add(user.String(), "fileSearchStores/a")
	sessions.Add(user.String(), "fileSearchStores/b")
	backend.failOn["fileSearchStores/b"] = errors.New("backend down")

	res, err := svc.DeleteSessionStores(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, []string{"fileSearchStores/a"}, res.Deleted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "fileSearchStores/b", res.Failed[0].Name)

	assert.Equal(t, []string{"fileSearchStores/b"}, sessions.List(user.String()))
	require.Len(t, ev.published, 1)
	assert.Equal(t, events.StoreDeleted, ev.published[0].EventType())
}

func TestStoreServiceDeleteSessionStoresSurfacesCredentialError(t *testing.T) {
	backend := newFakeBackend()
	sessions := memory.NewSessionStoreRepository(time.Hour)
	svc := NewStoreService(backend, sessions, nil, logger.NewNopLogger())
	user := uuid.New()

	sessions.Add(user.String(), "fileSearchStores/a")
	backend.failOn["fileSearchStores/a"] = &apperror.CredentialError{}

	res, err := svc.DeleteSessionStores(context.Background(), user)
	var ce *apperror.CredentialError
	assert.ErrorAs(t, err, &ce)
	require.NotNil(t, res)
	assert.Len(t, res.Failed, 1)
}
