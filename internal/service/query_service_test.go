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
	"ai-docstore-be/pkg/codec"
	"ai-docstore-be/pkg/gemini"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryServiceAsk(t *testing.T) {
	backend := seededBackend()
	backend.answer = &gemini.Answer{
		Text:            "Hold the reset button.",
		GroundingChunks: []gemini.GroundingChunk{{Title: "a.pdf", Text: "reset"}},
	}
	svc := NewQueryService(backend, "English", logger.NewNopLogger())

	res, err := svc.Ask(context.Background(), &dto.QueryRequest{Store: "manuals", Question: "How do I reset?"})
	require.NoError(t, err)
	assert.Equal(t, "Hold the reset button.", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "a.pdf", res.Sources[0].Title)

	_, err = svc.Ask(context.Background(), &dto.QueryRequest{Store: "missing", Question: "?"})
	var nf *apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestQueryServiceSuggestionsDegrade(t *testing.T) {
	backend := seededBackend()
	backend.suggErr = errors.New("model overloaded")
	svc := NewQueryService(backend, "English", logger.NewNopLogger())

	res, err := svc.Suggestions(context.Background(), &dto.SuggestionsRequest{Store: "fileSearchStores/m", Count: 3})
	require.NoError(t, err)
	assert.NotNil(t, res.Questions)
	assert.Empty(t, res.Questions)

	_, err = svc.Suggestions(context.Background(), &dto.SuggestionsRequest{})
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSpeechServiceSynthesizeWAV(t *testing.T) {
	backend := newFakeBackend()
	backend.speech = codec.EncodeBase64(make([]byte, 480))
	svc := NewSpeechService(backend)

	res, err := svc.Synthesize(context.Background(), &dto.SynthesizeRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, SpeechSampleRate, res.SampleRate)

	wav, err := svc.SynthesizeWAV(context.Background(), &dto.SynthesizeRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Len(t, wav, 44+480)
}

func TestSpeechServiceTranscribe(t *testing.T) {
	backend := newFakeBackend()
	svc := NewSpeechService(backend)

	res, err := svc.Transcribe(context.Background(), &dto.TranscribeRequest{Audio: codec.EncodeBase64([]byte{1, 2, 3, 4})})
	require.NoError(t, err)
	assert.Equal(t, "4 bytes at 16000 Hz", res.Text)

	_, err = svc.Transcribe(context.Background(), &dto.TranscribeRequest{Audio: "%%%"})
	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCredentialServiceStatus(t *testing.T) {
	repo := memory.NewCredentialRepository(time.Hour)
	user := uuid.New()

	svc := NewCredentialService(repo, "", logger.NewNopLogger())
	res, err := svc.Status(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "none", res.Source)

	res, err = svc.Set(context.Background(), user, &dto.SetCredentialRequest{APIKey: "AIza-user-key"})
	require.NoError(t, err)
	assert.True(t, res.Configured)
	assert.Equal(t, "user", res.Source)

	withDefault := NewCredentialService(repo, "AIza-default", logger.NewNopLogger())
	res, err = withDefault.Clear(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "default", res.Source)
}
