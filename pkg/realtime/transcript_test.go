package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptKeepsEmptyFinalEntry(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SpeakerModel, "")
	done := tr.CompleteTurn()

	require.Len(t, done, 1)
	assert.Equal(t, "", done[0].Text)
	assert.True(t, done[0].Final)
	assert.Len(t, tr.Entries(), 1)
}

func TestTranscriptTurnWithoutFragments(t *testing.T) {
	tr := NewTranscript()
	assert.Empty(t, tr.CompleteTurn())
	assert.Empty(t, tr.Entries())
}

func TestTranscriptAppendReturnsSnapshot(t *testing.T) {
	tr := NewTranscript()
	first := tr.Append(SpeakerUser, "hel")
	second := tr.Append(SpeakerUser, "lo")

	assert.Equal(t, "hel", first.Text)
	assert.Equal(t, "hello", second.Text)
	assert.Equal(t, first.ID, second.ID)

	tr.Reset()
	assert.Empty(t, tr.Entries())
}

func TestSchedulerCloseIsIdempotent(t *testing.T) {
	pb := &fakePlayback{}
	s := NewScheduler(pb)

	_, err := s.Enqueue(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, pb.closed)
	assert.Equal(t, 0, s.Pending())

	_, err = s.Enqueue(nil)
	assert.ErrorIs(t, err, ErrPlaybackClosed)
}

func TestSchedulerReleasesEndedSources(t *testing.T) {
	pb := &fakePlayback{}
	s := NewScheduler(pb)

	_, err := s.Enqueue(nil)
	require.NoError(t, err)
	pb.sources[0].onEnded()
	assert.Equal(t, 0, s.Pending())
}
