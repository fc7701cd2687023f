package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-docstore-be/pkg/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayback is a manually driven output clock.
type fakePlayback struct {
	mu      sync.Mutex
	now     float64
	starts  []float64
	sources []*fakeSource
	closed  int
}

type fakeSource struct {
	stopped int
	onEnded func()
}

func (f *fakeSource) Stop() { f.stopped++ }

func (p *fakePlayback) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *fakePlayback) setNow(t float64) {
	p.mu.Lock()
	p.now = t
	p.mu.Unlock()
}

func (p *fakePlayback) Schedule(buf *codec.AudioBuffer, at float64, onEnded func()) (Source, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	src := &fakeSource{onEnded: onEnded}
	p.starts = append(p.starts, at)
	p.sources = append(p.sources, src)
	return src, nil
}

func (p *fakePlayback) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []string
	mimes  []string
	closed int
}

func (c *fakeChannel) SendAudio(data, mimeType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	c.mimes = append(c.mimes, mimeType)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return nil
}

type fakeDialer struct {
	ch      *fakeChannel
	err     error
	onEvent ServerEventFunc
}

func (d *fakeDialer) Dial(ctx context.Context, onEvent ServerEventFunc) (Channel, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.onEvent = onEvent
	return d.ch, nil
}

// gatedDialer blocks in Dial until release is closed.
type gatedDialer struct {
	ch      *fakeChannel
	entered chan struct{}
	release chan struct{}
}

func (d *gatedDialer) Dial(ctx context.Context, onEvent ServerEventFunc) (Channel, error) {
	close(d.entered)
	<-d.release
	return d.ch, nil
}

type fakeCapture struct {
	onFrame FrameFunc
	stopped int
	running bool
	// beforeStart runs on entry to Start, before the capture is live
	beforeStart func()
}

func (c *fakeCapture) Start(onFrame FrameFunc) error {
	if c.beforeStart != nil {
		c.beforeStart()
	}
	c.onFrame = onFrame
	c.running = true
	return nil
}

func (c *fakeCapture) Stop() {
	c.stopped++
	c.running = false
}

// halfSecondChunk is 0.5s of 24kHz mono PCM16.
func halfSecondChunk() string {
	return codec.EncodeBase64(make([]byte, 24000))
}

type harness struct {
	session  *Session
	playback *fakePlayback
	dialer   *fakeDialer
	capture  *fakeCapture
	states   []State
	entries  []Entry
	errs     []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		playback: &fakePlayback{},
		dialer:   &fakeDialer{ch: &fakeChannel{}},
		capture:  &fakeCapture{},
	}
	hooks := Hooks{
		OnState:      func(s State) { h.states = append(h.states, s) },
		OnTranscript: func(e Entry) { h.entries = append(h.entries, e) },
		OnError:      func(err error) { h.errs = append(h.errs, err) },
	}
	h.session = NewSession(h.dialer, func() (AudioPlayback, error) { return h.playback, nil }, Config{}, hooks, nil)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.session.Start(context.Background(), h.capture))
	require.Equal(t, StateActive, h.session.State())
}

func TestSessionStartTransitions(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateIdle, h.session.State())

	h.start(t)
	assert.Equal(t, []State{StateConnecting, StateActive}, h.states)

	err := h.session.Start(context.Background(), h.capture)
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestSessionCaptureFramesAreEncodedAndSent(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	frame := make([]float32, DefaultFrameSize)
	frame[0] = 0.5
	h.capture.onFrame(frame)

	ch := h.dialer.ch
	require.Len(t, ch.sent, 1)
	assert.Equal(t, "audio/pcm;rate=16000", ch.mimes[0])

	raw, err := codec.DecodeBase64(ch.sent[0])
	require.NoError(t, err)
	assert.Len(t, raw, DefaultFrameSize*2)
	assert.Equal(t, codec.PCM16FromFloat32(frame), raw)
}

func TestSessionGaplessScheduling(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.playback.setNow(1.0)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))
	// second chunk arrives a little later, before the first finished
	h.playback.setNow(1.1)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))

	require.Len(t, h.playback.starts, 2)
	assert.InDelta(t, 1.0, h.playback.starts[0], 1e-9)
	assert.InDelta(t, 1.5, h.playback.starts[1], 1e-9)
	assert.InDelta(t, 2.0, h.session.NextStartTime(), 1e-9)

	// a chunk arriving after the queue drained starts at now
	h.playback.setNow(5.0)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))
	assert.InDelta(t, 5.0, h.playback.starts[2], 1e-9)
}

func TestSessionInterrupt(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.playback.setNow(2.0)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))

	h.dialer.onEvent(ServerEvent{Kind: EventInterrupted})

	for _, src := range h.playback.sources {
		assert.Equal(t, 1, src.stopped)
	}
	assert.Equal(t, 0.0, h.session.NextStartTime())

	h.playback.setNow(2.2)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))
	assert.InDelta(t, 2.2, h.playback.starts[2], 1e-9)
}

func TestSessionTranscriptAssembly(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerUser, Text: "What is "})
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerModel, Text: "It is"})
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerUser, Text: "version 2?"})
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerModel, Text: " a release."})
	h.dialer.onEvent(ServerEvent{Kind: EventTurnComplete})

	entries := h.session.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: 0, Speaker: SpeakerUser, Text: "What is version 2?", Final: true}, entries[0])
	assert.Equal(t, Entry{ID: 1, Speaker: SpeakerModel, Text: "It is a release.", Final: true}, entries[1])

	// next fragment starts a fresh entry
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerUser, Text: "Thanks"})
	entries = h.session.Transcript()
	require.Len(t, entries, 3)
	assert.False(t, entries[2].Final)
}

func TestSessionStopIsIdempotent(t *testing.T) {
	h := newHarness(t)

	// never started
	assert.NotPanics(t, h.session.Stop)
	assert.Empty(t, h.states)

	h.start(t)
	require.NoError(t, h.session.OnServerAudio(halfSecondChunk()))

	h.session.Stop()
	h.session.Stop()
	h.session.Stop()

	assert.Equal(t, StateIdle, h.session.State())
	assert.Equal(t, 1, h.capture.stopped)
	assert.Equal(t, 1, h.dialer.ch.closed)
	assert.Equal(t, 1, h.playback.closed)
	assert.Equal(t, 1, h.playback.sources[0].stopped)
	assert.Equal(t, []State{StateConnecting, StateActive, StateIdle}, h.states)

	// frames after stop are ignored
	h.capture.onFrame(make([]float32, 8))
	assert.Empty(t, h.dialer.ch.sent)
	assert.ErrorIs(t, h.session.OnServerAudio(halfSecondChunk()), ErrNotActive)
}

func TestSessionChannelErrorTearsDown(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	boom := errors.New("socket reset")
	h.dialer.onEvent(ServerEvent{Kind: EventError, Err: boom})

	assert.Equal(t, StateError, h.session.State())
	assert.ErrorIs(t, h.session.Err(), boom)
	require.Len(t, h.errs, 1)
	assert.Equal(t, 1, h.capture.stopped)
	assert.Equal(t, 1, h.dialer.ch.closed)
	assert.Equal(t, 1, h.playback.closed)

	// a late event from the dead channel is ignored
	h.dialer.onEvent(ServerEvent{Kind: EventError, Err: boom})
	assert.Len(t, h.errs, 1)

	// stop after error is still safe and returns to idle
	h.session.Stop()
	assert.Equal(t, StateIdle, h.session.State())
	assert.Equal(t, 1, h.capture.stopped)
}

func TestSessionDialFailure(t *testing.T) {
	h := newHarness(t)
	h.dialer.err = errors.New("handshake failed")

	err := h.session.Start(context.Background(), h.capture)
	require.Error(t, err)
	assert.Equal(t, StateError, h.session.State())
	assert.Equal(t, 1, h.capture.stopped)
	assert.Equal(t, 1, h.playback.closed)

	// can start again after an error
	h.dialer.err = nil
	h.start(t)
}

func TestSessionStopWhileConnecting(t *testing.T) {
	dialer := &gatedDialer{ch: &fakeChannel{}, entered: make(chan struct{}), release: make(chan struct{})}
	playback := &fakePlayback{}
	capture := &fakeCapture{}
	session := NewSession(dialer, func() (AudioPlayback, error) { return playback, nil }, Config{}, Hooks{}, nil)

	done := make(chan error, 1)
	go func() { done <- session.Start(context.Background(), capture) }()

	<-dialer.entered
	session.Stop()
	assert.Equal(t, StateIdle, session.State())
	close(dialer.release)

	assert.ErrorIs(t, <-done, ErrStopped)
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, 1, dialer.ch.closed)
	assert.Equal(t, 1, playback.closed)
	assert.False(t, capture.running)
	assert.Nil(t, capture.onFrame)
}

func TestSessionStopWhileCaptureStarts(t *testing.T) {
	h := newHarness(t)
	h.capture.beforeStart = h.session.Stop

	err := h.session.Start(context.Background(), h.capture)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateIdle, h.session.State())
	assert.False(t, h.capture.running)
	assert.Equal(t, 1, h.dialer.ch.closed)
	assert.NotContains(t, h.states, StateActive)
}

func TestSessionStopFromActiveHook(t *testing.T) {
	dialer := &fakeDialer{ch: &fakeChannel{}}
	playback := &fakePlayback{}
	capture := &fakeCapture{}
	var session *Session
	var states []State
	session = NewSession(dialer, func() (AudioPlayback, error) { return playback, nil }, Config{}, Hooks{
		OnState: func(st State) {
			states = append(states, st)
			if st == StateActive {
				session.Stop()
			}
		},
	}, nil)

	err := session.Start(context.Background(), capture)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateIdle, session.State())
	assert.False(t, capture.running)
	assert.Equal(t, 1, capture.stopped)
	assert.Equal(t, 1, dialer.ch.closed)
	assert.Equal(t, []State{StateConnecting, StateActive, StateIdle}, states)
}

func TestSessionRestartStartsFreshTranscript(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerModel, Text: "half an answ"})
	h.session.Stop()

	h.start(t)
	h.dialer.onEvent(ServerEvent{Kind: EventTranscript, Speaker: SpeakerModel, Text: "Hello"})

	entries := h.session.Transcript()
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{ID: 0, Speaker: SpeakerModel, Text: "Hello"}, entries[0])
}
