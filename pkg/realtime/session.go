package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/codec"
)

const (
	DefaultInputSampleRate  = 16000
	DefaultOutputSampleRate = 24000
	DefaultOutputChannels   = 1
	DefaultFrameSize        = 4096
)

var (
	ErrAlreadyActive = errors.New("realtime session already started")
	ErrNotActive     = errors.New("realtime session not active")
	ErrStopped       = errors.New("realtime session stopped while starting")
	ErrChannelClosed = errors.New("realtime channel closed by backend")
)

// State of a Session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	}
	return "unknown"
}

type Config struct {
	InputSampleRate  int
	OutputSampleRate int
	OutputChannels   int
}

func (c Config) withDefaults() Config {
	if c.InputSampleRate <= 0 {
		c.InputSampleRate = DefaultInputSampleRate
	}
	if c.OutputSampleRate <= 0 {
		c.OutputSampleRate = DefaultOutputSampleRate
	}
	if c.OutputChannels <= 0 {
		c.OutputChannels = DefaultOutputChannels
	}
	return c
}

// InputMIMEType is the MIME type attached to every uploaded frame.
func (c Config) InputMIMEType() string {
	return fmt.Sprintf("audio/pcm;rate=%d", c.InputSampleRate)
}

// Hooks are invoked outside the session lock. All are optional.
type Hooks struct {
	OnState      func(State)
	OnTranscript func(Entry)
	OnError      func(error)
}

// PlaybackFactory creates the output graph for one activation.
type PlaybackFactory func() (AudioPlayback, error)

// Session owns one activation at a time of capture, channel and playback.
// Stop and the error path both tear everything down; teardown clears each
// reference as it releases it, so repeated calls do nothing.
type Session struct {
	mu sync.Mutex

	cfg         Config
	dialer      Dialer
	newPlayback PlaybackFactory
	hooks       Hooks
	logger      logger.ILogger

	state   State
	gen     uint64
	lastErr error

	capture   AudioCapture
	channel   Channel
	scheduler *Scheduler

	transcript *Transcript
}

func NewSession(dialer Dialer, newPlayback PlaybackFactory, cfg Config, hooks Hooks, log logger.ILogger) *Session {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Session{
		cfg:         cfg.withDefaults(),
		dialer:      dialer,
		newPlayback: newPlayback,
		hooks:       hooks,
		logger:      log,
		transcript:  NewTranscript(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the error that moved the session into StateError, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Transcript() []Entry {
	return s.transcript.Entries()
}

// NextStartTime is the playback cursor, zero when idle or just interrupted.
func (s *Session) NextStartTime() float64 {
	s.mu.Lock()
	sch := s.scheduler
	s.mu.Unlock()
	if sch == nil {
		return 0
	}
	return sch.NextStart()
}

// Start connects the channel and begins streaming frames from capture.
func (s *Session) Start(ctx context.Context, capture AudioCapture) error {
	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateActive {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.gen++
	gen := s.gen
	s.state = StateConnecting
	s.lastErr = nil
	s.capture = capture
	s.mu.Unlock()
	s.transcript.Reset()
	s.emitState(StateConnecting)

	playback, err := s.newPlayback()
	if err != nil {
		s.fail(gen, fmt.Errorf("open playback: %w", err))
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		_ = playback.Close()
		return ErrStopped
	}
	s.scheduler = NewScheduler(playback)
	s.mu.Unlock()

	ch, err := s.dialer.Dial(ctx, s.eventHandler(gen))
	if err != nil {
		s.fail(gen, fmt.Errorf("open channel: %w", err))
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		_ = ch.Close()
		return ErrStopped
	}
	s.channel = ch
	s.mu.Unlock()

	// frames arriving before the session turns Active are dropped by sendFrame
	if err := capture.Start(func(frame []float32) { s.sendFrame(gen, frame) }); err != nil {
		s.fail(gen, fmt.Errorf("start capture: %w", err))
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		// teardown may have run before capture.Start; stop it again
		capture.Stop()
		return ErrStopped
	}
	s.state = StateActive
	s.mu.Unlock()
	s.emitState(StateActive)

	s.logger.Info("RealtimeSession", "Session active", map[string]interface{}{
		"input_rate":  s.cfg.InputSampleRate,
		"output_rate": s.cfg.OutputSampleRate,
	})

	// a hook may stop the session as soon as it sees Active
	if !s.current(gen) {
		return ErrStopped
	}
	return nil
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// sendFrame runs on the capture callback: encode and hand off, never wait.
func (s *Session) sendFrame(gen uint64, frame []float32) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateActive || s.channel == nil {
		s.mu.Unlock()
		return
	}
	ch := s.channel
	s.mu.Unlock()

	data := codec.EncodeBase64(codec.PCM16FromFloat32(frame))
	if err := ch.SendAudio(data, s.cfg.InputMIMEType()); err != nil {
		s.logger.Debug("RealtimeSession", "Dropped capture frame", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Session) eventHandler(gen uint64) ServerEventFunc {
	return func(ev ServerEvent) {
		if !s.current(gen) {
			return
		}

		switch ev.Kind {
		case EventAudio:
			if err := s.OnServerAudio(ev.Audio); err != nil {
				s.logger.Warn("RealtimeSession", "Failed to schedule server audio", map[string]interface{}{"error": err.Error()})
			}
		case EventTranscript:
			s.OnTranscriptFragment(ev.Speaker, ev.Text)
		case EventTurnComplete:
			s.OnTurnComplete()
		case EventInterrupted:
			s.OnInterrupt()
		case EventError:
			err := ev.Err
			if err == nil {
				err = errors.New("realtime channel error")
			}
			s.fail(gen, err)
		case EventClosed:
			s.fail(gen, ErrChannelClosed)
		}
	}
}

// OnServerAudio decodes a base64 PCM16 chunk and schedules it gaplessly.
func (s *Session) OnServerAudio(b64 string) error {
	s.mu.Lock()
	sch := s.scheduler
	s.mu.Unlock()
	if sch == nil {
		return ErrNotActive
	}

	data, err := codec.DecodeBase64(b64)
	if err != nil {
		return err
	}
	buf := codec.Float32FromPCM16(data, s.cfg.OutputSampleRate, s.cfg.OutputChannels)
	_, err = sch.Enqueue(buf)
	return err
}

// OnInterrupt handles barge-in: everything scheduled stops and the cursor resets.
func (s *Session) OnInterrupt() {
	s.mu.Lock()
	sch := s.scheduler
	s.mu.Unlock()
	if sch != nil {
		sch.Interrupt()
	}
}

func (s *Session) OnTranscriptFragment(speaker Speaker, text string) {
	entry := s.transcript.Append(speaker, text)
	if s.hooks.OnTranscript != nil {
		s.hooks.OnTranscript(entry)
	}
}

func (s *Session) OnTurnComplete() {
	for _, entry := range s.transcript.CompleteTurn() {
		if s.hooks.OnTranscript != nil {
			s.hooks.OnTranscript(entry)
		}
	}
}

// Stop tears the session down and returns to Idle. Safe at any time, any number of times.
func (s *Session) Stop() {
	s.mu.Lock()
	res := s.detachLocked()
	prev := s.state
	if prev == StateIdle && res.empty() {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.state = StateIdle
	s.mu.Unlock()

	res.release(s.logger)
	if prev != StateIdle {
		s.emitState(StateIdle)
	}
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.gen++
	res := s.detachLocked()
	s.state = StateError
	s.lastErr = err
	s.mu.Unlock()

	res.release(s.logger)
	s.logger.Error("RealtimeSession", "Session failed", map[string]interface{}{"error": err.Error()})
	s.emitState(StateError)
	if s.hooks.OnError != nil {
		s.hooks.OnError(err)
	}
}

func (s *Session) emitState(st State) {
	if s.hooks.OnState != nil {
		s.hooks.OnState(st)
	}
}

type resources struct {
	capture   AudioCapture
	channel   Channel
	scheduler *Scheduler
}

func (r resources) empty() bool {
	return r.capture == nil && r.channel == nil && r.scheduler == nil
}

func (s *Session) detachLocked() resources {
	r := resources{capture: s.capture, channel: s.channel, scheduler: s.scheduler}
	s.capture = nil
	s.channel = nil
	s.scheduler = nil
	return r
}

func (r resources) release(log logger.ILogger) {
	if r.capture != nil {
		r.capture.Stop()
	}
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			log.Debug("RealtimeSession", "Channel close", map[string]interface{}{"error": err.Error()})
		}
	}
	if r.scheduler != nil {
		if err := r.scheduler.Close(); err != nil {
			log.Debug("RealtimeSession", "Playback close", map[string]interface{}{"error": err.Error()})
		}
	}
}
