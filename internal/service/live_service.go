// FILE: internal/service/live_service.go
package service

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/codec"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/realtime"

	"github.com/google/uuid"
)

// Message types exchanged with the browser on the live socket.
const (
	LiveMessageStart      = "start"
	LiveMessageStop       = "stop"
	LiveMessageState      = "state"
	LiveMessageTranscript = "transcript"
	LiveMessageError      = "error"
	LiveMessageAudio      = "audio"
	LiveMessageCancel     = "cancel"
)

var ErrMalformedFrame = errors.New("audio frame length is not a multiple of 4")

// LivePeer is the browser end of a live session.
type LivePeer interface {
	Enqueue(data []byte) bool
}

type ILiveService interface {
	Open(userId uuid.UUID, peer LivePeer) *LiveBridge
}

type liveService struct {
	dialer realtime.Dialer
	cfg    realtime.Config
	logger logger.ILogger
}

func NewLiveService(dialer realtime.Dialer, cfg realtime.Config, log logger.ILogger) ILiveService {
	return &liveService{dialer: dialer, cfg: cfg, logger: log}
}

// Open creates an idle bridge. The browser starts it with a "start" message.
func (s *liveService) Open(userId uuid.UUID, peer LivePeer) *LiveBridge {
	b := &LiveBridge{
		userId:  userId,
		peer:    peer,
		capture: newPeerCapture(realtime.DefaultFrameSize),
		logger:  s.logger,
	}
	b.session = realtime.NewSession(s.dialer, func() (realtime.AudioPlayback, error) {
		return newPeerPlayback(b.send), nil
	}, s.cfg, realtime.Hooks{
		OnState: func(st realtime.State) {
			b.send(LiveMessageState, map[string]interface{}{"state": st.String()})
		},
		OnTranscript: func(e realtime.Entry) {
			b.send(LiveMessageTranscript, e)
		},
		OnError: func(err error) {
			b.send(LiveMessageError, map[string]interface{}{
				"message": err.Error(),
				"kind":    string(apperror.Classify(err)),
			})
		},
	}, s.logger)
	return b
}

// LiveBridge connects one browser socket to one realtime session.
type LiveBridge struct {
	userId  uuid.UUID
	peer    LivePeer
	session *realtime.Session
	capture *peerCapture
	logger  logger.ILogger
}

type liveEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (b *LiveBridge) send(msgType string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{"type": msgType, "data": data})
	if err != nil {
		return
	}
	if !b.peer.Enqueue(payload) {
		b.logger.Debug("LiveBridge", "Peer not accepting messages", map[string]interface{}{"user_id": b.userId, "type": msgType})
	}
}

// HandleText processes a control message.
func (b *LiveBridge) HandleText(data []byte) {
	var msg liveEnvelope
	if err := json.Unmarshal(data, &msg); err != nil {
		b.send(LiveMessageError, map[string]interface{}{"message": "malformed control message", "kind": string(apperror.KindValidation)})
		return
	}

	switch msg.Type {
	case LiveMessageStart:
		// dialing blocks; keep the read loop free to receive "stop"
		go func() {
			ctx := credential.WithUser(context.Background(), b.userId.String())
			if err := b.session.Start(ctx, b.capture); err != nil && !errors.Is(err, realtime.ErrStopped) {
				b.logger.Warn("LiveBridge", "Session start failed", map[string]interface{}{"user_id": b.userId, "error": err.Error()})
			}
		}()
	case LiveMessageStop:
		b.session.Stop()
	default:
		b.send(LiveMessageError, map[string]interface{}{"message": "unknown message type " + msg.Type, "kind": string(apperror.KindValidation)})
	}
}

// HandleAudio feeds one binary frame of little-endian float32 samples.
func (b *LiveBridge) HandleAudio(data []byte) {
	samples, err := DecodeFloat32LE(data)
	if err != nil {
		b.logger.Debug("LiveBridge", "Dropped audio frame", map[string]interface{}{"error": err.Error()})
		return
	}
	b.capture.push(samples)
}

// State reports the session state.
func (b *LiveBridge) State() realtime.State {
	return b.session.State()
}

// Close stops the session. Safe to call repeatedly.
func (b *LiveBridge) Close() {
	b.session.Stop()
}

func DecodeFloat32LE(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, ErrMalformedFrame
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// peerCapture regroups the samples received from the socket into frames of
// frameSize while started. Browsers deliver whatever their audio graph
// produces, so a partial frame waits for the next push.
type peerCapture struct {
	mu        sync.Mutex
	frameSize int
	pending   []float32
	onFrame   realtime.FrameFunc
}

func newPeerCapture(frameSize int) *peerCapture {
	if frameSize <= 0 {
		frameSize = realtime.DefaultFrameSize
	}
	return &peerCapture{frameSize: frameSize}
}

func (c *peerCapture) Start(onFrame realtime.FrameFunc) error {
	c.mu.Lock()
	c.onFrame = onFrame
	c.pending = c.pending[:0]
	c.mu.Unlock()
	return nil
}

func (c *peerCapture) Stop() {
	c.mu.Lock()
	c.onFrame = nil
	c.pending = nil
	c.mu.Unlock()
}

func (c *peerCapture) push(samples []float32) {
	c.mu.Lock()
	fn := c.onFrame
	if fn == nil {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending, samples...)
	var frames [][]float32
	for len(c.pending) >= c.frameSize {
		frame := make([]float32, c.frameSize)
		copy(frame, c.pending)
		frames = append(frames, frame)
		c.pending = c.pending[c.frameSize:]
	}
	c.mu.Unlock()

	for _, frame := range frames {
		fn(frame)
	}
}

// peerPlayback schedules audio on the browser. Its clock is seconds since the
// playback opened; the browser anchors start_at to its own audio clock on the
// first buffer.
type peerPlayback struct {
	mu      sync.Mutex
	send    func(msgType string, data interface{})
	origin  time.Time
	nextID  uint64
	closed  bool
	sources map[uint64]*peerSource
}

func newPeerPlayback(send func(string, interface{})) *peerPlayback {
	return &peerPlayback{
		send:    send,
		origin:  time.Now(),
		sources: make(map[uint64]*peerSource),
	}
}

func (p *peerPlayback) Now() float64 {
	return time.Since(p.origin).Seconds()
}

func (p *peerPlayback) Schedule(buf *codec.AudioBuffer, at float64, onEnded func()) (realtime.Source, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, realtime.ErrPlaybackClosed
	}
	p.nextID++
	src := &peerSource{id: p.nextID, playback: p, onEnded: onEnded}
	p.sources[src.id] = src
	wait := time.Duration((at + buf.Duration() - p.Now()) * float64(time.Second))
	if wait < 0 {
		wait = 0
	}
	src.timer = time.AfterFunc(wait, src.end)
	p.mu.Unlock()

	p.send(LiveMessageAudio, map[string]interface{}{
		"id":          src.id,
		"data":        codec.EncodeBase64(codec.PCM16FromFloat32(buf.Interleave())),
		"start_at":    at,
		"duration":    buf.Duration(),
		"sample_rate": buf.SampleRate,
		"channels":    len(buf.Channels),
	})
	return src, nil
}

func (p *peerPlayback) forget(id uint64) {
	p.mu.Lock()
	delete(p.sources, id)
	p.mu.Unlock()
}

func (p *peerPlayback) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	srcs := make([]*peerSource, 0, len(p.sources))
	for _, s := range p.sources {
		srcs = append(srcs, s)
	}
	p.mu.Unlock()

	for _, s := range srcs {
		s.Stop()
	}
	return nil
}

type peerSource struct {
	id       uint64
	playback *peerPlayback
	onEnded  func()
	timer    *time.Timer
	once     sync.Once
}

func (s *peerSource) end() {
	s.once.Do(func() {
		s.playback.forget(s.id)
		if s.onEnded != nil {
			s.onEnded()
		}
	})
}

// Stop cancels the buffer on the browser and fires onEnded.
func (s *peerSource) Stop() {
	s.playback.mu.Lock()
	timer := s.timer
	s.playback.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	stopped := false
	s.once.Do(func() {
		stopped = true
		s.playback.forget(s.id)
	})
	if !stopped {
		return
	}
	s.playback.send(LiveMessageCancel, map[string]interface{}{"id": s.id})
	if s.onEnded != nil {
		s.onEnded()
	}
}
