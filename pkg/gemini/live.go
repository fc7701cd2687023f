package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/realtime"

	"github.com/fasthttp/websocket"
)

const (
	DefaultLiveURL   = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"

	liveWriteWait      = 10 * time.Second
	liveSetupWait      = 15 * time.Second
	liveSendQueueDepth = 64
)

var (
	ErrSendQueueFull = errors.New("live: send queue full, frame dropped")
	ErrLiveClosed    = errors.New("live: channel closed")
)

type LiveConfig struct {
	URL               string
	Model             string
	Voice             string
	SystemInstruction string
}

// LiveDialer opens BidiGenerateContent sessions. It implements realtime.Dialer.
type LiveDialer struct {
	cfg    LiveConfig
	creds  credential.Provider
	dialer *websocket.Dialer
	logger logger.ILogger
}

func NewLiveDialer(creds credential.Provider, cfg LiveConfig, log logger.ILogger) *LiveDialer {
	if cfg.URL == "" {
		cfg.URL = DefaultLiveURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLiveModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &LiveDialer{
		cfg:    cfg,
		creds:  creds,
		dialer: &websocket.Dialer{HandshakeTimeout: liveSetupWait},
		logger: log,
	}
}

type transcriptionConfig struct{}

type liveSetup struct {
	Model                    string               `json:"model"`
	GenerationConfig         *generationConfig    `json:"generationConfig,omitempty"`
	SystemInstruction        *content             `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *transcriptionConfig `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *transcriptionConfig `json:"outputAudioTranscription,omitempty"`
}

type liveBlob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type liveClientMessage struct {
	Setup         *liveSetup `json:"setup,omitempty"`
	RealtimeInput *struct {
		Audio *liveBlob `json:"audio,omitempty"`
	} `json:"realtimeInput,omitempty"`
}

type liveTranscription struct {
	Text string `json:"text"`
}

type liveServerMessage struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		ModelTurn           *content           `json:"modelTurn"`
		InputTranscription  *liveTranscription `json:"inputTranscription"`
		OutputTranscription *liveTranscription `json:"outputTranscription"`
		TurnComplete        bool               `json:"turnComplete"`
		Interrupted         bool               `json:"interrupted"`
	} `json:"serverContent"`
	GoAway *struct {
		TimeLeft string `json:"timeLeft"`
	} `json:"goAway"`
}

// Dial connects, sends the setup message and waits for setupComplete.
func (d *LiveDialer) Dial(ctx context.Context, onEvent realtime.ServerEventFunc) (realtime.Channel, error) {
	apiKey, err := d.creds.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	conn, _, err := d.dialer.DialContext(ctx, d.cfg.URL+"?key="+url.QueryEscape(apiKey), nil)
	if err != nil {
		return nil, &NoResponseError{Err: err}
	}

	setup := liveClientMessage{Setup: &liveSetup{
		Model: "models/" + d.cfg.Model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: d.cfg.Voice}},
			},
		},
		InputAudioTranscription:  &transcriptionConfig{},
		OutputAudioTranscription: &transcriptionConfig{},
	}}
	if d.cfg.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &content{Parts: []*part{{Text: d.cfg.SystemInstruction}}}
	}

	if err := writeSetup(conn, setup); err != nil {
		conn.Close()
		return nil, err
	}
	if err := awaitSetupComplete(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	ch := &liveChannel{
		conn:    conn,
		out:     make(chan []byte, liveSendQueueDepth),
		done:    make(chan struct{}),
		onEvent: onEvent,
		logger:  d.logger,
	}
	go ch.writePump()
	go ch.readPump()

	d.logger.Info("LiveDialer", "Live channel open", map[string]interface{}{"model": d.cfg.Model})
	return ch, nil
}

func writeSetup(conn *websocket.Conn, msg liveClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("live: send setup: %w", err)
	}
	return nil
}

func awaitSetupComplete(ctx context.Context, conn *websocket.Conn) error {
	deadline := time.Now().Add(liveSetupWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("live: await setup: %w", err)
		}
		var msg liveServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.SetupComplete != nil {
			conn.SetReadDeadline(time.Time{})
			return nil
		}
	}
}

type liveChannel struct {
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
	onEvent   realtime.ServerEventFunc
	logger    logger.ILogger
}

// SendAudio queues a frame without waiting on the socket. When the queue is
// full the frame is dropped.
func (c *liveChannel) SendAudio(data, mimeType string) error {
	if c.closed.Load() {
		return ErrLiveClosed
	}
	msg := liveClientMessage{RealtimeInput: &struct {
		Audio *liveBlob `json:"audio,omitempty"`
	}{Audio: &liveBlob{Data: data, MimeType: mimeType}}}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case c.out <- payload:
		return nil
	default:
		c.dropped.Add(1)
		return ErrSendQueueFull
	}
}

func (c *liveChannel) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.report(realtime.ServerEvent{Kind: realtime.EventError, Err: fmt.Errorf("live: write: %w", err)})
				return
			}
		}
	}
}

func (c *liveChannel) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.report(realtime.ServerEvent{Kind: realtime.EventClosed})
			} else {
				c.report(realtime.ServerEvent{Kind: realtime.EventError, Err: fmt.Errorf("live: read: %w", err)})
			}
			return
		}

		var msg liveServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("LiveChannel", "Unparseable server message", map[string]interface{}{"error": err.Error()})
			continue
		}
		c.handle(&msg)
	}
}

// handle reports the events of one server message. A goAway notice only
// warns: the backend keeps serving until timeLeft runs out and then closes.
func (c *liveChannel) handle(msg *liveServerMessage) {
	if msg.GoAway != nil {
		c.logger.Warn("LiveChannel", "Backend will close the session", map[string]interface{}{"time_left": msg.GoAway.TimeLeft})
	}
	for _, ev := range decodeServerMessage(msg) {
		c.report(ev)
	}
}

// decodeServerMessage flattens one server message into events, in the order
// audio, transcripts, interruption, turn completion.
func decodeServerMessage(msg *liveServerMessage) []realtime.ServerEvent {
	var events []realtime.ServerEvent
	sc := msg.ServerContent
	if sc == nil {
		return events
	}
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				events = append(events, realtime.ServerEvent{Kind: realtime.EventAudio, Audio: p.InlineData.Data})
			}
		}
	}
	if sc.InputTranscription != nil {
		events = append(events, realtime.ServerEvent{Kind: realtime.EventTranscript, Speaker: realtime.SpeakerUser, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil {
		events = append(events, realtime.ServerEvent{Kind: realtime.EventTranscript, Speaker: realtime.SpeakerModel, Text: sc.OutputTranscription.Text})
	}
	if sc.Interrupted {
		events = append(events, realtime.ServerEvent{Kind: realtime.EventInterrupted})
	}
	if sc.TurnComplete {
		events = append(events, realtime.ServerEvent{Kind: realtime.EventTurnComplete})
	}
	return events
}

func (c *liveChannel) report(ev realtime.ServerEvent) {
	if c.closed.Load() || c.onEvent == nil {
		return
	}
	c.onEvent(ev)
}

// Close is idempotent.
func (c *liveChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = c.conn.Close()
		if n := c.dropped.Load(); n > 0 {
			c.logger.Info("LiveChannel", "Frames dropped under backpressure", map[string]interface{}{"dropped": n})
		}
	})
	return err
}
