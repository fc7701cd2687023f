// Package realtime drives a bidirectional voice session: microphone frames go
// up the channel as PCM16, model audio comes back and is scheduled for gapless
// playback, and transcript fragments are assembled into entries.
//
// The host audio runtime is reached only through the capability interfaces in
// this file, so the same session logic runs against a browser bridge, a native
// device, or test fakes.
package realtime

import (
	"context"

	"ai-docstore-be/pkg/codec"
)

// Speaker tags a transcript entry.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// EventKind identifies a message received from the backend channel.
type EventKind int

const (
	EventAudio EventKind = iota
	EventTranscript
	EventTurnComplete
	EventInterrupted
	EventError
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventAudio:
		return "audio"
	case EventTranscript:
		return "transcript"
	case EventTurnComplete:
		return "turn_complete"
	case EventInterrupted:
		return "interrupted"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	}
	return "unknown"
}

// ServerEvent is one decoded backend message.
type ServerEvent struct {
	Kind    EventKind
	Audio   string // base64 PCM16, EventAudio only
	Speaker Speaker
	Text    string
	Err     error
}

// ServerEventFunc receives backend events. It may be called from the channel's
// reader goroutine.
type ServerEventFunc func(ServerEvent)

// Channel is an open bidirectional connection to the backend.
type Channel interface {
	// SendAudio queues one base64 PCM16 frame. It must not block on the network.
	SendAudio(data, mimeType string) error
	Close() error
}

// Dialer opens a Channel. Dial returns once the backend acknowledged the open.
type Dialer interface {
	Dial(ctx context.Context, onEvent ServerEventFunc) (Channel, error)
}

// FrameFunc receives one capture frame of mono float samples in [-1, 1].
type FrameFunc func(samples []float32)

// AudioCapture delivers microphone frames until stopped.
type AudioCapture interface {
	Start(onFrame FrameFunc) error
	// Stop releases the capture graph and media tracks. Safe to call repeatedly.
	Stop()
}

// Source is a scheduled playback buffer.
type Source interface {
	Stop()
}

// AudioPlayback is an output graph with its own clock, in seconds.
type AudioPlayback interface {
	Now() float64
	// Schedule starts buf at the given clock time. onEnded fires once the buffer
	// finished or was stopped; it must not be invoked synchronously from Schedule.
	Schedule(buf *codec.AudioBuffer, at float64, onEnded func()) (Source, error)
	Close() error
}

// SpeechToText turns recorded PCM16 into text, used for dictation outside the
// live session.
type SpeechToText interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}
