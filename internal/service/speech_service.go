// FILE: internal/service/speech_service.go
package service

import (
	"context"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/codec"
)

const (
	SpeechSampleRate     = 24000
	SpeechMIMEType       = "audio/pcm;rate=24000"
	DefaultDictationRate = 16000
)

type ISpeechService interface {
	Synthesize(ctx context.Context, req *dto.SynthesizeRequest) (*dto.SynthesizeResponse, error)
	SynthesizeWAV(ctx context.Context, req *dto.SynthesizeRequest) ([]byte, error)
	Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)
}

type speechService struct {
	backend SpeechBackend
}

func NewSpeechService(backend SpeechBackend) ISpeechService {
	return &speechService{backend: backend}
}

func (s *speechService) Synthesize(ctx context.Context, req *dto.SynthesizeRequest) (*dto.SynthesizeResponse, error) {
	audio, err := s.backend.Synthesize(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return &dto.SynthesizeResponse{Audio: audio, MIMEType: SpeechMIMEType, SampleRate: SpeechSampleRate}, nil
}

// SynthesizeWAV wraps the synthesized PCM16 in a WAV container for download.
func (s *speechService) SynthesizeWAV(ctx context.Context, req *dto.SynthesizeRequest) ([]byte, error) {
	audio, err := s.backend.Synthesize(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	pcm, err := codec.DecodeBase64(audio)
	if err != nil {
		return nil, err
	}
	return codec.EncodeWAV(pcm, SpeechSampleRate, 1)
}

func (s *speechService) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	pcm, err := codec.DecodeBase64(req.Audio)
	if err != nil {
		return nil, &apperror.ValidationError{Field: "audio", Message: "must be base64 encoded"}
	}
	rate := req.SampleRate
	if rate == 0 {
		rate = DefaultDictationRate
	}
	text, err := s.backend.Transcribe(ctx, pcm, rate)
	if err != nil {
		return nil, err
	}
	return &dto.TranscribeResponse{Text: text}, nil
}
