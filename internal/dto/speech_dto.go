package dto

type SynthesizeRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type SynthesizeResponse struct {
	Audio      string `json:"audio"` // base64 PCM16
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

type TranscribeRequest struct {
	Audio      string `json:"audio" validate:"required,base64"` // base64 PCM16 mono
	SampleRate int    `json:"sample_rate" validate:"omitempty,min=8000,max=48000"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}
