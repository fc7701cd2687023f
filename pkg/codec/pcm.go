package codec

import "encoding/binary"

const pcmScale = 32768.0

// AudioBuffer holds deinterleaved float samples ready for playback.
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float32
}

// Frames returns the number of sample frames per channel.
func (b *AudioBuffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length in seconds.
func (b *AudioBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// PCM16FromFloat32 converts samples in [-1, 1] to little-endian signed 16-bit PCM.
// Each sample is scaled by 32768 and truncated. Values outside [-1, 1) are not
// clamped, so 1.0 wraps to -32768.
func PCM16FromFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(int32(s * pcmScale))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Float32FromPCM16 deinterleaves little-endian PCM16 data into channelCount
// channels of float samples. The frame count is len(data)/2/channelCount; a
// trailing partial frame is dropped.
func Float32FromPCM16(data []byte, sampleRate, channelCount int) *AudioBuffer {
	if channelCount <= 0 {
		channelCount = 1
	}
	frames := len(data) / 2 / channelCount
	buf := &AudioBuffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channelCount),
	}
	for ch := 0; ch < channelCount; ch++ {
		buf.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channelCount; ch++ {
			off := (i*channelCount + ch) * 2
			v := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.Channels[ch][i] = float32(v) / pcmScale
		}
	}
	return buf
}

// Interleave flattens the buffer back into a single interleaved sample slice.
func (b *AudioBuffer) Interleave() []float32 {
	n := len(b.Channels)
	frames := b.Frames()
	out := make([]float32, frames*n)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < n; ch++ {
			out[i*n+ch] = b.Channels[ch][i]
		}
	}
	return out
}
