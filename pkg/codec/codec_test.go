package codec

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := [][]byte{
		{},
		{0x00},
		{0xff, 0x00, 0x7f},
		[]byte("hello store"),
	}
	for i := 0; i < 20; i++ {
		b := make([]byte, rng.Intn(300))
		rng.Read(b)
		inputs = append(inputs, b)
	}

	for _, in := range inputs {
		out, err := DecodeBase64(EncodeBase64(in))
		require.NoError(t, err)
		assert.Equal(t, len(in), len(out))
		assert.Equal(t, string(in), string(out))
	}
}

func TestDecodeBase64Malformed(t *testing.T) {
	_, err := DecodeBase64("not*base64")
	assert.Error(t, err)
}

func TestPCM16FromFloat32(t *testing.T) {
	got := PCM16FromFloat32([]float32{0, 0.5, -0.5, -1})
	require.Len(t, got, 8)

	want := []int16{0, 16384, -16384, -32768}
	for i, w := range want {
		v := int16(binary.LittleEndian.Uint16(got[i*2:]))
		assert.Equal(t, w, v, "sample %d", i)
	}
}

func TestPCM16FromFloat32DoesNotClamp(t *testing.T) {
	got := PCM16FromFloat32([]float32{1.0})
	v := int16(binary.LittleEndian.Uint16(got))
	assert.Equal(t, int16(-32768), v)
}

func TestFloat32FromPCM16Deinterleaves(t *testing.T) {
	samples := []int16{100, -100, 200, -200, 300}
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	buf := Float32FromPCM16(data, 24000, 2)
	require.Len(t, buf.Channels, 2)
	// 10 bytes / 2 / 2 = 2 frames, trailing sample dropped
	assert.Equal(t, 2, buf.Frames())
	assert.InDelta(t, 100.0/32768.0, buf.Channels[0][0], 1e-9)
	assert.InDelta(t, -100.0/32768.0, buf.Channels[1][0], 1e-9)
	assert.InDelta(t, 200.0/32768.0, buf.Channels[0][1], 1e-9)
	assert.InDelta(t, -200.0/32768.0, buf.Channels[1][1], 1e-9)
}

func TestFloat32FromPCM16OddLength(t *testing.T) {
	buf := Float32FromPCM16([]byte{1, 2, 3}, 16000, 1)
	assert.Equal(t, 1, buf.Frames())
}

func TestPCMRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := make([]byte, 2048)
	rng.Read(data)

	buf := Float32FromPCM16(data, 24000, 1)
	back := PCM16FromFloat32(buf.Interleave())
	require.Len(t, back, len(data))

	for i := 0; i < len(data); i += 2 {
		orig := int32(int16(binary.LittleEndian.Uint16(data[i:])))
		got := int32(int16(binary.LittleEndian.Uint16(back[i:])))
		diff := orig - got
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, int32(1), "sample %d", i/2)
	}
}

func TestAudioBufferDuration(t *testing.T) {
	buf := Float32FromPCM16(make([]byte, 24000), 24000, 1)
	assert.InDelta(t, 0.5, buf.Duration(), 1e-9)
}

func TestEncodeWAV(t *testing.T) {
	pcm := make([]byte, 8)
	out, err := EncodeWAV(pcm, 24000, 1)
	require.NoError(t, err)
	assert.Len(t, out, 44+8)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(out[24:28]))

	_, err = EncodeWAV([]byte{1}, 24000, 1)
	assert.Error(t, err)
}
