package gigaudio

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/neurotoxic/gigaudio/internal/song"
	"github.com/neurotoxic/gigaudio/internal/synth"
	"github.com/neurotoxic/gigaudio/internal/transport"
)

const offlineBlockFrames = 256

// RenderSong renders an authored song to interleaved stereo float32 with no
// audio device, pumping the transport from the synth's sample clock block by
// block.
func RenderSong(s song.Song, sampleRate int, seconds float64) []float32 {
	return renderOffline(sampleRate, seconds, func(e *Engine) bool {
		return e.StartSong(context.Background(), s, 0, StartOptions{})
	})
}

// RenderProcedural renders the procedural riff for a song. rng may be nil
// for the default source.
func RenderProcedural(s song.Song, sampleRate int, seconds float64, rng func() float64) []float32 {
	return renderOffline(sampleRate, seconds, func(e *Engine) bool {
		if rng != nil {
			WithRNG(rng)(e)
		}
		return e.StartMetalGenerator(context.Background(), s, 0, StartOptions{})
	})
}

func renderOffline(sampleRate int, seconds float64, start func(*Engine) bool) []float32 {
	eng := synth.NewEngine(sampleRate)
	trans := transport.New(transport.ClockFunc(eng.NowSec))
	e := NewEngine(
		WithClock(transport.ClockFunc(eng.NowSec)),
		WithTransport(trans),
		WithVoices(eng.VoiceSet()),
	)
	if !start(e) {
		return nil
	}

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	blockSec := float64(offlineBlockFrames) / float64(sampleRate)
	for off := 0; off < len(out); off += offlineBlockFrames * 2 {
		end := off + offlineBlockFrames*2
		if end > len(out) {
			end = len(out)
		}
		trans.Advance(eng.NowSec() + blockSec)
		eng.Process(out[off:end])
	}
	return out
}

// EncodeWAVFloat32LE wraps rendered samples in a float32 WAV container.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
