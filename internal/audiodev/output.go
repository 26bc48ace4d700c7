// Package audiodev owns the audio output path: the mixer that pumps the
// transport from the sample clock, and the ebiten output device it renders
// into.
package audiodev

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource produces interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// One stereo float32 frame on the wire.
const frameBytes = 8

// sourceReader feeds a SampleSource to ebiten's float32 player, which pulls
// little-endian bytes.
type sourceReader struct {
	mu  sync.Mutex
	src SampleSource
	pcm []float32
}

func (r *sourceReader) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cap(r.pcm) < frames*2 {
		r.pcm = make([]float32, frames*2)
	}
	pcm := r.pcm[:frames*2]
	r.src.Process(pcm)
	for i, s := range pcm {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * frameBytes, nil
}

// The process-wide ebiten audio context. Ebiten allows exactly one, at one
// sample rate, for the life of the process.
var device struct {
	once       sync.Once
	ctx        *ebitaudio.Context
	sampleRate int
}

func deviceContext(sampleRate int) (*ebitaudio.Context, error) {
	device.once.Do(func() {
		device.sampleRate = sampleRate
		device.ctx = ebitaudio.NewContext(sampleRate)
	})
	if device.sampleRate != sampleRate {
		return nil, fmt.Errorf("audio device already open at %d Hz (requested %d Hz)", device.sampleRate, sampleRate)
	}
	return device.ctx, nil
}

// Output streams a SampleSource to the audio device.
type Output struct {
	player *ebitaudio.Player
}

func NewOutput(sampleRate int, source SampleSource) (*Output, error) {
	ctx, err := deviceContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(&sourceReader{src: source})
	if err != nil {
		return nil, err
	}
	return &Output{player: pl}, nil
}

func (o *Output) Start()        { o.player.Play() }
func (o *Output) Pause()        { o.player.Pause() }
func (o *Output) Playing() bool { return o.player.IsPlaying() }

func (o *Output) Close() error {
	o.player.Pause()
	return o.player.Close()
}

// ContextUnlocker gates playback on audio device readiness. On platforms
// where output needs a user gesture the context stays not-ready until one
// arrives; polling IsReady is the only signal ebiten exposes.
type ContextUnlocker struct {
	sampleRate int
}

func NewContextUnlocker(sampleRate int) *ContextUnlocker {
	return &ContextUnlocker{sampleRate: sampleRate}
}

// Unlock blocks until the audio device is ready or ctx is done. Returns
// false when the device cannot be opened or readiness never arrives.
func (u *ContextUnlocker) Unlock(ctx context.Context) bool {
	ac, err := deviceContext(u.sampleRate)
	if err != nil {
		return false
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if ac.IsReady() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
