package audiodev

import (
	"testing"

	"github.com/neurotoxic/gigaudio/internal/assets"
	"github.com/neurotoxic/gigaudio/internal/synth"
	"github.com/neurotoxic/gigaudio/internal/transport"
)

func newTestMixer() (*Mixer, *synth.Engine, *transport.Transport) {
	eng := synth.NewEngine(48000)
	trans := transport.New(transport.ClockFunc(eng.NowSec))
	return NewMixer(eng, trans), eng, trans
}

func constBuffer(frames int, value float32) *assets.Buffer {
	data := make([]float32, frames*2)
	for i := range data {
		data[i] = value
	}
	return &assets.Buffer{
		Data:        data,
		SampleRate:  48000,
		Channels:    2,
		Frames:      frames,
		DurationSec: float64(frames) / 48000,
	}
}

func energy(buf []float32) float64 {
	var e float64
	for _, s := range buf {
		if s < 0 {
			e -= float64(s)
		} else {
			e += float64(s)
		}
	}
	return e
}

func TestMixerPumpsTransport(t *testing.T) {
	m, _, trans := newTestMixer()
	fired := 0
	trans.ScheduleOnce(0.05, func(float64) { fired++ })
	trans.Start(0, 0)

	buf := make([]float32, 4800*2) // 0.1s block
	m.Process(buf)
	if fired != 1 {
		t.Fatalf("transport event not pumped from the audio callback, fired=%d", fired)
	}
}

func TestPlayBufferMixesIntoOutput(t *testing.T) {
	m, _, _ := newTestMixer()
	id := m.PlayBuffer(constBuffer(4800, 0.25), 0, 0, 0, false, 1, nil)
	if id < 0 {
		t.Fatalf("PlayBuffer rejected a valid buffer")
	}
	buf := make([]float32, 2400*2)
	m.Process(buf)
	if energy(buf) == 0 {
		t.Fatalf("buffer playback produced silence")
	}
}

func TestPlayBufferHonorsOffsetAndDuration(t *testing.T) {
	m, _, _ := newTestMixer()
	// 0.1s buffer played from 0.05 for 0.025s: ends after 1200 output frames.
	m.PlayBuffer(constBuffer(4800, 0.25), 0, 0.05, 0.025, true, 1, nil)

	first := make([]float32, 1200*2)
	m.Process(first)
	if energy(first) == 0 {
		t.Fatalf("windowed playback produced silence")
	}
	second := make([]float32, 1200*2)
	m.Process(second)
	if energy(second) != 0 {
		t.Fatalf("playback ran past the duration limit")
	}
}

func TestPlayBufferDelayKeepsVoiceSilent(t *testing.T) {
	m, _, _ := newTestMixer()
	m.PlayBuffer(constBuffer(4800, 0.25), 0.1, 0, 0, false, 1, nil)

	early := make([]float32, 2400*2) // first 0.05s
	m.Process(early)
	if energy(early) != 0 {
		t.Fatalf("delayed buffer sounded early")
	}
	late := make([]float32, 4800*2) // through 0.15s
	m.Process(late)
	if energy(late) == 0 {
		t.Fatalf("delayed buffer never started")
	}
}

func TestOnEndedFiresOnceAtNaturalEnd(t *testing.T) {
	m, _, _ := newTestMixer()
	ended := 0
	m.PlayBuffer(constBuffer(480, 0.25), 0, 0, 0, false, 1, func() { ended++ })

	buf := make([]float32, 4800*2)
	m.Process(buf)
	if ended != 1 {
		t.Fatalf("onEnded fired %d times, want 1", ended)
	}
	m.Process(buf)
	if ended != 1 {
		t.Fatalf("onEnded refired on a later block")
	}
	if m.ActiveBuffers() != 0 {
		t.Fatalf("finished voice not reaped")
	}
}

func TestStopBufferSuppressesOnEnded(t *testing.T) {
	m, _, _ := newTestMixer()
	ended := 0
	id := m.PlayBuffer(constBuffer(4800, 0.25), 0, 0, 0, false, 1, func() { ended++ })
	m.StopBuffer(id)

	buf := make([]float32, 4800*2)
	m.Process(buf)
	if energy(buf) != 0 {
		t.Fatalf("stopped buffer still audible")
	}
	if ended != 0 {
		t.Fatalf("stopped buffer fired onEnded")
	}
}

func TestStopAllBuffers(t *testing.T) {
	m, _, _ := newTestMixer()
	m.PlayBuffer(constBuffer(4800, 0.25), 0, 0, 0, false, 1, nil)
	m.PlayBuffer(constBuffer(4800, 0.25), 0, 0, 0, false, 1, nil)
	m.StopAllBuffers()

	buf := make([]float32, 2400*2)
	m.Process(buf)
	if energy(buf) != 0 {
		t.Fatalf("StopAllBuffers left audio playing")
	}
	if m.ActiveBuffers() != 0 {
		t.Fatalf("voices not reaped after StopAllBuffers")
	}
}

func TestPlayBufferRejectsNil(t *testing.T) {
	m, _, _ := newTestMixer()
	if id := m.PlayBuffer(nil, 0, 0, 0, false, 1, nil); id != -1 {
		t.Fatalf("nil buffer accepted with id %d", id)
	}
}

func TestMonoBufferPlaysOnBothChannels(t *testing.T) {
	data := make([]float32, 4800)
	for i := range data {
		data[i] = 0.25
	}
	mono := &assets.Buffer{Data: data, SampleRate: 48000, Channels: 1, Frames: 4800, DurationSec: 0.1}
	m, _, _ := newTestMixer()
	m.PlayBuffer(mono, 0, 0, 0, false, 1, nil)

	buf := make([]float32, 1200*2)
	m.Process(buf)
	if buf[0] == 0 || buf[1] == 0 {
		t.Fatalf("mono buffer must feed both channels, got %v/%v", buf[0], buf[1])
	}
	if buf[0] != buf[1] {
		t.Fatalf("mono channels diverge: %v vs %v", buf[0], buf[1])
	}
}
