package audiodev

import (
	"math"
	"sync"

	"github.com/neurotoxic/gigaudio/internal/assets"
	"github.com/neurotoxic/gigaudio/internal/synth"
	"github.com/neurotoxic/gigaudio/internal/transport"
)

// bufferVoice plays one decoded asset buffer through the mixer with a start
// delay, a seek offset, and an optional duration limit.
type bufferVoice struct {
	id         int
	buf        *assets.Buffer
	pos        float64 // source frame position, fractional for resampling
	step       float64 // source frames per output frame
	startFrame int64   // mixer frame the voice becomes audible
	endPos     float64 // source frame position past which playback stops
	gain       float64
	onEnded    func()
	done       bool
}

// Mixer is the master SampleSource: the synthesizer plus any playing asset
// buffers, with the transport pumped from the same sample clock so
// scheduled events line up with rendered audio.
type Mixer struct {
	mu     sync.Mutex
	engine *synth.Engine
	trans  *transport.Transport
	voices []*bufferVoice
	nextID int
}

func NewMixer(engine *synth.Engine, trans *transport.Transport) *Mixer {
	return &Mixer{engine: engine, trans: trans}
}

// NowSec implements transport.Clock with the synth's sample clock.
func (m *Mixer) NowSec() float64 { return m.engine.NowSec() }

// PlayBuffer starts buffer playback delaySec from now, seeked to offsetSec,
// for durationSec (limit disabled when hasLimit is false). onEnded fires
// once, after the block in which playback finishes. Returns a handle for
// StopBuffer.
func (m *Mixer) PlayBuffer(buf *assets.Buffer, delaySec, offsetSec, durationSec float64, hasLimit bool, gain float64, onEnded func()) int {
	if buf == nil || buf.SampleRate <= 0 || buf.Channels <= 0 {
		return -1
	}
	if delaySec < 0 {
		delaySec = 0
	}
	if offsetSec < 0 {
		offsetSec = 0
	}
	if gain <= 0 {
		gain = 1
	}
	outRate := float64(m.engine.SampleRate())
	srcRate := float64(buf.SampleRate)
	endPos := float64(buf.Frames)
	if hasLimit && durationSec >= 0 {
		endPos = math.Min(endPos, (offsetSec+durationSec)*srcRate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	v := &bufferVoice{
		id:         m.nextID,
		buf:        buf,
		pos:        offsetSec * srcRate,
		step:       srcRate / outRate,
		startFrame: int64((m.engine.NowSec() + delaySec) * outRate),
		endPos:     endPos,
		gain:       gain,
		onEnded:    onEnded,
	}
	m.voices = append(m.voices, v)
	return v.id
}

// StopBuffer stops a playing buffer without firing its onEnded callback.
func (m *Mixer) StopBuffer(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		if v.id == id {
			v.done = true
			v.onEnded = nil
		}
	}
}

// StopAllBuffers stops every playing buffer, callbacks suppressed.
func (m *Mixer) StopAllBuffers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		v.done = true
		v.onEnded = nil
	}
}

// Process renders one block: pump the transport up to the end of the block
// so due events schedule their voices at exact frames, render the synth,
// then mix buffer playback on top. onEnded callbacks fire outside the lock.
func (m *Mixer) Process(dst []float32) {
	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	blockSec := float64(frames) / float64(m.engine.SampleRate())
	m.trans.Advance(m.engine.NowSec() + blockSec)

	startFrame := int64(m.engine.NowSec() * float64(m.engine.SampleRate()))
	m.engine.Process(dst)

	m.mu.Lock()
	for _, v := range m.voices {
		m.mixVoice(v, dst, startFrame)
	}
	kept := m.voices[:0]
	var ended []func()
	for _, v := range m.voices {
		if v.done {
			if v.onEnded != nil {
				ended = append(ended, v.onEnded)
			}
			continue
		}
		kept = append(kept, v)
	}
	m.voices = kept
	m.mu.Unlock()

	for _, fn := range ended {
		fn()
	}
}

func (m *Mixer) mixVoice(v *bufferVoice, dst []float32, blockStart int64) {
	if v.done {
		return
	}
	data := v.buf.Data
	ch := v.buf.Channels
	for i := 0; i+1 < len(dst); i += 2 {
		frame := blockStart + int64(i/2)
		if frame < v.startFrame {
			continue
		}
		if v.pos >= v.endPos {
			v.done = true
			return
		}
		idx := int(v.pos) * ch
		if idx+ch > len(data) {
			v.done = true
			return
		}
		l := float64(data[idx])
		r := l
		if ch >= 2 {
			r = float64(data[idx+1])
		}
		dst[i] += float32(l * v.gain)
		dst[i+1] += float32(r * v.gain)
		v.pos += v.step
	}
}

// ActiveBuffers reports how many asset buffers are currently playing.
func (m *Mixer) ActiveBuffers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}
