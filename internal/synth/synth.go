// Package synth renders the instrument voices: plucked guitar and bass,
// and the drum kit (kick, snare, hi-hat, crash). Triggers are scheduled on
// the engine's own sample clock, so a trigger with a future whenSec starts
// on the exact frame, not at block granularity.
package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/neurotoxic/gigaudio/internal/voices"
)

const twoPi = math.Pi * 2

type voiceKind int

const (
	kindGuitar voiceKind = iota
	kindBass
	kindKick
	kindSnare
	kindHiHat
	kindCrash
	kindSFX
)

type voice struct {
	active     bool
	kind       voiceKind
	startFrame int64
	endFrame   int64
	freq       float64 // current oscillator/center frequency
	freqStep   float64 // per-frame multiplier for kick pitch drop
	minFreq    float64
	phase      float64
	env        float64
	attackStep float64
	decayMul   float64 // per-frame exponential decay after attack
	amp        float64
	lpState    float64
	hpState    float64
	lfsr       uint32
}

// Engine is the software synthesizer. All triggers are safe for concurrent
// use; rendering happens on the audio callback goroutine.
type Engine struct {
	mu         sync.Mutex
	sampleRate float64
	voices     []voice
	frame      int64
	masterGain uint64
}

const defaultPolyphony = 48

func NewEngine(sampleRate int) *Engine {
	return &Engine{
		sampleRate: float64(sampleRate),
		voices:     make([]voice, defaultPolyphony),
		masterGain: math.Float64bits(0.5),
	}
}

func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// NowSec returns the engine's sample clock in seconds. This is the time
// base every Trigger whenSec is interpreted against.
func (e *Engine) NowSec() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.frame) / e.sampleRate
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

// resolveFreq maps the Voice pitch convention: MIDI note numbers below 128,
// raw Hz at or above.
func resolveFreq(pitch float64) float64 {
	if pitch >= 128 {
		return pitch
	}
	return 440 * math.Pow(2, (pitch-69)/12)
}

func (e *Engine) trigger(kind voiceKind, pitch, durationSec, whenSec, velocity float64) {
	if velocity <= 0 {
		return
	}
	if velocity > 1 {
		velocity = 1
	}
	durationSec = voices.ClampDuration(durationSec)

	e.mu.Lock()
	defer e.mu.Unlock()
	start := int64(whenSec * e.sampleRate)
	if start < e.frame {
		start = e.frame
	}
	v := e.stealVoice()
	freq := resolveFreq(pitch)
	*v = voice{
		active:     true,
		kind:       kind,
		startFrame: start,
		endFrame:   start + int64(durationSec*e.sampleRate),
		freq:       freq,
		amp:        velocity,
		lfsr:       0x1FFF,
	}
	sr := e.sampleRate
	switch kind {
	case kindKick:
		// Pitch drops an octave and a half over the hit.
		v.freq = freq * 3
		v.minFreq = math.Max(freq, 30)
		v.freqStep = math.Pow(v.minFreq/v.freq, 1/(0.06*sr))
		v.attackStep = 1 / (0.002 * sr)
		v.decayMul = decayFor(durationSec, sr)
	case kindSnare:
		v.attackStep = 1 / (0.001 * sr)
		v.decayMul = decayFor(math.Min(durationSec, 0.3), sr)
	case kindHiHat:
		v.attackStep = 1 / (0.001 * sr)
		v.decayMul = decayFor(math.Min(durationSec, 0.25), sr)
	case kindCrash:
		v.attackStep = 1 / (0.002 * sr)
		v.decayMul = decayFor(durationSec, sr)
	case kindBass:
		v.attackStep = 1 / (0.004 * sr)
		v.decayMul = decayFor(durationSec, sr)
	default:
		v.attackStep = 1 / (0.003 * sr)
		v.decayMul = decayFor(durationSec, sr)
	}
}

// decayFor picks an exponential decay multiplier that reaches roughly -60dB
// at the note end.
func decayFor(durationSec float64, sampleRate float64) float64 {
	frames := durationSec * sampleRate
	if frames < 1 {
		frames = 1
	}
	return math.Pow(0.001, 1/frames)
}

func (e *Engine) stealVoice() *voice {
	for i := range e.voices {
		if !e.voices[i].active {
			return &e.voices[i]
		}
	}
	quiet := 0
	minEnv := e.voices[0].env * e.voices[0].amp
	for i := 1; i < len(e.voices); i++ {
		if lvl := e.voices[i].env * e.voices[i].amp; lvl < minEnv {
			minEnv = lvl
			quiet = i
		}
	}
	return &e.voices[quiet]
}

func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

// Process renders interleaved stereo frames into dst.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	gain := e.masterGainValue()
	for i := 0; i+1 < len(dst); i += 2 {
		l, r := e.renderFrameLocked(gain)
		dst[i] = l
		dst[i+1] = r
	}
}

// RenderFrame renders one stereo frame. Mostly for offline rendering and
// tests; playback goes through Process.
func (e *Engine) RenderFrame() (float32, float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderFrameLocked(e.masterGainValue())
}

func (e *Engine) renderFrameLocked(gain float64) (float32, float32) {
	var l, r float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active || v.startFrame > e.frame {
			continue
		}
		s := e.renderVoice(v)
		if !v.active {
			continue
		}
		// Slight stereo spread per kind keeps the kit out of the riff's way.
		switch v.kind {
		case kindHiHat:
			l += s * 0.7
			r += s * 1.0
		case kindCrash:
			l += s * 1.0
			r += s * 0.7
		default:
			l += s
			r += s
		}
	}
	e.frame++
	l *= gain
	r *= gain
	return float32(clamp(l, -1, 1)), float32(clamp(r, -1, 1))
}

func (e *Engine) renderVoice(v *voice) float64 {
	// Envelope: linear attack, exponential decay, hard stop past the end.
	if v.attackStep > 0 {
		v.env += v.attackStep
		if v.env >= 1 {
			v.env = 1
			v.attackStep = 0
		}
	} else {
		v.env *= v.decayMul
	}
	if (v.attackStep == 0 && v.env < 0.0005) || e.frame > v.endFrame+int64(0.05*e.sampleRate) {
		v.active = false
		return 0
	}

	var s float64
	switch v.kind {
	case kindKick:
		s = math.Sin(v.phase)
		v.phase += twoPi * v.freq / e.sampleRate
		if v.freq > v.minFreq {
			v.freq *= v.freqStep
		}
		s *= 1.4
	case kindSnare:
		n := v.noise()
		// Tone component under the noise gives the snare its body.
		tone := math.Sin(v.phase) * 0.4
		v.phase += twoPi * 190 / e.sampleRate
		s = n*0.8 + tone
	case kindHiHat, kindCrash:
		n := v.noise()
		// Resonant one-pole pair approximates a metallic band around freq.
		alpha := lpAlpha(v.freq, e.sampleRate)
		v.lpState += alpha * (n - v.lpState)
		hp := n - v.lpState
		s = hp
		if v.kind == kindCrash {
			s = hp*0.7 + n*0.3
		}
		s *= 0.8
	case kindBass:
		// Sine plus a soft saw for growl.
		s = math.Sin(v.phase)*0.7 + sawSample(v.phase)*0.3
		v.phase += twoPi * v.freq / e.sampleRate
	default:
		// Guitar and SFX: saw/square blend through a soft clip.
		raw := sawSample(v.phase)*0.6 + squareSample(v.phase)*0.4
		s = math.Tanh(raw * 2.2)
		v.phase += twoPi * v.freq / e.sampleRate
	}
	if v.phase > twoPi {
		v.phase -= twoPi
	}
	return s * v.env * v.amp * 0.35
}

func (v *voice) noise() float64 {
	v.lfsr = (v.lfsr >> 1) ^ (-(v.lfsr & 1) & 0xB400)
	return float64(v.lfsr)/float64(0x7FFF)*2 - 1
}

func lpAlpha(cutoff, sampleRate float64) float64 {
	if cutoff <= 0 {
		return 1
	}
	if cutoff > sampleRate/2 {
		cutoff = sampleRate / 2
	}
	rc := 1 / (twoPi * cutoff)
	dt := 1 / sampleRate
	return dt / (rc + dt)
}

func sawSample(phase float64) float64 {
	return 1 - 2*math.Mod(phase, twoPi)/twoPi
}

func squareSample(phase float64) float64 {
	if math.Mod(phase, twoPi) < math.Pi {
		return 1
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type triggerVoice struct {
	engine *Engine
	kind   voiceKind
}

func (t triggerVoice) Trigger(pitch, durationSec, whenSec, velocity float64) {
	t.engine.trigger(t.kind, pitch, durationSec, whenSec, velocity)
}

// VoiceSet exposes the engine's instruments behind the scheduler's Voice
// interface.
func (e *Engine) VoiceSet() voices.Set {
	return voices.Set{
		Guitar: triggerVoice{e, kindGuitar},
		Bass:   triggerVoice{e, kindBass},
		Drums: &voices.DrumKit{
			Kick:  triggerVoice{e, kindKick},
			Snare: triggerVoice{e, kindSnare},
			HiHat: triggerVoice{e, kindHiHat},
			Crash: triggerVoice{e, kindCrash},
		},
		SFX: triggerVoice{e, kindSFX},
	}
}
