// Package voices defines the instrument contract between the scheduler and
// the audio backend, and the fixed percussion mapping table.
package voices

// Voice is one synthesized or sampled instrument output. Pitch is a MIDI
// note number below 128 and a raw frequency in Hz at or above it (metallic
// voices like hi-hats are addressed by frequency). Velocity is normalized
// 0-1; the MIDI 0-127 range is converted at the ingestion boundary.
type Voice interface {
	Trigger(pitch float64, durationSec float64, whenSec float64, velocity float64)
}

// Note duration clamps applied at the trigger boundary. The lower bound
// avoids zero-length envelopes; the upper bound caps stuck sustain from
// malformed files.
const (
	MinNoteDurationSec = 0.05
	MaxNoteDurationSec = 10
)

// DrumKit bundles the four percussion voices.
type DrumKit struct {
	Kick  Voice
	Snare Voice
	HiHat Voice
	Crash Voice
}

func (k *DrumKit) Complete() bool {
	return k != nil && k.Kick != nil && k.Snare != nil && k.HiHat != nil && k.Crash != nil
}

// Set is the full instrument complement the scheduler needs. SFX is
// optional; the other three are required to start a song.
type Set struct {
	Guitar Voice
	Bass   Voice
	Drums  *DrumKit
	SFX    Voice
}

func (s Set) Complete() bool {
	return s.Guitar != nil && s.Bass != nil && s.Drums.Complete()
}

// ClampDuration applies the note duration bounds. Non-positive values get
// the minimum.
func ClampDuration(sec float64) float64 {
	if !(sec > MinNoteDurationSec) {
		return MinNoteDurationSec
	}
	if sec > MaxNoteDurationSec {
		return MaxNoteDurationSec
	}
	return sec
}
