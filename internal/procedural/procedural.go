// Package procedural generates the fallback backing riff for songs that
// ship without authored note data. The output is fully determined by the
// song's difficulty, its BPM, and the injected rng; nothing here reads an
// ambient random source.
package procedural

import (
	"math"

	"github.com/neurotoxic/gigaudio/internal/voices"
)

// Riff pitch palette (MIDI, C4 = 60). Low E is the riff anchor; the drum
// logic keys kicks off it.
const (
	PitchE2      = 40
	PitchF2      = 41
	PitchG2      = 43
	PitchASharp2 = 46
	PitchC3      = 48
	PitchDSharp3 = 51
	PitchE3      = 52
)

// PatternSteps is the riff length in 16th-note steps.
const PatternSteps = 16

// Rest marks an empty pattern step.
const Rest = 0

// DefaultBPM derives the generator tempo: the song's BPM when set,
// otherwise 80 + difficulty*30, clamped positive.
func DefaultBPM(bpm float64, difficulty int) float64 {
	if bpm <= 0 {
		bpm = 80 + float64(difficulty)*30
	}
	return math.Max(1, bpm)
}

// GenerateRiffPattern builds one repeating 16-step riff. Density scales
// with difficulty (0.3 + 0.1*diff). Low tiers stay on the low E with
// occasional octave jumps; mid tiers add F/G chugs; high tiers pull from
// the full palette.
func GenerateRiffPattern(difficulty int, rng func() float64) []int {
	density := 0.3 + float64(difficulty)*0.1
	pattern := make([]int, 0, PatternSteps)
	hard := []int{PitchE2, PitchASharp2, PitchF2, PitchC3, PitchDSharp3}

	for i := 0; i < PatternSteps; i++ {
		if rng() >= density {
			pattern = append(pattern, Rest)
			continue
		}
		switch {
		case difficulty <= 2:
			if rng() > 0.8 {
				pattern = append(pattern, PitchE3)
			} else {
				pattern = append(pattern, PitchE2)
			}
		case difficulty <= 4:
			if rng() > 0.7 {
				if rng() > 0.5 {
					pattern = append(pattern, PitchF2)
				} else {
					pattern = append(pattern, PitchG2)
				}
			} else {
				pattern = append(pattern, PitchE2)
			}
		default:
			idx := int(rng() * float64(len(hard)))
			if idx >= len(hard) {
				idx = len(hard) - 1
			}
			if idx < 0 {
				idx = 0
			}
			pattern = append(pattern, hard[idx])
		}
	}
	return pattern
}

// PlayDrums fires the drum voices for one generator step. At the top
// difficulty the kick runs every step with hi-hat wash; below that, kicks
// land on low-E riff steps or by difficulty-scaled chance, snares are rare
// accents, and the hi-hat keeps to the beat phase window.
func PlayDrums(kit *voices.DrumKit, whenSec float64, difficulty int, riffPitch int, rng func() float64, secondsPerBeat float64) {
	if !kit.Complete() {
		return
	}
	if difficulty == 5 {
		kit.Kick.Trigger(24, 0.25*secondsPerBeat, whenSec, 1)
		if rng() > 0.5 {
			kit.Snare.Trigger(0, 0.25*secondsPerBeat, whenSec, 1)
		}
		kit.HiHat.Trigger(8000, 0.125*secondsPerBeat, whenSec, 0.5)
		return
	}
	if riffPitch == PitchE2 || rng() < float64(difficulty)*0.1 {
		kit.Kick.Trigger(24, 0.5*secondsPerBeat, whenSec, 1)
	}
	if rng() > 0.9 {
		kit.Snare.Trigger(0, 0.25*secondsPerBeat, whenSec, 1)
	}
	// Hi-hat on the beat; the 0.1 lower bound is intentional for musical
	// density.
	beatPhase := math.Mod(whenSec, 0.25)
	if beatPhase < 0.1 || beatPhase > 0.24 {
		kit.HiHat.Trigger(8000, 0.125*secondsPerBeat, whenSec, 1)
	}
}
