// Package song defines the catalog data model consumed by the scheduler:
// note lists (tick-based, optionally tempo-mapped), lane notes for the
// rendered highway, and the tick-to-time conversion shared by both.
package song

import (
	"fmt"
	"math"
)

// Lane identifies the instrument a note is routed to.
type Lane string

const (
	LaneGuitar Lane = "guitar"
	LaneBass   Lane = "bass"
	LaneDrums  Lane = "drums"
)

// Note is one authored note. Ticks is the note position in MIDI ticks
// (interpreted against TicksPerBeat and the tempo map, or a fixed BPM when
// no map exists). Velocity is in the MIDI 0-127 range at this boundary.
type Note struct {
	Ticks    float64
	Pitch    int
	Velocity int
	Lane     Lane
}

// TempoChange is one segment of a variable-tempo map.
type TempoChange struct {
	Tick      float64
	UsPerBeat float64
}

// Song is a catalog entry. Notes must be sorted ascending by Ticks.
// DurationSec of zero means the natural end is unknown; Difficulty below
// zero means unset (the generator substitutes its default), so that an
// explicit difficulty of 0 stays meaningful.
type Song struct {
	ID           string
	Title        string
	BPM          float64
	TicksPerBeat int
	Notes        []Note
	TempoMap     []TempoChange
	DurationSec  float64
	Difficulty   int
}

// HasNotes reports whether the song carries authored note data, as opposed
// to bare metadata for the procedural generator.
func (s Song) HasNotes() bool { return len(s.Notes) > 0 }

// EffectiveDifficulty resolves the unset sentinel to the default tier.
func (s Song) EffectiveDifficulty() int {
	if s.Difficulty < 0 {
		return 2
	}
	return s.Difficulty
}

// TimeFromTicks converts a tick position to seconds by integrating the
// tempo map segment by segment: each segment contributes
// segmentTicks * usPerBeat / ticksPerBeat microseconds. Returns 0 for an
// empty map.
func TimeFromTicks(ticks float64, ticksPerBeat int, tempoMap []TempoChange) float64 {
	if len(tempoMap) == 0 || ticksPerBeat <= 0 {
		return 0
	}
	tpb := float64(ticksPerBeat)
	timeUs := 0.0
	currentTick := 0.0
	for i := range tempoMap {
		if currentTick >= ticks {
			break
		}
		endTick := ticks
		if i+1 < len(tempoMap) {
			endTick = tempoMap[i+1].Tick
		}
		segmentTicks := math.Min(endTick, ticks) - currentTick
		if segmentTicks > 0 {
			timeUs += segmentTicks * tempoMap[i].UsPerBeat / tpb
			currentTick += segmentTicks
		}
	}
	return timeUs / 1e6
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name for a MIDI note number
// (middle C = 60 = "C4"). Used only for logging.
func NoteName(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

// MidiToFreq converts a MIDI note number to a frequency in Hz (A4 = 440).
func MidiToFreq(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}
