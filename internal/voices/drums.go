package voices

// drumVoice selects which kit voice a percussion pitch fires.
type drumVoice int

const (
	drumKick drumVoice = iota
	drumSnare
	drumHiHat
	drumCrash
)

// drumEntry pins the exact trigger shape for one General MIDI percussion
// pitch: the kit voice, the tone pitch (kick) or frequency in Hz (metallic
// voices), the duration in beats, and the velocity scale.
type drumEntry struct {
	voice         drumVoice
	pitch         float64
	durationBeats float64
	velScale      float64
}

// MIDI note numbers for the kick tone pitches (C4 = 60).
const (
	pitchC1 = 24
	pitchG1 = 31
	pitchD2 = 38
	pitchA2 = 45
)

// drumTable maps General MIDI percussion pitches to kit voices. Toms route
// to the kick at higher tones, rides to the hi-hat at a lower frequency.
// This table is load-bearing: trigger call shapes are pinned by tests.
var drumTable = map[int]drumEntry{
	// Kick
	35: {drumKick, pitchC1, 0.5, 1},
	36: {drumKick, pitchC1, 0.5, 1},
	// Snare
	37: {drumSnare, 0, 0.125, 0.4},
	38: {drumSnare, 0, 0.25, 1},
	40: {drumSnare, 0, 0.25, 1},
	// Closed/pedal/open hi-hat
	42: {drumHiHat, 8000, 0.125, 0.7},
	44: {drumHiHat, 8000, 0.125, 0.7},
	46: {drumHiHat, 6000, 0.25, 0.8},
	// Crash
	49: {drumCrash, 4000, 1, 0.7},
	57: {drumCrash, 4000, 1, 0.7},
	// Ride, mapped to hi-hat
	51: {drumHiHat, 5000, 0.5, 0.5},
	59: {drumHiHat, 5000, 0.5, 0.5},
	// Toms, mapped to kick
	41: {drumKick, pitchG1, 0.5, 0.8},
	43: {drumKick, pitchG1, 0.5, 0.8},
	45: {drumKick, pitchD2, 0.5, 0.7},
	47: {drumKick, pitchD2, 0.5, 0.7},
	48: {drumKick, pitchA2, 0.5, 0.6},
	50: {drumKick, pitchA2, 0.5, 0.6},
}

// PlayDrumNote triggers the kit voice mapped to a percussion pitch.
// Unknown percussion falls back to a soft closed hi-hat. secondsPerBeat
// converts the table's beat durations to seconds at the current tempo.
func PlayDrumNote(kit *DrumKit, midiPitch int, whenSec float64, velocity float64, secondsPerBeat float64) {
	if kit == nil {
		return
	}
	entry, ok := drumTable[midiPitch]
	if !ok {
		if kit.HiHat != nil {
			kit.HiHat.Trigger(8000, 0.125*secondsPerBeat, whenSec, velocity*0.4)
		}
		return
	}
	dur := entry.durationBeats * secondsPerBeat
	vel := velocity * entry.velScale
	switch entry.voice {
	case drumKick:
		if kit.Kick != nil {
			kit.Kick.Trigger(entry.pitch, dur, whenSec, vel)
		}
	case drumSnare:
		if kit.Snare != nil {
			kit.Snare.Trigger(0, dur, whenSec, vel)
		}
	case drumHiHat:
		if kit.HiHat != nil {
			kit.HiHat.Trigger(entry.pitch, dur, whenSec, vel)
		}
	case drumCrash:
		if kit.Crash != nil {
			kit.Crash.Trigger(entry.pitch, dur, whenSec, vel)
		}
	}
}
