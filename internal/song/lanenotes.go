package song

import (
	"math"
	"sort"

	"github.com/neurotoxic/gigaudio/internal/log"
)

// LaneNote is one note on the rendered highway. Times are gig-clock
// milliseconds including the lead-in.
type LaneNote struct {
	TimeMs    float64
	LaneIndex int
	Hit       bool
	Visible   bool
	SongID    string
}

// DefaultLeadInMs is the time before the first note reaches the hit line.
const DefaultLeadInMs = 2000

var laneIndexByLane = map[Lane]int{
	LaneGuitar: 0,
	LaneDrums:  1,
	LaneBass:   2,
}

// LaneNotes extracts playable highway notes from an authored song. The
// density filter keeps every 4th note, and simultaneous notes (chords)
// collapse to a single lane note so gameplay stays single-press.
func LaneNotes(s Song, leadInMs float64, logger *log.Logger) []LaneNote {
	if len(s.Notes) == 0 {
		return nil
	}
	tpb := s.TicksPerBeat
	if tpb <= 0 {
		tpb = 480
	}

	sorted := make([]Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		if math.IsNaN(n.Ticks) || math.IsInf(n.Ticks, 0) {
			continue
		}
		sorted = append(sorted, n)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ticks < sorted[j].Ticks })

	notes := make([]LaneNote, 0, len(sorted)/4+1)
	lastTime := math.NaN()
	for i, n := range sorted {
		if i%4 != 0 {
			continue
		}
		laneIndex, ok := laneIndexByLane[n.Lane]
		if !ok {
			if logger != nil {
				logger.Warnf("lane notes: unknown lane %q for note at tick %.0f, skipping", n.Lane, n.Ticks)
			}
			continue
		}
		timeMs := leadInMs + TimeFromTicks(n.Ticks, tpb, s.TempoMap)*1000
		// Collapse chords: anything within 1ms of the previous note is the
		// same press.
		if !math.IsNaN(lastTime) && math.Abs(timeMs-lastTime) <= 1 {
			continue
		}
		notes = append(notes, LaneNote{
			TimeMs:    timeMs,
			LaneIndex: laneIndex,
			Visible:   true,
			SongID:    s.ID,
		})
		lastTime = timeMs
	}
	return notes
}

// GenerateLaneNotes produces a highway for songs without authored notes.
// Spawn rules scale with difficulty: easy sticks to downbeats, medium adds
// offbeats, hard streams at ~70% density. The lane cycle is fixed so runs
// are comparable; high difficulty adds random lane variation.
func GenerateLaneNotes(s Song, leadInMs float64, rng func() float64) []LaneNote {
	if s.BPM <= 0 || s.DurationSec <= 0 {
		return nil
	}
	beatIntervalMs := 60000 / s.BPM
	songDurationMs := s.DurationSec * 1000
	totalBeats := int(songDurationMs / beatIntervalMs)
	diff := s.EffectiveDifficulty()
	if diff == 0 {
		diff = 2
	}

	laneCycle := [4]int{1, 0, 2, 0}
	notes := make([]LaneNote, 0, totalBeats)
	for i := 0; i < totalBeats; i++ {
		noteTime := leadInMs + float64(i)*beatIntervalMs
		if noteTime >= leadInMs+songDurationMs {
			continue
		}
		beatInBar := i % 4
		spawn := false
		switch {
		case diff <= 2:
			spawn = beatInBar == 0 || (i%8 == 4 && rng() > 0.2)
		case diff <= 4:
			spawn = beatInBar == 0 || beatInBar == 2 || rng() > 0.6
		default:
			spawn = rng() > 0.3
		}
		if !spawn {
			continue
		}
		laneIndex := laneCycle[i%4]
		if diff > 3 && rng() > 0.7 {
			laneIndex = int(rng() * 3)
			if laneIndex > 2 {
				laneIndex = 2
			}
		}
		notes = append(notes, LaneNote{
			TimeMs:    noteTime,
			LaneIndex: laneIndex,
			Visible:   true,
			SongID:    s.ID,
		})
	}
	return notes
}

// CheckHit returns the first visible, unhit note in the lane within the hit
// window, or nil.
func CheckHit(notes []LaneNote, laneIndex int, elapsedMs, hitWindowMs float64) *LaneNote {
	for i := range notes {
		n := &notes[i]
		if n.Visible && !n.Hit && n.LaneIndex == laneIndex && math.Abs(n.TimeMs-elapsedMs) < hitWindowMs {
			return n
		}
	}
	return nil
}
