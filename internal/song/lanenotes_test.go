package song

import (
	"testing"
)

func tempo120() []TempoChange {
	return []TempoChange{{Tick: 0, UsPerBeat: 500000}}
}

func TestLaneNotesKeepsEveryFourth(t *testing.T) {
	s := Song{TicksPerBeat: 480, TempoMap: tempo120()}
	for i := 0; i < 16; i++ {
		s.Notes = append(s.Notes, Note{Ticks: float64(i * 480), Pitch: 40, Lane: LaneGuitar})
	}
	notes := LaneNotes(s, DefaultLeadInMs, nil)
	if len(notes) != 4 {
		t.Fatalf("expected every 4th of 16 notes = 4, got %d", len(notes))
	}
	// First kept note lands at the lead-in, second one beat * 4 later.
	if notes[0].TimeMs != DefaultLeadInMs {
		t.Fatalf("expected first note at lead-in %vms, got %v", float64(DefaultLeadInMs), notes[0].TimeMs)
	}
	if notes[1].TimeMs != DefaultLeadInMs+2000 {
		t.Fatalf("expected second note at +2000ms, got %v", notes[1].TimeMs)
	}
}

func TestLaneNotesLaneMapping(t *testing.T) {
	s := Song{TicksPerBeat: 480, TempoMap: tempo120()}
	lanes := []Lane{LaneGuitar, LaneDrums, LaneBass}
	for i, lane := range lanes {
		// Spread by 4 so the density filter keeps each one.
		s.Notes = append(s.Notes, Note{Ticks: float64(i * 4 * 480), Lane: lane})
		for j := 1; j < 4; j++ {
			s.Notes = append(s.Notes, Note{Ticks: float64((i*4+j)*480) + 0.5, Lane: "keyboard"})
		}
	}
	notes := LaneNotes(s, 0, nil)
	if len(notes) != 3 {
		t.Fatalf("expected 3 lane notes, got %d", len(notes))
	}
	want := []int{0, 1, 2}
	for i, n := range notes {
		if n.LaneIndex != want[i] {
			t.Errorf("note %d: lane index %d, want %d", i, n.LaneIndex, want[i])
		}
	}
}

func TestLaneNotesCollapsesChords(t *testing.T) {
	s := Song{TicksPerBeat: 480, TempoMap: tempo120()}
	// Eight chord tones at the same tick: the density filter keeps indices 0
	// and 4, and the 1ms collapse folds those into a single press.
	for i := 0; i < 8; i++ {
		s.Notes = append(s.Notes, Note{Ticks: 0, Pitch: 40 + i, Lane: LaneGuitar})
	}
	notes := LaneNotes(s, 0, nil)
	if len(notes) != 1 {
		t.Fatalf("expected chord collapsed to 1 note, got %d", len(notes))
	}
}

func TestGenerateLaneNotesEasyDownbeats(t *testing.T) {
	s := Song{BPM: 120, DurationSec: 8, Difficulty: 1}
	rng := func() float64 { return 0 } // suppresses the optional beat-3 spawn
	notes := GenerateLaneNotes(s, 0, rng)
	if len(notes) == 0 {
		t.Fatalf("expected some notes")
	}
	beatMs := 60000.0 / 120
	for _, n := range notes {
		beat := int(n.TimeMs / beatMs)
		if beat%4 != 0 {
			t.Fatalf("easy difficulty spawned off the downbeat at beat %d", beat)
		}
		if n.LaneIndex != 1 {
			t.Fatalf("downbeat notes must follow the lane cycle (lane 1), got %d", n.LaneIndex)
		}
	}
}

func TestGenerateLaneNotesHardStreams(t *testing.T) {
	s := Song{BPM: 120, DurationSec: 30, Difficulty: 5}
	calls := 0
	rng := func() float64 {
		calls++
		return float64(calls%10) / 10
	}
	notes := GenerateLaneNotes(s, 0, rng)
	totalBeats := int(30 * 120 / 60)
	if len(notes) < totalBeats/3 {
		t.Fatalf("hard difficulty too sparse: %d notes over %d beats", len(notes), totalBeats)
	}
}

func TestGenerateLaneNotesNeedsTempoAndDuration(t *testing.T) {
	if notes := GenerateLaneNotes(Song{BPM: 0, DurationSec: 10}, 0, func() float64 { return 0.5 }); notes != nil {
		t.Fatalf("expected nil for zero BPM")
	}
	if notes := GenerateLaneNotes(Song{BPM: 120, DurationSec: 0}, 0, func() float64 { return 0.5 }); notes != nil {
		t.Fatalf("expected nil for zero duration")
	}
}

func TestCheckHit(t *testing.T) {
	notes := []LaneNote{
		{TimeMs: 1000, LaneIndex: 0, Visible: true},
		{TimeMs: 1010, LaneIndex: 0, Visible: true},
		{TimeMs: 1000, LaneIndex: 1, Visible: true},
	}
	n := CheckHit(notes, 0, 1005, 50)
	if n == nil || n.TimeMs != 1000 {
		t.Fatalf("expected the first lane-0 note, got %+v", n)
	}
	n.Hit = true
	n = CheckHit(notes, 0, 1005, 50)
	if n == nil || n.TimeMs != 1010 {
		t.Fatalf("expected the second lane-0 note after the first was hit, got %+v", n)
	}
	if n := CheckHit(notes, 2, 1005, 50); n != nil {
		t.Fatalf("expected no hit in empty lane, got %+v", n)
	}
	if n := CheckHit(notes, 1, 2000, 50); n != nil {
		t.Fatalf("expected no hit outside the window, got %+v", n)
	}
}
