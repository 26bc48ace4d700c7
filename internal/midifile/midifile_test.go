package midifile

import (
	"bytes"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/neurotoxic/gigaudio/internal/song"
)

func writeSMF(t *testing.T, build func(tr *smf.Track)) []byte {
	t.Helper()
	f := smf.New()
	f.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	build(&tr)
	tr.Close(0)
	if err := f.Add(tr); err != nil {
		t.Fatalf("add track: %v", err)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return buf.Bytes()
}

func TestParseNotesAndTempo(t *testing.T) {
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, smf.MetaTempo(120))
		tr.Add(0, midi.NoteOn(0, 60, 100))
		tr.Add(480, midi.NoteOff(0, 60))
		tr.Add(0, midi.NoteOn(0, 64, 80))
		tr.Add(480, midi.NoteOff(0, 64))
	})
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.TicksPerBeat != 480 {
		t.Fatalf("resolution = %d, want 480", s.TicksPerBeat)
	}
	if len(s.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(s.Notes))
	}
	if s.Notes[0].Ticks != 0 || s.Notes[0].Pitch != 60 || s.Notes[0].Velocity != 100 {
		t.Fatalf("first note = %+v", s.Notes[0])
	}
	if s.Notes[1].Ticks != 480 || s.Notes[1].Pitch != 64 {
		t.Fatalf("second note = %+v", s.Notes[1])
	}
	if math.Abs(s.BPM-120) > 1e-6 {
		t.Fatalf("BPM = %v, want 120", s.BPM)
	}
	if len(s.TempoMap) != 1 || s.TempoMap[0].UsPerBeat != 500000 {
		t.Fatalf("tempo map = %+v", s.TempoMap)
	}
	// One beat at 120 BPM lands at 0.5s; duration includes the 2s tail.
	if got := song.TimeFromTicks(480, s.TicksPerBeat, s.TempoMap); got != 0.5 {
		t.Fatalf("second note time = %v, want 0.5s", got)
	}
	if s.DurationSec != 2.5 {
		t.Fatalf("duration = %v, want 2.5", s.DurationSec)
	}
}

func TestParseLaneRouting(t *testing.T) {
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, smf.MetaTempo(120))
		tr.Add(0, midi.NoteOn(0, 60, 100)) // melodic high: guitar
		tr.Add(0, midi.NoteOn(0, 40, 100)) // melodic low: bass
		tr.Add(0, midi.NoteOn(9, 36, 100)) // channel 10: drums
	})
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lanes := map[int]song.Lane{}
	for _, n := range s.Notes {
		lanes[n.Pitch] = n.Lane
	}
	if lanes[60] != song.LaneGuitar {
		t.Errorf("pitch 60 lane = %q, want guitar", lanes[60])
	}
	if lanes[40] != song.LaneBass {
		t.Errorf("pitch 40 lane = %q, want bass", lanes[40])
	}
	if lanes[36] != song.LaneDrums {
		t.Errorf("percussion lane = %q, want drums", lanes[36])
	}
}

func TestParseSkipsZeroVelocityNoteOns(t *testing.T) {
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, midi.NoteOn(0, 60, 100))
		tr.Add(480, midi.NoteOn(0, 60, 0)) // running-status note-off
	})
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.Notes) != 1 {
		t.Fatalf("expected zero-velocity note-on skipped, got %d notes", len(s.Notes))
	}
}

func TestParseDefaultsTempoWhenMissing(t *testing.T) {
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, midi.NoteOn(0, 60, 100))
		tr.Add(480, midi.NoteOff(0, 60))
	})
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.TempoMap) == 0 || s.TempoMap[0].Tick != 0 || s.TempoMap[0].UsPerBeat != 500000 {
		t.Fatalf("expected default 120 BPM tempo entry, got %+v", s.TempoMap)
	}
}

func TestParseSortsMergedNotes(t *testing.T) {
	f := smf.New()
	f.TimeFormat = smf.MetricTicks(480)
	var tr1, tr2 smf.Track
	tr1.Add(0, smf.MetaTempo(120))
	tr1.Add(960, midi.NoteOn(0, 60, 100))
	tr1.Close(0)
	tr2.Add(480, midi.NoteOn(0, 40, 100))
	tr2.Close(0)
	if err := f.Add(tr1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.Add(tr2); err != nil {
		t.Fatalf("add: %v", err)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.Notes) != 2 || s.Notes[0].Ticks != 480 || s.Notes[1].Ticks != 960 {
		t.Fatalf("notes not merged in tick order: %+v", s.Notes)
	}
}

func TestParseRejectsEmptyAndGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a midi file")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, smf.MetaTempo(120))
	})
	if _, err := Parse(data); err == nil {
		t.Fatalf("expected error for a file with no notes")
	}
}

func TestParseMarksDifficultyUnset(t *testing.T) {
	data := writeSMF(t, func(tr *smf.Track) {
		tr.Add(0, midi.NoteOn(0, 60, 100))
	})
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Difficulty >= 0 {
		t.Fatalf("parsed files carry no difficulty, got %d", s.Difficulty)
	}
	if s.EffectiveDifficulty() != 2 {
		t.Fatalf("effective difficulty = %d, want default 2", s.EffectiveDifficulty())
	}
}
