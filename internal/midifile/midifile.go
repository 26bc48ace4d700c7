// Package midifile parses Standard MIDI Files into the catalog song model.
// Only note-on events and tempo changes are extracted; everything is merged
// into one tick-sorted note list with a shared tempo map.
package midifile

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/neurotoxic/gigaudio/internal/song"
)

// Channel 10 (0-indexed 9) is percussion in General MIDI.
const percussionChannel = 9

// bassSplitPitch routes melodic notes below A2 to the bass lane.
const bassSplitPitch = 45

// Parse reads an SMF file and flattens it into a Song. Tempo events from
// every track feed one merged tempo map; note-on events with velocity zero
// are treated as note-offs and skipped. Melodic channels route to guitar or
// bass by pitch; channel 10 routes to drums.
func Parse(data []byte) (song.Song, error) {
	var s song.Song
	f, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return s, fmt.Errorf("midifile: read: %w", err)
	}
	ticks, ok := f.TimeFormat.(smf.MetricTicks)
	if !ok {
		return s, fmt.Errorf("midifile: unsupported time format %v", f.TimeFormat)
	}
	s.TicksPerBeat = int(ticks.Resolution())
	if s.TicksPerBeat <= 0 {
		return s, fmt.Errorf("midifile: invalid resolution %d", s.TicksPerBeat)
	}

	for _, track := range f.Tracks {
		absTicks := uint32(0)
		for _, ev := range track {
			absTicks += ev.Delta
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				if bpm > 0 {
					s.TempoMap = append(s.TempoMap, song.TempoChange{
						Tick:      float64(absTicks),
						UsPerBeat: 60e6 / bpm,
					})
				}
				continue
			}
			var ch, key, vel uint8
			if !ev.Message.GetNoteOn(&ch, &key, &vel) || vel == 0 {
				continue
			}
			lane := song.LaneGuitar
			switch {
			case ch == percussionChannel:
				lane = song.LaneDrums
			case int(key) < bassSplitPitch:
				lane = song.LaneBass
			}
			s.Notes = append(s.Notes, song.Note{
				Ticks:    float64(absTicks),
				Pitch:    int(key),
				Velocity: int(vel),
				Lane:     lane,
			})
		}
	}
	if len(s.Notes) == 0 {
		return s, fmt.Errorf("midifile: no notes")
	}

	sort.SliceStable(s.TempoMap, func(i, j int) bool { return s.TempoMap[i].Tick < s.TempoMap[j].Tick })
	if len(s.TempoMap) == 0 || s.TempoMap[0].Tick > 0 {
		// Files without an initial tempo event default to 120 BPM.
		s.TempoMap = append([]song.TempoChange{{Tick: 0, UsPerBeat: 500000}}, s.TempoMap...)
	}
	s.BPM = 60e6 / s.TempoMap[0].UsPerBeat
	sort.SliceStable(s.Notes, func(i, j int) bool { return s.Notes[i].Ticks < s.Notes[j].Ticks })

	last := s.Notes[len(s.Notes)-1]
	s.DurationSec = song.TimeFromTicks(last.Ticks, s.TicksPerBeat, s.TempoMap) + 2
	s.Difficulty = -1
	return s, nil
}
