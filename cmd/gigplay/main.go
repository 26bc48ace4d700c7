package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"github.com/neurotoxic/gigaudio"
	"github.com/neurotoxic/gigaudio/internal/audiodev"
	"github.com/neurotoxic/gigaudio/internal/log"
	"github.com/neurotoxic/gigaudio/internal/midifile"
	"github.com/neurotoxic/gigaudio/internal/song"
	"github.com/neurotoxic/gigaudio/internal/synth"
	"github.com/neurotoxic/gigaudio/internal/transport"
)

func main() {
	var (
		midiPath   = pflag.String("file", "", "path to a Standard MIDI File")
		procedural = pflag.Bool("procedural", false, "play the procedural riff generator")
		difficulty = pflag.Int("difficulty", -1, "difficulty tier 0-5 (-1 = default)")
		bpm        = pflag.Float64("bpm", 0, "tempo override (0 = from file or difficulty)")
		duration   = pflag.Float64("duration", 20, "playback duration in seconds")
		volume     = pflag.Float64("volume", 1.0, "master volume scalar")
		sampleRate = pflag.Int("sample-rate", 48000, "output sample rate")
		outPath    = pflag.String("out", "", "render to a WAV file instead of playing")
		dump       = pflag.Bool("dump", false, "dump the event schedule and exit")
		logLevel   = pflag.String("log-level", "info", "log level: debug|info|warn|error|none")
	)
	pflag.Parse()

	logger := log.New(os.Stderr, log.LevelFromString(*logLevel))

	s, err := resolveSong(*midiPath, *procedural, *difficulty, *bpm, *duration)
	if err != nil {
		logger.Errorf("gigplay: %v", err)
		os.Exit(1)
	}

	if *dump {
		schedule, skipped := gigaudio.BuildEventSchedule(s)
		fmt.Printf("%d events (%d skipped)\n", len(schedule), skipped)
		spew.Fdump(os.Stdout, schedule)
		return
	}

	if *outPath != "" {
		var samples []float32
		if s.HasNotes() {
			samples = gigaudio.RenderSong(s, *sampleRate, *duration)
		} else {
			samples = gigaudio.RenderProcedural(s, *sampleRate, *duration, nil)
		}
		if samples == nil {
			logger.Errorf("gigplay: render failed")
			os.Exit(1)
		}
		wav := gigaudio.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*outPath, wav, 0o644); err != nil {
			logger.Errorf("gigplay: write %s: %v", *outPath, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%.1fs)\n", *outPath, *duration)
		return
	}

	synthEng := synth.NewEngine(*sampleRate)
	synthEng.SetMasterGain(0.5 * *volume)
	trans := transport.New(transport.ClockFunc(synthEng.NowSec))
	mixer := audiodev.NewMixer(synthEng, trans)
	engine := gigaudio.NewEngine(
		gigaudio.WithLogger(logger),
		gigaudio.WithClock(transport.ClockFunc(synthEng.NowSec)),
		gigaudio.WithTransport(trans),
		gigaudio.WithVoices(synthEng.VoiceSet()),
		gigaudio.WithBufferPlayer(mixer),
		gigaudio.WithUnlocker(audiodev.NewContextUnlocker(*sampleRate)),
	)

	out, err := audiodev.NewOutput(*sampleRate, mixer)
	if err != nil {
		logger.Errorf("gigplay: audio output: %v", err)
		os.Exit(1)
	}
	out.Start()
	defer out.Close()

	done := make(chan struct{})
	opts := gigaudio.StartOptions{OnEnded: func() { close(done) }}
	ctx := context.Background()
	var started bool
	if s.HasNotes() {
		started = engine.StartSong(ctx, s, 0, opts)
	} else {
		started = engine.StartMetalGenerator(ctx, s, 0, opts)
	}
	if !started {
		logger.Errorf("gigplay: playback did not start")
		os.Exit(1)
	}

	select {
	case <-done:
	case <-time.After(time.Duration((*duration + 1) * float64(time.Second))):
	}
	engine.Stop()
}

func resolveSong(midiPath string, procedural bool, difficulty int, bpm, duration float64) (song.Song, error) {
	if midiPath != "" {
		data, err := os.ReadFile(midiPath)
		if err != nil {
			return song.Song{}, err
		}
		s, err := midifile.Parse(data)
		if err != nil {
			return song.Song{}, err
		}
		s.ID = midiPath
		if bpm > 0 {
			s.BPM = bpm
		}
		if difficulty >= 0 {
			s.Difficulty = difficulty
		}
		return s, nil
	}
	if !procedural {
		return song.Song{}, fmt.Errorf("nothing to play: pass --file or --procedural")
	}
	return song.Song{
		ID:          "procedural",
		Title:       "Procedural Riff",
		BPM:         bpm,
		Difficulty:  difficulty,
		DurationSec: duration,
	}, nil
}
