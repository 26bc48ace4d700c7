// Package gigaudio is the rhythm engine facade: song and MIDI playback
// scheduling, the procedural riff generator, gig buffer playback through the
// asset cache, and the gig clock the note highway reads every frame.
package gigaudio

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/neurotoxic/gigaudio/internal/assets"
	"github.com/neurotoxic/gigaudio/internal/log"
	"github.com/neurotoxic/gigaudio/internal/midifile"
	"github.com/neurotoxic/gigaudio/internal/procedural"
	"github.com/neurotoxic/gigaudio/internal/song"
	"github.com/neurotoxic/gigaudio/internal/timing"
	"github.com/neurotoxic/gigaudio/internal/transport"
	"github.com/neurotoxic/gigaudio/internal/voices"
)

// Transport is the scheduling surface the engine drives. Satisfied by
// *transport.Transport; tests substitute counting fakes.
type Transport interface {
	SetBPM(bpm float64)
	BPM() float64
	SecondsPerBeat() float64
	Start(atSec, offsetSec float64)
	Stop()
	Pause()
	Resume()
	Running() bool
	PositionSec() float64
	Cancel()
	SetLoop(enabled bool, startSec, endSec float64)
	ScheduleOnce(relSec float64, fn func(whenSec float64)) int
	ScheduleRepeat(intervalSec float64, fn func(whenSec float64, step int)) int
	Clear(id int)
}

var _ Transport = (*transport.Transport)(nil)

// Unlocker gates playback starts on audio-output readiness. Unlock blocks
// until output is available (or ctx is done) and reports whether playback
// may proceed.
type Unlocker interface {
	Unlock(ctx context.Context) bool
}

// UnlockerFunc adapts a function to Unlocker.
type UnlockerFunc func(ctx context.Context) bool

func (f UnlockerFunc) Unlock(ctx context.Context) bool { return f(ctx) }

// BufferPlayer plays decoded asset buffers. Satisfied by *audiodev.Mixer.
type BufferPlayer interface {
	PlayBuffer(buf *assets.Buffer, delaySec, offsetSec, durationSec float64, hasLimit bool, gain float64, onEnded func()) int
	StopBuffer(id int)
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithClock(clock transport.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithTransport(t Transport) Option {
	return func(e *Engine) { e.trans = t }
}

func WithVoices(set voices.Set) Option {
	return func(e *Engine) { e.voices = set }
}

func WithUnlocker(u Unlocker) Option {
	return func(e *Engine) { e.unlock = u }
}

// WithRNG injects the random source for the procedural generator. The
// default is math/rand's global source.
func WithRNG(rng func() float64) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithCache(cache *assets.Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

func WithBufferPlayer(bp BufferPlayer) Option {
	return func(e *Engine) { e.buffers = bp }
}

// WithMIDIFetcher sets the fetcher PlayMIDIFile retrieves SMF bytes with.
func WithMIDIFetcher(f assets.Fetcher) Option {
	return func(e *Engine) { e.midiFetcher = f }
}

// wallClock is the default time base when no sample clock is injected.
type wallClock struct{ start time.Time }

func (c wallClock) NowSec() float64 { return time.Since(c.start).Seconds() }

// StartOptions tunes StartSong / StartMetalGenerator.
type StartOptions struct {
	// OnEnded fires once when the song's known duration elapses. Ignored
	// when the song has no duration.
	OnEnded func()
}

// MIDIPlayOptions tunes PlayMIDIFile.
type MIDIPlayOptions struct {
	Loop         bool
	OffsetSec    float64 // start position; past-the-end offsets reset to 0
	StopAfterSec float64 // stop this long after the offset; <=0 or NaN means no limit
	OnEnded      func()
}

// GigOptions tunes StartGigPlayback. DurationMs of NaN or <=0 plays to the
// buffer's natural end.
type GigOptions struct {
	SeekMs     float64
	DurationMs float64
	Gain       float64
	OnEnded    func()
}

// Engine is the playback facade. One mutex serializes all state; blocking
// steps (unlock, fetch, decode) run outside it under the request-id
// discipline, so a newer start or stop always wins over an in-flight one.
type Engine struct {
	mu          sync.Mutex
	logger      *log.Logger
	clock       transport.Clock
	trans       Transport
	voices      voices.Set
	unlock      Unlocker
	rng         func() float64
	cache       *assets.Cache
	buffers     BufferPlayer
	midiFetcher assets.Fetcher

	playRequestID int64
	notesVersion  int64

	gigStartSec float64 // NaN while the gig clock is stopped
	gigOffsetMs float64

	gigFile         string
	gigOpts         GigOptions
	gigBufferID     int
	gigBaseOffsetMs float64
	gigPlaying      bool
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:      log.Discard(),
		rng:         rand.Float64,
		unlock:      UnlockerFunc(func(context.Context) bool { return true }),
		gigStartSec: math.NaN(),
		gigBufferID: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = wallClock{start: time.Now()}
	}
	if e.trans == nil {
		e.trans = transport.New(e.clock)
	}
	return e
}

// beginRequest invalidates every in-flight start and claims a new id.
func (e *Engine) beginRequest() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playRequestID++
	return e.playRequestID
}

// teardownLocked stops and clears the previous schedule and any gig buffer.
// Completes synchronously; nothing from the old schedule fires afterwards.
func (e *Engine) teardownLocked() {
	e.trans.Stop()
	e.trans.Cancel()
	e.trans.SetLoop(false, 0, 0)
	if e.buffers != nil && e.gigBufferID >= 0 {
		e.buffers.StopBuffer(e.gigBufferID)
	}
	e.gigBufferID = -1
	e.gigPlaying = false
}

// ScheduledEvent is one note placed on the transport timeline.
type ScheduledEvent struct {
	TimeSec float64
	Note    song.Note
}

// BuildEventSchedule converts a song's tick-based notes to transport
// seconds: tempo-mapped songs integrate the map, fixed-BPM songs use
// ticks/tpb * 60/bpm. Notes with non-finite or negative times are excluded;
// the count of exclusions is returned alongside the schedule.
func BuildEventSchedule(s song.Song) ([]ScheduledEvent, int) {
	tpb := s.TicksPerBeat
	if tpb <= 0 {
		tpb = 480
	}
	bpm := procedural.DefaultBPM(s.BPM, s.EffectiveDifficulty())
	spb := 60 / bpm

	events := make([]ScheduledEvent, 0, len(s.Notes))
	skipped := 0
	for _, n := range s.Notes {
		var t float64
		if len(s.TempoMap) > 0 {
			t = song.TimeFromTicks(n.Ticks, tpb, s.TempoMap)
		} else {
			t = n.Ticks / float64(tpb) * spb
		}
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			skipped++
			continue
		}
		events = append(events, ScheduledEvent{TimeSec: t, Note: n})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].TimeSec < events[j].TimeSec })
	return events, skipped
}

// StartSong schedules an authored song and starts the transport after
// max(0.1, delaySec). Returns false without touching the transport when the
// audio output stays locked, a newer request superseded this one, the
// instrument voices are incomplete, or the song has no playable notes.
func (e *Engine) StartSong(ctx context.Context, s song.Song, delaySec float64, opts StartOptions) bool {
	id := e.beginRequest()
	if !e.unlock.Unlock(ctx) {
		e.logger.Debugf("engine: audio locked, not starting %q", s.ID)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.playRequestID {
		e.logger.Debugf("engine: stale start request for %q", s.ID)
		return false
	}
	if !e.voices.Complete() {
		e.logger.Errorf("engine: instrument voices incomplete, cannot start %q", s.ID)
		return false
	}
	schedule, skipped := BuildEventSchedule(s)
	if skipped > 0 {
		e.logger.Warnf("engine: %q: %d notes with invalid times skipped", s.ID, skipped)
	}
	if len(schedule) == 0 {
		e.logger.Errorf("engine: %q has no playable notes", s.ID)
		return false
	}

	e.teardownLocked()
	e.notesVersion++

	bpm := procedural.DefaultBPM(s.BPM, s.EffectiveDifficulty())
	e.trans.SetBPM(bpm)
	spb := 60 / bpm
	for _, ev := range schedule {
		note := ev.Note
		e.trans.ScheduleOnce(ev.TimeSec, func(whenSec float64) {
			e.triggerNote(note, whenSec, spb)
		})
	}
	if opts.OnEnded != nil && s.DurationSec > 0 {
		onEnded := opts.OnEnded
		e.trans.ScheduleOnce(s.DurationSec, func(float64) { onEnded() })
	}

	startAt := e.clock.NowSec() + math.Max(0.1, delaySec)
	e.trans.Start(startAt, 0)
	e.gigStartSec = startAt
	e.gigOffsetMs = 0
	e.logger.Infof("engine: started %q: %d notes at %.0f BPM", s.ID, len(schedule), bpm)
	return true
}

// StartMetalGenerator starts the procedural riff for a song without
// authored notes. Tempo and riff shape derive from the difficulty; all
// randomness flows through the engine's RNG. Start semantics match
// StartSong.
func (e *Engine) StartMetalGenerator(ctx context.Context, s song.Song, delaySec float64, opts StartOptions) bool {
	id := e.beginRequest()
	if !e.unlock.Unlock(ctx) {
		e.logger.Debugf("engine: audio locked, not starting generator for %q", s.ID)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.playRequestID {
		e.logger.Debugf("engine: stale generator request for %q", s.ID)
		return false
	}
	if !e.voices.Complete() {
		e.logger.Errorf("engine: instrument voices incomplete, cannot start generator for %q", s.ID)
		return false
	}

	e.teardownLocked()
	e.notesVersion++

	diff := s.EffectiveDifficulty()
	bpm := procedural.DefaultBPM(s.BPM, diff)
	e.trans.SetBPM(bpm)
	spb := 60 / bpm
	pattern := procedural.GenerateRiffPattern(diff, e.rng)
	stepSec := spb / 4

	guitar := e.voices.Guitar
	bass := e.voices.Bass
	kit := e.voices.Drums
	rng := e.rng
	e.trans.ScheduleRepeat(stepSec, func(whenSec float64, step int) {
		pitch := pattern[step%len(pattern)]
		if pitch != procedural.Rest {
			guitar.Trigger(float64(pitch), voices.ClampDuration(0.25*spb), whenSec, 0.9)
			if step%4 == 0 {
				bass.Trigger(float64(pitch-12), voices.ClampDuration(0.5*spb), whenSec, 0.8)
			}
		}
		procedural.PlayDrums(kit, whenSec, diff, pitch, rng, spb)
	})
	if opts.OnEnded != nil && s.DurationSec > 0 {
		onEnded := opts.OnEnded
		e.trans.ScheduleOnce(s.DurationSec, func(float64) { onEnded() })
	}

	startAt := e.clock.NowSec() + math.Max(0.1, delaySec)
	e.trans.Start(startAt, 0)
	e.gigStartSec = startAt
	e.gigOffsetMs = 0
	e.logger.Infof("engine: started generator for %q: difficulty %d at %.0f BPM", s.ID, diff, bpm)
	return true
}

// PlayMIDIFile fetches and parses an SMF file, then schedules it with the
// same request-id discipline as StartSong. The fetch and parse run outside
// the engine lock.
func (e *Engine) PlayMIDIFile(ctx context.Context, url string, opts MIDIPlayOptions) bool {
	id := e.beginRequest()
	if e.midiFetcher == nil {
		e.logger.Errorf("engine: no MIDI fetcher configured")
		return false
	}
	if !e.unlock.Unlock(ctx) {
		e.logger.Debugf("engine: audio locked, not playing %q", url)
		return false
	}
	data, err := e.midiFetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Errorf("engine: failed to fetch MIDI %q: %v", url, err)
		return false
	}
	s, err := midifile.Parse(data)
	if err != nil {
		e.logger.Errorf("engine: failed to parse MIDI %q: %v", url, err)
		return false
	}
	s.ID = url

	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.playRequestID {
		e.logger.Debugf("engine: stale MIDI request for %q", url)
		return false
	}
	if !e.voices.Complete() {
		e.logger.Errorf("engine: instrument voices incomplete, cannot play %q", url)
		return false
	}
	schedule, skipped := BuildEventSchedule(s)
	if skipped > 0 {
		e.logger.Warnf("engine: %q: %d notes with invalid times skipped", url, skipped)
	}
	if len(schedule) == 0 {
		e.logger.Errorf("engine: %q has no playable notes", url)
		return false
	}

	e.teardownLocked()
	e.notesVersion++

	e.trans.SetBPM(s.BPM)
	spb := 60 / s.BPM
	for _, ev := range schedule {
		note := ev.Note
		e.trans.ScheduleOnce(ev.TimeSec, func(whenSec float64) {
			e.triggerNote(note, whenSec, spb)
		})
	}

	offset := opts.OffsetSec
	if math.IsNaN(offset) || offset < 0 {
		offset = 0
	}
	if s.DurationSec > 0 && offset >= s.DurationSec {
		e.logger.Warnf("engine: %q: offset %.1fs past duration %.1fs, restarting from 0", url, offset, s.DurationSec)
		offset = 0
	}
	if opts.Loop && s.DurationSec > offset {
		e.trans.SetLoop(true, offset, s.DurationSec)
	}
	if stopAfter := opts.StopAfterSec; !math.IsNaN(stopAfter) && stopAfter > 0 {
		onEnded := opts.OnEnded
		e.trans.ScheduleOnce(offset+stopAfter, func(float64) {
			e.Stop()
			if onEnded != nil {
				onEnded()
			}
		})
	} else if opts.OnEnded != nil && !opts.Loop && s.DurationSec > 0 {
		onEnded := opts.OnEnded
		e.trans.ScheduleOnce(s.DurationSec, func(float64) { onEnded() })
	}

	startAt := e.clock.NowSec() + 0.1
	e.trans.Start(startAt, offset)
	e.gigStartSec = startAt
	e.gigOffsetMs = offset * 1000
	e.logger.Infof("engine: playing %q: %d notes at %.0f BPM, offset %.1fs, loop=%v",
		url, len(schedule), s.BPM, offset, opts.Loop)
	return true
}

// triggerNote routes one note to its lane voice. Velocity converts from
// MIDI 0-127 here; the voices only ever see 0-1.
func (e *Engine) triggerNote(n song.Note, whenSec, secondsPerBeat float64) {
	vel := float64(n.Velocity) / 127
	if vel > 1 {
		vel = 1
	}
	switch n.Lane {
	case song.LaneDrums:
		voices.PlayDrumNote(e.voices.Drums, n.Pitch, whenSec, vel, secondsPerBeat)
	case song.LaneBass:
		e.voices.Bass.Trigger(float64(n.Pitch), voices.ClampDuration(0.5*secondsPerBeat), whenSec, vel)
	default:
		// Guitar notes are 16ths, bass 8ths.
		e.voices.Guitar.Trigger(float64(n.Pitch), voices.ClampDuration(0.25*secondsPerBeat), whenSec, vel)
	}
}

// StartGigPlayback plays a decoded gig buffer through the cache, windowed
// by the session's accumulated offsets plus the requested seek. Returns
// false when the output stays locked, the request goes stale, or the asset
// cannot be loaded.
func (e *Engine) StartGigPlayback(ctx context.Context, filename string, opts GigOptions) bool {
	return e.startGig(ctx, filename, opts, opts.DurationMs)
}

// startGig does the work of StartGigPlayback. sessionDurationMs is the
// duration limit as the caller originally requested it; on resume the window
// plays only the remainder, but the session keeps the full limit so later
// resumes subtract from the same baseline.
func (e *Engine) startGig(ctx context.Context, filename string, opts GigOptions, sessionDurationMs float64) bool {
	id := e.beginRequest()
	if e.cache == nil || e.buffers == nil {
		e.logger.Errorf("engine: gig playback not configured (cache or buffer player missing)")
		return false
	}
	if !e.unlock.Unlock(ctx) {
		e.logger.Debugf("engine: audio locked, not starting gig %q", filename)
		return false
	}
	buf := e.cache.Load(ctx, filename)

	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.playRequestID {
		e.logger.Debugf("engine: stale gig request for %q", filename)
		return false
	}
	if buf == nil {
		e.logger.Warnf("engine: gig audio %q unavailable", filename)
		return false
	}

	durationMs := opts.DurationMs
	if durationMs <= 0 {
		durationMs = math.NaN()
	}
	win := timing.CalculatePlaybackWindow(timing.PlaybackRequest{
		BufferDurationSec: buf.DurationSec,
		BaseOffsetMs:      e.gigBaseOffsetMs,
		SeekOffsetMs:      opts.SeekMs,
		DurationMs:        durationMs,
	})
	if win.DidResetOffsets {
		e.logger.Warnf("engine: gig %q: offset %.2fs past buffer end %.2fs, restarting from 0",
			filename, win.RequestedOffsetSeconds, buf.DurationSec)
	}
	e.gigBaseOffsetMs = win.NextBaseOffsetMs + win.NextSeekOffsetMs

	if e.gigBufferID >= 0 {
		e.buffers.StopBuffer(e.gigBufferID)
	}
	gain := opts.Gain
	if gain <= 0 {
		gain = 1
	}
	onEnded := opts.OnEnded
	e.gigBufferID = e.buffers.PlayBuffer(buf, 0, win.OffsetSeconds, win.SafeDurationSeconds, win.HasDurationLimit, gain, func() {
		e.mu.Lock()
		// Persist where the buffer ended and freeze the clock, so the
		// next start continues from here (or resets via the window
		// calculator once the accumulated offset runs past the buffer).
		endedMs := timing.GigTimeMs(timing.GigTimeInput{
			ContextTimeSec:  e.clock.NowSec(),
			StartCtxTimeSec: e.gigStartSec,
			OffsetMs:        e.gigOffsetMs,
		})
		e.gigOffsetMs = endedMs
		e.gigBaseOffsetMs = endedMs
		e.gigStartSec = math.NaN()
		e.gigPlaying = false
		e.gigBufferID = -1
		e.mu.Unlock()
		if onEnded != nil {
			onEnded()
		}
	})
	e.gigFile = filename
	e.gigOpts = opts
	e.gigOpts.DurationMs = sessionDurationMs
	e.gigPlaying = true
	e.gigStartSec = e.clock.NowSec()
	e.gigOffsetMs = win.OffsetSeconds * 1000
	e.logger.Infof("engine: gig %q playing from %.2fs", filename, win.OffsetSeconds)
	return true
}

// PauseGig freezes the gig clock and stops the buffer, remembering the
// position so ResumeGig continues from it.
func (e *Engine) PauseGig() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.gigPlaying {
		return
	}
	pausedMs := timing.GigTimeMs(timing.GigTimeInput{
		ContextTimeSec:  e.clock.NowSec(),
		StartCtxTimeSec: e.gigStartSec,
		OffsetMs:        e.gigOffsetMs,
	})
	e.gigOffsetMs = pausedMs
	e.gigBaseOffsetMs = pausedMs
	e.gigStartSec = math.NaN()
	if e.gigBufferID >= 0 {
		e.buffers.StopBuffer(e.gigBufferID)
		e.gigBufferID = -1
	}
	e.gigPlaying = false
}

// ResumeGig restarts gig playback at the paused position. A duration-limited
// excerpt resumes for only the remaining part of its window; once nothing
// remains the resume is refused.
func (e *Engine) ResumeGig(ctx context.Context) bool {
	e.mu.Lock()
	file := e.gigFile
	opts := e.gigOpts
	baseMs := e.gigBaseOffsetMs
	e.mu.Unlock()
	if file == "" {
		return false
	}
	opts.SeekMs = 0
	sessionDurationMs := opts.DurationMs
	if sessionDurationMs > 0 {
		remaining := sessionDurationMs - baseMs
		if remaining <= 0 {
			e.logger.Debugf("engine: gig %q window already elapsed, not resuming", file)
			return false
		}
		opts.DurationMs = remaining
	}
	return e.startGig(ctx, file, opts, sessionDurationMs)
}

// StopGig stops gig buffer playback and resets the session offsets.
func (e *Engine) StopGig() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gigBufferID >= 0 && e.buffers != nil {
		e.buffers.StopBuffer(e.gigBufferID)
	}
	e.gigBufferID = -1
	e.gigPlaying = false
	e.gigFile = ""
	e.gigBaseOffsetMs = 0
	e.gigOffsetMs = 0
	e.gigStartSec = math.NaN()
}

// Stop tears everything down: pending starts go stale, the transport stops
// and clears, gig playback stops, the gig clock resets.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playRequestID++
	e.teardownLocked()
	e.gigFile = ""
	e.gigBaseOffsetMs = 0
	e.gigOffsetMs = 0
	e.gigStartSec = math.NaN()
}

// Pause freezes the transport and the gig clock in place.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trans.Pause()
	e.gigOffsetMs = timing.GigTimeMs(timing.GigTimeInput{
		ContextTimeSec:  e.clock.NowSec(),
		StartCtxTimeSec: e.gigStartSec,
		OffsetMs:        e.gigOffsetMs,
	})
	e.gigStartSec = math.NaN()
}

// Resume continues from a Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trans.Resume()
	e.gigStartSec = e.clock.NowSec()
}

// StartGigClock starts the highway clock at offsetMs without any audio,
// for menus and countdowns that still scroll notes.
func (e *Engine) StartGigClock(offsetMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gigStartSec = e.clock.NowSec()
	e.gigOffsetMs = offsetMs
}

// GigTimeMs returns the current gig-clock time in milliseconds. Polled once
// per rendered frame by the highway.
func (e *Engine) GigTimeMs() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return timing.GigTimeMs(timing.GigTimeInput{
		ContextTimeSec:  e.clock.NowSec(),
		StartCtxTimeSec: e.gigStartSec,
		OffsetMs:        e.gigOffsetMs,
	})
}

// AudioTimeMs returns the audio clock in milliseconds.
func (e *Engine) AudioTimeMs() float64 {
	return e.clock.NowSec() * 1000
}

// NotesVersion increments every time a new schedule loads, so the highway
// can drop stale lane notes.
func (e *Engine) NotesVersion() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notesVersion
}

// IsNoteHittable reports whether a note at noteMs is within the hit window.
func (e *Engine) IsNoteHittable(noteMs, windowMs float64) bool {
	return math.Abs(e.GigTimeMs()-noteMs) <= windowMs
}

// PlayNoteAt fires the lane voice for a hit note. The trigger is scheduled
// on the note's beat when it sits just ahead of the clock, otherwise
// immediately.
func (e *Engine) PlayNoteAt(lane song.Lane, pitch int, velocity int, noteTimeMs float64) {
	e.mu.Lock()
	spb := e.trans.SecondsPerBeat()
	gigMs := timing.GigTimeMs(timing.GigTimeInput{
		ContextTimeSec:  e.clock.NowSec(),
		StartCtxTimeSec: e.gigStartSec,
		OffsetMs:        e.gigOffsetMs,
	})
	e.mu.Unlock()

	whenMs := timing.ScheduledHitTimeMs(timing.HitTimeInput{
		NoteTimeMs:  noteTimeMs,
		GigTimeMs:   gigMs,
		AudioTimeMs: e.AudioTimeMs(),
		MaxLeadMs:   timing.DefaultMaxLeadMs,
	})
	e.triggerNote(song.Note{Pitch: pitch, Velocity: velocity, Lane: lane}, whenMs/1000, spb)
}

// SFX names accepted by PlaySFX.
const (
	SFXHit    = "hit"
	SFXMiss   = "miss"
	SFXMenu   = "menu"
	SFXTravel = "travel"
	SFXCash   = "cash"
)

// PlaySFX fires a named interface sound. Unknown names are ignored.
func (e *Engine) PlaySFX(name string) {
	e.mu.Lock()
	sfx := e.voices.SFX
	kit := e.voices.Drums
	spb := e.trans.SecondsPerBeat()
	e.mu.Unlock()
	now := e.clock.NowSec()

	switch name {
	case SFXHit:
		if sfx != nil {
			sfx.Trigger(81, 0.25*spb, now, 0.5) // A5
		}
	case SFXMiss:
		if sfx != nil {
			sfx.Trigger(38, 0.5*spb, now, 0.6) // D2
		}
	case SFXMenu:
		if sfx != nil {
			sfx.Trigger(72, 0.125*spb, now, 0.3) // C5
		}
	case SFXTravel:
		if kit != nil && kit.Kick != nil {
			kit.Kick.Trigger(24, 0.5*spb, now, 0.5) // C1
		} else if sfx != nil {
			sfx.Trigger(31, 0.5*spb, now, 0.5) // G1
		}
	case SFXCash:
		if sfx != nil {
			sfx.Trigger(83, 0.25*spb, now, 0.4)      // B5
			sfx.Trigger(88, 0.25*spb, now+0.08, 0.4) // E6
		}
	default:
		e.logger.Debugf("engine: unknown sfx %q", name)
	}
}
