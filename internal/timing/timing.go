// Package timing holds the pure gig-clock math: elapsed gig time from two
// clock readings, and the safe playback window for excerpted or resumed
// buffer playback. Nothing here touches shared state; every function is a
// value-in/value-out calculation so the callers can pin exact numbers in
// tests.
package timing

import "math"

// GigTimeInput carries the clock readings for GigTimeMs. StartCtxTimeSec is
// NaN (or any non-finite value) while the gig clock is stopped.
type GigTimeInput struct {
	ContextTimeSec  float64
	StartCtxTimeSec float64
	OffsetMs        float64
}

// GigTimeMs returns elapsed gig time in milliseconds. When the start time is
// not finite the gig clock has not started and only the stored offset
// applies, which is what lets pause/resume work without touching the
// transport's own position.
func GigTimeMs(in GigTimeInput) float64 {
	offset := finiteOr(in.OffsetMs, 0)
	if !isFinite(in.ContextTimeSec) || !isFinite(in.StartCtxTimeSec) {
		return offset
	}
	return (in.ContextTimeSec-in.StartCtxTimeSec)*1000 + offset
}

// PlaybackRequest describes one buffer start attempt. DurationMs is NaN when
// playback should run to the natural end of the buffer.
type PlaybackRequest struct {
	BufferDurationSec float64
	BaseOffsetMs      float64
	SeekOffsetMs      float64
	DurationMs        float64
}

// PlaybackWindow is the computed start window. When DidResetOffsets is set
// the accumulated offsets ran past the buffer and the caller must persist
// NextBaseOffsetMs/NextSeekOffsetMs (both zero) back onto the session.
// SafeDurationSeconds is only meaningful when HasDurationLimit is true.
type PlaybackWindow struct {
	OffsetSeconds          float64
	RequestedOffsetSeconds float64
	SafeDurationSeconds    float64
	HasDurationLimit       bool
	NextBaseOffsetMs       float64
	NextSeekOffsetMs       float64
	DidResetOffsets        bool
}

// CalculatePlaybackWindow clamps the request into a window the audio backend
// can actually play. Offsets at or past the buffer end reset to zero rather
// than clamping to a sliver; a zero buffer duration disables clamping
// entirely (the duration passes through as requested).
func CalculatePlaybackWindow(req PlaybackRequest) PlaybackWindow {
	baseMs := clampNonNeg(req.BaseOffsetMs)
	seekMs := clampNonNeg(req.SeekOffsetMs)
	bufferSec := clampNonNeg(req.BufferDurationSec)

	hasDuration := isFinite(req.DurationMs)
	durationMs := 0.0
	if hasDuration {
		durationMs = math.Max(0, req.DurationMs)
	}

	w := PlaybackWindow{
		NextBaseOffsetMs: baseMs,
		NextSeekOffsetMs: seekMs,
		HasDurationLimit: hasDuration,
	}
	w.RequestedOffsetSeconds = (baseMs + seekMs) / 1000
	w.OffsetSeconds = w.RequestedOffsetSeconds

	if bufferSec > 0 && w.OffsetSeconds >= bufferSec {
		w.OffsetSeconds = 0
		w.NextBaseOffsetMs = 0
		w.NextSeekOffsetMs = 0
		w.DidResetOffsets = true
	}

	if hasDuration {
		durationSec := durationMs / 1000
		if bufferSec > 0 {
			durationSec = math.Min(durationSec, math.Max(0, bufferSec-w.OffsetSeconds))
		}
		w.SafeDurationSeconds = durationSec
	}
	return w
}

// HitTimeInput carries the clock readings for ScheduledHitTimeMs.
type HitTimeInput struct {
	NoteTimeMs  float64
	GigTimeMs   float64
	AudioTimeMs float64
	MaxLeadMs   float64
}

// DefaultMaxLeadMs is the scheduling lead window for hit feedback sounds.
const DefaultMaxLeadMs = 30

// ScheduledHitTimeMs maps a note's gig-clock time onto the audio clock for
// hit-sound scheduling. A note slightly in the future (within the lead
// window) is scheduled exactly on its beat; anything else plays immediately.
func ScheduledHitTimeMs(in HitTimeInput) float64 {
	noteMs := finiteOr(in.NoteTimeMs, 0)
	gigMs := finiteOr(in.GigTimeMs, 0)
	audioMs := finiteOr(in.AudioTimeMs, 0)
	maxLead := clampNonNeg(in.MaxLeadMs)

	noteInAudioMs := noteMs + (audioMs - gigMs)
	delta := noteInAudioMs - audioMs
	if delta > 0 && delta <= maxLead {
		return noteInAudioMs
	}
	return audioMs
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOr(v, def float64) float64 {
	if isFinite(v) {
		return v
	}
	return def
}

func clampNonNeg(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}
