// Package transport implements the shared musical clock: tempo, a start
// epoch, and ordered one-shot/repeating callbacks fired at precise
// positions. The transport never fires on its own; a driver (the audio
// mixer, or a test) pumps Advance with the current clock reading, which is
// what keeps scheduled events sample-accurate relative to rendered audio.
package transport

import (
	"math"
	"sort"
	"sync"
)

// Clock supplies the current time in seconds. The audio mixer implements
// this with its sample counter; tests use a settable fake.
type Clock interface {
	NowSec() float64
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() float64

func (f ClockFunc) NowSec() float64 { return f() }

type event struct {
	id          int
	atSec       float64 // original schedule position
	nextAtSec   float64 // next firing position (advances for repeats/loops)
	intervalSec float64 // > 0 for repeating events
	step        int
	fn          func(whenSec float64, step int)
}

// Transport is the shared clock. All methods are safe for concurrent use;
// callbacks fire outside the internal lock so they may schedule or clear
// events themselves.
type Transport struct {
	mu        sync.Mutex
	clock     Clock
	bpm       float64
	running   bool
	paused    bool
	epochSec  float64
	pausePos  float64
	nextID    int
	events    []*event
	loop      bool
	loopStart float64
	loopEnd   float64
	lastPos   float64
}

func New(clock Clock) *Transport {
	return &Transport{clock: clock, bpm: 120}
}

func (t *Transport) SetBPM(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bpm > 0 {
		t.bpm = bpm
	}
}

func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SecondsPerBeat returns the duration of one quarter note at the current
// tempo.
func (t *Transport) SecondsPerBeat() float64 {
	return 60 / t.BPM()
}

// Start arms the transport so that position offsetSec falls at clock time
// atSec. Scheduled events are kept; starting does not clear them. Events
// positioned before the offset are skipped (for excerpted playback), except
// that looping and repeating events fast-forward to their first firing at
// or after the offset.
func (t *Transport) Start(atSec, offsetSec float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epochSec = atSec - offsetSec
	t.running = true
	t.paused = false
	t.lastPos = offsetSec
	if offsetSec > 0 {
		for _, ev := range t.events {
			for ev.nextAtSec < offsetSec {
				switch {
				case ev.intervalSec > 0:
					ev.step++
					ev.nextAtSec += ev.intervalSec
				case t.loop && ev.atSec >= t.loopStart && ev.atSec < t.loopEnd:
					ev.nextAtSec += t.loopEnd - t.loopStart
				default:
					ev.nextAtSec = math.Inf(1)
				}
			}
		}
	}
}

// Stop halts the transport. Scheduled events survive until Cancel.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.paused = false
	t.pausePos = 0
}

// Pause freezes the position so Resume continues where playback left off.
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.pausePos = t.clock.NowSec() - t.epochSec
	t.running = false
	t.paused = true
}

// Resume restarts a paused transport at the frozen position.
func (t *Transport) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.epochSec = t.clock.NowSec() - t.pausePos
	t.running = true
	t.paused = false
}

func (t *Transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Transport) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// PositionSec returns the current transport position (0 when stopped).
func (t *Transport) PositionSec() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return t.pausePos
	}
	if !t.running {
		return 0
	}
	return t.clock.NowSec() - t.epochSec
}

// Cancel removes every scheduled event.
func (t *Transport) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// SetLoop configures looped playback over [startSec, endSec). While looping,
// one-shot events at or past the loop start re-fire every cycle, so an
// excerpt's intro (before the loop start) plays once.
func (t *Transport) SetLoop(enabled bool, startSec, endSec float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enabled && endSec <= startSec {
		enabled = false
	}
	t.loop = enabled
	t.loopStart = startSec
	t.loopEnd = endSec
}

// ScheduleOnce registers fn to fire when the transport position reaches
// relSec. The callback receives the absolute clock time of the scheduled
// firing. Returns an id for Clear.
func (t *Transport) ScheduleOnce(relSec float64, fn func(whenSec float64)) int {
	return t.schedule(relSec, 0, func(whenSec float64, _ int) { fn(whenSec) })
}

// ScheduleRepeat registers fn to fire every intervalSec starting at
// position 0, with a running step counter.
func (t *Transport) ScheduleRepeat(intervalSec float64, fn func(whenSec float64, step int)) int {
	if intervalSec <= 0 {
		return -1
	}
	return t.schedule(0, intervalSec, fn)
}

func (t *Transport) schedule(relSec, intervalSec float64, fn func(whenSec float64, step int)) int {
	if math.IsNaN(relSec) || math.IsInf(relSec, 0) || relSec < 0 {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	ev := &event{
		id:          t.nextID,
		atSec:       relSec,
		nextAtSec:   relSec,
		intervalSec: intervalSec,
		fn:          fn,
	}
	t.events = append(t.events, ev)
	return ev.id
}

// Clear removes one scheduled event by id.
func (t *Transport) Clear(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ev := range t.events {
		if ev.id == id {
			t.events = append(t.events[:i], t.events[i+1:]...)
			return
		}
	}
}

type firing struct {
	atSec float64
	step  int
	seq   int
	fn    func(whenSec float64, step int)
}

// Advance fires every event due at or before nowSec, in schedule order.
// The driver must call this with a monotonic clock; events never fire out
// of time order within one pump.
func (t *Transport) Advance(nowSec float64) {
	for {
		due := t.collectDue(nowSec)
		if len(due) == 0 {
			return
		}
		for _, f := range due {
			f.fn(f.atSec, f.step)
		}
	}
}

func (t *Transport) collectDue(nowSec float64) []firing {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	pos := nowSec - t.epochSec
	if pos < t.lastPos {
		pos = t.lastPos
	}
	t.lastPos = pos

	var due []firing
	seq := 0
	for _, ev := range t.events {
		for ev.nextAtSec <= pos {
			due = append(due, firing{
				atSec: t.epochSec + ev.nextAtSec,
				step:  ev.step,
				seq:   seq,
				fn:    ev.fn,
			})
			seq++
			switch {
			case ev.intervalSec > 0:
				ev.step++
				ev.nextAtSec += ev.intervalSec
			case t.loop && ev.atSec >= t.loopStart && ev.atSec < t.loopEnd:
				ev.nextAtSec += t.loopEnd - t.loopStart
			default:
				ev.nextAtSec = math.Inf(1)
			}
		}
	}
	// Drop exhausted one-shots.
	kept := t.events[:0]
	for _, ev := range t.events {
		if !math.IsInf(ev.nextAtSec, 1) {
			kept = append(kept, ev)
		}
	}
	t.events = kept

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].atSec != due[j].atSec {
			return due[i].atSec < due[j].atSec
		}
		return due[i].seq < due[j].seq
	})
	return due
}
