package synth

import (
	"testing"
)

func energy(buf []float32) float64 {
	var e float64
	for _, s := range buf {
		if s < 0 {
			e -= float64(s)
		} else {
			e += float64(s)
		}
	}
	return e
}

func TestVoiceSetIsComplete(t *testing.T) {
	e := NewEngine(48000)
	set := e.VoiceSet()
	if !set.Complete() {
		t.Fatalf("expected a complete voice set")
	}
	if set.SFX == nil {
		t.Fatalf("expected an SFX voice")
	}
}

func TestTriggerProducesAudio(t *testing.T) {
	e := NewEngine(48000)
	set := e.VoiceSet()
	set.Guitar.Trigger(40, 0.5, 0, 1)

	buf := make([]float32, 48000/4*2)
	e.Process(buf)
	if energy(buf) == 0 {
		t.Fatalf("expected non-zero audio energy after a trigger")
	}
}

func TestDrumVoicesProduceAudio(t *testing.T) {
	e := NewEngine(48000)
	kit := e.VoiceSet().Drums
	kit.Kick.Trigger(24, 0.5, 0, 1)
	kit.Snare.Trigger(0, 0.25, 0, 1)
	kit.HiHat.Trigger(8000, 0.125, 0, 0.7)
	kit.Crash.Trigger(4000, 1, 0, 0.7)
	if e.ActiveVoiceCount() != 4 {
		t.Fatalf("expected 4 active voices, got %d", e.ActiveVoiceCount())
	}

	buf := make([]float32, 48000/4*2)
	e.Process(buf)
	if energy(buf) == 0 {
		t.Fatalf("expected kit audio")
	}
}

func TestScheduledTriggerStartsOnItsFrame(t *testing.T) {
	e := NewEngine(48000)
	set := e.VoiceSet()
	set.Guitar.Trigger(52, 0.5, 0.5, 1) // half a second in the future

	early := make([]float32, 48000/4*2) // first 0.25s
	e.Process(early)
	if energy(early) != 0 {
		t.Fatalf("voice sounded before its scheduled frame")
	}
	late := make([]float32, 48000/2*2) // through 0.75s
	e.Process(late)
	if energy(late) == 0 {
		t.Fatalf("voice never started")
	}
}

func TestZeroVelocityIsIgnored(t *testing.T) {
	e := NewEngine(48000)
	e.VoiceSet().Guitar.Trigger(40, 0.5, 0, 0)
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("zero velocity must not allocate a voice")
	}
}

func TestNowSecTracksRenderedFrames(t *testing.T) {
	e := NewEngine(48000)
	if e.NowSec() != 0 {
		t.Fatalf("fresh engine clock = %v", e.NowSec())
	}
	buf := make([]float32, 4800*2) // 0.1s
	e.Process(buf)
	if got := e.NowSec(); got != 0.1 {
		t.Fatalf("clock after 4800 frames = %v, want 0.1", got)
	}
}

func TestVoicesDecayAndFree(t *testing.T) {
	e := NewEngine(48000)
	e.VoiceSet().Guitar.Trigger(40, 0.1, 0, 1)
	buf := make([]float32, 48000*2) // a full second, well past the note
	e.Process(buf)
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("voice still active after its end, count=%d", e.ActiveVoiceCount())
	}
}

func TestMasterGainScalesOutput(t *testing.T) {
	loud := NewEngine(48000)
	loud.SetMasterGain(1)
	loud.VoiceSet().Guitar.Trigger(40, 0.5, 0, 1)
	loudBuf := make([]float32, 4800*2)
	loud.Process(loudBuf)

	quiet := NewEngine(48000)
	quiet.SetMasterGain(0.1)
	quiet.VoiceSet().Guitar.Trigger(40, 0.5, 0, 1)
	quietBuf := make([]float32, 4800*2)
	quiet.Process(quietBuf)

	if energy(quietBuf) >= energy(loudBuf) {
		t.Fatalf("gain 0.1 louder than gain 1: %v vs %v", energy(quietBuf), energy(loudBuf))
	}
}
