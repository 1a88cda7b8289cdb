package synth

import (
	"math"
	"testing"

	"github.com/Niftys/dawduction"
)

const testSampleRate = 44100

func processN(v *Voice, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v.Process()
	}
	return out
}

func TestNewRejectsInvalidKind(t *testing.T) {
	if v := New(dawduction.InstrumentKind(-1), testSampleRate); v != nil {
		t.Errorf("expected nil voice for negative kind")
	}
	if v := New(dawduction.NumInstrumentKinds, testSampleRate); v != nil {
		t.Errorf("expected nil voice for out of range kind")
	}
}

func TestAllKindsProduceFiniteOutput(t *testing.T) {
	for kind := dawduction.InstrumentKind(0); kind < dawduction.NumInstrumentKinds; kind++ {
		v := New(kind, testSampleRate)
		if v == nil {
			t.Fatalf("%v: New returned nil", kind)
		}
		v.Trigger(1, 60, 0.5)
		var peak float32
		for _, s := range processN(v, testSampleRate/10) {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("%v: non-finite sample %v", kind, s)
			}
			if a := float32(math.Abs(float64(s))); a > peak {
				peak = a
			}
		}
		if peak == 0 {
			t.Errorf("%v: voice produced silence after trigger", kind)
		}
	}
}

func TestAllKindsHaveDefaultSettings(t *testing.T) {
	for kind := dawduction.InstrumentKind(0); kind < dawduction.NumInstrumentKinds; kind++ {
		if len(DefaultSettings(kind)) == 0 {
			t.Errorf("%v: no default settings", kind)
		}
	}
}

func TestVoiceActiveForNominalDuration(t *testing.T) {
	v := New(dawduction.Subtractive, testSampleRate)
	v.SetTempo(120)
	v.Trigger(1, 60, 1) // one beat at 120 BPM = 0.5 s
	holdSamples := testSampleRate / 2
	for i := 0; i < holdSamples; i++ {
		v.Process()
		if !v.Active() {
			t.Fatalf("voice inactive at sample %d, before its duration elapsed", i)
		}
	}
}

func TestVoiceEventuallySilent(t *testing.T) {
	kinds := []dawduction.InstrumentKind{dawduction.Kick, dawduction.Subtractive, dawduction.Pluck}
	for _, kind := range kinds {
		v := New(kind, testSampleRate)
		v.Trigger(1, 60, 0.25)
		processN(v, 10*testSampleRate)
		if v.Active() {
			t.Errorf("%v: still active after 10 s", kind)
		}
		if s := v.Process(); s != 0 {
			t.Errorf("%v: inactive voice output %v, want 0", kind, s)
		}
	}
}

func TestRetriggerCrossfades(t *testing.T) {
	v := New(dawduction.Subtractive, testSampleRate)
	v.Trigger(1, 60, 1)
	processN(v, 1000)
	v.Trigger(1, 64, 1)
	if v.old == nil {
		t.Fatalf("retrigger did not retain the previous note for the crossfade")
	}
	if v.fade != v.fadeTotal {
		t.Errorf("fade counter = %d, want %d", v.fade, v.fadeTotal)
	}
	processN(v, v.fadeTotal+1)
	if v.old != nil {
		t.Errorf("crossfade still running after %d samples", v.fadeTotal+1)
	}
}

func TestRetriggerHasNoDiscontinuity(t *testing.T) {
	v := New(dawduction.Subtractive, testSampleRate)
	v.Trigger(1, 48, 1)
	out := processN(v, 2000)
	before := out[len(out)-1]
	v.Trigger(1, 72, 1)
	after := v.Process()
	// The first crossfaded sample is dominated by the old layer, so a
	// retrigger cannot jump further than normal sample-to-sample motion.
	if diff := math.Abs(float64(after - before)); diff > 0.5 {
		t.Errorf("retrigger jumped by %v", diff)
	}
}

func TestADSRHoldsForDuration(t *testing.T) {
	env := newADSR(testSampleRate, 0.001, 0.01, 0.7, 0.05, 0.2)
	holdSamples := int(0.2 * testSampleRate)
	for i := 0; i < holdSamples; i++ {
		env.next()
		if !env.active() {
			t.Fatalf("envelope idle at sample %d, before hold elapsed", i)
		}
	}
	for i := 0; i < 5*testSampleRate && env.active(); i++ {
		env.next()
	}
	if env.active() {
		t.Errorf("envelope never reached idle")
	}
}

func TestADSRReleaseCutsHold(t *testing.T) {
	env := newADSR(testSampleRate, 0.001, 0.01, 0.7, 0.01, 10)
	for i := 0; i < 1000; i++ {
		env.next()
	}
	env.release()
	for i := 0; i < testSampleRate && env.active(); i++ {
		env.next()
	}
	if env.active() {
		t.Errorf("released envelope still active after 1 s")
	}
}

func TestADSRLevelNeverDenormal(t *testing.T) {
	env := newADSR(testSampleRate, 0.001, 0.01, 0.5, 0.02, 0.01)
	for i := 0; i < 5*testSampleRate; i++ {
		l := env.next()
		if l != 0 && math.Abs(float64(l)) < denormalFloor {
			t.Fatalf("denormal envelope level %v at sample %d", l, i)
		}
	}
}

func TestUpdateSettingsMerges(t *testing.T) {
	v := New(dawduction.Kick, testSampleRate)
	v.UpdateSettings(map[string]float64{"tune": 60})
	v.UpdateSettings(map[string]float64{"decay": 0.4})
	if got := v.setting("tune"); got != 60 {
		t.Errorf("tune = %v, want 60", got)
	}
	if got := v.setting("decay"); got != 0.4 {
		t.Errorf("decay = %v, want 0.4", got)
	}
	// Keys never set fall back to the kind's defaults.
	if got := v.setting("sweep"); got != 1 {
		t.Errorf("sweep = %v, want default 1", got)
	}
}

func TestSetPitchScaleRejectsNonPositive(t *testing.T) {
	v := New(dawduction.Subtractive, testSampleRate)
	v.SetPitchScale(0)
	if v.pitchScale != 1 {
		t.Errorf("pitchScale = %v, want 1", v.pitchScale)
	}
	v.SetPitchScale(2)
	if v.pitchScale != 2 {
		t.Errorf("pitchScale = %v, want 2", v.pitchScale)
	}
}

func TestNoiseGenIsDeterministic(t *testing.T) {
	a, b := newNoise(), newNoise()
	for i := 0; i < 100; i++ {
		if a.next() != b.next() {
			t.Fatalf("noise sequences diverged at sample %d", i)
		}
	}
}

func TestPluckTracksPitch(t *testing.T) {
	v := New(dawduction.Pluck, testSampleRate)
	v.Trigger(1, 69, 0)
	l, ok := v.cur.(*pluckLayer)
	if !ok {
		t.Fatalf("pluck trigger built %T", v.cur)
	}
	sr := float32(testSampleRate)
	want := int(sr / 440)
	if l.length != want {
		t.Errorf("delay length = %d, want %d for A4", l.length, want)
	}
}

func TestBuiltinPresetsLoad(t *testing.T) {
	p := LoadPresets()
	if len(p.List) == 0 {
		t.Fatalf("no builtin presets loaded")
	}
	preset, ok := p.ByName("Deep Kick")
	if !ok {
		t.Fatalf("builtin preset Deep Kick missing")
	}
	if preset.Kind != dawduction.Kick {
		t.Errorf("Deep Kick kind = %v, want kick", preset.Kind)
	}
	if preset.Settings["tune"] != 38 {
		t.Errorf("Deep Kick tune = %v, want 38", preset.Settings["tune"])
	}
	if kicks := p.ForKind(dawduction.Kick); len(kicks) < 2 {
		t.Errorf("ForKind(kick) = %d presets, want at least 2", len(kicks))
	}
}
