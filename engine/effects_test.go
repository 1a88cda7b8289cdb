package engine

import (
	"math"
	"testing"

	"github.com/Niftys/dawduction"
)

// distortionProject is a project with one distortion definition, instantiated
// on an effect lane over beats [4, 6).
func distortionProject() *dawduction.Project {
	return &dawduction.Project{
		BPM:     120,
		Effects: []dawduction.EffectDef{{ID: "dist", Kind: dawduction.Distortion}},
		Timeline: dawduction.Timeline{
			Length: 8,
			Tracks: []dawduction.TimelineTrack{{
				ID:   "fx",
				Kind: dawduction.EffectTrack,
				Effects: []dawduction.EffectInstance{
					{ID: "i1", EffectID: "dist", Start: 4, Duration: 2},
				},
			}},
		},
	}
}

func newTestEffects(project *dawduction.Project) (*EffectsProcessor, *Broker) {
	broker := NewBroker()
	p := NewEffectsProcessor(broker, 44100)
	p.SetProject(project)
	return p, broker
}

func TestDistortionAppliesInsideInstance(t *testing.T) {
	p, _ := newTestEffects(distortionProject())
	in := float32(0.5)
	out := p.Process("trk", "", 5, 22050, in)
	// Default drive 2.5, mix 0.5.
	want := float32(float64(in)*0.5 + math.Tanh(float64(in)*2.5)*0.5)
	if diff := out - want; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("distorted sample = %v, want %v", out, want)
	}
}

func TestEffectInstanceBoundsAreHalfOpen(t *testing.T) {
	p, _ := newTestEffects(distortionProject())
	if out := p.Process("trk", "", 6, 22050, 0.5); out != 0.5 {
		t.Errorf("instance applied at its end beat: %v", out)
	}
	if out := p.Process("trk", "", 3.9, 22050, 0.5); out != 0.5 {
		t.Errorf("instance applied before its start: %v", out)
	}
	if out := p.Process("trk", "", 4, 22050, 0.5); out == 0.5 {
		t.Errorf("instance inert at its start beat")
	}
}

func TestEffectOnWrongTrackKindIsInert(t *testing.T) {
	project := distortionProject()
	project.Timeline.Tracks[0].Kind = dawduction.PatternTrack
	p, _ := newTestEffects(project)
	if out := p.Process("trk", "", 5, 22050, 0.5); out != 0.5 {
		t.Errorf("effect on a pattern lane transformed audio: %v", out)
	}
}

func TestMissingEffectDefWarnsOnce(t *testing.T) {
	project := distortionProject()
	project.Effects = nil
	p, broker := newTestEffects(project)
	for i := 0; i < 3; i++ {
		if out := p.Process("trk", "", 5, 22050, 0.5); out != 0.5 {
			t.Fatalf("dangling instance transformed audio: %v", out)
		}
	}
	alerts := 0
	for _, n := range drainNotifications(broker) {
		if a, ok := n.(Alert); ok {
			if a.Name != "MissingDefinition" {
				t.Errorf("alert name = %q", a.Name)
			}
			alerts++
		}
	}
	if alerts != 1 {
		t.Errorf("got %d alerts, want exactly 1", alerts)
	}
}

// drainNotifications empties the host channel without blocking.
func drainNotifications(broker *Broker) []Notification {
	var out []Notification
	for {
		select {
		case n := <-broker.ToHost:
			out = append(out, n)
		default:
			return out
		}
	}
}

func TestPatternScopedEffect(t *testing.T) {
	project := distortionProject()
	project.Timeline.Tracks[0].Effects[0].PatternID = "pat-a"
	p, _ := newTestEffects(project)
	if out := p.Process("trk", "pat-b", 5, 22050, 0.5); out != 0.5 {
		t.Errorf("pattern-scoped effect applied to another pattern: %v", out)
	}
	if out := p.Process("trk", "pat-a", 5, 22050, 0.5); out == 0.5 {
		t.Errorf("pattern-scoped effect inert on its own pattern")
	}
}

func TestTimelineTrackScopedEffect(t *testing.T) {
	project := distortionProject()
	project.Timeline.Tracks[0].Effects[0].TimelineTrackID = "lane-1"
	project.TimelineTrackFor = map[string]string{"trk": "lane-1"}
	p, _ := newTestEffects(project)
	if out := p.Process("other", "", 5, 22050, 0.5); out != 0.5 {
		t.Errorf("lane-scoped effect applied to an unmapped track: %v", out)
	}
	if out := p.Process("trk", "", 5, 22050, 0.5); out == 0.5 {
		t.Errorf("lane-scoped effect inert on its mapped track")
	}
}

func TestAutomationOverridesEffectSetting(t *testing.T) {
	project := distortionProject()
	// Automate mix to zero: the effect becomes a pass-through.
	project.Automation = []dawduction.AutomationCurve{{
		Target: dawduction.AutomationTarget{
			Type:         dawduction.AutomateEffect,
			TargetID:     "dist",
			ParameterKey: "mix",
		},
		Points: []dawduction.AutomationPoint{{Beat: 0, Value: 0}},
	}}
	p, _ := newTestEffects(project)
	if out := p.Process("trk", "", 5, 22050, 0.5); out != 0.5 {
		t.Errorf("automated mix=0 still transformed audio: %v", out)
	}
}

func TestCompressorAttenuatesAboveThreshold(t *testing.T) {
	project := distortionProject()
	project.Effects[0].Kind = dawduction.Compressor
	p, _ := newTestEffects(project)
	// Defaults: threshold 0.5, ratio 4. A steady full-scale input settles
	// around pow(1/0.25, (1/4-1)/2) ≈ 0.59 once the detector has charged.
	var out float32
	for i := 0; i < 20000; i++ {
		out = p.Process("trk", "", 5, 22050, 1)
	}
	if out < 0.5 || out > 0.7 {
		t.Errorf("compressed steady-state sample = %v, want ≈ 0.59", out)
	}
}

func TestEffectStateIsPerTrack(t *testing.T) {
	project := distortionProject()
	project.Effects[0].Kind = dawduction.Compressor
	p, _ := newTestEffects(project)
	// Charge the detector on one track only.
	for i := 0; i < 20000; i++ {
		p.Process("hot", "", 5, 22050, 1)
	}
	// The other track's detector is empty, so its first sample through the
	// compressor passes at (nearly) unity.
	out := p.Process("cold", "", 5, 22050, 0.5)
	if out < 0.49 || out > 0.5 {
		t.Errorf("fresh track's sample = %v, want ≈ 0.5", out)
	}
}
