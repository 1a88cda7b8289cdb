package dawduction

import (
	"bytes"
	"strings"
	"testing"
)

func testProject() Project {
	return Project{
		BPM: 128,
		Tracks: []Track{{
			ID:      "t1",
			Name:    "Kick",
			Kind:    Kick,
			Volume:  0.9,
			Pan:     -0.2,
			Pattern: &PatternNode{ID: "n1", Division: 4, Velocity: 1},
			Settings: map[string]float64{
				"tune": 40,
			},
		}, {
			ID:      "t2",
			Kind:    Supersaw,
			Volume:  0.7,
			Pattern: &PatternNode{ID: "n2", Division: 4, Children: []*PatternNode{{ID: "n3", Division: 1, Velocity: 0.8, Pitch: 57}}},
		}},
		BaseMeterTrackID: "t1",
		Effects:          []EffectDef{{ID: "e1", Kind: Delay, Settings: map[string]float64{"mix": 0.5}}},
		Envelopes:        []EnvelopeDef{{ID: "v1", Target: TargetFilterCutoff, Shape: ExponentialCurve, Start: 0.2, End: 0.9}},
		ViewMode:         TimelineMode,
		Timeline: Timeline{
			Length: 8,
			Tracks: []TimelineTrack{{
				ID:     "l1",
				Kind:   PatternTrack,
				Volume: 1,
				Clips:  []Clip{{ID: "c1", PatternID: "p1", Start: 0, Duration: 4}},
			}},
		},
		PatternToTrack: map[string]string{"p1": "t2"},
		Patterns:       map[string]*PatternNode{"p1": {ID: "n4", Division: 4, Velocity: 1}},
		Automation: []AutomationCurve{{
			Target: AutomationTarget{Type: AutomateEffect, TargetID: "e1", ParameterKey: "mix"},
			Points: []AutomationPoint{{Beat: 0, Value: 0.1}, {Beat: 4, Value: 0.9}},
		}},
	}
}

func checkRoundTrip(t *testing.T, path string) {
	t.Helper()
	original := testProject()
	var buf bytes.Buffer
	if err := WriteProject(&buf, path, original); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}
	loaded, err := ReadProject(&buf)
	if err != nil {
		t.Fatalf("ReadProject: %v", err)
	}
	if loaded.BPM != original.BPM || loaded.ViewMode != original.ViewMode {
		t.Errorf("header fields changed: %+v", loaded)
	}
	if len(loaded.Tracks) != 2 || loaded.Tracks[0].Kind != Kick || loaded.Tracks[1].Kind != Supersaw {
		t.Errorf("tracks changed: %+v", loaded.Tracks)
	}
	if loaded.Tracks[0].Settings["tune"] != 40 || loaded.Tracks[0].Pan != -0.2 {
		t.Errorf("track settings changed: %+v", loaded.Tracks[0])
	}
	if loaded.Tracks[1].Pattern.Children[0].Pitch != 57 {
		t.Errorf("pattern tree changed: %+v", loaded.Tracks[1].Pattern)
	}
	if len(loaded.Effects) != 1 || loaded.Effects[0].Kind != Delay || loaded.Effects[0].Setting("mix") != 0.5 {
		t.Errorf("effects changed: %+v", loaded.Effects)
	}
	if len(loaded.Envelopes) != 1 || loaded.Envelopes[0].Target != TargetFilterCutoff || loaded.Envelopes[0].Shape != ExponentialCurve {
		t.Errorf("envelopes changed: %+v", loaded.Envelopes)
	}
	if loaded.Timeline.Length != 8 || len(loaded.Timeline.Tracks) != 1 || loaded.Timeline.Tracks[0].Kind != PatternTrack {
		t.Errorf("timeline changed: %+v", loaded.Timeline)
	}
	if loaded.PatternToTrack["p1"] != "t2" || loaded.Patterns["p1"] == nil {
		t.Errorf("pattern mappings changed")
	}
	if len(loaded.Automation) != 1 || loaded.Automation[0].Target.Type != AutomateEffect {
		t.Errorf("automation changed: %+v", loaded.Automation)
	}
}

func TestProjectRoundTripYAML(t *testing.T) {
	checkRoundTrip(t, "project.yml")
}

func TestProjectRoundTripJSON(t *testing.T) {
	checkRoundTrip(t, "project.json")
}

func TestEnumsSerializeAsTags(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProject(&buf, "project.yml", testProject()); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}
	text := buf.String()
	for _, tag := range []string{"kick", "supersaw", "delay", "filter", "exponential", "timeline", "pattern"} {
		if !strings.Contains(text, tag) {
			t.Errorf("serialized project does not contain enum tag %q", tag)
		}
	}
}

func TestReadProjectRejectsGarbage(t *testing.T) {
	if _, err := ReadProject(strings.NewReader("{ not json ] and\n\tnot yaml:::")); err == nil {
		t.Errorf("garbage input parsed")
	}
}

func TestReadProjectValidates(t *testing.T) {
	if _, err := ReadProject(strings.NewReader("bpm: 120\ntracks:\n  - id: a\n    kind: kick\n  - id: a\n    kind: snare\n")); err == nil {
		t.Errorf("duplicate track ids accepted")
	}
	if _, err := ReadProject(strings.NewReader("bpm: 0\n")); err == nil {
		t.Errorf("zero BPM accepted")
	}
}

func TestReadProjectSortsAutomation(t *testing.T) {
	src := `
bpm: 120
automation:
  - target: {type: effect, targetId: e1, parameter: mix}
    points:
      - {beat: 4, value: 1}
      - {beat: 0, value: 0}
`
	project, err := ReadProject(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadProject: %v", err)
	}
	pts := project.Automation[0].Points
	if len(pts) != 2 || pts[0].Beat != 0 {
		t.Errorf("automation points not sorted on load: %+v", pts)
	}
}
