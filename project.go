package dawduction

import (
	"errors"
	"fmt"
)

// ViewMode selects what the transport loops over: a single pattern or the
// arrangement timeline.
type ViewMode int

const (
	PatternMode ViewMode = iota
	TimelineMode

	NumViewModes
)

var viewModeNames = [NumViewModes]string{"pattern", "timeline"}

func (m ViewMode) String() string {
	if m < 0 || m >= NumViewModes {
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
	return viewModeNames[m]
}

func (m ViewMode) MarshalText() ([]byte, error) {
	if m < 0 || m >= NumViewModes {
		return nil, fmt.Errorf("invalid view mode %d", int(m))
	}
	return []byte(viewModeNames[m]), nil
}

func (m *ViewMode) UnmarshalText(text []byte) error {
	for i, name := range viewModeNames {
		if name == string(text) {
			*m = ViewMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown view mode %q", string(text))
}

// Project owns everything the engine plays: the instrument tracks with their
// pattern trees, the arrangement timeline, effect and envelope definitions,
// automation curves, and the mappings that tie timeline patterns to the
// instruments that play them.
type Project struct {
	BPM              float64                 `yaml:"bpm" json:"bpm"`
	Tracks           []Track                 `yaml:"tracks" json:"tracks"`
	Events           []NoteEvent             `yaml:"events,omitempty" json:"events,omitempty"`
	BaseMeterTrackID string                  `yaml:"baseMeterTrackId,omitempty" json:"baseMeterTrackId,omitempty"`
	Timeline         Timeline                `yaml:"timeline,omitempty" json:"timeline,omitempty"`
	Effects          []EffectDef             `yaml:"effects,omitempty" json:"effects,omitempty"`
	Envelopes        []EnvelopeDef           `yaml:"envelopes,omitempty" json:"envelopes,omitempty"`
	ViewMode         ViewMode                `yaml:"viewMode" json:"viewMode"`
	PatternToTrack   map[string]string       `yaml:"patternToTrackMapping,omitempty" json:"patternToTrackMapping,omitempty"`
	TimelineTrackFor map[string]string       `yaml:"timelineTrackMapping,omitempty" json:"timelineTrackMapping,omitempty"`
	Automation       []AutomationCurve       `yaml:"automation,omitempty" json:"automation,omitempty"`
	Patterns         map[string]*PatternNode `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// Copy makes a deep copy of a Project.
func (p *Project) Copy() Project {
	ret := *p
	ret.Tracks = make([]Track, len(p.Tracks))
	for i := range p.Tracks {
		ret.Tracks[i] = p.Tracks[i].Copy()
	}
	ret.Events = append([]NoteEvent(nil), p.Events...)
	ret.Timeline = p.Timeline.Copy()
	ret.Effects = make([]EffectDef, len(p.Effects))
	for i := range p.Effects {
		ret.Effects[i] = p.Effects[i].Copy()
	}
	ret.Envelopes = append([]EnvelopeDef(nil), p.Envelopes...)
	ret.PatternToTrack = copyStringMap(p.PatternToTrack)
	ret.TimelineTrackFor = copyStringMap(p.TimelineTrackFor)
	ret.Automation = make([]AutomationCurve, len(p.Automation))
	for i := range p.Automation {
		ret.Automation[i] = p.Automation[i].Copy()
	}
	ret.Patterns = make(map[string]*PatternNode, len(p.Patterns))
	for id, tree := range p.Patterns {
		ret.Patterns[id] = tree.Copy()
	}
	return ret
}

func copyStringMap(m map[string]string) map[string]string {
	ret := make(map[string]string, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

// Validate checks that the project can be played at all: positive BPM and no
// track sharing an ID with another. Everything else degrades gracefully at
// runtime instead of failing the load.
func (p *Project) Validate() error {
	if p.BPM <= 0 {
		return errors.New("BPM should be > 0")
	}
	seen := make(map[string]struct{}, len(p.Tracks))
	for _, t := range p.Tracks {
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("duplicate track id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// TrackByID returns a pointer to the track with the given ID, or nil.
func (p *Project) TrackByID(id string) *Track {
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return &p.Tracks[i]
		}
	}
	return nil
}

// TrackIndex returns the index of the track with the given ID, or -1.
func (p *Project) TrackIndex(id string) int {
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// EffectByID returns the effect definition with the given ID, or nil.
func (p *Project) EffectByID(id string) *EffectDef {
	for i := range p.Effects {
		if p.Effects[i].ID == id {
			return &p.Effects[i]
		}
	}
	return nil
}

// EnvelopeByID returns the envelope definition with the given ID, or nil.
func (p *Project) EnvelopeByID(id string) *EnvelopeDef {
	for i := range p.Envelopes {
		if p.Envelopes[i].ID == id {
			return &p.Envelopes[i]
		}
	}
	return nil
}

// PatternLength returns the active loop length in beats for pattern mode:
// the base meter track's root division. A missing base meter track falls
// back to DefaultPatternLength rather than yielding a zero-length loop.
func (p *Project) PatternLength() float64 {
	if t := p.TrackByID(p.BaseMeterTrackID); t != nil {
		return t.Pattern.Length()
	}
	return DefaultPatternLength
}

// LoopLength returns the length in beats of the current loop: the timeline
// length in timeline mode, the base meter pattern length otherwise. Always
// positive.
func (p *Project) LoopLength() float64 {
	if p.ViewMode == TimelineMode && p.Timeline.Length > 0 {
		return p.Timeline.Length
	}
	return p.PatternLength()
}

// FlattenTrack flattens one track's pattern tree over its own length. Stored
// beats are relative to the tree; the scheduler wraps them onto the active
// loop.
func (p *Project) FlattenTrack(t *Track) []NoteEvent {
	return Flatten(t.Pattern, t.Pattern.Length(), t.ID, "")
}

// PatternEvents flattens every track's pattern tree. This is the event set
// for pattern mode playback.
func (p *Project) PatternEvents() []NoteEvent {
	var events []NoteEvent
	for i := range p.Tracks {
		events = append(events, p.FlattenTrack(&p.Tracks[i])...)
	}
	return events
}

// TimelineEvents flattens every clip on every pattern-kind timeline track
// into absolute timeline beats. The instrument for each clip's events comes
// from the pattern-to-track mapping; clips whose pattern or instrument is
// unknown produce nothing. Events past a clip's end are dropped, so a clip
// shorter than its pattern truncates it.
func (p *Project) TimelineEvents() []NoteEvent {
	var events []NoteEvent
	for i := range p.Timeline.Tracks {
		tt := &p.Timeline.Tracks[i]
		if tt.Kind != PatternTrack {
			continue
		}
		for _, clip := range tt.Clips {
			tree, ok := p.Patterns[clip.PatternID]
			if !ok {
				continue
			}
			instrumentID, ok := p.PatternToTrack[clip.PatternID]
			if !ok {
				continue
			}
			for _, ev := range Flatten(tree, tree.Length(), instrumentID, clip.PatternID) {
				if ev.Time >= clip.Duration {
					continue
				}
				ev.Time += clip.Start
				events = append(events, ev)
			}
		}
	}
	return events
}

// ActiveEvents returns the event set the scheduler should consider for the
// current view mode. When the host supplied a precomputed event list and the
// project is in pattern mode, that list is used as-is.
func (p *Project) ActiveEvents() []NoteEvent {
	if p.ViewMode == TimelineMode {
		return p.TimelineEvents()
	}
	if len(p.Events) > 0 {
		return p.Events
	}
	return p.PatternEvents()
}

// TimelineTrackForInstrument resolves the timeline track governing an
// instrument track, via the timeline track mapping. Returns nil when the
// instrument is not under any timeline lane.
func (p *Project) TimelineTrackForInstrument(trackID string) *TimelineTrack {
	id, ok := p.TimelineTrackFor[trackID]
	if !ok {
		return nil
	}
	return p.Timeline.TrackByID(id)
}
