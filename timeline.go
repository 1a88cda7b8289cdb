package dawduction

import "fmt"

// TimelineTrackKind tells what a timeline track may carry. Effect and
// envelope instances placed on a track of the wrong kind are inert; this is
// validated at the processors, not here, so a misconfigured project still
// loads.
type TimelineTrackKind int

const (
	PatternTrack TimelineTrackKind = iota
	EffectTrack
	EnvelopeTrack

	NumTimelineTrackKinds
)

var timelineTrackKindNames = [NumTimelineTrackKinds]string{"pattern", "effect", "envelope"}

func (k TimelineTrackKind) String() string {
	if k < 0 || k >= NumTimelineTrackKinds {
		return fmt.Sprintf("TimelineTrackKind(%d)", int(k))
	}
	return timelineTrackKindNames[k]
}

func (k TimelineTrackKind) MarshalText() ([]byte, error) {
	if k < 0 || k >= NumTimelineTrackKinds {
		return nil, fmt.Errorf("invalid timeline track kind %d", int(k))
	}
	return []byte(timelineTrackKindNames[k]), nil
}

func (k *TimelineTrackKind) UnmarshalText(text []byte) error {
	for i, name := range timelineTrackKindNames {
		if name == string(text) {
			*k = TimelineTrackKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown timeline track kind %q", string(text))
}

type (
	// Timeline is the arrangement: an ordered set of timeline tracks with
	// clips placing patterns at absolute beat ranges, plus a total length in
	// beats that the transport loops over.
	Timeline struct {
		Tracks []TimelineTrack `yaml:"tracks" json:"tracks"`
		Length float64         `yaml:"length" json:"length"`
	}

	// TimelineTrack is one lane of the arrangement. Pattern tracks hold
	// clips; effect and envelope tracks hold timeline-scoped instances.
	// Volume, Muted and Soloed apply on top of the instrument tracks that
	// play under this lane's active clips.
	TimelineTrack struct {
		ID        string             `yaml:"id" json:"id"`
		Name      string             `yaml:"name,omitempty" json:"name,omitempty"`
		Kind      TimelineTrackKind  `yaml:"kind" json:"kind"`
		Clips     []Clip             `yaml:"clips,omitempty" json:"clips,omitempty"`
		Effects   []EffectInstance   `yaml:"effects,omitempty" json:"effects,omitempty"`
		Envelopes []EnvelopeInstance `yaml:"envelopes,omitempty" json:"envelopes,omitempty"`
		Volume    float64            `yaml:"volume" json:"volume"`
		Muted     bool               `yaml:"muted,omitempty" json:"muted,omitempty"`
		Soloed    bool               `yaml:"soloed,omitempty" json:"soloed,omitempty"`
	}

	// Clip places a pattern at an absolute beat range on a timeline track.
	Clip struct {
		ID        string  `yaml:"id" json:"id"`
		PatternID string  `yaml:"patternId" json:"patternId"`
		Start     float64 `yaml:"start" json:"start"`
		Duration  float64 `yaml:"duration" json:"duration"`
	}

	// EffectInstance binds an effect definition to a beat range. If both
	// TimelineTrackID and PatternID are empty, the instance is global.
	EffectInstance struct {
		ID              string  `yaml:"id" json:"id"`
		EffectID        string  `yaml:"effectId" json:"effectId"`
		Start           float64 `yaml:"start" json:"start"`
		Duration        float64 `yaml:"duration" json:"duration"`
		TimelineTrackID string  `yaml:"timelineTrackId,omitempty" json:"timelineTrackId,omitempty"`
		PatternID       string  `yaml:"patternId,omitempty" json:"patternId,omitempty"`
	}

	// EnvelopeInstance binds an envelope definition to a beat range, like
	// EffectInstance but producing control values instead of audio.
	EnvelopeInstance struct {
		ID              string  `yaml:"id" json:"id"`
		EnvelopeID      string  `yaml:"envelopeId" json:"envelopeId"`
		Start           float64 `yaml:"start" json:"start"`
		Duration        float64 `yaml:"duration" json:"duration"`
		TimelineTrackID string  `yaml:"timelineTrackId,omitempty" json:"timelineTrackId,omitempty"`
		PatternID       string  `yaml:"patternId,omitempty" json:"patternId,omitempty"`
		Reversed        bool    `yaml:"reversed,omitempty" json:"reversed,omitempty"`
	}
)

// Contains reports whether the half-open interval [Start, Start+Duration)
// covers the given beat.
func (c Clip) Contains(beat float64) bool {
	return beat >= c.Start && beat < c.Start+c.Duration
}

// Contains reports whether the instance is active at the given beat, i.e.
// beat falls in [Start, Start+Duration).
func (e EffectInstance) Contains(beat float64) bool {
	return beat >= e.Start && beat < e.Start+e.Duration
}

// Contains reports whether the instance is active at the given beat.
func (e EnvelopeInstance) Contains(beat float64) bool {
	return beat >= e.Start && beat < e.Start+e.Duration
}

// Copy makes a deep copy of a Timeline.
func (t *Timeline) Copy() Timeline {
	tracks := make([]TimelineTrack, len(t.Tracks))
	for i, tr := range t.Tracks {
		tracks[i] = tr.Copy()
	}
	return Timeline{Tracks: tracks, Length: t.Length}
}

// Copy makes a deep copy of a TimelineTrack.
func (t *TimelineTrack) Copy() TimelineTrack {
	ret := *t
	ret.Clips = append([]Clip(nil), t.Clips...)
	ret.Effects = append([]EffectInstance(nil), t.Effects...)
	ret.Envelopes = append([]EnvelopeInstance(nil), t.Envelopes...)
	return ret
}

// TrackByID returns a pointer to the timeline track with the given ID, or
// nil if absent.
func (t *Timeline) TrackByID(id string) *TimelineTrack {
	for i := range t.Tracks {
		if t.Tracks[i].ID == id {
			return &t.Tracks[i]
		}
	}
	return nil
}
