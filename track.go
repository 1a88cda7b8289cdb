package dawduction

import "fmt"

// InstrumentKind is a closed enumeration of the available voice types. It
// replaces free-form string tags so that a kind unknown to the engine is a
// parse error at the project boundary instead of a silent fall-through in
// the render path.
type InstrumentKind int

const (
	// Drum kinds.
	Kick InstrumentKind = iota
	Snare
	HiHat
	Clap
	Tom
	Cymbal
	Shaker
	Rimshot
	// Melodic kinds.
	Subtractive
	FM
	Wavetable
	Supersaw
	Pluck
	Bass
	Pad
	Organ

	NumInstrumentKinds
)

var instrumentKindNames = [NumInstrumentKinds]string{
	"kick", "snare", "hihat", "clap", "tom", "cymbal", "shaker", "rimshot",
	"subtractive", "fm", "wavetable", "supersaw", "pluck", "bass", "pad", "organ",
}

func (k InstrumentKind) String() string {
	if k < 0 || k >= NumInstrumentKinds {
		return fmt.Sprintf("InstrumentKind(%d)", int(k))
	}
	return instrumentKindNames[k]
}

// IsDrum reports whether the kind is one of the drum voices. Drum voices
// ignore note duration and use fixed per-kind spectral recipes.
func (k InstrumentKind) IsDrum() bool {
	return k >= Kick && k <= Rimshot
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as their
// tag both in YAML and JSON project files.
func (k InstrumentKind) MarshalText() ([]byte, error) {
	if k < 0 || k >= NumInstrumentKinds {
		return nil, fmt.Errorf("invalid instrument kind %d", int(k))
	}
	return []byte(instrumentKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *InstrumentKind) UnmarshalText(text []byte) error {
	for i, name := range instrumentKindNames {
		if name == string(text) {
			*k = InstrumentKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown instrument kind %q", string(text))
}

type (
	// Track is one instrument lane: an instrument kind, the pattern tree it
	// plays, per-voice settings and the mixing state. The track exclusively
	// owns its pattern tree and settings; the runtime voice instance is
	// recreated, never shared, when Kind changes.
	Track struct {
		ID       string             `yaml:"id" json:"id"`
		Name     string             `yaml:"name,omitempty" json:"name,omitempty"`
		Kind     InstrumentKind     `yaml:"kind" json:"kind"`
		Pattern  *PatternNode       `yaml:"pattern,omitempty" json:"pattern,omitempty"`
		Settings map[string]float64 `yaml:"settings,omitempty" json:"settings,omitempty"`
		Volume   float64            `yaml:"volume" json:"volume"`
		Pan      float64            `yaml:"pan" json:"pan"`
		Muted    bool               `yaml:"muted,omitempty" json:"muted,omitempty"`
		Soloed   bool               `yaml:"soloed,omitempty" json:"soloed,omitempty"`
	}
)

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	settings := make(map[string]float64, len(t.Settings))
	for k, v := range t.Settings {
		settings[k] = v
	}
	ret := *t
	ret.Pattern = t.Pattern.Copy()
	ret.Settings = settings
	return ret
}
