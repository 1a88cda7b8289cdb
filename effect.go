package dawduction

import "fmt"

// EffectKind is the closed enumeration of timeline effect types.
type EffectKind int

const (
	Reverb EffectKind = iota
	Delay
	Filter
	Distortion
	Compressor
	Chorus

	NumEffectKinds
)

var effectKindNames = [NumEffectKinds]string{
	"reverb", "delay", "filter", "distortion", "compressor", "chorus",
}

func (k EffectKind) String() string {
	if k < 0 || k >= NumEffectKinds {
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
	return effectKindNames[k]
}

func (k EffectKind) MarshalText() ([]byte, error) {
	if k < 0 || k >= NumEffectKinds {
		return nil, fmt.Errorf("invalid effect kind %d", int(k))
	}
	return []byte(effectKindNames[k]), nil
}

func (k *EffectKind) UnmarshalText(text []byte) error {
	for i, name := range effectKindNames {
		if name == string(text) {
			*k = EffectKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown effect kind %q", string(text))
}

// EffectDef is an effect definition that timeline effect instances refer to
// by ID. Settings are per-kind; missing keys fall back to the defaults in
// EffectDefaults.
type EffectDef struct {
	ID       string             `yaml:"id" json:"id"`
	Kind     EffectKind         `yaml:"kind" json:"kind"`
	Settings map[string]float64 `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Copy makes a deep copy of an EffectDef.
func (e *EffectDef) Copy() EffectDef {
	settings := make(map[string]float64, len(e.Settings))
	for k, v := range e.Settings {
		settings[k] = v
	}
	return EffectDef{ID: e.ID, Kind: e.Kind, Settings: settings}
}

// EffectDefaults documents the parameters each effect kind takes and their
// fallback values. Malformed or missing settings never fail a voice; they
// resolve here instead.
var EffectDefaults = map[EffectKind]map[string]float64{
	Reverb: {
		"mix":   0.3,
		"decay": 0.5,
	},
	Delay: {
		"time":     0.25, // beats
		"feedback": 0.4,
		"mix":      0.35,
	},
	Filter: {
		"cutoff":    0.8, // 0..1 of the audible range
		"resonance": 0.2,
		"drive":     1.0,
	},
	Distortion: {
		"drive": 2.5,
		"mix":   0.5,
	},
	Compressor: {
		"threshold": 0.5,
		"ratio":     4.0,
		"attack":    0.01, // seconds
		"release":   0.25,
	},
	Chorus: {
		"rate":  0.8,   // Hz
		"depth": 0.004, // seconds of tap modulation
		"mix":   0.5,
	},
}

// Setting resolves one parameter of the definition, falling back to the
// kind's default when unset.
func (e *EffectDef) Setting(key string) float64 {
	if v, ok := e.Settings[key]; ok {
		return v
	}
	return EffectDefaults[e.Kind][key]
}
