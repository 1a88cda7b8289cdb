package synth

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Niftys/dawduction"
	"gopkg.in/yaml.v2"
)

//go:embed presets/*
var presetFS embed.FS

type (
	// Preset is a named settings bundle for one instrument kind. Applying a
	// preset replaces the track's settings wholesale.
	Preset struct {
		Name     string                    `yaml:"-"`
		Kind     dawduction.InstrumentKind `yaml:"kind"`
		User     bool                      `yaml:"-"`
		Settings map[string]float64        `yaml:"settings"`
	}

	// Presets is the merged builtin and user preset library.
	Presets struct {
		List []Preset
	}
)

// LoadPresets loads the builtin presets and, when a user config directory
// exists, the user's own presets on top. A user preset with the same name as
// a builtin one sorts before it.
func LoadPresets() Presets {
	var p Presets
	p.loadFrom(presetFS, false)
	if configDir, err := os.UserConfigDir(); err == nil {
		userDir := filepath.Join(configDir, "dawduction")
		p.loadFrom(os.DirFS(userDir), true)
	}
	sort.Sort(p)
	return p
}

func (p *Presets) loadFrom(fsys fs.FS, userDefined bool) {
	fs.WalkDir(fsys, "presets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		var preset Preset
		if yaml.UnmarshalStrict(data, &preset) == nil {
			base := filepath.Base(path)
			noExt := base[:len(base)-len(filepath.Ext(base))]
			preset.Name = strings.ReplaceAll(noExt, "_", " ")
			preset.User = userDefined
			p.List = append(p.List, preset)
		}
		return nil
	})
}

// ForKind returns the presets applicable to one instrument kind, in library
// order.
func (p Presets) ForKind(kind dawduction.InstrumentKind) []Preset {
	var out []Preset
	for _, preset := range p.List {
		if preset.Kind == kind {
			out = append(out, preset)
		}
	}
	return out
}

// ByName finds a preset by its display name.
func (p Presets) ByName(name string) (Preset, bool) {
	for _, preset := range p.List {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// SaveUserPreset writes the settings of a track as a user preset under the
// user config directory, overwriting an existing preset of the same name.
func SaveUserPreset(name string, kind dawduction.InstrumentKind, settings map[string]float64) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(configDir, "dawduction", "presets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(Preset{Kind: kind, Settings: settings})
	if err != nil {
		return err
	}
	filename := strings.ReplaceAll(name, " ", "_") + ".yml"
	return os.WriteFile(filepath.Join(dir, filename), data, 0644)
}

func (p Presets) Len() int { return len(p.List) }
func (p Presets) Less(i, j int) bool {
	if p.List[i].Name == p.List[j].Name {
		return p.List[i].User && !p.List[j].User
	}
	return p.List[i].Name < p.List[j].Name
}
func (p Presets) Swap(i, j int) { p.List[i], p.List[j] = p.List[j], p.List[i] }
