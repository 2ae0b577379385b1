package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"gopkg.in/yaml.v3"
)

// AreaPreset is a named set of area segments for a known exam layout.
type AreaPreset struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description" yaml:"description"`
	Areas       []models.AreaSegment `json:"areas" yaml:"areas"`
}

type presetFile struct {
	Presets []AreaPreset `yaml:"presets"`
}

// Presets indexes area presets by lower-cased name.
type Presets map[string]AreaPreset

// DefaultPresets returns the ENEM layouts: the full exam and each day.
func DefaultPresets() Presets {
	lc := models.AreaSegment{Area: "LC", Start: 1, End: 45}
	ch := models.AreaSegment{Area: "CH", Start: 46, End: 90}
	cn := models.AreaSegment{Area: "CN", Start: 91, End: 135}
	mt := models.AreaSegment{Area: "MT", Start: 136, End: 180}

	return Presets{
		"enem": {
			Name:        "enem",
			Description: "ENEM, 180 questions in four areas",
			Areas:       []models.AreaSegment{lc, ch, cn, mt},
		},
		"enem-dia1": {
			Name:        "enem-dia1",
			Description: "ENEM day 1, languages and humanities",
			Areas:       []models.AreaSegment{lc, ch},
		},
		"enem-dia2": {
			Name:        "enem-dia2",
			Description: "ENEM day 2, natural sciences and mathematics",
			Areas:       []models.AreaSegment{cn, mt},
		},
	}
}

// LoadPresets returns the default presets merged with those in path. An
// empty path yields the defaults; file entries replace defaults of the same name.
func LoadPresets(path string) (Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open area presets: %w", err)
	}
	defer f.Close()

	extra, err := ParsePresets(f)
	if err != nil {
		return nil, fmt.Errorf("parse area presets %s: %w", path, err)
	}
	for name, preset := range extra {
		presets[name] = preset
	}
	return presets, nil
}

// ParsePresets decodes a YAML document of the form:
//
//	presets:
//	  - name: bimestral
//	    areas:
//	      - {area: MAT, start: 1, end: 10}
func ParsePresets(r io.Reader) (Presets, error) {
	var doc presetFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}

	presets := make(Presets, len(doc.Presets))
	for i, preset := range doc.Presets {
		name := strings.ToLower(strings.TrimSpace(preset.Name))
		if name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
		if len(preset.Areas) == 0 {
			return nil, fmt.Errorf("preset %q has no areas", name)
		}
		for _, area := range preset.Areas {
			if area.Area == "" || area.Start < 1 || area.End < area.Start {
				return nil, fmt.Errorf("preset %q: invalid area %q %d-%d", name, area.Area, area.Start, area.End)
			}
		}
		preset.Name = name
		presets[name] = preset
	}
	return presets, nil
}

// Lookup finds a preset by case-insensitive name.
func (p Presets) Lookup(name string) (AreaPreset, bool) {
	preset, ok := p[strings.ToLower(strings.TrimSpace(name))]
	return preset, ok
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the presets sorted by name.
func (p Presets) List() []AreaPreset {
	out := make([]AreaPreset, 0, len(p))
	for _, name := range p.Names() {
		out = append(out, p[name])
	}
	return out
}
