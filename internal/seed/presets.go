package seed

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var presetsFile []byte

type presetFile struct {
	Presets map[string]Options `yaml:"presets"`
}

// LoadPresets parses a preset document of the form used by presets.yml.
func LoadPresets(data []byte) (map[string]Options, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, opts := range f.Presets {
		if err := opts.validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return f.Presets, nil
}

// Preset returns the named built-in preset.
func Preset(name string) (Options, error) {
	presets, err := LoadPresets(presetsFile)
	if err != nil {
		return Options{}, err
	}
	opts, ok := presets[name]
	if !ok {
		return Options{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return opts, nil
}

// PresetNames lists the built-in presets in name order.
func PresetNames() []string {
	presets, err := LoadPresets(presetsFile)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
