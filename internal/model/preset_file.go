package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PresetFile is the on-disk YAML document used to seed or import presets.
//
//	presets:
//	  - name: "Tabata 4x"
//	    steps:
//	      - label: "Warmup"
//	        duration_ms: 60000
//	        phase: warmup
//
// Ids may be omitted; missing ones are generated on parse.
type PresetFile struct {
	Presets []IntervalPreset `yaml:"presets"`
}

// ParsePresetFile parses a preset YAML document, generates any missing
// preset or step ids, and validates the result.
func ParsePresetFile(data []byte) ([]IntervalPreset, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preset file: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("preset file contains no presets")
	}

	for i := range file.Presets {
		p := &file.Presets[i]
		if p.ID == "" {
			p.ID = NewPresetID()
		}
		for j := range p.Steps {
			if p.Steps[j].ID == "" {
				p.Steps[j].ID = NewStepID()
			}
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Presets, nil
}
