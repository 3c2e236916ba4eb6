package model

import "testing"

const validPresetYAML = `
presets:
  - name: "Hill Sprints"
    steps:
      - label: "Warmup"
        duration_ms: 300000
        phase: warmup
      - label: "Sprint"
        duration_ms: 30000
        phase: work
      - label: "Walk down"
        duration_ms: 90000
        phase: rest
`

// TestParsePresetFile verifies a valid document parses and gets ids
// generated for every preset and step.
func TestParsePresetFile(t *testing.T) {
	presets, err := ParsePresetFile([]byte(validPresetYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(presets) != 1 {
		t.Fatalf("got %d presets, want 1", len(presets))
	}
	p := presets[0]
	if p.Name != "Hill Sprints" || p.ID == "" {
		t.Errorf("preset = %q id=%q", p.Name, p.ID)
	}
	if len(p.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(p.Steps))
	}
	for i, s := range p.Steps {
		if s.ID == "" {
			t.Errorf("step %d has no generated id", i)
		}
	}
	if p.Steps[1].Phase != PhaseWork || p.Steps[1].DurationMs != 30000 {
		t.Errorf("sprint step = %+v", p.Steps[1])
	}
}

// TestParsePresetFileKeepsExplicitIDs verifies provided ids survive.
func TestParsePresetFileKeepsExplicitIDs(t *testing.T) {
	doc := `
presets:
  - id: "my-preset"
    name: "Custom"
    steps:
      - id: "my-step"
        label: "Work"
        duration_ms: 1000
        phase: work
`
	presets, err := ParsePresetFile([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if presets[0].ID != "my-preset" || presets[0].Steps[0].ID != "my-step" {
		t.Errorf("explicit ids replaced: %+v", presets[0])
	}
}

// TestParsePresetFileRejectsInvalid verifies broken documents error out:
// bad YAML, no presets, and invariant violations.
func TestParsePresetFileRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "presets: [",
		"empty":         "presets: []",
		"zero duration": "presets:\n  - name: X\n    steps:\n      - label: W\n        duration_ms: 0\n        phase: work\n",
		"bad phase":     "presets:\n  - name: X\n    steps:\n      - label: W\n        duration_ms: 1000\n        phase: sprint\n",
	}
	for name, doc := range cases {
		if _, err := ParsePresetFile([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
