package model

import (
	"fmt"

	"github.com/google/uuid"
)

// IntervalPreset is a named, ordered, non-empty sequence of steps. Identity
// is ID; Name is display-only and may collide between presets.
type IntervalPreset struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Steps []IntervalStep `json:"steps" yaml:"steps"`
}

// Validate checks the preset invariants, including every step's.
func (p IntervalPreset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("preset %q: missing id", p.Name)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("preset %q: must have at least one step", p.Name)
	}
	for _, s := range p.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the preset with the same ids. Used to snapshot
// steps into a TimerState so later edits never perturb a running session.
func (p IntervalPreset) Clone() IntervalPreset {
	out := p
	out.Steps = make([]IntervalStep, len(p.Steps))
	copy(out.Steps, p.Steps)
	return out
}

// Duplicate returns a deep copy with freshly generated preset and step ids
// and the name suffixed, for the duplicate-preset authoring operation.
func (p IntervalPreset) Duplicate() IntervalPreset {
	out := p.Clone()
	out.ID = NewPresetID()
	out.Name = p.Name + " Copy"
	for i := range out.Steps {
		out.Steps[i].ID = NewStepID()
	}
	return out
}

// TotalDurationMs is the sum of all step durations.
func (p IntervalPreset) TotalDurationMs() int64 {
	var total int64
	for _, s := range p.Steps {
		total += s.DurationMs
	}
	return total
}

// NewPresetID generates a unique preset identifier.
func NewPresetID() string {
	return uuid.NewString()
}

// NewMinimalPreset returns the default two-step preset created when a user
// adds a preset without a base: one work step and one rest step.
func NewMinimalPreset() IntervalPreset {
	return IntervalPreset{
		ID:   NewPresetID(),
		Name: "New Interval",
		Steps: []IntervalStep{
			{ID: NewStepID(), Label: "Work", DurationMs: 30000, Phase: PhaseWork},
			{ID: NewStepID(), Label: "Rest", DurationMs: 15000, Phase: PhaseRest},
		},
	}
}

// DefaultPresets returns the built-in preset set used when the persisted
// collection is absent, unparsable, or emptied by deletion.
func DefaultPresets() []IntervalPreset {
	return []IntervalPreset{
		{
			ID:   NewPresetID(),
			Name: "Tabata 4x",
			Steps: []IntervalStep{
				{ID: NewStepID(), Label: "Warmup", DurationMs: 60000, Phase: PhaseWarmup},
				{ID: NewStepID(), Label: "Work 1", DurationMs: 20000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Rest 1", DurationMs: 10000, Phase: PhaseRest},
				{ID: NewStepID(), Label: "Work 2", DurationMs: 20000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Rest 2", DurationMs: 10000, Phase: PhaseRest},
				{ID: NewStepID(), Label: "Work 3", DurationMs: 20000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Rest 3", DurationMs: 10000, Phase: PhaseRest},
				{ID: NewStepID(), Label: "Work 4", DurationMs: 20000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Cooldown", DurationMs: 60000, Phase: PhaseCooldown},
			},
		},
		{
			ID:   NewPresetID(),
			Name: "EMOM 10",
			Steps: []IntervalStep{
				{ID: NewStepID(), Label: "Warmup", DurationMs: 120000, Phase: PhaseWarmup},
				{ID: NewStepID(), Label: "Work", DurationMs: 45000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Transition", DurationMs: 15000, Phase: PhaseTransition},
				{ID: NewStepID(), Label: "Work", DurationMs: 45000, Phase: PhaseWork},
				{ID: NewStepID(), Label: "Cooldown", DurationMs: 120000, Phase: PhaseCooldown},
			},
		},
	}
}
