package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is the semantic role of a step within a workout. It selects the
// audio cue tone at step boundaries and drives UI styling.
type Phase string

const (
	PhaseWarmup     Phase = "warmup"
	PhaseWork       Phase = "work"
	PhaseRest       Phase = "rest"
	PhaseCooldown   Phase = "cooldown"
	PhaseTransition Phase = "transition"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseWarmup, PhaseWork, PhaseRest, PhaseCooldown, PhaseTransition:
		return true
	}
	return false
}

// IntervalStep is one atomic timed segment of a workout. Steps are immutable
// while a session is ticking; preset authoring replaces them between runs.
type IntervalStep struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	DurationMs int64  `json:"durationMs" yaml:"duration_ms"`
	Phase      Phase  `json:"phase" yaml:"phase"`
}

// Validate checks the step invariants: positive duration and a known phase.
func (s IntervalStep) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("step %q: missing id", s.Label)
	}
	if s.DurationMs <= 0 {
		return fmt.Errorf("step %q: duration must be positive, got %d", s.Label, s.DurationMs)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("step %q: unknown phase %q", s.Label, s.Phase)
	}
	return nil
}

// NewStepID generates a unique step identifier.
func NewStepID() string {
	return uuid.NewString()
}
