package model

import "fmt"

// TimerState is the live workout session. Steps is a snapshot copy of the
// selected preset, not a live reference, so editing other presets never
// perturbs a running session.
//
// Exactly one of these holds: IsRunning with StartedAt set, or !IsRunning
// with StartedAt zero. ElapsedMs is progress banked into the current step
// since the last StartedAt rebase.
type TimerState struct {
	PresetID     string         `json:"presetId"`
	PresetName   string         `json:"presetName"`
	Steps        []IntervalStep `json:"steps"`
	CurrentIndex int            `json:"currentIndex"`
	IsRunning    bool           `json:"isRunning"`
	StartedAt    int64          `json:"startedAt,omitempty"` // unix ms; 0 when not running
	ElapsedMs    int64          `json:"elapsedMs"`
	Muted        bool           `json:"muted"`
	KeepAwake    bool           `json:"keepAwake"`
}

// NewTimerState returns the Idle state of the given preset: index 0,
// nothing banked, not running. Mute and keep-awake are session settings
// and start off.
func NewTimerState(p IntervalPreset) TimerState {
	snap := p.Clone()
	return TimerState{
		PresetID:   snap.ID,
		PresetName: snap.Name,
		Steps:      snap.Steps,
	}
}

// CurrentStep returns the step CurrentIndex points at.
func (st TimerState) CurrentStep() IntervalStep {
	return st.Steps[st.CurrentIndex]
}

// Completed reports whether the session has run through every step.
func (st TimerState) Completed() bool {
	return !st.IsRunning &&
		st.CurrentIndex == len(st.Steps)-1 &&
		st.ElapsedMs == st.Steps[st.CurrentIndex].DurationMs
}

// Validate checks the structural invariants of a state, typically one
// loaded from persistence. It does not reconcile wall-clock drift.
func (st TimerState) Validate() error {
	if len(st.Steps) == 0 {
		return fmt.Errorf("timer state: no steps")
	}
	for _, s := range st.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("timer state: %w", err)
		}
	}
	if st.CurrentIndex < 0 || st.CurrentIndex >= len(st.Steps) {
		return fmt.Errorf("timer state: index %d out of range [0,%d)", st.CurrentIndex, len(st.Steps))
	}
	if st.IsRunning != (st.StartedAt != 0) {
		return fmt.Errorf("timer state: isRunning=%v but startedAt=%d", st.IsRunning, st.StartedAt)
	}
	if st.ElapsedMs < 0 || st.ElapsedMs > st.CurrentStep().DurationMs {
		return fmt.Errorf("timer state: elapsed %dms outside step duration %dms", st.ElapsedMs, st.CurrentStep().DurationMs)
	}
	return nil
}
