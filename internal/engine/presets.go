package engine

import (
	"fmt"

	"github.com/meltforce/pacer/internal/model"
)

// Preset authoring. The collection is ordered; the active session must
// always reference an existing preset with at least one step, falling back
// to the built-in defaults when the collection would otherwise empty out.

// UpdatePreset replaces the preset with a matching id. An unknown id is a
// no-op. A preset that would end up with zero steps (or invalid ones) is
// rejected. When the active preset is updated, the session's step snapshot
// is refreshed and the index clamped; progress is otherwise preserved.
func (e *Engine) UpdatePreset(p model.IntervalPreset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("update preset: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	i, ok := findPreset(e.presets, p.ID)
	if !ok {
		return nil
	}
	e.presets[i] = p.Clone()
	e.store.SavePresets(e.presets)

	if e.state.PresetID != p.ID {
		return nil
	}
	st := &e.state
	snap := p.Clone()
	st.PresetName = snap.Name
	st.Steps = snap.Steps
	if st.CurrentIndex >= len(st.Steps) {
		st.CurrentIndex = len(st.Steps) - 1
	}
	// Banked progress may now exceed the (shortened) current step; roll it
	// forward rather than leave the invariant broken.
	e.normalizeLocked()
	if !e.state.IsRunning {
		e.cancelTickLocked()
	}
	e.store.SaveState(e.state)
	return nil
}

// AddPreset creates a new preset and makes it the active selection. With a
// base id it is a deep copy with fresh preset and step ids and a suffixed
// name; without one it is the minimal two-step default. An unknown base id
// is a no-op, reported by ok=false.
func (e *Engine) AddPreset(baseID string) (model.IntervalPreset, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return model.IntervalPreset{}, false
	}

	var p model.IntervalPreset
	if baseID == "" {
		p = model.NewMinimalPreset()
	} else {
		i, ok := findPreset(e.presets, baseID)
		if !ok {
			return model.IntervalPreset{}, false
		}
		p = e.presets[i].Duplicate()
	}

	e.presets = append(e.presets, p)
	e.cancelTickLocked()
	e.replaceStateLocked(p)
	e.store.SavePresets(e.presets)
	e.store.SaveState(e.state)
	return p.Clone(), true
}

// DeletePreset removes a preset from the collection. An unknown id is a
// no-op. Deleting the active preset falls back to another remaining preset,
// or to the built-in defaults when the collection empties; the engine never
// ends up with zero presets or a session referencing a nonexistent one.
func (e *Engine) DeletePreset(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	i, ok := findPreset(e.presets, id)
	if !ok {
		return
	}
	e.presets = append(e.presets[:i], e.presets[i+1:]...)
	if len(e.presets) == 0 {
		e.presets = model.DefaultPresets()
	}
	e.store.SavePresets(e.presets)

	if e.state.PresetID == id {
		e.cancelTickLocked()
		e.replaceStateLocked(e.presets[0])
		e.store.SaveState(e.state)
	}
}
