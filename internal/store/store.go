// Package store persists the preset collection and the live timer state as
// two independent opaque records in a key-value backend. Loads are tolerant
// of absent or corrupt data and saves never propagate errors; the engine
// must keep working in-memory when the backend misbehaves or is missing.
package store

import (
	"encoding/json"
	"log/slog"

	"github.com/meltforce/pacer/internal/model"
)

// KV is a durable key-value backend for opaque serialized blobs.
// Implementations must tolerate concurrent absence of data; a missing key
// is not an error.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Close() error
}

const (
	keyPresets    = "presets"
	keyTimerState = "timer_state"
)

// Adapter loads and saves the two persisted records through a KV backend.
type Adapter struct {
	kv  KV
	log *slog.Logger
}

// NewAdapter creates an Adapter over the given backend.
func NewAdapter(kv KV, log *slog.Logger) *Adapter {
	return &Adapter{kv: kv, log: log}
}

// LoadPresets returns the persisted preset collection. Absent, unparsable,
// or invalid data yields ok=false; the caller substitutes the built-in
// defaults.
func (a *Adapter) LoadPresets() ([]model.IntervalPreset, bool) {
	data, ok, err := a.kv.Get(keyPresets)
	if err != nil {
		a.log.Warn("loading presets", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var presets []model.IntervalPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		a.log.Warn("persisted presets unparsable, falling back to defaults", "error", err)
		return nil, false
	}
	if len(presets) == 0 {
		return nil, false
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			a.log.Warn("persisted preset invalid, falling back to defaults", "error", err)
			return nil, false
		}
	}
	return presets, true
}

// SavePresets writes the preset collection through. Failures are logged
// and swallowed.
func (a *Adapter) SavePresets(presets []model.IntervalPreset) {
	data, err := json.Marshal(presets)
	if err != nil {
		a.log.Warn("encoding presets", "error", err)
		return
	}
	if err := a.kv.Set(keyPresets, data); err != nil {
		a.log.Warn("saving presets", "error", err)
	}
}

// LoadState returns the persisted timer state. Absent, unparsable, or
// invalid data yields ok=false; the caller derives a fresh Idle state.
func (a *Adapter) LoadState() (model.TimerState, bool) {
	data, ok, err := a.kv.Get(keyTimerState)
	if err != nil {
		a.log.Warn("loading timer state", "error", err)
		return model.TimerState{}, false
	}
	if !ok {
		return model.TimerState{}, false
	}

	var st model.TimerState
	if err := json.Unmarshal(data, &st); err != nil {
		a.log.Warn("persisted timer state unparsable, starting fresh", "error", err)
		return model.TimerState{}, false
	}
	if err := st.Validate(); err != nil {
		a.log.Warn("persisted timer state invalid, starting fresh", "error", err)
		return model.TimerState{}, false
	}
	return st, true
}

// SaveState writes the timer state through. Failures are logged and
// swallowed.
func (a *Adapter) SaveState(st model.TimerState) {
	data, err := json.Marshal(st)
	if err != nil {
		a.log.Warn("encoding timer state", "error", err)
		return
	}
	if err := a.kv.Set(keyTimerState, data); err != nil {
		a.log.Warn("saving timer state", "error", err)
	}
}
