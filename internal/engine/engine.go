// Package engine implements the interval timer state machine: tick
// progression, pause/resume/reset, preset selection and authoring, and the
// background-drift resync that keeps step accounting wall-clock-accurate
// when the host suspends scheduled ticks.
//
// The engine owns the canonical TimerState and preset collection. Every
// operation computes the next state under one lock, performs audio and
// wake-lock side effects, and writes the result through the persistence
// adapter. Time comes from an injected clock so tests drive it directly.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meltforce/pacer/internal/model"
	"github.com/meltforce/pacer/internal/platform"
	"github.com/meltforce/pacer/internal/store"
)

// DefaultTickInterval is the target tick cadence while running.
// Correctness does not depend on it; ticks reconcile against the clock.
const DefaultTickInterval = 250 * time.Millisecond

const (
	// Backgrounding longer than this gets a drift advisory on resync.
	resyncAdvisoryAfterMs = 1000

	// Advisories auto-dismiss after this long.
	advisoryTTL = 5 * time.Second

	toneWorkHz     = 880
	toneOtherHz    = 440
	toneDurationMs = 200
)

// Status is the read model handed to the UI layer: the raw state plus the
// derived per-step values and the latest advisory, captured atomically.
type Status struct {
	State          model.TimerState   `json:"state"`
	CurrentStep    model.IntervalStep `json:"currentStep"`
	RemainingMs    int64              `json:"remainingMs"`
	TotalElapsedMs int64              `json:"totalElapsedMs"`
	Advisory       string             `json:"advisory,omitempty"`
}

// Options configures a new Engine. Store is required; everything else has
// a working default.
type Options struct {
	Store        *store.Adapter
	Clock        clockwork.Clock
	Audio        platform.AudioCue
	WakeLock     platform.WakeLock
	TickInterval time.Duration
	Log          *slog.Logger
}

// Engine is the timer state machine. All methods are safe for concurrent
// use; each one is a single atomic state replacement.
type Engine struct {
	mu    sync.Mutex
	clock clockwork.Clock
	store *store.Adapter
	audio platform.AudioCue
	wake  platform.WakeLock
	log   *slog.Logger

	tickInterval time.Duration

	presets []model.IntervalPreset
	state   model.TimerState

	// lastActiveMs is the reference point for resync diffs. It moves on
	// start, on every committed tick, and on every resync, so a resync
	// posted while ticking normally never double-counts elapsed time.
	lastActiveMs int64

	advisory      string
	advisoryUntil int64

	pending clockwork.Timer // scheduled tick, nil when none
	gen     uint64          // bumped to invalidate stale tick callbacks
	closed  bool
}

// New creates an Engine, loading presets and timer state from the store.
// An absent or corrupt preset collection is replaced by the built-in
// defaults; an absent or corrupt timer state becomes a fresh Idle session
// on the first preset. A state persisted as running is demoted to Paused:
// no scheduler was alive since it was saved, so its banked progress is
// kept but the session waits for an explicit start.
func New(opts Options) *Engine {
	e := &Engine{
		clock:        opts.Clock,
		store:        opts.Store,
		audio:        opts.Audio,
		wake:         opts.WakeLock,
		log:          opts.Log,
		tickInterval: opts.TickInterval,
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.audio == nil {
		e.audio = platform.NopAudio{}
	}
	if e.wake == nil {
		e.wake = platform.NopWakeLock{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.tickInterval <= 0 {
		e.tickInterval = DefaultTickInterval
	}

	presets, ok := e.store.LoadPresets()
	if !ok {
		presets = model.DefaultPresets()
		e.store.SavePresets(presets)
	}
	e.presets = presets

	st, ok := e.store.LoadState()
	if ok {
		if _, found := findPreset(e.presets, st.PresetID); !found {
			// The saved session references a preset that no longer
			// exists; derive a fresh one instead.
			ok = false
		}
	}
	if !ok {
		st = model.NewTimerState(e.presets[0])
	} else {
		if st.IsRunning {
			st.IsRunning = false
			st.StartedAt = 0
			e.log.Info("restored running session as paused",
				"preset", st.PresetName, "step", st.CurrentIndex, "banked_ms", st.ElapsedMs)
		}
		// A wake-lock grant never survives the process; the user
		// re-requests it.
		st.KeepAwake = false
	}
	e.state = st
	e.normalizeLocked()
	e.lastActiveMs = e.nowMs()
	e.store.SaveState(e.state)
	return e
}

// Close cancels any pending tick and releases a held wake lock. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTickLocked()
	if e.state.KeepAwake {
		e.wake.Release()
		e.state.KeepAwake = false
		e.store.SaveState(e.state)
	}
	e.closed = true
}

func (e *Engine) nowMs() int64 {
	return e.clock.Now().UnixMilli()
}

func findPreset(presets []model.IntervalPreset, id string) (int, bool) {
	for i, p := range presets {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

// normalizeLocked rolls a state whose elapsed reached or passed the current
// step's duration forward to the step it actually belongs in, terminating
// at Completed when the sequence is exhausted. It emits no cues.
func (e *Engine) normalizeLocked() {
	st := &e.state
	for st.ElapsedMs >= st.Steps[st.CurrentIndex].DurationMs {
		if st.CurrentIndex+1 < len(st.Steps) {
			st.ElapsedMs -= st.Steps[st.CurrentIndex].DurationMs
			st.CurrentIndex++
			continue
		}
		st.ElapsedMs = st.Steps[st.CurrentIndex].DurationMs
		st.IsRunning = false
		st.StartedAt = 0
		return
	}
}

// Start transitions Idle or Paused to Running, resuming in place: banked
// elapsed is kept and StartedAt rebased to now. Running and Completed
// sessions are left alone.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state.IsRunning || e.state.Completed() {
		return
	}
	now := e.nowMs()
	e.state.IsRunning = true
	e.state.StartedAt = now
	e.lastActiveMs = now
	e.store.SaveState(e.state)
	e.scheduleTickLocked()
}

// Pause banks progress since StartedAt and stops the tick loop. Progress
// past a step boundary rolls forward exactly as a tick would, minus the
// audio cues.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.state.IsRunning {
		return
	}
	e.cancelTickLocked()
	now := e.nowMs()
	e.state.ElapsedMs += now - e.state.StartedAt
	e.state.IsRunning = false
	e.state.StartedAt = 0
	e.normalizeLocked()
	e.lastActiveMs = now
	e.store.SaveState(e.state)
}

// Reset returns to the Idle state of the same preset: index 0, nothing
// banked, not running. Mute and keep-awake settings survive.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelTickLocked()
	i, ok := findPreset(e.presets, e.state.PresetID)
	if !ok {
		i = 0
	}
	e.replaceStateLocked(e.presets[i])
	e.store.SaveState(e.state)
}

// SelectPreset discards the current session and creates a fresh Idle state
// for the named preset. Unknown ids are a no-op.
func (e *Engine) SelectPreset(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	i, ok := findPreset(e.presets, id)
	if !ok {
		return
	}
	e.cancelTickLocked()
	e.replaceStateLocked(e.presets[i])
	e.store.SaveState(e.state)
}

// replaceStateLocked swaps in a fresh Idle state for p, carrying over the
// session settings that belong to the user rather than the session.
func (e *Engine) replaceStateLocked(p model.IntervalPreset) {
	muted, keepAwake := e.state.Muted, e.state.KeepAwake
	e.state = model.NewTimerState(p)
	e.state.Muted = muted
	e.state.KeepAwake = keepAwake
}

// ToggleMute flips the mute setting.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.state.Muted = !e.state.Muted
	e.store.SaveState(e.state)
}

// ToggleKeepAwake requests or releases the screen wake lock. KeepAwake
// reflects the actual grant: an unsupported or denied lock leaves it false
// and surfaces an advisory.
func (e *Engine) ToggleKeepAwake() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.state.KeepAwake {
		e.wake.Release()
		e.state.KeepAwake = false
	} else if !e.wake.Supported() || !e.wake.Acquire() {
		e.state.KeepAwake = false
		e.setAdvisoryLocked("keep-awake not supported or denied")
	} else {
		e.state.KeepAwake = true
	}
	e.store.SaveState(e.state)
}

// WakeLockRevoked is the host's signal that a previously granted lock was
// taken away externally (e.g. the page was hidden). The engine reflects
// the loss without re-acquiring.
func (e *Engine) WakeLockRevoked() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.state.KeepAwake {
		return
	}
	e.state.KeepAwake = false
	e.setAdvisoryLocked("screen wake lock released by the system")
	e.store.SaveState(e.state)
}

func (e *Engine) setAdvisoryLocked(msg string) {
	e.advisory = msg
	e.advisoryUntil = e.nowMs() + advisoryTTL.Milliseconds()
}

// --- Read accessors ---

// State returns a snapshot copy of the current TimerState.
func (e *Engine) State() model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() model.TimerState {
	st := e.state
	st.Steps = make([]model.IntervalStep, len(e.state.Steps))
	copy(st.Steps, e.state.Steps)
	return st
}

// Presets returns a deep copy of the preset collection.
func (e *Engine) Presets() []model.IntervalPreset {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.IntervalPreset, len(e.presets))
	for i, p := range e.presets {
		out[i] = p.Clone()
	}
	return out
}

// CurrentStep returns the step the session is currently in.
func (e *Engine) CurrentStep() model.IntervalStep {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentStep()
}

// liveElapsedLocked is elapsed time within the current step including the
// span since the last StartedAt rebase while running.
func (e *Engine) liveElapsedLocked() int64 {
	elapsed := e.state.ElapsedMs
	if e.state.IsRunning {
		elapsed += e.nowMs() - e.state.StartedAt
	}
	return elapsed
}

// RemainingMs returns time left in the current step, never negative.
func (e *Engine) RemainingMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remainingLocked()
}

func (e *Engine) remainingLocked() int64 {
	r := e.state.CurrentStep().DurationMs - e.liveElapsedLocked()
	if r < 0 {
		return 0
	}
	return r
}

// TotalElapsedMs returns cumulative time into the current step.
func (e *Engine) TotalElapsedMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.liveElapsedLocked()
}

// Advisory returns the latest advisory message, or empty once it has
// auto-dismissed.
func (e *Engine) Advisory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advisoryLocked()
}

func (e *Engine) advisoryLocked() string {
	if e.advisory == "" || e.nowMs() >= e.advisoryUntil {
		return ""
	}
	return e.advisory
}

// Status captures the full read model in one atomic snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:          e.snapshotLocked(),
		CurrentStep:    e.state.CurrentStep(),
		RemainingMs:    e.remainingLocked(),
		TotalElapsedMs: e.liveElapsedLocked(),
		Advisory:       e.advisoryLocked(),
	}
}
