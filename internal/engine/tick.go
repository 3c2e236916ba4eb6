package engine

import "github.com/meltforce/pacer/internal/model"

// Tick scheduling and the two progression paths: the periodic tick while
// running, and the wall-clock resync after the host suspends ticks.
//
// A pending tick is cancelled whenever the session stops being Running.
// Cancellation is a hard requirement, not best-effort: the generation
// counter guards against a callback that already fired racing a newer
// session, so a stale tick can never mutate state it does not own.

func (e *Engine) scheduleTickLocked() {
	gen := e.gen
	e.pending = e.clock.AfterFunc(e.tickInterval, func() {
		e.onTick(gen)
	})
}

func (e *Engine) cancelTickLocked() {
	e.gen++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen || !e.state.IsRunning {
		return
	}
	e.tickLocked()
	e.store.SaveState(e.state)
	if e.state.IsRunning {
		e.scheduleTickLocked()
	}
}

// tickLocked reconciles the running session against the clock once.
// Within a step it banks elapsed time and rebases StartedAt, bounding the
// magnitude of any single subtraction. At a step boundary it emits the cue
// and either advances or terminates at Completed.
func (e *Engine) tickLocked() {
	now := e.nowMs()
	st := &e.state
	elapsed := st.ElapsedMs + (now - st.StartedAt)
	step := st.CurrentStep()

	if elapsed < step.DurationMs {
		st.ElapsedMs = elapsed
		st.StartedAt = now
		e.lastActiveMs = now
		return
	}

	e.cueLocked(step.Phase)
	if st.CurrentIndex+1 < len(st.Steps) {
		st.CurrentIndex++
		st.ElapsedMs = 0
		st.StartedAt = now
		e.lastActiveMs = now
		return
	}
	st.ElapsedMs = step.DurationMs
	st.IsRunning = false
	st.StartedAt = 0
	e.lastActiveMs = now
}

// cueLocked emits the boundary tone for a just-finished step, work steps
// sounding higher than the rest.
func (e *Engine) cueLocked(phase model.Phase) {
	if e.state.Muted || !e.audio.Supported() {
		return
	}
	freq := toneOtherHz
	if phase == model.PhaseWork {
		freq = toneWorkHz
	}
	e.audio.PlayTone(freq, toneDurationMs)
}

// Resync reconciles the session against wall-clock time after a period in
// which scheduled ticks could not run. The host calls it once per
// "became active again" signal. Skipped step boundaries get no replayed
// cues; a gap above one second surfaces a drift advisory, which never
// alters the computed state.
func (e *Engine) Resync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	now := e.nowMs()
	diff := now - e.lastActiveMs
	e.lastActiveMs = now
	if !e.state.IsRunning {
		return
	}

	st := &e.state
	elapsed := st.ElapsedMs + diff
	index := st.CurrentIndex
	for elapsed >= st.Steps[index].DurationMs && index+1 < len(st.Steps) {
		elapsed -= st.Steps[index].DurationMs
		index++
	}

	if elapsed >= st.Steps[index].DurationMs {
		// Exhausted the sequence while backgrounded.
		e.cancelTickLocked()
		st.CurrentIndex = index
		st.ElapsedMs = st.Steps[index].DurationMs
		st.IsRunning = false
		st.StartedAt = 0
	} else {
		st.CurrentIndex = index
		st.ElapsedMs = elapsed
		st.StartedAt = now
		e.cancelTickLocked()
		e.scheduleTickLocked()
	}

	if diff > resyncAdvisoryAfterMs {
		e.setAdvisoryLocked("resynced after backgrounding; accuracy may have drifted")
		e.log.Info("resynced after backgrounding",
			"gap_ms", diff, "step", st.CurrentIndex, "elapsed_ms", st.ElapsedMs)
	}
	e.store.SaveState(e.state)
}
