package engine

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meltforce/pacer/internal/model"
	"github.com/meltforce/pacer/internal/store"
)

type tone struct {
	freq, dur int
}

type fakeAudio struct {
	mu    sync.Mutex
	tones []tone
}

func (a *fakeAudio) Supported() bool { return true }

func (a *fakeAudio) PlayTone(frequencyHz, durationMs int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tones = append(a.tones, tone{frequencyHz, durationMs})
}

func (a *fakeAudio) recorded() []tone {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]tone, len(a.tones))
	copy(out, a.tones)
	return out
}

type fakeWakeLock struct {
	supported bool
	grant     bool
	held      bool
}

func (w *fakeWakeLock) Supported() bool { return w.supported }

func (w *fakeWakeLock) Acquire() bool {
	if w.grant {
		w.held = true
	}
	return w.grant
}

func (w *fakeWakeLock) Release() { w.held = false }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) (*Engine, *clockwork.FakeClock, *fakeAudio, *fakeWakeLock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	audio := &fakeAudio{}
	wl := &fakeWakeLock{supported: true, grant: true}
	log := testLogger()
	e := New(Options{
		Store:    store.NewAdapter(store.NewMemory(), log),
		Clock:    fc,
		Audio:    audio,
		WakeLock: wl,
		Log:      log,
	})
	t.Cleanup(e.Close)
	return e, fc, audio, wl
}

// tickNow runs one tick against the current clock, the way the scheduler
// would. Ticks reconcile against wall time, so an extra invocation at the
// same instant is a no-op and tests stay deterministic regardless of when
// the fake clock fires the scheduled callback.
func (e *Engine) tickNow() {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	e.onTick(gen)
}

// suspendTicks simulates the host freezing the cooperative scheduler while
// backgrounded: the pending callback never fires.
func (e *Engine) suspendTicks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTickLocked()
}

// advanceTicking moves the clock forward in tick-sized increments, running
// a tick at each one, i.e. a session that stays foregrounded.
func advanceTicking(e *Engine, fc *clockwork.FakeClock, d time.Duration) {
	for rest := d; rest > 0; rest -= DefaultTickInterval {
		step := DefaultTickInterval
		if rest < step {
			step = rest
		}
		fc.Advance(step)
		e.tickNow()
	}
}

// TestNewEngineStartsIdleOnDefaults verifies that a fresh engine with an
// empty store lands on the built-in preset set, Idle at step zero.
func TestNewEngineStartsIdleOnDefaults(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	presets := e.Presets()
	if len(presets) == 0 {
		t.Fatal("expected built-in presets")
	}
	st := e.State()
	if st.PresetID != presets[0].ID {
		t.Errorf("state references %q, want first preset %q", st.PresetID, presets[0].ID)
	}
	if st.IsRunning || st.CurrentIndex != 0 || st.ElapsedMs != 0 {
		t.Errorf("expected Idle state, got %+v", st)
	}
}

// TestTickAccuracyScenarioA runs the Tabata 4x preset continuously for 65 s
// and checks the engine sits 5 s into the first work step.
func TestTickAccuracyScenarioA(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 65*time.Second)

	st := e.State()
	if st.CurrentIndex != 1 {
		t.Fatalf("currentIndex = %d, want 1", st.CurrentIndex)
	}
	if st.CurrentStep().Phase != model.PhaseWork {
		t.Errorf("phase = %s, want work", st.CurrentStep().Phase)
	}
	if st.ElapsedMs != 5000 {
		t.Errorf("elapsedMs = %d, want 5000", st.ElapsedMs)
	}
	if got := e.RemainingMs(); got != 15000 {
		t.Errorf("remainingMs = %d, want 15000", got)
	}
	if !st.IsRunning {
		t.Error("expected session still running")
	}
}

// TestResyncScenarioB starts the Tabata 4x preset, backgrounds it for
// 100 s with no intervening ticks, and checks the resync lands 10 s into
// the second work step, still running.
func TestResyncScenarioB(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	e.suspendTicks()
	fc.Advance(100 * time.Second)
	e.Resync()

	st := e.State()
	if st.CurrentIndex != 3 {
		t.Fatalf("currentIndex = %d, want 3", st.CurrentIndex)
	}
	if st.ElapsedMs != 10000 {
		t.Errorf("elapsedMs = %d, want 10000", st.ElapsedMs)
	}
	if got := e.RemainingMs(); got != 10000 {
		t.Errorf("remainingMs = %d, want 10000", got)
	}
	if !st.IsRunning {
		t.Error("expected session still running after resync")
	}
	if e.Advisory() == "" {
		t.Error("expected drift advisory after a 100s gap")
	}
}

// TestResyncCompletionScenarioC verifies that a backgrounded gap longer
// than the whole preset terminates at Completed.
func TestResyncCompletionScenarioC(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	e.suspendTicks()
	fc.Advance(400 * time.Second) // Tabata 4x totals 230s
	e.Resync()

	st := e.State()
	if st.IsRunning {
		t.Error("expected session stopped")
	}
	if st.CurrentIndex != len(st.Steps)-1 {
		t.Errorf("currentIndex = %d, want last (%d)", st.CurrentIndex, len(st.Steps)-1)
	}
	if st.ElapsedMs != st.Steps[st.CurrentIndex].DurationMs {
		t.Errorf("elapsedMs = %d, want full step duration %d", st.ElapsedMs, st.Steps[st.CurrentIndex].DurationMs)
	}
	if !st.Completed() {
		t.Error("expected Completed state")
	}
}

// TestResyncEquivalence checks that fast-forwarding by resync lands on the
// same (index, elapsed) as ticking continuously for the same duration.
func TestResyncEquivalence(t *testing.T) {
	for _, d := range []time.Duration{65 * time.Second, 90500 * time.Millisecond, 100 * time.Second} {
		ticked, fcTicked, _, _ := newTestEngine(t)
		ticked.Start()
		advanceTicking(ticked, fcTicked, d)

		synced, fcSynced, _, _ := newTestEngine(t)
		synced.Start()
		synced.suspendTicks()
		fcSynced.Advance(d)
		synced.Resync()

		a, b := ticked.State(), synced.State()
		if a.CurrentIndex != b.CurrentIndex || a.ElapsedMs != b.ElapsedMs {
			t.Errorf("after %v: ticked (%d, %d) != resynced (%d, %d)",
				d, a.CurrentIndex, a.ElapsedMs, b.CurrentIndex, b.ElapsedMs)
		}
	}
}

// TestTickCompletion runs a preset to its full duration by ticking and
// verifies the terminal Completed state with no further progression.
func TestTickCompletion(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 230*time.Second)

	st := e.State()
	if !st.Completed() {
		t.Fatalf("expected Completed, got %+v", st)
	}

	// Further time and ticks must not move a completed session.
	fc.Advance(time.Minute)
	e.tickNow()
	e.Start() // no-op on Completed
	if got := e.State(); !got.Completed() {
		t.Errorf("completed session moved: %+v", got)
	}
}

// TestPauseResumeConservation verifies that banked progress accumulates
// exactly the running spans and none of the paused gap.
func TestPauseResumeConservation(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 10*time.Second)
	e.Pause()

	fc.Advance(30 * time.Second) // paused gap, must not count

	e.Start()
	advanceTicking(e, fc, 5*time.Second)
	e.Pause()

	st := e.State()
	if st.ElapsedMs != 15000 {
		t.Errorf("banked elapsed = %d, want 15000", st.ElapsedMs)
	}
	if st.IsRunning || st.StartedAt != 0 {
		t.Errorf("expected paused state, got %+v", st)
	}
}

// TestPauseRollsForwardPastBoundary verifies that pausing after a step
// boundary was crossed (but before a tick observed it) rolls into the next
// step instead of leaving banked elapsed past the step duration.
func TestPauseRollsForwardPastBoundary(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	e.suspendTicks()
	fc.Advance(61 * time.Second) // first step is 60s
	e.Pause()

	st := e.State()
	if st.CurrentIndex != 1 {
		t.Errorf("currentIndex = %d, want 1", st.CurrentIndex)
	}
	if st.ElapsedMs != 1000 {
		t.Errorf("elapsedMs = %d, want 1000", st.ElapsedMs)
	}
}

// TestResyncWhilePausedReconcilesNothing verifies a resume signal while
// paused only moves the reference timestamp.
func TestResyncWhilePausedReconcilesNothing(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 5*time.Second)
	e.Pause()
	fc.Advance(2 * time.Minute)
	e.Resync()

	st := e.State()
	if st.CurrentIndex != 0 || st.ElapsedMs != 5000 {
		t.Errorf("paused state moved by resync: %+v", st)
	}
}

// TestResyncAfterForegroundTicking verifies that a resume signal posted
// while ticks were firing normally does not double-count elapsed time.
func TestResyncAfterForegroundTicking(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 30*time.Second)
	e.Resync() // page focus event with no real gap

	st := e.State()
	if st.CurrentIndex != 0 || st.ElapsedMs != 30000 {
		t.Errorf("resync with no gap perturbed state: index=%d elapsed=%d", st.CurrentIndex, st.ElapsedMs)
	}
	if e.Advisory() != "" {
		t.Errorf("unexpected advisory for a gap-free resync: %q", e.Advisory())
	}
}

// TestResetReturnsToIdle verifies reset lands on Idle of the same preset
// from any progress, and that selecting a preset does the same.
func TestResetReturnsToIdle(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	presetID := e.State().PresetID
	e.Start()
	advanceTicking(e, fc, 75*time.Second)
	e.Reset()

	st := e.State()
	if st.PresetID != presetID {
		t.Errorf("reset switched preset to %q", st.PresetID)
	}
	if st.IsRunning || st.CurrentIndex != 0 || st.ElapsedMs != 0 {
		t.Errorf("expected Idle after reset, got %+v", st)
	}

	// Running again from Idle works.
	e.Start()
	advanceTicking(e, fc, time.Second)
	if got := e.State().ElapsedMs; got != 1000 {
		t.Errorf("elapsed after restart = %d, want 1000", got)
	}
}

// TestSelectPresetFreshState verifies selection yields index 0, elapsed 0,
// not running, regardless of prior progress, and that unknown ids no-op.
func TestSelectPresetFreshState(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	presets := e.Presets()
	if len(presets) < 2 {
		t.Fatal("test needs two built-in presets")
	}

	e.Start()
	advanceTicking(e, fc, 10*time.Second)

	e.SelectPreset(presets[1].ID)
	st := e.State()
	if st.PresetID != presets[1].ID {
		t.Fatalf("selected %q, state references %q", presets[1].ID, st.PresetID)
	}
	if st.IsRunning || st.CurrentIndex != 0 || st.ElapsedMs != 0 {
		t.Errorf("expected fresh Idle state, got %+v", st)
	}

	e.SelectPreset("no-such-preset")
	if got := e.State().PresetID; got != presets[1].ID {
		t.Errorf("unknown id changed selection to %q", got)
	}
}

// TestStaleTickCannotMutateNewSession verifies that a tick scheduled for a
// previous session is dead after reset/select, per the mandatory
// cancellation rule.
func TestStaleTickCannotMutateNewSession(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.Start()
	e.mu.Lock()
	staleGen := e.gen
	e.mu.Unlock()

	e.Reset()
	fc.Advance(10 * time.Second)
	e.onTick(staleGen) // the stale callback firing late

	st := e.State()
	if st.IsRunning || st.ElapsedMs != 0 || st.CurrentIndex != 0 {
		t.Errorf("stale tick mutated state: %+v", st)
	}
}

// TestBoundaryCues verifies cue tones at step boundaries: the work tone
// for a finished work step, the standard tone otherwise.
func TestBoundaryCues(t *testing.T) {
	e, fc, audio, _ := newTestEngine(t)

	e.Start()
	advanceTicking(e, fc, 81*time.Second) // past warmup (60s) and work 1 (20s)

	tones := audio.recorded()
	if len(tones) != 2 {
		t.Fatalf("got %d tones, want 2", len(tones))
	}
	if tones[0].freq != toneOtherHz {
		t.Errorf("warmup boundary tone = %d Hz, want %d", tones[0].freq, toneOtherHz)
	}
	if tones[1].freq != toneWorkHz {
		t.Errorf("work boundary tone = %d Hz, want %d", tones[1].freq, toneWorkHz)
	}
}

// TestMuteSuppressesCues verifies no tones are emitted while muted.
func TestMuteSuppressesCues(t *testing.T) {
	e, fc, audio, _ := newTestEngine(t)

	e.ToggleMute()
	e.Start()
	advanceTicking(e, fc, 81*time.Second)

	if tones := audio.recorded(); len(tones) != 0 {
		t.Errorf("muted session emitted %d tones", len(tones))
	}
}

// TestResyncReplaysNoCues verifies skipped boundaries during catch-up stay
// silent.
func TestResyncReplaysNoCues(t *testing.T) {
	e, fc, audio, _ := newTestEngine(t)

	e.Start()
	e.suspendTicks()
	fc.Advance(100 * time.Second) // skips three boundaries
	e.Resync()

	if tones := audio.recorded(); len(tones) != 0 {
		t.Errorf("resync replayed %d cues", len(tones))
	}
}

// TestKeepAwakeGrant verifies the granted path reflects the actual lock.
func TestKeepAwakeGrant(t *testing.T) {
	e, _, _, wl := newTestEngine(t)

	e.ToggleKeepAwake()
	if !e.State().KeepAwake || !wl.held {
		t.Error("expected lock held and keepAwake true")
	}

	e.ToggleKeepAwake()
	if e.State().KeepAwake || wl.held {
		t.Error("expected lock released and keepAwake false")
	}
}

// TestKeepAwakeDenied verifies a denied lock leaves keepAwake false and
// surfaces an advisory that later auto-dismisses.
func TestKeepAwakeDenied(t *testing.T) {
	e, fc, _, wl := newTestEngine(t)
	wl.grant = false

	e.ToggleKeepAwake()
	if e.State().KeepAwake {
		t.Error("denied lock must leave keepAwake false")
	}
	if e.Advisory() == "" {
		t.Error("expected keep-awake advisory")
	}

	fc.Advance(advisoryTTL)
	if got := e.Advisory(); got != "" {
		t.Errorf("advisory should auto-dismiss, still %q", got)
	}
}

// TestWakeLockRevokedExternally verifies the engine observes an external
// revocation and drops keepAwake without touching the session.
func TestWakeLockRevokedExternally(t *testing.T) {
	e, fc, _, _ := newTestEngine(t)

	e.ToggleKeepAwake()
	e.Start()
	advanceTicking(e, fc, 3*time.Second)

	e.WakeLockRevoked()
	st := e.State()
	if st.KeepAwake {
		t.Error("keepAwake still true after revocation")
	}
	if !st.IsRunning || st.ElapsedMs != 3000 {
		t.Errorf("revocation perturbed the session: %+v", st)
	}
}

// TestRestartRestoresRunningAsPaused verifies that a state persisted while
// running comes back as Paused with its banked progress intact.
func TestRestartRestoresRunningAsPaused(t *testing.T) {
	log := testLogger()
	kv := store.NewMemory()
	fc := clockwork.NewFakeClock()
	e := New(Options{Store: store.NewAdapter(kv, log), Clock: fc, Log: log})

	e.Start()
	advanceTicking(e, fc, 7*time.Second)
	// No Close: simulate the process dying mid-session.

	e2 := New(Options{Store: store.NewAdapter(kv, log), Clock: fc, Log: log})
	defer e2.Close()
	st := e2.State()
	if st.IsRunning || st.StartedAt != 0 {
		t.Errorf("restored session should be paused, got %+v", st)
	}
	if st.ElapsedMs != 7000 {
		t.Errorf("restored banked elapsed = %d, want 7000", st.ElapsedMs)
	}
	e.Close()
}

// TestWriteThroughPersistence verifies every mutation lands in the store.
func TestWriteThroughPersistence(t *testing.T) {
	log := testLogger()
	kv := store.NewMemory()
	fc := clockwork.NewFakeClock()
	e := New(Options{Store: store.NewAdapter(kv, log), Clock: fc, Log: log})
	defer e.Close()

	e.Start()
	advanceTicking(e, fc, 2*time.Second)
	e.Pause()

	st, ok := store.NewAdapter(kv, log).LoadState()
	if !ok {
		t.Fatal("no persisted state")
	}
	if st.ElapsedMs != 2000 || st.IsRunning {
		t.Errorf("persisted state = %+v, want paused at 2000ms", st)
	}
}
