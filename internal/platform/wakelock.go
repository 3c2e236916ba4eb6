package platform

import "log/slog"

// WakeLock retains the host screen while a workout runs. Acquire reports
// whether the lock was actually granted; the engine reflects that grant,
// not the request, in TimerState.KeepAwake. Both operations are idempotent.
type WakeLock interface {
	Supported() bool
	Acquire() bool
	Release()
}

// NopWakeLock is an unsupported wake-lock capability. Acquire always
// fails, which the engine surfaces as a non-fatal advisory.
type NopWakeLock struct{}

func (NopWakeLock) Supported() bool { return false }
func (NopWakeLock) Acquire() bool   { return false }
func (NopWakeLock) Release()        {}

// LogWakeLock grants unconditionally and records transitions to the log.
type LogWakeLock struct {
	Log *slog.Logger
}

func (w LogWakeLock) Supported() bool { return true }

func (w LogWakeLock) Acquire() bool {
	w.Log.Info("wake lock acquired")
	return true
}

func (w LogWakeLock) Release() {
	w.Log.Info("wake lock released")
}
