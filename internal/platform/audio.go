// Package platform defines the two fallible host capabilities the engine
// coordinates with: audio cue emission and screen wake-lock retention.
// Both are injected as small interfaces so the engine's core logic carries
// no platform dependency and tests can observe or fail them at will.
package platform

import "log/slog"

// AudioCue emits short tones at step boundaries. PlayTone is
// fire-and-forget; the engine never consumes a result.
type AudioCue interface {
	Supported() bool
	PlayTone(frequencyHz, durationMs int)
}

// NopAudio is an unsupported audio capability for headless contexts.
type NopAudio struct{}

func (NopAudio) Supported() bool                      { return false }
func (NopAudio) PlayTone(frequencyHz, durationMs int) {}

// LogAudio records cue emissions to the log. The daemon uses it as the
// host-side stand-in until a real tone backend drives the speaker.
type LogAudio struct {
	Log *slog.Logger
}

func (a LogAudio) Supported() bool { return true }

func (a LogAudio) PlayTone(frequencyHz, durationMs int) {
	a.Log.Info("audio cue", "frequency_hz", frequencyHz, "duration_ms", durationMs)
}
