package dawduction

// Voice is a single sound generator: a small state machine producing one
// audio sample per Process call. A voice is owned exclusively by one track
// and persists across retriggers, so implementations can crossfade legato
// retriggers instead of resetting hard.
type Voice interface {
	// Trigger restarts the voice. velocity is 0..1, pitch is a MIDI-like
	// note number and duration is the nominal note length in beats; duration
	// 0 means the voice's configured default hold.
	Trigger(velocity float64, pitch int, duration float64)

	// Process returns one audio sample and advances every internal phase by
	// exactly one sample.
	Process() float32

	// Release moves the voice into its release stage early, for live
	// note-off input. Pattern events rely on the trigger duration instead.
	Release()

	// UpdateSettings applies a partial settings change without retriggering.
	UpdateSettings(settings map[string]float64)

	// SetTempo tells the voice the current tempo, for envelope times that
	// scale with the beat.
	SetTempo(bpm float64)

	// SetPitchScale sets a frequency multiplier applied on top of the
	// triggered pitch, used by timeline pitch envelopes. 1 is unity.
	SetPitchScale(scale float64)

	// Active reports whether the voice still produces audible output. A
	// voice stays active through its extended fade-out tail and reports
	// false only once its amplitude has decayed below audibility, so the
	// mixer never truncates a still-resonating voice.
	Active() bool
}
