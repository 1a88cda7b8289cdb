// Package synth implements the procedural voice library: one small stateful
// sound generator per instrument kind, producing one sample per call. Voices
// are pure state machines with no shared state, so every track can own one
// without any locking.
package synth

import (
	"github.com/Niftys/dawduction"
)

// crossfadeMs is the length of the retrigger crossfade. Retriggering an
// already sounding voice blends the outgoing note into the incoming one over
// this window instead of resetting hard, which would click.
const crossfadeMs = 6

type (
	// Voice hosts the per-note layers of one instrument and implements
	// dawduction.Voice. The zero Voice is not usable; construct with New.
	Voice struct {
		kind       dawduction.InstrumentKind
		sampleRate float32
		bpm        float32
		settings   map[string]float64
		pitchScale float32

		cur       layer // the sounding note, nil until first trigger
		old       layer // the superseded note during a retrigger crossfade
		fade      int   // crossfade samples remaining
		fadeTotal int
	}

	// layer is one triggered note of a concrete voice kind. Layers are
	// created per trigger and dropped once inaudible; the Voice wrapper
	// crossfades between the outgoing and incoming layer on retrigger.
	layer interface {
		// process returns one sample. fscale multiplies the layer's base
		// frequency; 1 is unity.
		process(fscale float32) float32
		// release moves the layer's envelope into its release stage.
		release()
		// active reports whether the layer is still audible.
		active() bool
	}
)

// New creates a voice of the given kind. Unknown kinds yield nil; the mixer
// skips nil voices.
func New(kind dawduction.InstrumentKind, sampleRate int) *Voice {
	if kind < 0 || kind >= dawduction.NumInstrumentKinds {
		return nil
	}
	return &Voice{
		kind:       kind,
		sampleRate: float32(sampleRate),
		bpm:        120,
		settings:   make(map[string]float64),
		pitchScale: 1,
		fadeTotal:  crossfadeMs * sampleRate / 1000,
	}
}

// Kind returns the voice's instrument kind.
func (v *Voice) Kind() dawduction.InstrumentKind { return v.kind }

// Trigger implements dawduction.Voice. A trigger while the previous note is
// still sounding keeps the old layer fading out underneath the new one.
func (v *Voice) Trigger(velocity float64, pitch int, duration float64) {
	if v.cur != nil && v.cur.active() {
		v.old = v.cur
		v.old.release()
		v.fade = v.fadeTotal
	}
	v.cur = v.newLayer(float32(velocity), pitch, duration)
}

// Release implements note-off for live input; pattern events rely on the
// note duration instead.
func (v *Voice) Release() {
	if v.cur != nil {
		v.cur.release()
	}
}

// Process implements dawduction.Voice.
func (v *Voice) Process() float32 {
	if v.cur == nil {
		return 0
	}
	sample := v.cur.process(v.pitchScale)
	if v.old != nil {
		g := float32(v.fade) / float32(v.fadeTotal)
		sample = sample*(1-g) + v.old.process(v.pitchScale)*g
		v.fade--
		if v.fade <= 0 || !v.old.active() {
			v.old = nil
		}
	}
	return sample
}

// UpdateSettings implements dawduction.Voice: a partial settings edit that
// takes effect without retriggering. Unknown keys are kept but ignored by
// the layer constructors.
func (v *Voice) UpdateSettings(settings map[string]float64) {
	for k, val := range settings {
		v.settings[k] = val
	}
}

// SetTempo implements dawduction.Voice. Melodic envelope times scale with
// the beat, so the next trigger picks the new tempo up.
func (v *Voice) SetTempo(bpm float64) {
	if bpm > 0 {
		v.bpm = float32(bpm)
	}
}

// SetPitchScale implements dawduction.Voice.
func (v *Voice) SetPitchScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	v.pitchScale = float32(scale)
}

// Active implements dawduction.Voice.
func (v *Voice) Active() bool {
	if v.cur != nil && v.cur.active() {
		return true
	}
	return v.old != nil && v.old.active()
}

// setting resolves one parameter against the voice's settings and the
// kind's documented defaults. Malformed settings never fail a voice; they
// fall back here.
func (v *Voice) setting(key string) float32 {
	if val, ok := v.settings[key]; ok {
		return float32(val)
	}
	return float32(DefaultSettings(v.kind)[key])
}

// secondsPerBeat returns the current beat length in seconds.
func (v *Voice) secondsPerBeat() float32 {
	return 60 / v.bpm
}

// newLayer dispatches on the closed kind enum. Every kind is handled; there
// is no default silent fall-through.
func (v *Voice) newLayer(velocity float32, pitch int, duration float64) layer {
	switch v.kind {
	case dawduction.Kick:
		return newKick(v, velocity)
	case dawduction.Snare:
		return newSnare(v, velocity)
	case dawduction.HiHat:
		return newHiHat(v, velocity)
	case dawduction.Clap:
		return newClap(v, velocity)
	case dawduction.Tom:
		return newTom(v, velocity, pitch)
	case dawduction.Cymbal:
		return newCymbal(v, velocity)
	case dawduction.Shaker:
		return newShaker(v, velocity)
	case dawduction.Rimshot:
		return newRimshot(v, velocity)
	case dawduction.Subtractive:
		return newSubtractive(v, velocity, pitch, duration)
	case dawduction.FM:
		return newFMLayer(v, velocity, pitch, duration)
	case dawduction.Wavetable:
		return newWavetableLayer(v, velocity, pitch, duration)
	case dawduction.Supersaw:
		return newSupersaw(v, velocity, pitch, duration)
	case dawduction.Pluck:
		return newPluck(v, velocity, pitch)
	case dawduction.Bass:
		return newBass(v, velocity, pitch, duration)
	case dawduction.Pad:
		return newPad(v, velocity, pitch, duration)
	case dawduction.Organ:
		return newOrgan(v, velocity, pitch, duration)
	}
	panic("unhandled instrument kind") // unreachable: New rejects invalid kinds
}

// melodicEnv builds the ADSR of a melodic layer: envelope times are given in
// beats in the settings, so they track the tempo, and the hold phase runs
// until the note's musical duration has passed regardless of attack and
// decay lengths.
func (v *Voice) melodicEnv(duration float64) adsr {
	spb := v.secondsPerBeat()
	if duration <= 0 {
		duration = float64(v.setting("hold"))
	}
	return newADSR(v.sampleRate,
		v.setting("attack")*spb,
		v.setting("decay")*spb,
		v.setting("sustain"),
		v.setting("release")*spb,
		float32(duration)*spb,
	)
}

// drumEnv builds the envelope of a drum layer: times in seconds, no
// sustain, hold spanning attack+decay so the release tail begins only after
// the body has played out.
func (v *Voice) drumEnv(attack, decay, release float32) adsr {
	return newADSR(v.sampleRate, attack, decay, 0, release, attack+decay)
}

// DefaultSettings returns the documented per-parameter defaults of a kind.
// The returned map is shared; callers must not mutate it.
func DefaultSettings(kind dawduction.InstrumentKind) map[string]float64 {
	return defaultSettings[kind]
}

var defaultSettings = map[dawduction.InstrumentKind]map[string]float64{
	dawduction.Kick: {
		"sweep": 1, "decay": 0.22, "click": 0.5, "tune": 45,
	},
	dawduction.Snare: {
		"tone": 0.5, "decay": 0.16, "tune": 190,
	},
	dawduction.HiHat: {
		"decay": 0.06, "brightness": 0.8,
	},
	dawduction.Clap: {
		"decay": 0.2, "spread": 0.011,
	},
	dawduction.Tom: {
		"decay": 0.3, "tune": 120,
	},
	dawduction.Cymbal: {
		"decay": 1.2, "brightness": 0.7,
	},
	dawduction.Shaker: {
		"decay": 0.09, "brightness": 0.9,
	},
	dawduction.Rimshot: {
		"decay": 0.05, "tune": 450,
	},
	dawduction.Subtractive: {
		"attack": 0.01, "decay": 0.1, "sustain": 0.7, "release": 0.3, "hold": 0.25,
		"cutoff": 0.6, "resonance": 0.3, "detune": 0.08, "envmod": 0.4,
	},
	dawduction.FM: {
		"attack": 0.01, "decay": 0.15, "sustain": 0.6, "release": 0.25, "hold": 0.25,
		"ratio": 2, "index": 1.5, "moddecay": 0.2,
	},
	dawduction.Wavetable: {
		"attack": 0.02, "decay": 0.1, "sustain": 0.8, "release": 0.3, "hold": 0.25,
		"position": 1.5,
	},
	dawduction.Supersaw: {
		"attack": 0.02, "decay": 0.1, "sustain": 0.8, "release": 0.4, "hold": 0.25,
		"detune": 0.15, "cutoff": 0.7,
	},
	dawduction.Pluck: {
		"damping": 0.5, "decay": 0.96, "hold": 0.25,
	},
	dawduction.Bass: {
		"attack": 0.005, "decay": 0.12, "sustain": 0.5, "release": 0.1, "hold": 0.25,
		"cutoff": 0.35, "sub": 0.6,
	},
	dawduction.Pad: {
		"attack": 0.8, "decay": 0.4, "sustain": 0.8, "release": 1.2, "hold": 1,
		"cutoff": 0.45, "detune": 0.1,
	},
	dawduction.Organ: {
		"attack": 0.004, "decay": 0.05, "sustain": 0.9, "release": 0.08, "hold": 0.25,
		"drawbar": 0.7,
	},
}
