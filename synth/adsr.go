package synth

import "github.com/chewxy/math32"

// envStage is the explicit envelope state machine. Tail is the extended
// fade-out past the nominal release: the envelope keeps decaying until its
// level is inaudible, so a voice is never reported inactive while it still
// resonates.
type envStage uint8

const (
	stageIdle envStage = iota
	stageAttack
	stageDecay
	stageHold
	stageRelease
	stageTail
)

const (
	// silenceThreshold is the level below which a voice counts as silent.
	silenceThreshold = 1e-4
	// tailThreshold is where the nominal release hands over to the tail.
	tailThreshold = 1e-2
	// denormalFloor flushes filter and envelope state to zero once its
	// magnitude can no longer be represented usefully; persistent
	// near-denormal values in long release tails collapse performance.
	denormalFloor = 1e-20
)

// adsr is a one-pole exponential envelope with an explicit hold phase: the
// level stays at sustain until holdSamples have elapsed since the trigger,
// so a note sustains for its full musical duration independent of how long
// its attack and decay take.
type adsr struct {
	stage   envStage
	level   float32
	sustain float32

	attackCoef  float32
	decayCoef   float32
	releaseCoef float32

	holdSamples int
	elapsed     int
}

func newADSR(sampleRate, attack, decay, sustain, release, hold float32) adsr {
	return adsr{
		stage:       stageAttack,
		sustain:     clamp01(sustain),
		attackCoef:  envCoef(attack, sampleRate),
		decayCoef:   envCoef(decay, sampleRate),
		releaseCoef: envCoef(release, sampleRate),
		holdSamples: int(hold * sampleRate),
	}
}

// envCoef computes the smoothing coefficient of a one-pole segment with the
// given time constant in seconds.
func envCoef(seconds, sampleRate float32) float32 {
	if seconds < 0.0005 {
		seconds = 0.0005
	}
	return math32.Exp(-1 / (seconds * sampleRate))
}

// next advances the envelope by one sample and returns its level.
func (e *adsr) next() float32 {
	e.elapsed++
	switch e.stage {
	case stageAttack:
		e.level = 1 + (e.level-1)*e.attackCoef
		if e.level >= 0.999 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		e.level = e.sustain + (e.level-e.sustain)*e.decayCoef
		if e.level <= e.sustain+0.001 {
			e.level = e.sustain
			e.stage = stageHold
		}
	case stageHold:
		e.level = e.sustain
	case stageRelease:
		e.level *= e.releaseCoef
		if e.level <= tailThreshold {
			e.stage = stageTail
		}
	case stageTail:
		e.level *= e.releaseCoef
		if e.level <= silenceThreshold {
			e.level = 0
			e.stage = stageIdle
		}
	case stageIdle:
		e.level = 0
	}
	if e.level != 0 && e.level < denormalFloor {
		e.level = 0
	}
	if e.elapsed >= e.holdSamples && e.stage != stageRelease && e.stage != stageTail && e.stage != stageIdle {
		e.stage = stageRelease
	}
	return e.level
}

// release moves the envelope into its release stage early, for note-off.
func (e *adsr) release() {
	if e.stage != stageIdle && e.stage != stageTail {
		e.stage = stageRelease
	}
}

// active reports whether the envelope still produces audible output.
func (e *adsr) active() bool {
	return e.stage != stageIdle
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
