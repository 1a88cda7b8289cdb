package synth

import "github.com/chewxy/math32"

// pluckDelayLen bounds the Karplus-Strong delay line. 2048 samples reach
// down to ~21 Hz at 44.1 kHz, below the lowest MIDI note the patterns emit.
const pluckDelayLen = 2048

// pluckLayer is a Karplus-Strong plucked string: a noise burst circulating
// through a delay line with a damping lowpass in the feedback path. The
// string rings down on its own; there is no ADSR, only a silence watchdog.
type pluckLayer struct {
	delay    [pluckDelayLen]float32
	length   int // active delay length for the triggered pitch
	pos      int
	prev     float32 // damping filter state
	damping  float32
	decay    float32
	amp      float32
	peak     float32 // running output peak, for the silence check
	released bool
}

func newPluck(v *Voice, velocity float32, pitch int) *pluckLayer {
	freq := noteToFreq(float32(pitch)) * v.pitchScale
	length := int(v.sampleRate / freq)
	if length < 2 {
		length = 2
	}
	if length > pluckDelayLen {
		length = pluckDelayLen
	}
	l := &pluckLayer{
		length:  length,
		damping: clamp01(v.setting("damping")),
		decay:   clamp01(v.setting("decay")),
		amp:     velocity,
		peak:    1,
	}
	noise := newNoise()
	for i := 0; i < length; i++ {
		l.delay[i] = noise.next()
	}
	return l
}

func (l *pluckLayer) process(fscale float32) float32 {
	_ = fscale // pitch is burned into the delay length at trigger time
	out := l.delay[l.pos]
	// One-pole damping in the loop: higher damping kills the brightness
	// faster, like muting a string with the palm.
	filtered := out*(1-l.damping) + l.prev*l.damping
	l.prev = filtered
	feedback := l.decay
	if l.released {
		feedback *= 0.9
	}
	l.delay[l.pos] = filtered * feedback
	l.pos++
	if l.pos >= l.length {
		l.pos = 0
	}
	l.peak = math32.Max(l.peak*(1-1e-4), math32.Abs(out))
	if l.peak < denormalFloor {
		l.peak = 0
	}
	return out * l.amp
}

// release shortens the ring-out; a plucked string has no sustain to cut.
func (l *pluckLayer) release() { l.released = true }

func (l *pluckLayer) active() bool { return l.peak > silenceThreshold }
