package engine

import "github.com/chewxy/math32"

// Shared per-sample DSP state used by the effects processor and the mixer's
// envelope-driven track filter. All state lives in plain structs owned by a
// processor instance; there are no package-level singletons.

// denormalFloor flushes feedback state to zero once it can no longer be
// heard. Persistent near-denormal values in decaying delay and filter tails
// would otherwise wreck the callback's timing budget.
const denormalFloor = 1e-20

// svf is a Chamberlin state-variable filter. freq is the normalized corner
// (0..1), res the damping (0 = maximum resonance).
type svf struct {
	low  float32
	band float32
}

func (f *svf) step(in, freq, res float32) (low, band, high float32) {
	freq2 := freq * freq
	low, band = f.low, f.band
	low += freq2 * band
	high = in - low - res*band
	band += freq2 * high
	if math32.Abs(low) < denormalFloor {
		low = 0
	}
	if math32.Abs(band) < denormalFloor {
		band = 0
	}
	f.low, f.band = low, band
	return low, band, high
}

// cutoffFreq maps a 0..1 cutoff setting exponentially onto the filter's
// normalized frequency domain.
func cutoffFreq(cutoff float32) float32 {
	if cutoff < 0 {
		cutoff = 0
	}
	if cutoff > 1 {
		cutoff = 1
	}
	return 0.01 * math32.Exp2(5.3*cutoff)
}

// delayLine is a power-of-two ring buffer with a one-pole damping filter in
// the feedback path and a DC blocker on the output tap.
type delayLine struct {
	buffer      [65536]float32
	dampState   float32
	dcFiltState float32
	dcIn        float32
	t           uint16
}

// step reads the tap delay samples back, writes feedback plus the input, and
// returns the DC-blocked tap. damp rolls off the high end of the feedback.
func (d *delayLine) step(in, feedback, damp float32, delay int) float32 {
	if delay < 1 {
		delay = 1
	}
	out := d.buffer[d.t-uint16(delay)]
	d.dampState = damp*d.dampState + (1-damp)*out
	if math32.Abs(d.dampState) < denormalFloor {
		d.dampState = 0
	}
	d.buffer[d.t] = feedback*d.dampState + in
	d.t++
	d.dcFiltState = out + 0.99609375*d.dcFiltState - d.dcIn
	d.dcIn = out
	return d.dcFiltState
}

// comb is a short feedback comb for the reverb approximation. Length is set
// once at construction and never grows.
type comb struct {
	buffer []float32
	pos    int
	damp   float32
}

func newComb(length int) *comb {
	return &comb{buffer: make([]float32, length)}
}

func (c *comb) step(in, feedback, damp float32) float32 {
	out := c.buffer[c.pos]
	c.damp = damp*c.damp + (1-damp)*out
	if math32.Abs(c.damp) < denormalFloor {
		c.damp = 0
	}
	c.buffer[c.pos] = in + feedback*c.damp
	c.pos++
	if c.pos >= len(c.buffer) {
		c.pos = 0
	}
	return out
}

// lfo is a low-frequency sine used by the chorus to modulate its tap.
type lfo struct {
	phase float32
}

func (l *lfo) next(rate, sampleRate float32) float32 {
	l.phase += rate / sampleRate
	l.phase -= math32.Floor(l.phase)
	return math32.Sin(2 * math32.Pi * l.phase)
}

// smoothCoef converts an attack or release time in seconds into a one-pole
// smoothing coefficient.
func smoothCoef(seconds, sampleRate float32) float32 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math32.Exp(-1/(seconds*sampleRate))
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
