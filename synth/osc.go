package synth

import "github.com/chewxy/math32"

// phasor is a 0..1 sawtooth phase accumulator; all oscillators derive their
// waveforms from it.
type phasor struct {
	phase float32
}

// next advances the phase by omega (cycles per sample) and returns the new
// phase in [0, 1).
func (p *phasor) next(omega float32) float32 {
	p.phase += omega
	p.phase -= math32.Floor(p.phase)
	return p.phase
}

func sineAt(phase float32) float32 {
	return math32.Sin(2 * math32.Pi * phase)
}

func sawAt(phase float32) float32 {
	return 2*phase - 1
}

func squareAt(phase float32) float32 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func triangleAt(phase float32) float32 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

// noteToFreq converts a MIDI-like note number to Hz, A4 = 69 = 440 Hz.
func noteToFreq(pitch float32) float32 {
	return 440 * math32.Exp2((pitch-69)/12)
}

// omegaFor returns the per-sample phase increment of a frequency.
func omegaFor(freq, sampleRate float32) float32 {
	return freq / sampleRate
}

// noiseGen is a linear congruential white noise generator. The seed must be
// nonzero; newNoise takes care of it.
type noiseGen struct {
	seed uint32
}

func newNoise() noiseGen {
	return noiseGen{seed: 1}
}

func (n *noiseGen) next() float32 {
	n.seed *= 16007
	return float32(int32(n.seed)) / -2147483648.0
}
