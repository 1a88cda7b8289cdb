package synth

import "github.com/chewxy/math32"

// svFilter is a Chamberlin state-variable filter. One struct provides
// lowpass, bandpass and highpass taps from the same two state variables.
type svFilter struct {
	low  float32
	band float32
}

// svOutputs holds the three simultaneous taps of one filter step.
type svOutputs struct {
	low  float32
	band float32
	high float32
}

// step advances the filter by one sample. freq is the normalized corner
// (0..1, where 1 is roughly a quarter of the sample rate) and res the
// resonance damping (0 = maximum resonance, 1 = none).
func (f *svFilter) step(in, freq, res float32) svOutputs {
	freq2 := freq * freq
	low, band := f.low, f.band
	low += freq2 * band
	high := in - low - res*band
	band += freq2 * high
	// Flush the feedback state once it drops below the precision floor;
	// denormals in a long release tail would otherwise stall the whole
	// render callback.
	if math32.Abs(low) < denormalFloor {
		low = 0
	}
	if math32.Abs(band) < denormalFloor {
		band = 0
	}
	f.low, f.band = low, band
	return svOutputs{low: low, band: band, high: high}
}

// lowpass is a convenience wrapper returning only the lowpass tap.
func (f *svFilter) lowpass(in, freq, res float32) float32 {
	return f.step(in, freq, res).low
}

// cutoffToFreq maps a 0..1 cutoff setting onto the filter's normalized
// frequency domain, exponentially so the lower octaves get usable range.
func cutoffToFreq(cutoff float32) float32 {
	if cutoff < 0 {
		cutoff = 0
	}
	if cutoff > 1 {
		cutoff = 1
	}
	return 0.01 * math32.Exp2(5.3*cutoff) // ~0.01..0.39
}
