package synth

import "github.com/chewxy/math32"

// Drum layers. Each kind has a fixed spectral recipe built from oscillators
// and filtered noise; the per-kind settings only bend the recipe (tuning,
// decay, brightness), they never change its structure.

// metalRatios are the classic inharmonic partial ratios of a 808-style
// cymbal/hat square stack.
var metalRatios = [6]float32{2, 3, 4.16, 5.43, 6.79, 8.21}

type kickLayer struct {
	env    adsr
	osc    phasor
	noise  noiseGen
	sr     float32
	amp    float32
	tune   float32 // resting frequency, Hz
	sweep  float32 // sweep depth multiplier
	click  float32
	t      int
	pitchT float32 // exponential sweep state, 1 at trigger, decays to 0
}

func newKick(v *Voice, velocity float32) *kickLayer {
	return &kickLayer{
		env:    v.drumEnv(0.002, v.setting("decay"), 0.1),
		noise:  newNoise(),
		sr:     v.sampleRate,
		amp:    velocity,
		tune:   v.setting("tune"),
		sweep:  v.setting("sweep"),
		click:  v.setting("click"),
		pitchT: 1,
	}
}

func (l *kickLayer) process(fscale float32) float32 {
	// ~30 ms pitch sweep from roughly 150 Hz down to the resting tune.
	l.pitchT *= 1 - 33/l.sr
	freq := (l.tune + l.sweep*105*l.pitchT) * fscale
	out := sineAt(l.osc.next(omegaFor(freq, l.sr)))
	if l.t < int(0.002*l.sr) { // 2 ms click transient
		out += l.click * l.noise.next()
	}
	l.t++
	return softclip(out) * l.amp * l.env.next()
}

func (l *kickLayer) release()     { l.env.release() }
func (l *kickLayer) active() bool { return l.env.active() }

type snareLayer struct {
	env    adsr
	body   phasor
	noise  noiseGen
	filter svFilter
	sr     float32
	amp    float32
	tune   float32
	tone   float32 // body/noise balance, 0 = all noise
}

func newSnare(v *Voice, velocity float32) *snareLayer {
	return &snareLayer{
		env:   v.drumEnv(0.001, v.setting("decay"), 0.08),
		noise: newNoise(),
		sr:    v.sampleRate,
		amp:   velocity,
		tune:  v.setting("tune"),
		tone:  clamp01(v.setting("tone")),
	}
}

func (l *snareLayer) process(fscale float32) float32 {
	body := triangleAt(l.body.next(omegaFor(l.tune*fscale, l.sr)))
	rattle := l.filter.step(l.noise.next(), 0.45, 0.6).band
	out := l.tone*body + (1-l.tone)*rattle*2
	return out * l.amp * l.env.next()
}

func (l *snareLayer) release()     { l.env.release() }
func (l *snareLayer) active() bool { return l.env.active() }

type hihatLayer struct {
	env        adsr
	oscs       [6]phasor
	filter     svFilter
	sr         float32
	amp        float32
	brightness float32
}

func newHiHat(v *Voice, velocity float32) *hihatLayer {
	return &hihatLayer{
		env:        v.drumEnv(0.001, v.setting("decay"), 0.03),
		sr:         v.sampleRate,
		amp:        velocity,
		brightness: clamp01(v.setting("brightness")),
	}
}

func (l *hihatLayer) process(fscale float32) float32 {
	var metal float32
	base := 40 * fscale
	for i := range l.oscs {
		metal += squareAt(l.oscs[i].next(omegaFor(base*metalRatios[i], l.sr)))
	}
	metal /= 6
	// Keep only the sizzle: highpass the metallic stack.
	hp := l.filter.step(metal, 0.5+0.3*l.brightness, 1).high
	return hp * l.amp * l.env.next()
}

func (l *hihatLayer) release()     { l.env.release() }
func (l *hihatLayer) active() bool { return l.env.active() }

type clapLayer struct {
	env    adsr
	noise  noiseGen
	filter svFilter
	sr     float32
	amp    float32
	spread int // samples between the retriggered bursts
	t      int
}

func newClap(v *Voice, velocity float32) *clapLayer {
	return &clapLayer{
		env:    v.drumEnv(0.001, v.setting("decay"), 0.1),
		noise:  newNoise(),
		sr:     v.sampleRate,
		amp:    velocity,
		spread: int(v.setting("spread") * v.sampleRate),
	}
}

func (l *clapLayer) process(fscale float32) float32 {
	_ = fscale // claps do not track pitch
	// Three rapid bursts, then the main body: amplitude restarts at each
	// burst boundary, which is what makes a clap a clap.
	burst := float32(1)
	if l.spread > 0 && l.t < 3*l.spread {
		within := float32(l.t%l.spread) / float32(l.spread)
		burst = 1 - within
	}
	l.t++
	bp := l.filter.step(l.noise.next(), 0.35, 0.5).band
	return bp * 2 * burst * l.amp * l.env.next()
}

func (l *clapLayer) release()     { l.env.release() }
func (l *clapLayer) active() bool { return l.env.active() }

type tomLayer struct {
	env    adsr
	osc    phasor
	noise  noiseGen
	sr     float32
	amp    float32
	tune   float32
	pitchT float32
}

func newTom(v *Voice, velocity float32, pitch int) *tomLayer {
	tune := v.setting("tune")
	if pitch > 0 {
		// Toms are the one drum that follows the pattern's pitch, so a tree
		// can play a tom run.
		tune = noteToFreq(float32(pitch))
	}
	return &tomLayer{
		env:    v.drumEnv(0.002, v.setting("decay"), 0.12),
		noise:  newNoise(),
		sr:     v.sampleRate,
		amp:    velocity,
		tune:   tune,
		pitchT: 1,
	}
}

func (l *tomLayer) process(fscale float32) float32 {
	l.pitchT *= 1 - 12/l.sr // slower sweep than the kick
	freq := l.tune * (1 + 0.6*l.pitchT) * fscale
	out := sineAt(l.osc.next(omegaFor(freq, l.sr)))
	out += 0.08 * l.noise.next()
	return out * l.amp * l.env.next()
}

func (l *tomLayer) release()     { l.env.release() }
func (l *tomLayer) active() bool { return l.env.active() }

type cymbalLayer struct {
	env        adsr
	oscs       [6]phasor
	detune     [6]phasor
	noise      noiseGen
	filter     svFilter
	sr         float32
	amp        float32
	brightness float32
}

func newCymbal(v *Voice, velocity float32) *cymbalLayer {
	return &cymbalLayer{
		env:        v.drumEnv(0.001, v.setting("decay"), 0.4),
		noise:      newNoise(),
		sr:         v.sampleRate,
		amp:        velocity,
		brightness: clamp01(v.setting("brightness")),
	}
}

func (l *cymbalLayer) process(fscale float32) float32 {
	var metal float32
	base := 48 * fscale
	for i := range l.oscs {
		metal += squareAt(l.oscs[i].next(omegaFor(base*metalRatios[i], l.sr)))
		metal += squareAt(l.detune[i].next(omegaFor(base*metalRatios[i]*1.013, l.sr)))
	}
	metal /= 12
	metal += 0.3 * l.noise.next()
	hp := l.filter.step(metal, 0.35+0.3*l.brightness, 0.9).high
	return hp * l.amp * l.env.next()
}

func (l *cymbalLayer) release()     { l.env.release() }
func (l *cymbalLayer) active() bool { return l.env.active() }

type shakerLayer struct {
	env        adsr
	noise      noiseGen
	filter     svFilter
	amp        float32
	brightness float32
}

func newShaker(v *Voice, velocity float32) *shakerLayer {
	return &shakerLayer{
		env:        v.drumEnv(0.01, v.setting("decay"), 0.04),
		noise:      newNoise(),
		amp:        velocity,
		brightness: clamp01(v.setting("brightness")),
	}
}

func (l *shakerLayer) process(fscale float32) float32 {
	_ = fscale
	hp := l.filter.step(l.noise.next(), 0.45+0.35*l.brightness, 1).high
	return hp * l.amp * l.env.next()
}

func (l *shakerLayer) release()     { l.env.release() }
func (l *shakerLayer) active() bool { return l.env.active() }

type rimshotLayer struct {
	env    adsr
	osc    phasor
	noise  noiseGen
	filter svFilter
	sr     float32
	amp    float32
	tune   float32
	t      int
}

func newRimshot(v *Voice, velocity float32) *rimshotLayer {
	return &rimshotLayer{
		env:   v.drumEnv(0.0005, v.setting("decay"), 0.02),
		noise: newNoise(),
		sr:    v.sampleRate,
		amp:   velocity,
		tune:  v.setting("tune"),
	}
}

func (l *rimshotLayer) process(fscale float32) float32 {
	var out float32
	if l.t < int(0.004*l.sr) { // 4 ms woody ping
		out = squareAt(l.osc.next(omegaFor(l.tune*fscale, l.sr)))
	}
	l.t++
	out += 0.5 * l.filter.step(l.noise.next(), 0.5, 0.7).band
	return out * l.amp * l.env.next()
}

func (l *rimshotLayer) release()     { l.env.release() }
func (l *rimshotLayer) active() bool { return l.env.active() }

// softclip keeps drum transients inside [-1, 1] without hard edges.
func softclip(v float32) float32 {
	return math32.Tanh(v)
}
