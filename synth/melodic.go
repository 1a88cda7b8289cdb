package synth

import "github.com/chewxy/math32"

// Melodic layers share one pattern: a few oscillators into a resonant
// lowpass with a full ADSR whose times are beats, not seconds, so envelopes
// breathe with the tempo.

type subtractiveLayer struct {
	env    adsr
	osc1   phasor
	osc2   phasor
	filter svFilter
	sr     float32
	amp    float32
	freq   float32
	detune float32
	cutoff float32
	res    float32
	envmod float32
}

func newSubtractive(v *Voice, velocity float32, pitch int, duration float64) *subtractiveLayer {
	return &subtractiveLayer{
		env:    v.melodicEnv(duration),
		sr:     v.sampleRate,
		amp:    velocity,
		freq:   noteToFreq(float32(pitch)),
		detune: v.setting("detune") / 100, // cents-ish spread as a ratio
		cutoff: clamp01(v.setting("cutoff")),
		res:    1 - clamp01(v.setting("resonance")),
		envmod: clamp01(v.setting("envmod")),
	}
}

func (l *subtractiveLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	raw := sawAt(l.osc1.next(omegaFor(f*(1+l.detune), l.sr))) +
		sawAt(l.osc2.next(omegaFor(f*(1-l.detune), l.sr)))
	env := l.env.next()
	freq := cutoffToFreq(l.cutoff + l.envmod*env)
	return l.filter.lowpass(raw*0.5, freq, l.res) * l.amp * env
}

func (l *subtractiveLayer) release()     { l.env.release() }
func (l *subtractiveLayer) active() bool { return l.env.active() }

type fmLayer struct {
	env      adsr
	carrier  phasor
	mod      phasor
	sr       float32
	amp      float32
	freq     float32
	ratio    float32
	index    float32
	indexEnv float32 // modulation index decay state
	modDecay float32
}

func newFMLayer(v *Voice, velocity float32, pitch int, duration float64) *fmLayer {
	moddecay := v.setting("moddecay") * v.secondsPerBeat()
	return &fmLayer{
		env:      v.melodicEnv(duration),
		sr:       v.sampleRate,
		amp:      velocity,
		freq:     noteToFreq(float32(pitch)),
		ratio:    v.setting("ratio"),
		index:    v.setting("index"),
		indexEnv: 1,
		modDecay: envCoef(moddecay, v.sampleRate),
	}
}

func (l *fmLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	l.indexEnv *= l.modDecay
	mod := sineAt(l.mod.next(omegaFor(f*l.ratio, l.sr)))
	phase := l.carrier.next(omegaFor(f, l.sr)) + l.index*l.indexEnv*mod*0.15
	phase -= math32.Floor(phase)
	return sineAt(phase) * l.amp * l.env.next()
}

func (l *fmLayer) release()     { l.env.release() }
func (l *fmLayer) active() bool { return l.env.active() }

type wavetableLayer struct {
	env      adsr
	osc      phasor
	sr       float32
	amp      float32
	freq     float32
	position float32 // 0..3: sine, triangle, saw, square morph
}

func newWavetableLayer(v *Voice, velocity float32, pitch int, duration float64) *wavetableLayer {
	pos := v.setting("position")
	if pos < 0 {
		pos = 0
	}
	if pos > 3 {
		pos = 3
	}
	return &wavetableLayer{
		env:      v.melodicEnv(duration),
		sr:       v.sampleRate,
		amp:      velocity,
		freq:     noteToFreq(float32(pitch)),
		position: pos,
	}
}

// tableSample evaluates the four base waveforms at one phase and morphs
// between the two neighbours of position.
func (l *wavetableLayer) tableSample(phase float32) float32 {
	i := int(l.position)
	frac := l.position - float32(i)
	waves := [4]float32{sineAt(phase), triangleAt(phase), sawAt(phase), squareAt(phase)}
	if i >= 3 {
		return waves[3]
	}
	return waves[i]*(1-frac) + waves[i+1]*frac
}

func (l *wavetableLayer) process(fscale float32) float32 {
	phase := l.osc.next(omegaFor(l.freq*fscale, l.sr))
	return l.tableSample(phase) * l.amp * l.env.next()
}

func (l *wavetableLayer) release()     { l.env.release() }
func (l *wavetableLayer) active() bool { return l.env.active() }

type supersawLayer struct {
	env    adsr
	oscs   [7]phasor
	filter svFilter
	sr     float32
	amp    float32
	freq   float32
	detune float32
	cutoff float32
}

func newSupersaw(v *Voice, velocity float32, pitch int, duration float64) *supersawLayer {
	l := &supersawLayer{
		env:    v.melodicEnv(duration),
		sr:     v.sampleRate,
		amp:    velocity,
		freq:   noteToFreq(float32(pitch)),
		detune: v.setting("detune") / 10,
		cutoff: clamp01(v.setting("cutoff")),
	}
	// Spread initial phases so the saws do not start as one thick saw.
	for i := range l.oscs {
		l.oscs[i].phase = float32(i) / 7
	}
	return l
}

func (l *supersawLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	var out float32
	for i := range l.oscs {
		spread := 1 + l.detune*(float32(i)-3)/3
		out += sawAt(l.oscs[i].next(omegaFor(f*spread, l.sr)))
	}
	out /= 7
	return l.filter.lowpass(out, cutoffToFreq(l.cutoff), 1) * l.amp * l.env.next()
}

func (l *supersawLayer) release()     { l.env.release() }
func (l *supersawLayer) active() bool { return l.env.active() }

type bassLayer struct {
	env    adsr
	osc    phasor
	sub    phasor
	filter svFilter
	sr     float32
	amp    float32
	freq   float32
	cutoff float32
	subMix float32
}

func newBass(v *Voice, velocity float32, pitch int, duration float64) *bassLayer {
	return &bassLayer{
		env:    v.melodicEnv(duration),
		sr:     v.sampleRate,
		amp:    velocity,
		freq:   noteToFreq(float32(pitch)),
		cutoff: clamp01(v.setting("cutoff")),
		subMix: clamp01(v.setting("sub")),
	}
}

func (l *bassLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	out := sawAt(l.osc.next(omegaFor(f, l.sr)))
	out += l.subMix * sineAt(l.sub.next(omegaFor(f/2, l.sr)))
	env := l.env.next()
	freq := cutoffToFreq(l.cutoff * (0.4 + 0.6*env)) // envelope pumps the filter
	return l.filter.lowpass(out*0.7, freq, 0.8) * l.amp * env
}

func (l *bassLayer) release()     { l.env.release() }
func (l *bassLayer) active() bool { return l.env.active() }

type padLayer struct {
	env    adsr
	oscs   [4]phasor
	filter svFilter
	sr     float32
	amp    float32
	freq   float32
	detune float32
	cutoff float32
}

func newPad(v *Voice, velocity float32, pitch int, duration float64) *padLayer {
	l := &padLayer{
		env:    v.melodicEnv(duration),
		sr:     v.sampleRate,
		amp:    velocity,
		freq:   noteToFreq(float32(pitch)),
		detune: v.setting("detune") / 50,
		cutoff: clamp01(v.setting("cutoff")),
	}
	for i := range l.oscs {
		l.oscs[i].phase = float32(i) / 4
	}
	return l
}

func (l *padLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	var out float32
	for i := range l.oscs {
		spread := 1 + l.detune*(float32(i)-1.5)/1.5
		out += sawAt(l.oscs[i].next(omegaFor(f*spread, l.sr)))
	}
	out /= 4
	return l.filter.lowpass(out, cutoffToFreq(l.cutoff), 1.2) * l.amp * l.env.next()
}

func (l *padLayer) release()     { l.env.release() }
func (l *padLayer) active() bool { return l.env.active() }

// organPartials and organGains approximate drawbar footages 16', 8', 5 1/3',
// 4', 2 2/3' and 2'.
var (
	organPartials = [6]float32{0.5, 1, 1.5, 2, 3, 4}
	organGains    = [6]float32{0.5, 1, 0.4, 0.6, 0.3, 0.35}
)

type organLayer struct {
	env     adsr
	oscs    [6]phasor
	sr      float32
	amp     float32
	freq    float32
	drawbar float32
}

func newOrgan(v *Voice, velocity float32, pitch int, duration float64) *organLayer {
	return &organLayer{
		env:     v.melodicEnv(duration),
		sr:      v.sampleRate,
		amp:     velocity,
		freq:    noteToFreq(float32(pitch)),
		drawbar: clamp01(v.setting("drawbar")),
	}
}

func (l *organLayer) process(fscale float32) float32 {
	f := l.freq * fscale
	var out, norm float32
	for i := range l.oscs {
		gain := organGains[i]
		if i >= 2 {
			// Drawbar setting fades the upper partials in and out.
			gain *= l.drawbar
		}
		out += gain * sineAt(l.oscs[i].next(omegaFor(f*organPartials[i], l.sr)))
		norm += gain
	}
	return out / norm * l.amp * l.env.next()
}

func (l *organLayer) release()     { l.env.release() }
func (l *organLayer) active() bool { return l.env.active() }
