package engine

import (
	"fmt"

	"github.com/Niftys/dawduction"
	"github.com/chewxy/math32"
)

// reverbCombTimes are the comb delay lengths, in samples at 44.1 kHz, of the
// reverb approximation. Scaled by the actual sample rate at construction.
var reverbCombTimes = [8]int{1116, 1188, 1276, 1356, 1422, 1492, 1556, 1618}

type (
	// EffectsProcessor applies timeline-scoped effects to track samples. All
	// DSP state is keyed per (track, instance) and owned by this processor,
	// so two tracks under the same effect instance never share filter or
	// delay history.
	EffectsProcessor struct {
		broker     *Broker
		sampleRate int
		project    *dawduction.Project
		state      map[effectStateKey]*effectState
		warned     map[string]struct{}
	}

	effectStateKey struct {
		trackID    string
		instanceID string
	}

	// effectState is the per-(track, instance) DSP state. Only the fields
	// the instance's kind touches are ever allocated.
	effectState struct {
		combs     []*comb
		delay     *delayLine
		filter    svf
		lfo       lfo
		compLevel float32
	}
)

func NewEffectsProcessor(broker *Broker, sampleRate int) *EffectsProcessor {
	return &EffectsProcessor{
		broker:     broker,
		sampleRate: sampleRate,
		state:      make(map[effectStateKey]*effectState),
		warned:     make(map[string]struct{}),
	}
}

// SetProject points the processor at a new project and drops all DSP state
// and warning throttles.
func (p *EffectsProcessor) SetProject(project *dawduction.Project) {
	p.project = project
	p.state = make(map[effectStateKey]*effectState)
	p.warned = make(map[string]struct{})
}

// Process runs the track's sample through every effect instance active at
// the given beat, in timeline order. patternID is the pattern the track is
// currently playing, for pattern-scoped instances; spb is samples per beat,
// for tempo-synced delay times.
func (p *EffectsProcessor) Process(trackID, patternID string, beat, spb float64, sample float32) float32 {
	if p.project == nil {
		return sample
	}
	for i := range p.project.Timeline.Tracks {
		tt := &p.project.Timeline.Tracks[i]
		if tt.Kind != dawduction.EffectTrack {
			// An effect instance on a pattern or envelope track is inert.
			continue
		}
		for j := range tt.Effects {
			inst := &tt.Effects[j]
			if !inst.Contains(beat) || !p.scopeMatches(inst, trackID, patternID) {
				continue
			}
			def := p.project.EffectByID(inst.EffectID)
			if def == nil {
				p.warnOnce(inst.EffectID, fmt.Sprintf("effect instance %s references unknown effect %s", inst.ID, inst.EffectID))
				continue
			}
			sample = p.apply(def, inst, trackID, beat, spb, sample)
		}
	}
	return sample
}

// scopeMatches implements the instance scoping rules: a pattern-scoped
// instance applies while the track plays that pattern, a timeline-track
// scoped instance applies to instruments governed by that lane, and an
// unscoped instance is global.
func (p *EffectsProcessor) scopeMatches(inst *dawduction.EffectInstance, trackID, patternID string) bool {
	if inst.PatternID != "" {
		return inst.PatternID == patternID
	}
	if inst.TimelineTrackID != "" {
		return p.project.TimelineTrackFor[trackID] == inst.TimelineTrackID
	}
	return true
}

// param resolves one effect parameter: automation curves override the
// definition's settings, which override the kind's defaults.
func (p *EffectsProcessor) param(def *dawduction.EffectDef, inst *dawduction.EffectInstance, key string, beat float64) float32 {
	for i := range p.project.Automation {
		curve := &p.project.Automation[i]
		t := curve.Target
		if t.Type != dawduction.AutomateEffect || t.TargetID != def.ID || t.ParameterKey != key {
			continue
		}
		if t.InstanceID != "" && t.InstanceID != inst.ID {
			continue
		}
		if v, ok := curve.Value(beat); ok {
			return float32(v)
		}
	}
	return float32(def.Setting(key))
}

func (p *EffectsProcessor) apply(def *dawduction.EffectDef, inst *dawduction.EffectInstance, trackID string, beat, spb float64, sample float32) float32 {
	st := p.stateFor(trackID, inst.ID, def.Kind)
	switch def.Kind {
	case dawduction.Reverb:
		mix := p.param(def, inst, "mix", beat)
		decay := p.param(def, inst, "decay", beat)
		feedback := 0.6 + 0.35*clampUnit(decay)
		var wet float32
		for _, c := range st.combs {
			wet += c.step(sample, feedback, 0.2)
		}
		wet /= float32(len(st.combs))
		return sample*(1-mix) + wet*mix
	case dawduction.Delay:
		mix := p.param(def, inst, "mix", beat)
		feedback := p.param(def, inst, "feedback", beat)
		time := p.param(def, inst, "time", beat) // beats
		samples := int(float64(time) * spb)
		if samples > len(st.delay.buffer)-1 {
			samples = len(st.delay.buffer) - 1
		}
		tap := st.delay.step(sample, feedback, 0.1, samples)
		return sample*(1-mix) + tap*mix
	case dawduction.Filter:
		cutoff := p.param(def, inst, "cutoff", beat)
		resonance := p.param(def, inst, "resonance", beat)
		drive := p.param(def, inst, "drive", beat)
		low, _, _ := st.filter.step(sample*drive, cutoffFreq(cutoff), 1-clampUnit(resonance))
		return low
	case dawduction.Distortion:
		drive := p.param(def, inst, "drive", beat)
		mix := p.param(def, inst, "mix", beat)
		return sample*(1-mix) + math32.Tanh(sample*drive)*mix
	case dawduction.Compressor:
		threshold := p.param(def, inst, "threshold", beat)
		ratio := p.param(def, inst, "ratio", beat)
		attack := p.param(def, inst, "attack", beat)
		release := p.param(def, inst, "release", beat)
		power := sample * sample
		alpha := smoothCoef(release, float32(p.sampleRate))
		if power > st.compLevel {
			alpha = smoothCoef(attack, float32(p.sampleRate))
		}
		st.compLevel += (power - st.compLevel) * alpha
		gain := float32(1)
		if threshold2 := threshold * threshold; st.compLevel > threshold2 && ratio > 1 {
			exponent := (1/ratio - 1) / 2
			gain = math32.Pow(st.compLevel/threshold2, exponent)
		}
		return sample * gain
	case dawduction.Chorus:
		rate := p.param(def, inst, "rate", beat)
		depth := p.param(def, inst, "depth", beat)
		mix := p.param(def, inst, "mix", beat)
		base := 0.02 * float32(p.sampleRate) // 20 ms center tap
		mod := depth * float32(p.sampleRate) * st.lfo.next(rate, float32(p.sampleRate))
		tap := st.delay.step(sample, 0, 0, int(base+mod))
		return sample*(1-mix) + tap*mix
	}
	return sample
}

// stateFor returns, creating on first use, the DSP state of one instance on
// one track.
func (p *EffectsProcessor) stateFor(trackID, instanceID string, kind dawduction.EffectKind) *effectState {
	key := effectStateKey{trackID: trackID, instanceID: instanceID}
	if st, ok := p.state[key]; ok {
		return st
	}
	st := &effectState{}
	switch kind {
	case dawduction.Reverb:
		st.combs = make([]*comb, len(reverbCombTimes))
		for i, t := range reverbCombTimes {
			st.combs[i] = newComb(t * p.sampleRate / 44100)
		}
	case dawduction.Delay, dawduction.Chorus:
		st.delay = &delayLine{}
	}
	p.state[key] = st
	return st
}

// warnOnce reports a configuration fault a single time per id, so a missing
// definition does not flood the host during steady-state playback.
func (p *EffectsProcessor) warnOnce(id, message string) {
	if _, ok := p.warned[id]; ok {
		return
	}
	p.warned[id] = struct{}{}
	TrySend(p.broker.ToHost, Notification(Alert{
		Name:     "MissingDefinition",
		Message:  message,
		Priority: Warning,
		Duration: defaultAlertDuration,
	}))
}
