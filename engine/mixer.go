package engine

import (
	"github.com/Niftys/dawduction"
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

type (
	// Mixer combines every track's voice into the stereo output: mute/solo
	// precedence, envelope-driven volume/cutoff/pitch/pan, the effect chain,
	// constant-power panning and the master gain stage. All of its state
	// (per-track filters, peak meters) lives on the instance.
	Mixer struct {
		broker     *Broker
		sampleRate int
		effects    *EffectsProcessor
		envelopes  *EnvelopesProcessor
		bank       *VoiceBank
		masterGain float32

		filters      map[string]*svf // envelope-cutoff filter per track
		left, right  []float32
		peakL, peakR float32
	}

	// trackRouting is the per-slice resolution of where a track sits in the
	// arrangement: whether it is audible at all, the timeline lane volume on
	// top of it, and which pattern it is currently playing.
	trackRouting struct {
		audible   bool
		volume    float64
		patternID string
	}
)

func NewMixer(broker *Broker, sampleRate int, effects *EffectsProcessor, envelopes *EnvelopesProcessor, bank *VoiceBank) *Mixer {
	return &Mixer{
		broker:     broker,
		sampleRate: sampleRate,
		effects:    effects,
		envelopes:  envelopes,
		bank:       bank,
		masterGain: 1,
		filters:    make(map[string]*svf),
	}
}

// SetProject drops per-track state for a new project.
func (m *Mixer) SetProject(project *dawduction.Project) {
	m.filters = make(map[string]*svf)
	m.peakL, m.peakR = 0, 0
}

// SetMasterGain scales the summed output. Negative gains are clamped to 0.
func (m *Mixer) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	m.masterGain = float32(gain)
}

// Mix renders len(buffer) frames of all tracks, starting at startBeat, into
// the buffer. spb is samples per beat. Voices must already have been
// triggered by the caller; Mix only pulls samples and routes them.
func (m *Mixer) Mix(project *dawduction.Project, buffer dawduction.AudioBuffer, startBeat, spb float64) {
	n := len(buffer)
	if n == 0 {
		return
	}
	m.left = zeroed(m.left, n)
	m.right = zeroed(m.right, n)

	for ti := range project.Tracks {
		track := &project.Tracks[ti]
		routing := m.resolveRouting(project, track, startBeat)
		voice := m.bank.Voice(track)
		hasVoice := voice != nil && voice.Active()
		if !hasVoice && !m.trackHasActiveEffects(project, track.ID, routing.patternID, startBeat, float64(n)/spb) {
			continue
		}
		filter := m.filterFor(track.ID)
		for i := 0; i < n; i++ {
			beat := startBeat + float64(i)/spb
			env := m.envelopes.Values(track.ID, routing.patternID, beat)
			var sample float32
			if hasVoice {
				voice.SetPitchScale(env.PitchScale)
				sample = voice.Process()
			}
			if env.HasCutoff {
				sample, _, _ = filter.step(sample, cutoffFreq(float32(env.Cutoff)), 1)
			}
			sample *= float32(track.Volume * routing.volume * env.Volume)
			sample = m.effects.Process(track.ID, routing.patternID, beat, spb, sample)
			if !routing.audible {
				// A silenced track keeps its voice and effect lines running
				// in time; only the send to the bus is cut, so unmuting
				// resumes mid-note with live delay and reverb tails.
				continue
			}
			lg, rg := panGains(track.Pan + env.Pan)
			m.left[i] += sample * lg
			m.right[i] += sample * rg
		}
	}

	vek32.MulNumber_Inplace(m.left, m.masterGain)
	vek32.MulNumber_Inplace(m.right, m.masterGain)
	for i := 0; i < n; i++ {
		buffer[i][0] = m.left[i]
		buffer[i][1] = m.right[i]
	}
	vek32.Abs_Inplace(m.left)
	vek32.Abs_Inplace(m.right)
	if p := vek32.Max(m.left); p > m.peakL {
		m.peakL = p
	}
	if p := vek32.Max(m.right); p > m.peakR {
		m.peakR = p
	}
}

// TakePeaks returns the master bus peak per channel since the last call and
// resets the meters.
func (m *Mixer) TakePeaks() (left, right float32) {
	left, right = m.peakL, m.peakR
	m.peakL, m.peakR = 0, 0
	return left, right
}

// resolveRouting applies the mute/solo precedence rules. Mute always wins;
// when any timeline lane is soloed, only instruments under an active soloed
// clip are audible; otherwise instrument-level solo is the exclusivity
// group.
func (m *Mixer) resolveRouting(project *dawduction.Project, track *dawduction.Track, beat float64) trackRouting {
	routing := trackRouting{volume: 1}
	tt := project.TimelineTrackForInstrument(track.ID)
	timeline := project.ViewMode == dawduction.TimelineMode
	var clipActive bool
	if timeline && tt != nil {
		for _, clip := range tt.Clips {
			if clip.Contains(beat) && project.PatternToTrack[clip.PatternID] == track.ID {
				clipActive = true
				routing.patternID = clip.PatternID
				break
			}
		}
		routing.volume = tt.Volume
	}
	if track.Muted || (timeline && tt != nil && tt.Muted && clipActive) {
		return routing
	}
	if timeline && anyTimelineSolo(project) {
		routing.audible = tt != nil && tt.Soloed && clipActive
		return routing
	}
	if anyTrackSolo(project) {
		routing.audible = track.Soloed
		return routing
	}
	routing.audible = true
	return routing
}

// trackHasActiveEffects reports whether any effect instance touches the
// track inside [beat, beat+span). Keeps delay and reverb tails running after
// the voice itself has gone quiet.
func (m *Mixer) trackHasActiveEffects(project *dawduction.Project, trackID, patternID string, beat, span float64) bool {
	for i := range project.Timeline.Tracks {
		tt := &project.Timeline.Tracks[i]
		if tt.Kind != dawduction.EffectTrack {
			continue
		}
		for j := range tt.Effects {
			inst := &tt.Effects[j]
			if inst.Contains(beat) || inst.Contains(beat+span) {
				if m.effects.scopeMatches(inst, trackID, patternID) {
					return true
				}
			}
		}
	}
	return false
}

func (m *Mixer) filterFor(trackID string) *svf {
	if f, ok := m.filters[trackID]; ok {
		return f
	}
	f := &svf{}
	m.filters[trackID] = f
	return f
}

// panGains returns the constant-power stereo gains for a pan in [-1, 1]:
// left²+right² stays 1 across the whole range, so perceived loudness does
// not dip in the middle like it would with linear panning.
func panGains(pan float64) (left, right float32) {
	theta := float32(clampPan(pan)+1) * math32.Pi / 4
	return math32.Cos(theta), math32.Sin(theta)
}

func anyTrackSolo(project *dawduction.Project) bool {
	for i := range project.Tracks {
		if project.Tracks[i].Soloed {
			return true
		}
	}
	return false
}

func anyTimelineSolo(project *dawduction.Project) bool {
	for i := range project.Timeline.Tracks {
		if project.Timeline.Tracks[i].Soloed {
			return true
		}
	}
	return false
}

// zeroed returns buf resized to n with all elements cleared.
func zeroed(buf []float32, n int) []float32 {
	if cap(buf) < n {
		buf = make([]float32, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}
