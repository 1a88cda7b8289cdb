package engine

import (
	"fmt"
	"math"

	"github.com/Niftys/dawduction"
)

type (
	// EnvelopesProcessor is the control-rate sibling of the effects
	// processor: instead of transforming audio it computes the multipliers
	// and offsets that timeline envelopes impose on a track at a given beat.
	EnvelopesProcessor struct {
		broker  *Broker
		project *dawduction.Project
		warned  map[string]struct{}
	}

	// EnvelopeValues is the combined result of all envelopes active on one
	// track at one beat. The zero point of each field is "no envelope":
	// volume and pitch multiply by 1, pan adds 0, and Cutoff is only honored
	// when HasCutoff is set.
	EnvelopeValues struct {
		Volume     float64
		Cutoff     float64
		HasCutoff  bool
		PitchScale float64
		Pan        float64
	}
)

func NewEnvelopesProcessor(broker *Broker) *EnvelopesProcessor {
	return &EnvelopesProcessor{
		broker: broker,
		warned: make(map[string]struct{}),
	}
}

func (p *EnvelopesProcessor) SetProject(project *dawduction.Project) {
	p.project = project
	p.warned = make(map[string]struct{})
}

// Values combines every envelope instance active on the track at the given
// beat. Instances on non-envelope timeline tracks are inert, matching the
// effects processor's defensive validation.
func (p *EnvelopesProcessor) Values(trackID, patternID string, beat float64) EnvelopeValues {
	values := EnvelopeValues{Volume: 1, PitchScale: 1}
	if p.project == nil {
		return values
	}
	for i := range p.project.Timeline.Tracks {
		tt := &p.project.Timeline.Tracks[i]
		if tt.Kind != dawduction.EnvelopeTrack {
			continue
		}
		for j := range tt.Envelopes {
			inst := &tt.Envelopes[j]
			if !inst.Contains(beat) || !p.scopeMatches(inst, trackID, patternID) {
				continue
			}
			def := p.project.EnvelopeByID(inst.EnvelopeID)
			if def == nil {
				p.warnOnce(inst.EnvelopeID, fmt.Sprintf("envelope instance %s references unknown envelope %s", inst.ID, inst.EnvelopeID))
				continue
			}
			p.accumulate(&values, def, inst, beat)
		}
	}
	values.Pan = clampPan(values.Pan)
	return values
}

func (p *EnvelopesProcessor) scopeMatches(inst *dawduction.EnvelopeInstance, trackID, patternID string) bool {
	if inst.PatternID != "" {
		return inst.PatternID == patternID
	}
	if inst.TimelineTrackID != "" {
		return p.project.TimelineTrackFor[trackID] == inst.TimelineTrackID
	}
	return true
}

func (p *EnvelopesProcessor) accumulate(values *EnvelopeValues, def *dawduction.EnvelopeDef, inst *dawduction.EnvelopeInstance, beat float64) {
	if inst.Duration <= 0 {
		return
	}
	progress := (beat - inst.Start) / inst.Duration
	if inst.Reversed {
		progress = 1 - progress
	}
	value := def.Start + (def.End-def.Start)*shapeProgress(def.Shape, progress)
	switch def.Target {
	case dawduction.TargetVolume:
		values.Volume *= value
	case dawduction.TargetFilterCutoff:
		// When several cutoff envelopes overlap, the last one in timeline
		// order wins.
		values.Cutoff = value
		values.HasCutoff = true
	case dawduction.TargetPitch:
		// 0.5 is unity; the ends of the range give half and double speed.
		values.PitchScale *= math.Exp2((value - 0.5) * 2)
	case dawduction.TargetPan:
		values.Pan += value*2 - 1
	}
}

// shapeProgress maps 0..1 progress through the instance onto the curve's
// 0..1 output.
func shapeProgress(shape dawduction.CurveShape, progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	switch shape {
	case dawduction.ExponentialCurve:
		return progress * progress
	case dawduction.LogarithmicCurve:
		return math.Sqrt(progress)
	}
	return progress
}

func clampPan(pan float64) float64 {
	if pan < -1 {
		return -1
	}
	if pan > 1 {
		return 1
	}
	return pan
}

func (p *EnvelopesProcessor) warnOnce(id, message string) {
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
