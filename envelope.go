package dawduction

import "fmt"

// EnvelopeTarget is the closed enumeration of parameters a timeline envelope
// can drive.
type EnvelopeTarget int

const (
	TargetVolume EnvelopeTarget = iota
	TargetFilterCutoff
	TargetPitch
	TargetPan

	NumEnvelopeTargets
)

var envelopeTargetNames = [NumEnvelopeTargets]string{"volume", "filter", "pitch", "pan"}

func (t EnvelopeTarget) String() string {
	if t < 0 || t >= NumEnvelopeTargets {
		return fmt.Sprintf("EnvelopeTarget(%d)", int(t))
	}
	return envelopeTargetNames[t]
}

func (t EnvelopeTarget) MarshalText() ([]byte, error) {
	if t < 0 || t >= NumEnvelopeTargets {
		return nil, fmt.Errorf("invalid envelope target %d", int(t))
	}
	return []byte(envelopeTargetNames[t]), nil
}

func (t *EnvelopeTarget) UnmarshalText(text []byte) error {
	for i, name := range envelopeTargetNames {
		if name == string(text) {
			*t = EnvelopeTarget(i)
			return nil
		}
	}
	return fmt.Errorf("unknown envelope target %q", string(text))
}

// CurveShape maps an envelope instance's 0..1 progress to its 0..1 output.
type CurveShape int

const (
	LinearCurve CurveShape = iota
	ExponentialCurve
	LogarithmicCurve

	NumCurveShapes
)

var curveShapeNames = [NumCurveShapes]string{"linear", "exponential", "logarithmic"}

func (s CurveShape) String() string {
	if s < 0 || s >= NumCurveShapes {
		return fmt.Sprintf("CurveShape(%d)", int(s))
	}
	return curveShapeNames[s]
}

func (s CurveShape) MarshalText() ([]byte, error) {
	if s < 0 || s >= NumCurveShapes {
		return nil, fmt.Errorf("invalid curve shape %d", int(s))
	}
	return []byte(curveShapeNames[s]), nil
}

func (s *CurveShape) UnmarshalText(text []byte) error {
	for i, name := range curveShapeNames {
		if name == string(text) {
			*s = CurveShape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown curve shape %q", string(text))
}

// EnvelopeDef is an envelope definition that timeline envelope instances
// refer to by ID. Start and End are the curve endpoints in the 0..1 domain of
// the target parameter; Shape sets how progress moves between them.
type EnvelopeDef struct {
	ID     string         `yaml:"id" json:"id"`
	Target EnvelopeTarget `yaml:"target" json:"target"`
	Shape  CurveShape     `yaml:"shape" json:"shape"`
	Start  float64        `yaml:"start" json:"start"`
	End    float64        `yaml:"end" json:"end"`
}

// Copy returns a copy of the definition. EnvelopeDef holds no reference
// types but Copy keeps the API symmetric with EffectDef.
func (e *EnvelopeDef) Copy() EnvelopeDef {
	return *e
}
