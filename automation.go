package dawduction

import "sort"

type (
	// AutomationTarget identifies the parameter an automation curve drives:
	// a parameter key of an effect or envelope instance, or of a track.
	AutomationTarget struct {
		Type         AutomationTargetType `yaml:"type" json:"type"`
		TargetID     string               `yaml:"targetId" json:"targetId"`
		InstanceID   string               `yaml:"instanceId,omitempty" json:"instanceId,omitempty"`
		ParameterKey string               `yaml:"parameter" json:"parameter"`
	}

	AutomationTargetType int

	// AutomationPoint is one control point of a curve, in beats.
	AutomationPoint struct {
		Beat  float64 `yaml:"beat" json:"beat"`
		Value float64 `yaml:"value" json:"value"`
	}

	// AutomationCurve is an ordered set of control points bound to a target.
	// Value is linearly interpolated between points and clamped to the first
	// and last point outside the curve's span.
	AutomationCurve struct {
		Target AutomationTarget  `yaml:"target" json:"target"`
		Points []AutomationPoint `yaml:"points" json:"points"`
	}
)

const (
	AutomateEffect AutomationTargetType = iota
	AutomateEnvelope
	AutomateTrack

	NumAutomationTargetTypes
)

var automationTargetTypeNames = [NumAutomationTargetTypes]string{"effect", "envelope", "track"}

func (t AutomationTargetType) String() string {
	if t < 0 || t >= NumAutomationTargetTypes {
		return "AutomationTargetType(?)"
	}
	return automationTargetTypeNames[t]
}

func (t AutomationTargetType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *AutomationTargetType) UnmarshalText(text []byte) error {
	for i, name := range automationTargetTypeNames {
		if name == string(text) {
			*t = AutomationTargetType(i)
			return nil
		}
	}
	// Unknown automation target types are tolerated; the curve just never
	// matches anything.
	*t = NumAutomationTargetTypes
	return nil
}

// Sort orders the control points by beat. Curves loaded from project files
// are sorted once at load time so Value can binary search.
func (c *AutomationCurve) Sort() {
	sort.SliceStable(c.Points, func(i, j int) bool {
		return c.Points[i].Beat < c.Points[j].Beat
	})
}

// Value returns the interpolated curve value at the given beat. Before the
// first point the first value holds; after the last point the last value
// holds. A curve with no points returns ok == false so the caller keeps the
// parameter's configured setting.
func (c *AutomationCurve) Value(beat float64) (value float64, ok bool) {
	pts := c.Points
	if len(pts) == 0 {
		return 0, false
	}
	if beat <= pts[0].Beat {
		return pts[0].Value, true
	}
	if beat >= pts[len(pts)-1].Beat {
		return pts[len(pts)-1].Value, true
	}
	// First point strictly after beat; its predecessor starts the segment.
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Beat > beat })
	p0, p1 := pts[i-1], pts[i]
	if p1.Beat == p0.Beat {
		return p1.Value, true
	}
	t := (beat - p0.Beat) / (p1.Beat - p0.Beat)
	return p0.Value + (p1.Value-p0.Value)*t, true
}

// Copy makes a deep copy of an AutomationCurve.
func (c *AutomationCurve) Copy() AutomationCurve {
	return AutomationCurve{Target: c.Target, Points: append([]AutomationPoint(nil), c.Points...)}
}
