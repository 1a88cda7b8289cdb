package dawduction

import (
	"math"
	"testing"
)

func TestAutomationValueInterpolates(t *testing.T) {
	c := AutomationCurve{Points: []AutomationPoint{
		{Beat: 0, Value: 0},
		{Beat: 4, Value: 1},
	}}
	v, ok := c.Value(1)
	if !ok || math.Abs(v-0.25) > 1e-9 {
		t.Errorf("Value(1) = %v, %v, want 0.25", v, ok)
	}
}

func TestAutomationValueClampsOutsideSpan(t *testing.T) {
	c := AutomationCurve{Points: []AutomationPoint{
		{Beat: 2, Value: 0.3},
		{Beat: 4, Value: 0.7},
	}}
	if v, _ := c.Value(0); v != 0.3 {
		t.Errorf("Value before first point = %v, want 0.3", v)
	}
	if v, _ := c.Value(10); v != 0.7 {
		t.Errorf("Value after last point = %v, want 0.7", v)
	}
}

func TestAutomationValueEmptyCurve(t *testing.T) {
	var c AutomationCurve
	if _, ok := c.Value(1); ok {
		t.Errorf("empty curve reported a value")
	}
}

func TestAutomationSort(t *testing.T) {
	c := AutomationCurve{Points: []AutomationPoint{
		{Beat: 4, Value: 1},
		{Beat: 0, Value: 0},
		{Beat: 2, Value: 0.5},
	}}
	c.Sort()
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].Beat < c.Points[i-1].Beat {
			t.Fatalf("points unsorted after Sort: %+v", c.Points)
		}
	}
	if v, _ := c.Value(1); math.Abs(v-0.25) > 1e-9 {
		t.Errorf("Value(1) after Sort = %v, want 0.25", v)
	}
}

func TestAutomationCoincidentPoints(t *testing.T) {
	c := AutomationCurve{Points: []AutomationPoint{
		{Beat: 0, Value: 0},
		{Beat: 2, Value: 0.2},
		{Beat: 2, Value: 0.8},
		{Beat: 4, Value: 1},
	}}
	// A step edit places two points on the same beat; Value must not divide
	// by zero.
	v, ok := c.Value(2)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("Value at a coincident point = %v, %v", v, ok)
	}
}
