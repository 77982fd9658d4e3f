package latticeplan

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestPlanningParamsDefaults(t *testing.T) {
	p := NewPlanningParams(3)
	test.That(t, p.Validate(), test.ShouldBeNil)
	test.That(t, p.NumJoints, test.ShouldEqual, 3)
	test.That(t, len(p.CoordDelta), test.ShouldEqual, 3)
	test.That(t, p.CostMultiplier, test.ShouldEqual, 1000)
}

func TestPlanningParamsValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*PlanningParams)
	}{
		{"zero joints", func(p *PlanningParams) { p.NumJoints = 0 }},
		{"missing deltas", func(p *PlanningParams) { p.CoordDelta = p.CoordDelta[:1] }},
		{"non-positive delta", func(p *PlanningParams) { p.CoordDelta[0] = 0 }},
		{"non-positive cost", func(p *PlanningParams) { p.CostMultiplier = 0 }},
		{"non-positive primitive offset", func(p *PlanningParams) { p.MaxPrimitiveOffset = -1 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPlanningParams(2)
			tc.mutate(p)
			test.That(t, p.Validate(), test.ShouldNotBeNil)
		})
	}
}

func TestActionCost(t *testing.T) {
	p := NewPlanningParams(2)
	p.CostMultiplier = 1000
	p.MaxPrimitiveOffset = math.Pi / 32

	// a single-primitive move costs one multiplier
	test.That(t, p.ActionCost([]float64{0, 0}, []float64{math.Pi / 32, 0}), test.ShouldEqual, 1000)
	// a move spanning four unit primitives costs four
	test.That(t, p.ActionCost([]float64{0, 0}, []float64{math.Pi / 8, 0}), test.ShouldEqual, 4000)
	// zero motion still costs at least one primitive
	test.That(t, p.ActionCost([]float64{0, 0}, []float64{0, 0}), test.ShouldEqual, 1000)
	// mismatched cardinality is rejected
	test.That(t, p.ActionCost([]float64{0}, []float64{0, 0}), test.ShouldEqual, -1)
}
