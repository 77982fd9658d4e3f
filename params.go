package latticeplan

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

const (
	defaultCoordDelta         = math.Pi / 32
	defaultCostMultiplier     = 1000
	defaultMaxPrimitiveOffset = math.Pi / 32
)

// PlanningParams configures the discretization and cost model of a lattice.
type PlanningParams struct {
	// NumJoints is the dimension of the configuration space.
	NumJoints int
	// CoordDelta is the per-joint discretization resolution in radians (or
	// meters for prismatic joints).
	CoordDelta []float64
	// CostMultiplier is the integer cost charged per lattice transition.
	CostMultiplier int
	// MaxPrimitiveOffset is the largest joint displacement covered by a single
	// unit motion primitive, used by the magnitude-scaled cost model.
	MaxPrimitiveOffset float64
}

// NewPlanningParams returns planning parameters with default resolution and
// cost settings for the given number of joints.
func NewPlanningParams(numJoints int) *PlanningParams {
	deltas := make([]float64, numJoints)
	for i := range deltas {
		deltas[i] = defaultCoordDelta
	}
	return &PlanningParams{
		NumJoints:          numJoints,
		CoordDelta:         deltas,
		CostMultiplier:     defaultCostMultiplier,
		MaxPrimitiveOffset: defaultMaxPrimitiveOffset,
	}
}

// Validate returns an error describing every misconfigured field.
func (p *PlanningParams) Validate() error {
	var err error
	if p.NumJoints <= 0 {
		err = multierr.Append(err, fmt.Errorf("num joints must be positive, got %d", p.NumJoints))
	}
	if len(p.CoordDelta) != p.NumJoints {
		err = multierr.Append(err, fmt.Errorf("expected %d coordinate deltas, got %d", p.NumJoints, len(p.CoordDelta)))
	}
	for i, delta := range p.CoordDelta {
		if delta <= 0 {
			err = multierr.Append(err, fmt.Errorf("coordinate delta for joint %d must be positive, got %f", i, delta))
		}
	}
	if p.CostMultiplier <= 0 {
		err = multierr.Append(err, fmt.Errorf("cost multiplier must be positive, got %d", p.CostMultiplier))
	}
	if p.MaxPrimitiveOffset <= 0 {
		err = multierr.Append(err, fmt.Errorf("max primitive offset must be positive, got %f", p.MaxPrimitiveOffset))
	}
	return err
}

// ActionCost returns the magnitude-scaled cost of moving between two
// configurations: the number of unit primitives spanned by the largest joint
// displacement, times the cost multiplier. It is an alternative to the flat
// per-transition cost and does not change the lattice contract.
func (p *PlanningParams) ActionCost(from, to []float64) int {
	if len(from) != len(to) {
		return -1
	}
	var maxDiff float64
	for i := range from {
		diff := math.Abs(shortestAngleDist(from[i], to[i]))
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	numPrims := int(maxDiff/p.MaxPrimitiveOffset + 0.5)
	if numPrims < 1 {
		numPrims = 1
	}
	return numPrims * p.CostMultiplier
}
