// Package primitives implements the lattice's action space as a set of
// joint-space motion primitives: per-joint unit steps, plus optional
// long-range primitives that are interpolated into multi-waypoint actions and
// gated off near the goal.
package primitives

import (
	"math"

	"github.com/pkg/errors"

	"github.com/viam-labs/latticeplan"
)

// GoalDistanceFunc returns the metric distance in meters from a configuration
// to the goal region. Used to gate long-range primitives off near the goal.
type GoalDistanceFunc func(state []float64) float64

// ActionSet generates candidate actions from a configuration by applying
// motion primitives.
type ActionSet struct {
	unitDeltas      []float64
	longDeltas      []float64
	interpStep      float64
	shortDistance   float64
	goalDistance    GoalDistanceFunc
	normalizeJoints []bool
}

// Option configures an ActionSet.
type Option func(*ActionSet)

// WithLongRangePrimitives adds per-joint long-range primitives of the given
// magnitudes, interpolated into waypoints no more than step apart. They are
// emitted only while the configuration is farther than shortDistance meters
// from the goal, as reported by dist.
func WithLongRangePrimitives(deltas []float64, step, shortDistance float64, dist GoalDistanceFunc) Option {
	return func(s *ActionSet) {
		s.longDeltas = deltas
		s.interpStep = step
		s.shortDistance = shortDistance
		s.goalDistance = dist
	}
}

// WithContinuousJoints marks which joints wrap at 2pi; their waypoints are
// normalized into (-pi, pi].
func WithContinuousJoints(continuous []bool) Option {
	return func(s *ActionSet) {
		s.normalizeJoints = continuous
	}
}

// NewActionSet builds an action set from per-joint unit primitive magnitudes.
// Each joint contributes a +delta and a -delta single-waypoint action.
func NewActionSet(unitDeltas []float64, opts ...Option) (*ActionSet, error) {
	if len(unitDeltas) == 0 {
		return nil, errors.New("action set requires at least one joint")
	}
	for i, d := range unitDeltas {
		if d <= 0 {
			return nil, errors.Errorf("unit primitive for joint %d must be positive, got %f", i, d)
		}
	}
	s := &ActionSet{unitDeltas: unitDeltas}
	for _, opt := range opts {
		opt(s)
	}
	if s.longDeltas != nil {
		if len(s.longDeltas) != len(unitDeltas) {
			return nil, errors.Errorf(
				"%d long-range primitives for %d joints", len(s.longDeltas), len(unitDeltas))
		}
		if s.interpStep <= 0 {
			return nil, errors.Errorf("interpolation step must be positive, got %f", s.interpStep)
		}
	}
	return s, nil
}

// Apply enumerates the candidate actions out of a configuration.
func (s *ActionSet) Apply(state []float64) ([]latticeplan.Action, error) {
	if len(state) < len(s.unitDeltas) {
		return nil, errors.Errorf("state has %d joint positions, want %d", len(state), len(s.unitDeltas))
	}

	actions := make([]latticeplan.Action, 0, 4*len(s.unitDeltas))
	for j, delta := range s.unitDeltas {
		for _, sign := range []float64{1, -1} {
			actions = append(actions, latticeplan.Action{s.offsetWaypoint(state, j, sign*delta)})
		}
	}

	if s.longDeltas != nil && s.farFromGoal(state) {
		for j, delta := range s.longDeltas {
			for _, sign := range []float64{1, -1} {
				actions = append(actions, s.interpolated(state, j, sign*delta))
			}
		}
	}
	return actions, nil
}

func (s *ActionSet) farFromGoal(state []float64) bool {
	if s.goalDistance == nil {
		return true
	}
	return s.goalDistance(state) > s.shortDistance
}

func (s *ActionSet) offsetWaypoint(state []float64, joint int, delta float64) []float64 {
	wp := append([]float64{}, state...)
	wp[joint] += delta
	if s.normalizeJoints != nil && s.normalizeJoints[joint] {
		wp[joint] = normalizeAngle(wp[joint])
	}
	return wp
}

// interpolated builds a multi-waypoint action moving one joint by delta in
// steps of at most interpStep.
func (s *ActionSet) interpolated(state []float64, joint int, delta float64) latticeplan.Action {
	n := int(math.Ceil(math.Abs(delta) / s.interpStep))
	if n < 1 {
		n = 1
	}
	action := make(latticeplan.Action, 0, n)
	for i := 1; i <= n; i++ {
		action = append(action, s.offsetWaypoint(state, joint, delta*float64(i)/float64(n)))
	}
	return action
}

func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta > math.Pi {
		theta -= 2 * math.Pi
	} else if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}
