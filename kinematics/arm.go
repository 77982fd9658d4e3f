// Package kinematics provides a serial revolute arm model for lattice
// planning: joint limits, continuity, and planar forward kinematics.
package kinematics

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/latticeplan"
)

// Limit represents the limits of motion of a single joint.
type Limit struct {
	Min float64
	Max float64
}

// SerialArm is an N-joint serial revolute arm operating in the XY plane of the
// planning frame. Joints without limits are continuous and wrap at 2pi.
type SerialArm struct {
	name        string
	linkLengths []float64
	limits      []Limit
	continuous  []bool
	logger      golog.Logger
}

// NewSerialArm builds an arm from per-joint link lengths and limits. A true
// entry in continuous marks the corresponding joint as unbounded.
func NewSerialArm(
	name string,
	linkLengths []float64,
	limits []Limit,
	continuous []bool,
	logger golog.Logger,
) (*SerialArm, error) {
	if len(linkLengths) == 0 {
		return nil, errors.New("arm must have at least one link")
	}
	if len(limits) != len(linkLengths) || len(continuous) != len(linkLengths) {
		return nil, errors.Errorf(
			"mismatched arm description: %d links, %d limits, %d continuity flags",
			len(linkLengths), len(limits), len(continuous))
	}
	for i, length := range linkLengths {
		if length <= 0 {
			return nil, errors.Errorf("link %d has non-positive length %f", i, length)
		}
	}
	for i, lim := range limits {
		if !continuous[i] && lim.Min >= lim.Max {
			return nil, errors.Errorf("joint %d has empty limit range [%f, %f]", i, lim.Min, lim.Max)
		}
	}
	return &SerialArm{
		name:        name,
		linkLengths: linkLengths,
		limits:      limits,
		continuous:  continuous,
		logger:      logger,
	}, nil
}

// Name returns the arm's name.
func (a *SerialArm) Name() string {
	return a.name
}

// DoF returns the number of joints.
func (a *SerialArm) DoF() int {
	return len(a.linkLengths)
}

// Reach returns the arm's maximum reach, the sum of its link lengths.
func (a *SerialArm) Reach() float64 {
	var total float64
	for _, length := range a.linkLengths {
		total += length
	}
	return total
}

// MinPosLimit returns the minimum position limit of a joint.
func (a *SerialArm) MinPosLimit(jointIdx int) float64 {
	return a.limits[jointIdx].Min
}

// MaxPosLimit returns the maximum position limit of a joint.
func (a *SerialArm) MaxPosLimit(jointIdx int) float64 {
	return a.limits[jointIdx].Max
}

// HasPosLimit returns whether a joint is limited (non-continuous).
func (a *SerialArm) HasPosLimit(jointIdx int) bool {
	return !a.continuous[jointIdx]
}

// CheckJointLimits reports whether every joint position is within limits.
// Continuous joints pass trivially.
func (a *SerialArm) CheckJointLimits(state []float64, verbose bool) bool {
	if len(state) < len(a.limits) {
		return false
	}
	for i := range a.limits {
		if a.continuous[i] {
			continue
		}
		if state[i] < a.limits[i].Min || state[i] > a.limits[i].Max {
			if verbose {
				a.logger.Warnf("joint %d position %0.3f outside limits [%0.3f, %0.3f]",
					i, state[i], a.limits[i].Min, a.limits[i].Max)
			}
			return false
		}
	}
	return true
}

// Extension resolves optional capabilities of the arm.
func (a *SerialArm) Extension(c latticeplan.Capability) interface{} {
	if c == latticeplan.CapabilityForwardKinematics {
		return a
	}
	return nil
}

// ComputePlanningLinkFK returns the planning-frame pose of the arm's tip as
// [x, y, z, roll, pitch, yaw]. The arm moves in the XY plane, so z, roll, and
// pitch are zero and yaw is the accumulated joint angle.
func (a *SerialArm) ComputePlanningLinkFK(state []float64) ([]float64, error) {
	if len(state) < len(a.linkLengths) {
		return nil, errors.Errorf("state has %d joint positions, want %d", len(state), len(a.linkLengths))
	}
	var tip r3.Vector
	theta := 0.0
	for i, length := range a.linkLengths {
		theta += state[i]
		tip.X += length * math.Cos(theta)
		tip.Y += length * math.Sin(theta)
	}
	return []float64{tip.X, tip.Y, 0, 0, 0, theta}, nil
}

// LinkPoints samples workspace points along every link at approximately the
// given spacing, including the base, each joint, and the tip. Collision
// checkers use these as the arm's collision model.
func (a *SerialArm) LinkPoints(state []float64, spacing float64) ([]r3.Vector, error) {
	if len(state) < len(a.linkLengths) {
		return nil, errors.Errorf("state has %d joint positions, want %d", len(state), len(a.linkLengths))
	}
	if spacing <= 0 {
		return nil, errors.Errorf("spacing must be positive, got %f", spacing)
	}
	points := []r3.Vector{{}}
	var base r3.Vector
	theta := 0.0
	for i, length := range a.linkLengths {
		theta += state[i]
		dir := r3.Vector{X: math.Cos(theta), Y: math.Sin(theta)}
		n := int(math.Ceil(length / spacing))
		for s := 1; s <= n; s++ {
			d := length * float64(s) / float64(n)
			points = append(points, base.Add(dir.Mul(d)))
		}
		base = base.Add(dir.Mul(length))
	}
	return points, nil
}
