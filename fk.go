package latticeplan

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// computePlanningFrameFK returns the planning-frame pose of the tip offset for
// a configuration: the planning link's FK with the goal's body-frame offset
// translation applied. The orientation is that of the planning link; a pure
// translational offset leaves it unchanged.
func (l *Lattice) computePlanningFrameFK(state []float64) ([]float64, error) {
	if l.fk == nil {
		return nil, ErrFKUnavailable
	}
	pose, err := l.fk.ComputePlanningLinkFK(state)
	if err != nil {
		return nil, errors.Wrap(ErrFKUnavailable, err.Error())
	}
	if len(pose) != 6 {
		return nil, errors.Wrapf(ErrFKUnavailable, "planning link FK returned %d elements, want 6", len(pose))
	}
	return l.applyTargetOffset(pose), nil
}

// TargetOffsetPose applies the active goal's tip-to-offset translation to a
// planning-link pose, returning the pose of the offset point.
func (l *Lattice) TargetOffsetPose(tipPose []float64) []float64 {
	return l.applyTargetOffset(append([]float64{}, tipPose...))
}

func (l *Lattice) applyTargetOffset(pose []float64) []float64 {
	q := quatFromRPY(pose[3], pose[4], pose[5])
	off := rotateByQuat(r3.Vector{
		X: l.goal.Offset[0],
		Y: l.goal.Offset[1],
		Z: l.goal.Offset[2],
	}, q)
	pose[0] += off.X
	pose[1] += off.Y
	pose[2] += off.Z
	return pose
}

// rotateByQuat rotates a vector by a unit quaternion, v' = q v q*.
func rotateByQuat(v r3.Vector, q quat.Number) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
