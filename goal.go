package latticeplan

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"
)

// GoalType tags the kind of constraint a GoalConstraint carries.
type GoalType int

const (
	// GoalTypePosition constrains the tip-offset position only.
	GoalTypePosition GoalType = iota
	// GoalTypePose constrains the tip-offset position and orientation.
	GoalTypePose
	// GoalTypeJointState constrains the full joint configuration.
	GoalTypeJointState
)

func (t GoalType) String() string {
	switch t {
	case GoalTypePosition:
		return "position"
	case GoalTypePose:
		return "pose"
	case GoalTypeJointState:
		return "joint_state"
	default:
		return fmt.Sprintf("GoalType(%d)", int(t))
	}
}

// GoalConstraint describes the active goal region of a planning episode.
type GoalConstraint struct {
	Type GoalType

	// Pose is the 6-DOF target pose of the planning link, [x y z R P Y].
	Pose []float64
	// Offset is the tip-to-offset translation in the planning link's body
	// frame. Goal tolerances are measured at the offset position.
	Offset [3]float64
	// XYZTolerance and RPYTolerance bound the goal region around the target
	// offset pose.
	XYZTolerance [3]float64
	RPYTolerance [3]float64
	// TargetOffsetPose is Pose with Offset applied, cached at SetGoal time.
	TargetOffsetPose []float64
	// Cell is the grid cell of the target offset position.
	Cell [3]int

	// Angles and AngleTolerances define a joint-configuration goal.
	Angles          []float64
	AngleTolerances []float64
}

// SetGoal stores the goal constraint and prepares goal-region testing.
func (l *Lattice) SetGoal(goal GoalConstraint) error {
	switch goal.Type {
	case GoalTypePosition, GoalTypePose:
		pose := append(append([]float64{}, goal.Pose...), float64(goal.Type))
		return l.SetGoalPosition(
			[][]float64{pose},
			[][]float64{goal.Offset[:]},
			[][]float64{{
				goal.XYZTolerance[0], goal.XYZTolerance[1], goal.XYZTolerance[2],
				goal.RPYTolerance[0], goal.RPYTolerance[1], goal.RPYTolerance[2],
			}},
		)
	case GoalTypeJointState:
		return l.SetGoalConfiguration(goal.Angles, goal.AngleTolerances)
	default:
		return errors.Wrapf(ErrUnknownGoalType, "%d", int(goal.Type))
	}
}

// SetGoalPosition sets a 6-DOF pose or position goal for an offset from the
// planning link. Each goal element is [x y z R P Y type], each offset element
// is a 3-vector in the planning link's body frame, and each tolerance element
// is [dx dy dz dR dP dY]. Only the first goal is planned for.
func (l *Lattice) SetGoalPosition(goals, offsets, tolerances [][]float64) error {
	if len(goals) == 0 {
		return errors.Wrap(ErrInvalidArgument, "goals vector is empty")
	}
	var err error
	for i, g := range goals {
		if len(g) != 7 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidArgument, "goal %d has %d elements, want 7", i, len(g)))
		}
	}
	if len(offsets) != len(goals) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidArgument, "%d offsets for %d goals", len(offsets), len(goals)))
	}
	for i, off := range offsets {
		if len(off) != 3 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidArgument, "offset %d has %d elements, want 3", i, len(off)))
		}
	}
	if len(tolerances) != len(goals) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidArgument, "%d tolerances for %d goals", len(tolerances), len(goals)))
	}
	for i, tol := range tolerances {
		if len(tol) != 6 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidArgument, "tolerance %d has %d elements, want 6", i, len(tol)))
		}
	}
	if err != nil {
		return err
	}

	l.goal = GoalConstraint{
		Type: GoalType(int(goals[0][6])),
		Pose: append([]float64{}, goals[0][:6]...),
	}
	copy(l.goal.Offset[:], offsets[0])
	copy(l.goal.XYZTolerance[:], tolerances[0][:3])
	copy(l.goal.RPYTolerance[:], tolerances[0][3:6])

	l.goal.TargetOffsetPose = l.TargetOffsetPose(l.goal.Pose)

	tgt := l.goal.TargetOffsetPose
	ix, iy, iz := l.grid.WorldToGrid(tgt[0], tgt[1], tgt[2])
	l.goal.Cell = [3]int{ix, iy, iz}
	l.goalEntry.Cell = l.goal.Cell
	for i := range l.goalEntry.Coord {
		l.goalEntry.Coord[i] = 0
	}

	l.logger.Debugf("new goal: grid (%d, %d, %d) xyz (%0.2f, %0.2f, %0.2f) tol %0.3fm rpy (%0.2f, %0.2f, %0.2f) tol %0.3frad",
		l.goal.Cell[0], l.goal.Cell[1], l.goal.Cell[2],
		l.goal.Pose[0], l.goal.Pose[1], l.goal.Pose[2],
		l.goal.XYZTolerance[0],
		l.goal.Pose[3], l.goal.Pose[4], l.goal.Pose[5],
		l.goal.RPYTolerance[0])

	l.nearGoal = false
	l.goalSetAt = l.clock.Now()
	return nil
}

// jointGoalDefaultTolerance bounds the synthesized pose goal backing a
// joint-configuration goal. The pose tolerance is never the deciding test for
// joint goals; the per-joint tolerances are.
const jointGoalDefaultTolerance = 0.05

// SetGoalConfiguration sets a full joint-configuration goal with per-joint
// tolerances. A pose goal at the FK of the target configuration is synthesized
// so that metric heuristics keep working.
func (l *Lattice) SetGoalConfiguration(goal, tolerances []float64) error {
	pose, err := l.computePlanningFrameFK(goal)
	if err != nil {
		return errors.Wrap(err, "cannot compute FK for goal configuration")
	}

	tol := make([]float64, 6)
	for i := range tol {
		tol[i] = jointGoalDefaultTolerance
	}
	if err := l.SetGoalPosition(
		[][]float64{append(pose, float64(GoalTypePose))},
		[][]float64{{0, 0, 0}},
		[][]float64{tol},
	); err != nil {
		return err
	}

	l.goal.Angles = append([]float64{}, goal...)
	l.goal.AngleTolerances = append([]float64{}, tolerances...)
	l.goal.Type = GoalTypeJointState
	return nil
}

// Goal returns the active goal constraint.
func (l *Lattice) Goal() GoalConstraint {
	return l.goal
}

// GoalConfiguration returns the target joint vector of a joint-state goal, or
// nil for pose and position goals.
func (l *Lattice) GoalConfiguration() []float64 {
	return l.goal.Angles
}

// isGoal reports whether a configuration and its tip-offset pose satisfy the
// active goal constraint.
func (l *Lattice) isGoal(state, pose []float64) bool {
	switch l.goal.Type {
	case GoalTypeJointState:
		for i := range l.goal.Angles {
			if math.Abs(state[i]-l.goal.Angles[i]) > l.goal.AngleTolerances[i] {
				return false
			}
		}
		return true
	case GoalTypePose:
		if !l.withinPositionTolerance(pose) {
			return false
		}
		l.latchNearGoal(pose)
		qGoal := quatFromRPY(
			l.goal.TargetOffsetPose[3], l.goal.TargetOffsetPose[4], l.goal.TargetOffsetPose[5])
		q := quatFromRPY(pose[3], pose[4], pose[5])
		theta := normalizeAngle(2 * math.Acos(math.Abs(quatDot(q, qGoal))))
		return theta < l.goal.RPYTolerance[0]
	case GoalTypePosition:
		if !l.withinPositionTolerance(pose) {
			return false
		}
		l.latchNearGoal(pose)
		return true
	default:
		l.logger.Errorf("unknown goal type %d", int(l.goal.Type))
		return false
	}
}

func (l *Lattice) withinPositionTolerance(pose []float64) bool {
	tgt := l.goal.TargetOffsetPose
	return math.Abs(pose[0]-tgt[0]) <= l.goal.XYZTolerance[0] &&
		math.Abs(pose[1]-tgt[1]) <= l.goal.XYZTolerance[1] &&
		math.Abs(pose[2]-tgt[2]) <= l.goal.XYZTolerance[2]
}

// latchNearGoal records the first time the search produces a candidate inside
// the position tolerance.
func (l *Lattice) latchNearGoal(pose []float64) {
	if l.nearGoal {
		return
	}
	l.nearGoal = true
	tgt := l.goal.TargetOffsetPose
	l.logger.Infof("search at (%0.2f, %0.2f, %0.2f), within %0.3fm of the goal (%0.2f, %0.2f, %0.2f) after %v (%d expansions)",
		pose[0], pose[1], pose[2],
		l.goal.XYZTolerance[0],
		tgt[0], tgt[1], tgt[2],
		l.clock.Since(l.goalSetAt),
		len(l.expanded))
}

// quatFromRPY builds a unit quaternion from XYZ-extrinsic roll, pitch, yaw,
// composed as Rz(yaw) * Ry(pitch) * Rx(roll).
func quatFromRPY(roll, pitch, yaw float64) quat.Number {
	qx := quat.Number{Real: math.Cos(roll / 2), Imag: math.Sin(roll / 2)}
	qy := quat.Number{Real: math.Cos(pitch / 2), Jmag: math.Sin(pitch / 2)}
	qz := quat.Number{Real: math.Cos(yaw / 2), Kmag: math.Sin(yaw / 2)}
	return quat.Mul(qz, quat.Mul(qy, qx))
}

// quatDot returns the dot product of two quaternions, clamped to [-1, 1] so
// that rounding on unit quaternions cannot push math.Acos out of its domain.
func quatDot(a, b quat.Number) float64 {
	d := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return math.Max(-1, math.Min(1, d))
}
