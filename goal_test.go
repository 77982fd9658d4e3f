package latticeplan

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestSetGoalPositionValidation(t *testing.T) {
	l := newTestLattice(t, nil)

	t.Run("no goals", func(t *testing.T) {
		err := l.SetGoalPosition(nil, nil, nil)
		test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("wrong goal cardinality", func(t *testing.T) {
		err := l.SetGoalPosition(
			[][]float64{{1, 2, 3}},
			[][]float64{{0, 0, 0}},
			[][]float64{{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		)
		test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("wrong offset cardinality", func(t *testing.T) {
		err := l.SetGoalPosition(
			[][]float64{{1, 2, 3, 0, 0, 0, float64(GoalTypePose)}},
			[][]float64{{0, 0}},
			[][]float64{{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		)
		test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("mismatched tolerances", func(t *testing.T) {
		err := l.SetGoalPosition(
			[][]float64{{1, 2, 3, 0, 0, 0, float64(GoalTypePose)}},
			[][]float64{{0, 0, 0}},
			[][]float64{},
		)
		test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("valid goal discretized", func(t *testing.T) {
		err := l.SetGoalPosition(
			[][]float64{{0.11, 0.21, 0.31, 0, 0, 0, float64(GoalTypePose)}},
			[][]float64{{0, 0, 0}},
			[][]float64{{0.02, 0.02, 0.02, 0.2, 0.2, 0.2}},
		)
		test.That(t, err, test.ShouldBeNil)
		goal := l.Goal()
		test.That(t, goal.Type, test.ShouldEqual, GoalTypePose)
		// grid resolution is 0.02
		test.That(t, goal.Cell, test.ShouldResemble, [3]int{5, 10, 15})
		test.That(t, l.goalEntry.Cell, test.ShouldResemble, [3]int{5, 10, 15})
	})
}

func TestSetGoalUnknownType(t *testing.T) {
	l := newTestLattice(t, nil)
	err := l.SetGoal(GoalConstraint{Type: GoalType(42)})
	test.That(t, errors.Is(err, ErrUnknownGoalType), test.ShouldBeTrue)
}

func TestSetGoalConfiguration(t *testing.T) {
	l := newTestLattice(t, nil)
	err := l.SetGoalConfiguration([]float64{math.Pi / 4, 0}, []float64{0.05, 0.05})
	test.That(t, err, test.ShouldBeNil)

	goal := l.Goal()
	test.That(t, goal.Type, test.ShouldEqual, GoalTypeJointState)
	test.That(t, l.GoalConfiguration(), test.ShouldResemble, []float64{math.Pi / 4, 0})
	// the synthesized pose goal sits at the FK of the target configuration
	test.That(t, goal.Pose[0], test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, goal.Pose[1], test.ShouldAlmostEqual, 0)
	test.That(t, goal.XYZTolerance[0], test.ShouldAlmostEqual, 0.05)
}

func TestIsGoalPosition(t *testing.T) {
	l := newTestLattice(t, nil)
	test.That(t, l.SetGoal(positionGoal(1, 1, 0, 0.05)), test.ShouldBeNil)

	test.That(t, l.isGoal([]float64{0, 0}, []float64{1.01, 0.99, 0, 0, 0, 2}), test.ShouldBeTrue)
	test.That(t, l.isGoal([]float64{0, 0}, []float64{1.2, 1, 0, 0, 0, 0}), test.ShouldBeFalse)
}

func TestIsGoalPose(t *testing.T) {
	l := newTestLattice(t, nil)
	err := l.SetGoal(GoalConstraint{
		Type:         GoalTypePose,
		Pose:         []float64{1, 1, 0, 0, 0, math.Pi / 2},
		XYZTolerance: [3]float64{0.05, 0.05, 0.05},
		RPYTolerance: [3]float64{0.1, 0.1, 0.1},
	})
	test.That(t, err, test.ShouldBeNil)

	// inside position tolerance with matching orientation
	test.That(t, l.isGoal([]float64{0, 0}, []float64{1, 1, 0, 0, 0, math.Pi / 2}), test.ShouldBeTrue)
	// small orientation error inside the tolerance
	test.That(t, l.isGoal([]float64{0, 0}, []float64{1, 1, 0, 0, 0, math.Pi/2 + 0.05}), test.ShouldBeTrue)
	// orientation error beyond the tolerance
	test.That(t, l.isGoal([]float64{0, 0}, []float64{1, 1, 0, 0, 0, math.Pi/2 + 0.5}), test.ShouldBeFalse)
	// position out of tolerance regardless of orientation
	test.That(t, l.isGoal([]float64{0, 0}, []float64{2, 1, 0, 0, 0, math.Pi / 2}), test.ShouldBeFalse)
}

func TestIsGoalJointState(t *testing.T) {
	l := newTestLattice(t, nil)
	err := l.SetGoalConfiguration([]float64{math.Pi / 4, -math.Pi / 4}, []float64{0.02, 0.02})
	test.That(t, err, test.ShouldBeNil)

	pose := []float64{0, 0, 0, 0, 0, 0}
	test.That(t, l.isGoal([]float64{math.Pi/4 + 0.01, -math.Pi / 4}, pose), test.ShouldBeTrue)
	test.That(t, l.isGoal([]float64{math.Pi/4 + 0.03, -math.Pi / 4}, pose), test.ShouldBeFalse)
	test.That(t, l.isGoal([]float64{math.Pi / 4, -math.Pi/4 - 0.03}, pose), test.ShouldBeFalse)
}

func TestNearGoalLatch(t *testing.T) {
	l := newTestLattice(t, nil)
	test.That(t, l.SetGoal(positionGoal(1, 1, 0, 0.05)), test.ShouldBeNil)
	test.That(t, l.nearGoal, test.ShouldBeFalse)

	l.isGoal([]float64{0, 0}, []float64{1, 1, 0, 0, 0, 0})
	test.That(t, l.nearGoal, test.ShouldBeTrue)

	// a new goal resets the latch
	test.That(t, l.SetGoal(positionGoal(2, 2, 0, 0.05)), test.ShouldBeNil)
	test.That(t, l.nearGoal, test.ShouldBeFalse)
}

func TestQuatFromRPY(t *testing.T) {
	// a yaw-only rotation
	q := quatFromRPY(0, 0, math.Pi/2)
	test.That(t, q.Real, test.ShouldAlmostEqual, math.Cos(math.Pi/4))
	test.That(t, q.Kmag, test.ShouldAlmostEqual, math.Sin(math.Pi/4))
	test.That(t, q.Imag, test.ShouldAlmostEqual, 0)
	test.That(t, q.Jmag, test.ShouldAlmostEqual, 0)

	// identical orientations have zero rotation error
	a := quatFromRPY(0.3, -0.2, 1.1)
	test.That(t, 2*math.Acos(math.Abs(quatDot(a, a))), test.ShouldAlmostEqual, 0, 1e-6)

	// antipodal quaternions represent the same rotation
	b := a
	b.Real, b.Imag, b.Jmag, b.Kmag = -b.Real, -b.Imag, -b.Jmag, -b.Kmag
	test.That(t, 2*math.Acos(math.Abs(quatDot(a, b))), test.ShouldAlmostEqual, 0, 1e-6)
}
