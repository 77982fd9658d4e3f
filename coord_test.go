package latticeplan

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func newContinuousLattice(t *testing.T) *Lattice {
	t.Helper()
	arm := newFakeArm()
	arm.continuous = []bool{true, true}
	params := NewPlanningParams(2)
	params.CoordDelta = []float64{math.Pi / 4, math.Pi / 4}
	l, err := New(&fkArm{arm}, &fakeChecker{dist: 100}, fakeGrid{res: 0.02}, params, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return l
}

func TestNormalizeAngle(t *testing.T) {
	test.That(t, normalizeAngle(0), test.ShouldAlmostEqual, 0)
	test.That(t, normalizeAngle(3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, normalizeAngle(-3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, normalizeAnglePositive(-math.Pi/2), test.ShouldAlmostEqual, 3*math.Pi/2)
	test.That(t, normalizeAnglePositive(5*math.Pi/2), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, shortestAngleDist(math.Pi/4, -math.Pi/4), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, shortestAngleDist(-3*math.Pi/4, 3*math.Pi/4), test.ShouldAlmostEqual, -math.Pi/2)
}

func TestAnglesToCoordBounded(t *testing.T) {
	l := newTestLattice(t, nil)
	coord := make([]int, 2)

	// with qmin = -pi and delta = pi/4, zero sits at bin 4 of 8
	l.anglesToCoord([]float64{math.Pi / 4, 0}, coord)
	test.That(t, coord, test.ShouldResemble, []int{5, 4})

	angles := make([]float64, 2)
	l.coordToAngles([]int{5, 4}, angles)
	test.That(t, angles[0], test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, angles[1], test.ShouldAlmostEqual, 0)

	l.anglesToCoord([]float64{-math.Pi, math.Pi}, coord)
	test.That(t, coord, test.ShouldResemble, []int{0, 8})
}

func TestAnglesToCoordContinuous(t *testing.T) {
	l := newContinuousLattice(t)
	coord := make([]int, 2)

	l.anglesToCoord([]float64{0, 0}, coord)
	test.That(t, coord, test.ShouldResemble, []int{0, 0})

	// negative angles bin counterclockwise from zero
	l.anglesToCoord([]float64{-math.Pi / 4, math.Pi / 4}, coord)
	test.That(t, coord, test.ShouldResemble, []int{7, 1})

	// the top bin wraps back to zero
	l.anglesToCoord([]float64{2*math.Pi - 0.01, 0}, coord)
	test.That(t, coord[0], test.ShouldEqual, 0)

	angles := make([]float64, 2)
	l.coordToAngles([]int{7, 1}, angles)
	test.That(t, angles[0], test.ShouldAlmostEqual, 7*math.Pi/4)
	test.That(t, angles[1], test.ShouldAlmostEqual, math.Pi/4)
}

func TestCoordRoundTrip(t *testing.T) {
	bounded := newTestLattice(t, nil)
	continuous := newContinuousLattice(t)

	coord := make([]int, 2)
	angles := make([]float64, 2)
	for _, l := range []*Lattice{bounded, continuous} {
		for q0 := -math.Pi + 0.01; q0 < math.Pi; q0 += 0.37 {
			for q1 := -math.Pi + 0.01; q1 < math.Pi; q1 += 0.53 {
				q := []float64{q0, q1}
				l.anglesToCoord(q, coord)
				l.coordToAngles(coord, angles)
				for j := range q {
					diff := math.Abs(shortestAngleDist(q[j], angles[j]))
					test.That(t, diff, test.ShouldBeLessThanOrEqualTo, l.params.CoordDelta[j]/2+1e-9)
				}
			}
		}
	}
}

func TestEqualBinsShareStates(t *testing.T) {
	l := newTestLattice(t, nil)
	coordA := make([]int, 2)
	coordB := make([]int, 2)

	// two configurations a hair apart in the same bin must map to one state
	l.anglesToCoord([]float64{0.01, 0.01}, coordA)
	l.anglesToCoord([]float64{-0.01, -0.01}, coordB)
	test.That(t, coordA, test.ShouldResemble, coordB)

	a := l.getOrCreateState(coordA, []float64{0.01, 0.01}, 1, [3]int{})
	b := l.getOrCreateState(coordB, []float64{-0.01, -0.01}, 1, [3]int{})
	test.That(t, a, test.ShouldEqual, b)
	// the stored configuration is the first to land in the bin
	test.That(t, a.State, test.ShouldResemble, []float64{0.01, 0.01})
}
