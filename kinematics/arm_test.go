package kinematics

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/viam-labs/latticeplan"
)

func twoLinkArm(t *testing.T) *SerialArm {
	t.Helper()
	arm, err := NewSerialArm(
		"two-link",
		[]float64{1.0, 0.5},
		[]Limit{{Min: -math.Pi, Max: math.Pi}, {Min: -math.Pi / 2, Max: math.Pi / 2}},
		[]bool{false, false},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)
	return arm
}

func TestNewSerialArmValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	for _, tc := range []struct {
		name       string
		links      []float64
		limits     []Limit
		continuous []bool
	}{
		{"no links", nil, nil, nil},
		{"mismatched limits", []float64{1}, []Limit{}, []bool{false}},
		{"non-positive link", []float64{0}, []Limit{{-1, 1}}, []bool{false}},
		{"empty limit range", []float64{1}, []Limit{{1, 1}}, []bool{false}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSerialArm("bad", tc.links, tc.limits, tc.continuous, logger)
			test.That(t, err, test.ShouldNotBeNil)
		})
	}

	// an empty limit range is fine on a continuous joint
	_, err := NewSerialArm("ok", []float64{1}, []Limit{{0, 0}}, []bool{true}, logger)
	test.That(t, err, test.ShouldBeNil)
}

func TestSerialArmLimits(t *testing.T) {
	arm := twoLinkArm(t)
	test.That(t, arm.DoF(), test.ShouldEqual, 2)
	test.That(t, arm.Reach(), test.ShouldAlmostEqual, 1.5)
	test.That(t, arm.MinPosLimit(1), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, arm.MaxPosLimit(1), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, arm.HasPosLimit(0), test.ShouldBeTrue)

	test.That(t, arm.CheckJointLimits([]float64{0, 0}, false), test.ShouldBeTrue)
	test.That(t, arm.CheckJointLimits([]float64{0, math.Pi}, true), test.ShouldBeFalse)
	test.That(t, arm.CheckJointLimits([]float64{0}, false), test.ShouldBeFalse)
}

func TestSerialArmContinuousJoint(t *testing.T) {
	arm, err := NewSerialArm(
		"spinner",
		[]float64{1.0},
		[]Limit{{}},
		[]bool{true},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm.HasPosLimit(0), test.ShouldBeFalse)
	// continuous joints pass any position
	test.That(t, arm.CheckJointLimits([]float64{100}, false), test.ShouldBeTrue)
}

func TestSerialArmFK(t *testing.T) {
	arm := twoLinkArm(t)

	pose, err := arm.ComputePlanningLinkFK([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose[0], test.ShouldAlmostEqual, 1.5)
	test.That(t, pose[1], test.ShouldAlmostEqual, 0)
	test.That(t, pose[5], test.ShouldAlmostEqual, 0)

	// first joint straight up, elbow bent back 90 degrees
	pose, err = arm.ComputePlanningLinkFK([]float64{math.Pi / 2, -math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose[0], test.ShouldAlmostEqual, 0.5)
	test.That(t, pose[1], test.ShouldAlmostEqual, 1.0)
	test.That(t, pose[5], test.ShouldAlmostEqual, 0)

	_, err = arm.ComputePlanningLinkFK([]float64{0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSerialArmExtension(t *testing.T) {
	arm := twoLinkArm(t)
	fk, ok := arm.Extension(latticeplan.CapabilityForwardKinematics).(latticeplan.ForwardKinematics)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fk, test.ShouldEqual, arm)
	test.That(t, arm.Extension(latticeplan.Capability("unknown")), test.ShouldBeNil)
}

func TestLinkPoints(t *testing.T) {
	arm := twoLinkArm(t)
	points, err := arm.LinkPoints([]float64{0, 0}, 0.25)
	test.That(t, err, test.ShouldBeNil)
	// base + 4 samples on the first link + 2 on the second
	test.That(t, len(points), test.ShouldEqual, 7)
	test.That(t, points[0].X, test.ShouldAlmostEqual, 0)
	tip := points[len(points)-1]
	test.That(t, tip.X, test.ShouldAlmostEqual, 1.5)
	test.That(t, tip.Y, test.ShouldAlmostEqual, 0)

	_, err = arm.LinkPoints([]float64{0, 0}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}
