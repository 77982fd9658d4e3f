// Package heuristic provides admissible cost-to-go estimates over a planning
// lattice: a workspace Euclidean heuristic driven by the cached grid cells,
// and a joint-space displacement heuristic for configuration goals.
package heuristic

import (
	"math"

	"github.com/viam-labs/latticeplan"
)

// Lattice is the part of the lattice graph a heuristic reads: state cells and
// configurations, and the active goal.
type Lattice interface {
	GoalStateID() int
	StartStateID() int
	StateCell(stateID int) ([3]int, error)
	StateConfiguration(stateID int) ([]float64, error)
	StartConfiguration() []float64
	Goal() latticeplan.GoalConstraint
}

// Grid converts between cells and planning-frame positions.
type Grid interface {
	Resolution() float64
	GridToWorld(ix, iy, iz int) (float64, float64, float64)
}

// Euclid estimates cost-to-go as the straight-line workspace distance between
// a state's cached tip cell and the goal cell, scaled to integer costs.
type Euclid struct {
	lattice      Lattice
	grid         Grid
	costPerMeter float64
}

// NewEuclid returns a Euclidean heuristic. costPerMeter converts meters of tip
// displacement into the search's integer cost units.
func NewEuclid(lattice Lattice, grid Grid, costPerMeter float64) *Euclid {
	return &Euclid{lattice: lattice, grid: grid, costPerMeter: costPerMeter}
}

func (h *Euclid) cellDistance(a, b [3]int) float64 {
	dx := float64(a[0] - b[0])
	dy := float64(a[1] - b[1])
	dz := float64(a[2] - b[2])
	return math.Sqrt(dx*dx+dy*dy+dz*dz) * h.grid.Resolution()
}

// GoalHeuristic estimates the cost from a state to the goal region.
func (h *Euclid) GoalHeuristic(stateID int) int {
	if stateID == h.lattice.GoalStateID() {
		return 0
	}
	cell, err := h.lattice.StateCell(stateID)
	if err != nil {
		return 0
	}
	return int(h.costPerMeter * h.cellDistance(cell, h.lattice.Goal().Cell))
}

// StartHeuristic estimates the cost from the start to a state.
func (h *Euclid) StartHeuristic(stateID int) int {
	startID := h.lattice.StartStateID()
	if startID < 0 || stateID == startID {
		return 0
	}
	cell, err := h.lattice.StateCell(stateID)
	if err != nil {
		return 0
	}
	start, err := h.lattice.StateCell(startID)
	if err != nil {
		return 0
	}
	return int(h.costPerMeter * h.cellDistance(cell, start))
}

// FromToHeuristic estimates the cost between two states.
func (h *Euclid) FromToHeuristic(fromID, toID int) int {
	if toID == h.lattice.GoalStateID() {
		return h.GoalHeuristic(fromID)
	}
	from, err := h.lattice.StateCell(fromID)
	if err != nil {
		return 0
	}
	to, err := h.lattice.StateCell(toID)
	if err != nil {
		return 0
	}
	return int(h.costPerMeter * h.cellDistance(from, to))
}

// MetricGoalDistance returns the distance in meters from a planning-frame
// position to the goal's target offset position.
func (h *Euclid) MetricGoalDistance(x, y, z float64) float64 {
	tgt := h.lattice.Goal().TargetOffsetPose
	if len(tgt) < 3 {
		return 0
	}
	dx, dy, dz := x-tgt[0], y-tgt[1], z-tgt[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// MetricStartDistance returns the distance in meters from a planning-frame
// position to the start state's tip cell center.
func (h *Euclid) MetricStartDistance(x, y, z float64) float64 {
	startID := h.lattice.StartStateID()
	if startID < 0 {
		return 0
	}
	cell, err := h.lattice.StateCell(startID)
	if err != nil {
		return 0
	}
	sx, sy, sz := h.grid.GridToWorld(cell[0], cell[1], cell[2])
	dx, dy, dz := x-sx, y-sy, z-sz
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// JointDist estimates cost-to-go as the largest per-joint displacement to a
// configuration goal. It is informative only for joint-state goals; workspace
// metric queries return zero.
type JointDist struct {
	lattice       Lattice
	costPerRadian float64
}

// NewJointDist returns a joint-displacement heuristic. costPerRadian converts
// radians of displacement into the search's integer cost units.
func NewJointDist(lattice Lattice, costPerRadian float64) *JointDist {
	return &JointDist{lattice: lattice, costPerRadian: costPerRadian}
}

func maxJointDisplacement(a, b []float64) float64 {
	var maxDiff float64
	for i := range a {
		if i >= len(b) {
			break
		}
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// GoalHeuristic estimates the cost from a state to the configuration goal.
func (h *JointDist) GoalHeuristic(stateID int) int {
	if stateID == h.lattice.GoalStateID() {
		return 0
	}
	goal := h.lattice.Goal()
	if goal.Type != latticeplan.GoalTypeJointState || len(goal.Angles) == 0 {
		return 0
	}
	state, err := h.lattice.StateConfiguration(stateID)
	if err != nil {
		return 0
	}
	return int(h.costPerRadian * maxJointDisplacement(state, goal.Angles))
}

// StartHeuristic estimates the cost from the start to a state.
func (h *JointDist) StartHeuristic(stateID int) int {
	start := h.lattice.StartConfiguration()
	if start == nil {
		return 0
	}
	state, err := h.lattice.StateConfiguration(stateID)
	if err != nil {
		return 0
	}
	return int(h.costPerRadian * maxJointDisplacement(state, start))
}

// FromToHeuristic estimates the cost between two states.
func (h *JointDist) FromToHeuristic(fromID, toID int) int {
	if toID == h.lattice.GoalStateID() {
		return h.GoalHeuristic(fromID)
	}
	from, err := h.lattice.StateConfiguration(fromID)
	if err != nil {
		return 0
	}
	to, err := h.lattice.StateConfiguration(toID)
	if err != nil {
		return 0
	}
	return int(h.costPerRadian * maxJointDisplacement(from, to))
}

// MetricGoalDistance is zero; joint displacement has no workspace metric.
func (h *JointDist) MetricGoalDistance(x, y, z float64) float64 {
	return 0
}

// MetricStartDistance is zero; joint displacement has no workspace metric.
func (h *JointDist) MetricStartDistance(x, y, z float64) float64 {
	return 0
}
