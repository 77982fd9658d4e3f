package latticeplan

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Lattice is a discretized configuration-space graph over a robot model, a
// collision oracle, and an occupancy grid. It exposes the graph API consumed
// by weighted graph searches: successor generation (eager and lazy), true-cost
// evaluation, goal testing, and path extraction.
//
// A Lattice is single-threaded; callers are responsible for serializing
// access.
type Lattice struct {
	logger  golog.Logger
	robot   RobotModel
	checker CollisionChecker
	grid    OccupancyGrid
	actions ActionSpace
	params  *PlanningParams
	clock   clock.Clock

	fk         ForwardKinematics
	minLimits  []float64
	maxLimits  []float64
	continuous []bool
	coordVals  []int

	goal      GoalConstraint
	nearGoal  bool
	goalSetAt time.Time

	goalEntry  *LatticeState
	startEntry *LatticeState
	states     []*LatticeState
	byCoord    map[string]*LatticeState
	expanded   []int

	heuristics []Heuristic
}

// Option configures a Lattice at construction.
type Option func(*Lattice)

// WithClock substitutes the wall clock used for goal-region timing.
func WithClock(c clock.Clock) Option {
	return func(l *Lattice) {
		l.clock = c
	}
}

// New returns an empty lattice over the given collaborators. The reserved
// goal entry is allocated immediately; no start state exists until SetStart.
func New(
	robot RobotModel,
	checker CollisionChecker,
	grid OccupancyGrid,
	params *PlanningParams,
	logger golog.Logger,
	opts ...Option,
) (*Lattice, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid planning params")
	}

	l := &Lattice{
		logger:  logger,
		robot:   robot,
		checker: checker,
		grid:    grid,
		params:  params,
		clock:   clock.New(),
		fk:      fkInterface(robot),
		byCoord: map[string]*LatticeState{},
	}
	for _, opt := range opts {
		opt(l)
	}

	n := params.NumJoints
	l.minLimits = make([]float64, n)
	l.maxLimits = make([]float64, n)
	l.continuous = make([]bool, n)
	l.coordVals = make([]int, n)
	for j := 0; j < n; j++ {
		l.minLimits[j] = robot.MinPosLimit(j)
		l.maxLimits[j] = robot.MaxPosLimit(j)
		l.continuous[j] = !robot.HasPosLimit(j)
		if l.continuous[j] {
			l.coordVals[j] = int(2*math.Pi/params.CoordDelta[j] + 0.5)
		} else {
			l.coordVals[j] = int((l.maxLimits[j]-l.minLimits[j])/params.CoordDelta[j]+0.5) + 1
		}
	}

	// The goal entry lives at ID 0 with a synthetic all-zero coordinate. It is
	// deliberately left out of the coordinate table so that a concrete state
	// landing on the all-zero coordinate gets its own entry.
	coord := make([]int, n)
	l.goalEntry = l.createHashEntry(coord, nil, 0, [3]int{}, false)
	l.logger.Debugf("goal state has state ID %d", l.goalEntry.ID)

	return l, nil
}

// SetActionSpace sets the motion-primitive generator used for expansions.
func (l *Lattice) SetActionSpace(actions ActionSpace) {
	l.actions = actions
}

// AddHeuristic registers a heuristic. Heuristic 0 answers the graph-level
// heuristic queries.
func (l *Lattice) AddHeuristic(h Heuristic) {
	l.heuristics = append(l.heuristics, h)
}

// NumHeuristics returns the number of registered heuristics.
func (l *Lattice) NumHeuristics() int {
	return len(l.heuristics)
}

// NumStates returns the number of states created so far, including the
// reserved goal entry.
func (l *Lattice) NumStates() int {
	return len(l.states)
}

// GoalStateID returns the ID of the reserved absorbing goal state.
func (l *Lattice) GoalStateID() int {
	return l.goalEntry.ID
}

// StartStateID returns the ID of the start state, or -1 if no start has been
// set.
func (l *Lattice) StartStateID() int {
	if l.startEntry == nil {
		return -1
	}
	return l.startEntry.ID
}

// StartConfiguration returns the continuous start configuration, or nil if no
// start has been set.
func (l *Lattice) StartConfiguration() []float64 {
	if l.startEntry == nil {
		return nil
	}
	return append([]float64{}, l.startEntry.State...)
}

// StateConfiguration returns the continuous configuration stored for a state.
// The reserved goal entry carries no configuration and is rejected.
func (l *Lattice) StateConfiguration(stateID int) ([]float64, error) {
	if stateID < 0 || stateID >= len(l.states) {
		return nil, errors.Wrapf(ErrInvalidArgument, "state ID %d out of range", stateID)
	}
	if stateID == l.goalEntry.ID {
		return nil, errors.Wrap(ErrInvalidArgument, "the reserved goal state carries no configuration")
	}
	return append([]float64{}, l.states[stateID].State...), nil
}

// StateCell returns the cached occupancy-grid cell of a state's planning-frame
// tip position.
func (l *Lattice) StateCell(stateID int) ([3]int, error) {
	if stateID < 0 || stateID >= len(l.states) {
		return [3]int{}, errors.Wrapf(ErrInvalidArgument, "state ID %d out of range", stateID)
	}
	return l.states[stateID].Cell, nil
}

// ExpandedStates returns the IDs of every state expanded so far, in expansion
// order.
func (l *Lattice) ExpandedStates() []int {
	return append([]int{}, l.expanded...)
}

// SetStart validates a start configuration and inserts (or looks up) its
// lattice state.
func (l *Lattice) SetStart(state []float64) error {
	if len(state) < l.params.NumJoints {
		return errors.Wrapf(ErrInvalidArgument,
			"start state has %d joint positions, want %d", len(state), l.params.NumJoints)
	}

	pose, err := l.computePlanningFrameFK(state)
	if err != nil {
		return err
	}
	l.logger.Debugf("start planning link pose: { x: %0.3f, y: %0.3f, z: %0.3f, R: %0.3f, P: %0.3f, Y: %0.3f }",
		pose[0], pose[1], pose[2], pose[3], pose[4], pose[5])

	if !l.robot.CheckJointLimits(state, true) {
		return ErrJointLimitsViolated
	}

	valid, dist := l.checker.IsStateValid(state, true)
	if !valid {
		return errors.Wrapf(ErrStartInCollision, "distance to nearest obstacle %0.3fm", dist)
	}

	coord := make([]int, l.params.NumJoints)
	l.anglesToCoord(state, coord)

	ix, iy, iz := l.grid.WorldToGrid(pose[0], pose[1], pose[2])
	cell := [3]int{ix, iy, iz}
	l.logger.Debugf("start coord: %v cell: (%d, %d, %d)", coord, ix, iy, iz)

	l.startEntry = l.getOrCreateState(coord, state, dist, cell)
	return nil
}

// GoalHeuristic returns heuristic 0's goal estimate for a state, caching it on
// the state record. Returns 0 when no heuristic is registered.
func (l *Lattice) GoalHeuristic(stateID int) int {
	if stateID < 0 || stateID >= len(l.states) {
		return 0
	}
	entry := l.states[stateID]
	if len(l.heuristics) == 0 {
		entry.Heur = 0
	} else {
		entry.Heur = l.heuristics[0].GoalHeuristic(stateID)
	}
	return entry.Heur
}

// StartHeuristic returns heuristic 0's start estimate for a state.
func (l *Lattice) StartHeuristic(stateID int) int {
	if stateID < 0 || stateID >= len(l.states) {
		return 0
	}
	entry := l.states[stateID]
	if len(l.heuristics) == 0 {
		entry.Heur = 0
	} else {
		entry.Heur = l.heuristics[0].StartHeuristic(stateID)
	}
	return entry.Heur
}

// FromToHeuristic returns heuristic 0's estimate between two states.
func (l *Lattice) FromToHeuristic(fromID, toID int) int {
	if len(l.heuristics) == 0 {
		return 0
	}
	return l.heuristics[0].FromToHeuristic(fromID, toID)
}

// MetricStartDistance returns heuristic 0's metric distance from a
// planning-frame position to the start.
func (l *Lattice) MetricStartDistance(x, y, z float64) float64 {
	if len(l.heuristics) == 0 {
		return 0
	}
	return l.heuristics[0].MetricStartDistance(x, y, z)
}

// MetricGoalDistance returns heuristic 0's metric distance from a
// planning-frame position to the goal.
func (l *Lattice) MetricGoalDistance(x, y, z float64) float64 {
	if len(l.heuristics) == 0 {
		return 0
	}
	return l.heuristics[0].MetricGoalDistance(x, y, z)
}

// Succs generates the validated successors of a state. Edges into the goal
// region are reported against the reserved goal ID. Per-action failures skip
// the action; the expansion itself always succeeds, possibly with no
// successors.
func (l *Lattice) Succs(stateID int) ([]int, []int, error) {
	if stateID < 0 || stateID >= len(l.states) {
		return nil, nil, errors.Wrapf(ErrInvalidArgument, "state ID %d out of range", stateID)
	}

	succs := []int{}
	costs := []int{}

	if l.actions == nil {
		l.logger.Warn("no action space set; state has no successors")
		return succs, costs, nil
	}
	// the goal state is absorbing
	if stateID == l.goalEntry.ID {
		return succs, costs, nil
	}

	parent := l.states[stateID]
	l.logger.Debugf("expanding state %d coord %v cell (%d, %d, %d)",
		stateID, parent.Coord, parent.Cell[0], parent.Cell[1], parent.Cell[2])

	actions, err := l.actions.Apply(parent.State)
	if err != nil {
		l.logger.Warnw("failed to get actions", "error", err)
		return succs, costs, nil
	}

	goalSuccCount := 0
	coord := make([]int, l.params.NumJoints)
	for _, action := range actions {
		valid, dist := l.checkAction(parent.State, action)
		if !valid {
			continue
		}

		dst := action.Destination()
		l.anglesToCoord(dst, coord)

		pose, err := l.computePlanningFrameFK(dst)
		if err != nil {
			l.logger.Warnw("failed to compute FK for planning frame", "error", err)
			continue
		}

		ix, iy, iz := l.grid.WorldToGrid(pose[0], pose[1], pose[2])
		succ := l.getOrCreateState(coord, dst, dist, [3]int{ix, iy, iz})

		isGoalSucc := l.isGoal(dst, pose)
		if isGoalSucc {
			goalSuccCount++
			succs = append(succs, l.goalEntry.ID)
		} else {
			succs = append(succs, succ.ID)
		}
		costs = append(costs, l.cost(parent, succ, isGoalSucc))
	}

	if goalSuccCount > 0 {
		l.logger.Debugf("%d goal successors", goalSuccCount)
	}

	l.expanded = append(l.expanded, stateID)
	return succs, costs, nil
}

// LazySuccs generates successors without collision-checking their actions.
// Every returned edge cost is unverified; TrueCost materializes the real cost.
func (l *Lattice) LazySuccs(stateID int) ([]int, []int, []bool, error) {
	if stateID < 0 || stateID >= len(l.states) {
		return nil, nil, nil, errors.Wrapf(ErrInvalidArgument, "state ID %d out of range", stateID)
	}

	succs := []int{}
	costs := []int{}
	trueCosts := []bool{}

	if l.actions == nil {
		l.logger.Warn("no action space set; state has no successors")
		return succs, costs, trueCosts, nil
	}
	if stateID == l.goalEntry.ID {
		return succs, costs, trueCosts, nil
	}

	parent := l.states[stateID]
	l.logger.Debugf("lazily expanding state %d coord %v", stateID, parent.Coord)

	actions, err := l.actions.Apply(parent.State)
	if err != nil {
		l.logger.Warnw("failed to get actions", "error", err)
		return succs, costs, trueCosts, nil
	}

	goalSuccCount := 0
	coord := make([]int, l.params.NumJoints)
	for _, action := range actions {
		dst := action.Destination()
		l.anglesToCoord(dst, coord)

		pose, err := l.computePlanningFrameFK(dst)
		if err != nil {
			l.logger.Warnw("failed to compute FK for planning frame", "error", err)
			continue
		}

		ix, iy, iz := l.grid.WorldToGrid(pose[0], pose[1], pose[2])
		succ := l.getOrCreateState(coord, dst, 0, [3]int{ix, iy, iz})

		isGoalSucc := l.isGoal(dst, pose)
		if isGoalSucc {
			goalSuccCount++
			succs = append(succs, l.goalEntry.ID)
		} else {
			succs = append(succs, succ.ID)
		}
		costs = append(costs, l.cost(parent, succ, isGoalSucc))
		trueCosts = append(trueCosts, false)
	}

	if goalSuccCount > 0 {
		l.logger.Debugf("%d goal successors", goalSuccCount)
	}

	l.expanded = append(l.expanded, stateID)
	return succs, costs, trueCosts, nil
}

// TrueCost evaluates the true cost of a lazily generated edge. It returns -1
// when no valid action connects the parent to the child (or, for the goal
// entry, to any goal-satisfying configuration).
func (l *Lattice) TrueCost(parentID, childID int) (int, error) {
	if parentID < 0 || parentID >= len(l.states) {
		return -1, errors.Wrapf(ErrInvalidArgument, "parent ID %d out of range", parentID)
	}
	if childID < 0 || childID >= len(l.states) {
		return -1, errors.Wrapf(ErrInvalidArgument, "child ID %d out of range", childID)
	}
	if l.actions == nil {
		return -1, nil
	}

	parent := l.states[parentID]
	child := l.states[childID]
	goalEdge := child == l.goalEntry

	l.logger.Debugf("evaluating cost of transition %d -> %d", parentID, childID)

	actions, err := l.actions.Apply(parent.State)
	if err != nil {
		l.logger.Warnw("failed to get actions", "error", err)
		return -1, nil
	}

	coord := make([]int, l.params.NumJoints)
	bestCost := -1
	for _, action := range actions {
		dst := action.Destination()
		l.anglesToCoord(dst, coord)

		pose, err := l.computePlanningFrameFK(dst)
		if err != nil {
			l.logger.Warnw("failed to compute FK for planning frame", "error", err)
			continue
		}

		if goalEdge {
			if !l.isGoal(dst, pose) {
				continue
			}
		} else if !equalCoords(coord, child.Coord) {
			continue
		}

		valid, _ := l.checkAction(parent.State, action)
		if !valid {
			continue
		}

		succ := child
		if goalEdge {
			succ = l.getHashEntry(coord)
			if succ == nil {
				continue
			}
		}
		edgeCost := l.cost(parent, succ, l.isGoal(dst, pose))
		if bestCost < 0 || edgeCost < bestCost {
			bestCost = edgeCost
		}
	}
	return bestCost, nil
}

// Preds is unimplemented; the lattice supports forward search only.
func (l *Lattice) Preds(stateID int) ([]int, []int) {
	l.logger.Warn("predecessor expansion unimplemented")
	return nil, nil
}

// cost returns the edge cost of a transition. The default policy charges the
// cost multiplier per transition regardless of action magnitude.
func (l *Lattice) cost(parent, succ *LatticeState, isGoal bool) int {
	return l.params.CostMultiplier
}

func equalCoords(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
