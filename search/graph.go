// Package search implements weighted A* over a lattice graph, with eager and
// lazy edge evaluation, plus a planner facade that wires a lattice, heuristic,
// and search together.
package search

// Graph is the inbound API a search drives. A lattice satisfies it.
type Graph interface {
	// NumStates returns the number of states created so far.
	NumStates() int
	// GoalHeuristic returns an admissible estimate of the cost from a state to
	// the goal.
	GoalHeuristic(stateID int) int
	// Succs returns the validated successors of a state and their edge costs.
	Succs(stateID int) ([]int, []int, error)
	// LazySuccs returns successors without validating their edges; the parallel
	// trueCosts slice marks which costs are already true.
	LazySuccs(stateID int) ([]int, []int, []bool, error)
	// TrueCost returns the true cost of a lazily generated edge, or -1 if no
	// valid transition exists.
	TrueCost(parentID, childID int) (int, error)
}
