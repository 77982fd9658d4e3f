package latticeplan

import "github.com/pkg/errors"

// ExtractPath converts a sequence of state IDs from the search into a
// sequence of continuous joint configurations. When the sequence ends at the
// reserved goal ID, the concrete goal configuration is re-synthesized as the
// destination of the cheapest valid goal-satisfying action out of the
// preceding state.
func (l *Lattice) ExtractPath(ids []int) ([][]float64, error) {
	if len(ids) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "empty state ID path")
	}

	// Some planners still return a single-point path in degenerate cases.
	if len(ids) == 1 {
		id := ids[0]
		if id == l.goalEntry.ID {
			if l.startEntry == nil {
				return nil, errors.Wrap(ErrInvalidArgument, "no start state set")
			}
			return [][]float64{l.StartConfiguration()}, nil
		}
		state, err := l.StateConfiguration(id)
		if err != nil {
			return nil, err
		}
		return [][]float64{state}, nil
	}

	if ids[0] == l.goalEntry.ID {
		return nil, ErrInvalidPathHead
	}
	if l.actions == nil {
		return nil, ErrNoActionSpace
	}

	path := make([][]float64, 0, len(ids))
	first, err := l.StateConfiguration(ids[0])
	if err != nil {
		return nil, err
	}
	path = append(path, first)

	for i := 1; i < len(ids); i++ {
		prevID, currID := ids[i-1], ids[i]
		if prevID == l.goalEntry.ID {
			return nil, errors.Wrap(ErrInvalidPathHead, "cannot determine the goal state's predecessor")
		}

		if currID != l.goalEntry.ID {
			state, err := l.StateConfiguration(currID)
			if err != nil {
				return nil, err
			}
			path = append(path, state)
			continue
		}

		goalState, err := l.resynthesizeGoalState(l.states[prevID])
		if err != nil {
			return nil, err
		}
		path = append(path, goalState)
	}

	return path, nil
}

// resynthesizeGoalState finds the cheapest valid goal-satisfying action out of
// prev and returns its destination configuration.
func (l *Lattice) resynthesizeGoalState(prev *LatticeState) ([]float64, error) {
	actions, err := l.actions.Apply(prev.State)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get actions while extracting the path")
	}

	coord := make([]int, l.params.NumJoints)
	var best []float64
	bestCost := -1
	for _, action := range actions {
		dst := action.Destination()

		pose, err := l.computePlanningFrameFK(dst)
		if err != nil {
			l.logger.Warnw("failed to compute FK for planning frame", "error", err)
			continue
		}
		if !l.isGoal(dst, pose) {
			continue
		}
		if valid, _ := l.checkAction(prev.State, action); !valid {
			continue
		}

		l.anglesToCoord(dst, coord)
		succ := l.getHashEntry(coord)
		if succ == nil {
			continue
		}

		edgeCost := l.cost(prev, succ, true)
		if bestCost < 0 || edgeCost < bestCost {
			bestCost = edgeCost
			best = dst
		}
	}
	if best == nil {
		return nil, ErrNoValidGoalEdge
	}
	return append([]float64{}, best...), nil
}
