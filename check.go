package latticeplan

// violation classes for a rejected action.
type violation uint32

const (
	violationJointLimit violation = 1 << iota
	violationPathPrefixCollides
	violationPathInteriorCollides
)

// checkAction validates a candidate action out of a source configuration. All
// waypoints must satisfy joint limits, the segment from the source to the
// first waypoint must be collision-free, and so must every segment between
// adjacent waypoints. The returned distance is the last distance reported by
// the collision oracle along the checked segments.
func (l *Lattice) checkAction(state []float64, action Action) (bool, float64) {
	var mask violation
	dist := 0.0

	for i, waypoint := range action {
		if !l.robot.CheckJointLimits(waypoint, false) {
			l.logger.Debugf("waypoint %d violates joint limits", i)
			mask |= violationJointLimit
			break
		}
	}
	if mask != 0 {
		return false, dist
	}

	valid, plen, _, dist := l.checker.IsStateToStateValid(state, action[0])
	if !valid {
		l.logger.Debugf("path to first waypoint in collision (dist %0.3f, path length %d)", dist, plen)
		mask |= violationPathPrefixCollides
	}
	if mask != 0 {
		return false, dist
	}

	for i := 1; i < len(action); i++ {
		valid, plen, _, dist = l.checker.IsStateToStateValid(action[i-1], action[i])
		if !valid {
			l.logger.Debugf("path between waypoints %d and %d in collision (dist %0.3f, path length %d)", i-1, i, dist, plen)
			mask |= violationPathInteriorCollides
			break
		}
	}
	if mask != 0 {
		return false, dist
	}

	return true, dist
}
