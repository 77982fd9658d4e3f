// Package latticeplan implements a discretized configuration-space lattice for
// planning collision-free arm motions with weighted graph searches.
package latticeplan

// An Action is a candidate transition out of a configuration: an ordered,
// non-empty sequence of joint-vector waypoints. The last waypoint is the
// action's destination.
type Action [][]float64

// Destination returns the final waypoint of the action.
func (a Action) Destination() []float64 {
	return a[len(a)-1]
}

// RobotModel describes the joint structure of the robot being planned for.
// Implementations that can also compute forward kinematics should additionally
// satisfy ForwardKinematics, either directly or through Extension.
type RobotModel interface {
	// MinPosLimit returns the minimum position limit of the given joint.
	MinPosLimit(jointIdx int) float64
	// MaxPosLimit returns the maximum position limit of the given joint.
	MaxPosLimit(jointIdx int) float64
	// HasPosLimit returns whether the given joint has position limits at all.
	// Joints without limits are treated as continuous and wrap at 2pi.
	HasPosLimit(jointIdx int) bool
	// CheckJointLimits returns whether every joint position in state is within
	// its limits. When verbose is set, implementations may log each violation.
	CheckJointLimits(state []float64, verbose bool) bool
}

// Capability identifies an optional interface a RobotModel may support.
type Capability string

// CapabilityForwardKinematics identifies the ForwardKinematics capability.
const CapabilityForwardKinematics = Capability("forward_kinematics")

// Extender is implemented by robot models that expose optional capabilities
// through a lookup rather than by implementing the interfaces directly.
type Extender interface {
	Extension(c Capability) interface{}
}

// ForwardKinematics is the FK capability of a robot model.
type ForwardKinematics interface {
	// ComputePlanningLinkFK returns the planning-frame pose of the planning
	// link as [x, y, z, roll, pitch, yaw] for the given joint positions.
	ComputePlanningLinkFK(state []float64) ([]float64, error)
}

// fkInterface resolves the FK capability of a model, preferring an explicit
// Extension lookup over interface satisfaction.
func fkInterface(model RobotModel) ForwardKinematics {
	if ext, ok := model.(Extender); ok {
		if fk, ok := ext.Extension(CapabilityForwardKinematics).(ForwardKinematics); ok {
			return fk
		}
	}
	fk, _ := model.(ForwardKinematics)
	return fk
}

// CollisionChecker is the collision oracle the lattice validates transitions
// against. Distances are to the nearest obstacle in meters.
type CollisionChecker interface {
	// IsStateValid reports whether a single configuration is collision-free.
	IsStateValid(state []float64, verbose bool) (bool, float64)
	// IsStateToStateValid reports whether the straight joint-space segment
	// between two configurations is collision-free, along with the length of
	// the checked path, the number of intermediate checks performed, and the
	// distance to the nearest obstacle.
	IsStateToStateValid(from, to []float64) (valid bool, pathLength, numChecks int, dist float64)
}

// OccupancyGrid provides world<->grid coordinate transforms for the planning
// frame.
type OccupancyGrid interface {
	WorldToGrid(x, y, z float64) (int, int, int)
	ReferenceFrame() string
	Resolution() float64
}

// ActionSpace enumerates candidate actions from a source configuration.
type ActionSpace interface {
	Apply(state []float64) ([]Action, error)
}

// ActionSpaceFunc adapts a function to the ActionSpace interface.
type ActionSpaceFunc func(state []float64) ([]Action, error)

// Apply calls the wrapped function.
func (f ActionSpaceFunc) Apply(state []float64) ([]Action, error) {
	return f(state)
}

// Heuristic estimates costs over lattice states. Heuristic values are integer
// costs in the same units as edge costs; metric distances are in meters.
type Heuristic interface {
	GoalHeuristic(stateID int) int
	StartHeuristic(stateID int) int
	FromToHeuristic(fromID, toID int) int
	MetricStartDistance(x, y, z float64) float64
	MetricGoalDistance(x, y, z float64) float64
}
