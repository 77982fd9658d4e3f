package latticeplan

import "errors"

var (
	// ErrInvalidArgument is returned when a caller-supplied argument has the
	// wrong cardinality or an out-of-range value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrJointLimitsViolated is returned when a configuration violates the
	// robot model's joint limits.
	ErrJointLimitsViolated = errors.New("joint limits violated")

	// ErrStartInCollision is returned when the requested start configuration
	// is rejected by the collision oracle.
	ErrStartInCollision = errors.New("start state in collision")

	// ErrFKUnavailable is returned when the robot model lacks a forward
	// kinematics capability or FK fails for a required configuration.
	ErrFKUnavailable = errors.New("forward kinematics unavailable")

	// ErrNoActionSpace is returned when an operation requires an action space
	// and none has been set.
	ErrNoActionSpace = errors.New("no action space")

	// ErrInvalidPathHead is returned when a multi-state path to extract begins
	// at the reserved goal state.
	ErrInvalidPathHead = errors.New("path cannot start at the goal state")

	// ErrNoValidGoalEdge is returned when no valid action reaches a goal
	// satisfying configuration during path extraction.
	ErrNoValidGoalEdge = errors.New("no valid goal edge")

	// ErrUnsupportedOperation identifies operations the lattice does not
	// implement, such as predecessor expansion. Preds does not return it; it
	// logs a warning and returns no predecessors.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrUnknownGoalType is returned when a goal constraint carries an
	// unrecognized type tag.
	ErrUnknownGoalType = errors.New("unknown goal type")
)
