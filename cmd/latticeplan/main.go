// Command latticeplan plans a collision-free motion for a two-link planar arm
// around a box obstacle and prints the joint-space path.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/urfave/cli/v2"

	"github.com/viam-labs/latticeplan"
	"github.com/viam-labs/latticeplan/collision"
	"github.com/viam-labs/latticeplan/heuristic"
	"github.com/viam-labs/latticeplan/kinematics"
	"github.com/viam-labs/latticeplan/occupancygrid"
	"github.com/viam-labs/latticeplan/primitives"
	"github.com/viam-labs/latticeplan/search"
)

func main() {
	app := &cli.App{
		Name:  "latticeplan",
		Usage: "plan a collision-free motion for a two-link planar arm",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "goal-x",
				Usage: "goal x position in meters",
				Value: 0.0,
			},
			&cli.Float64Flag{
				Name:  "goal-y",
				Usage: "goal y position in meters",
				Value: 1.6,
			},
			&cli.Float64Flag{
				Name:  "tolerance",
				Usage: "goal position tolerance in meters",
				Value: 0.06,
			},
			&cli.Float64Flag{
				Name:  "epsilon",
				Usage: "heuristic inflation factor",
				Value: 5.0,
			},
			&cli.BoolFlag{
				Name:  "lazy",
				Usage: "use lazy edge evaluation",
			},
			&cli.DurationFlag{
				Name:  "allowed-time",
				Usage: "planning time budget",
				Value: 10 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: runPlan,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPlan(c *cli.Context) error {
	logger := golog.NewLogger("latticeplan")
	if c.Bool("debug") {
		logger = golog.NewDebugLogger("latticeplan")
	}

	arm, err := kinematics.NewSerialArm(
		"two-link",
		[]float64{1.0, 1.0},
		[]kinematics.Limit{{Min: -math.Pi, Max: math.Pi}, {Min: -math.Pi, Max: math.Pi}},
		[]bool{false, false},
		logger,
	)
	if err != nil {
		return err
	}

	grid, err := occupancygrid.New(
		"world",
		r3.Vector{X: -2.2, Y: -2.2, Z: -0.1},
		0.05,
		88, 88, 4,
	)
	if err != nil {
		return err
	}
	grid.MarkBox(
		r3.Vector{X: 0.8, Y: 0.5, Z: -0.05},
		r3.Vector{X: 1.2, Y: 0.9, Z: 0.05},
	)
	logger.Infof("occupancy grid: %d cells marked", grid.NumOccupied())

	checker, err := collision.NewChecker(arm, grid, logger)
	if err != nil {
		return err
	}

	params := latticeplan.NewPlanningParams(arm.DoF())
	lattice, err := latticeplan.New(arm, checker, grid, params, logger)
	if err != nil {
		return err
	}

	actions, err := primitives.NewActionSet(params.CoordDelta)
	if err != nil {
		return err
	}
	lattice.SetActionSpace(actions)
	lattice.AddHeuristic(heuristic.NewEuclid(
		lattice, grid, float64(params.CostMultiplier)/grid.Resolution()))

	plannerOpts := []search.PlannerOption{
		search.WithPlannerEpsilon(c.Float64("epsilon")),
		search.WithPlannerAllowedTime(c.Duration("allowed-time")),
	}
	if c.Bool("lazy") {
		plannerOpts = append(plannerOpts, search.WithLazyPlanning())
	}
	planner := search.NewPlanner(lattice, logger, plannerOpts...)

	tol := c.Float64("tolerance")
	goal := latticeplan.GoalConstraint{
		Type:         latticeplan.GoalTypePosition,
		Pose:         []float64{c.Float64("goal-x"), c.Float64("goal-y"), 0, 0, 0, 0},
		XYZTolerance: [3]float64{tol, tol, tol},
	}

	path, err := planner.Solve([]float64{0, 0}, goal)
	if err != nil {
		return err
	}

	fmt.Printf("planned %d waypoints:\n", len(path))
	for i, wp := range path {
		pose, err := arm.ComputePlanningLinkFK(wp)
		if err != nil {
			return err
		}
		fmt.Printf("%3d: joints [%7.4f %7.4f] tip (%6.3f, %6.3f)\n",
			i, wp[0], wp[1], pose[0], pose[1])
	}
	for k, v := range planner.Stats() {
		logger.Infof("%s: %0.3f", k, v)
	}
	return nil
}
