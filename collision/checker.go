// Package collision implements the lattice's collision oracle over a voxel
// occupancy grid and an arm model: single-state validity with obstacle
// distance, and interpolated state-to-state segment validity.
package collision

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/latticeplan/occupancygrid"
)

// ArmGeometry is the part of an arm model the checker needs: workspace sample
// points along the links for a configuration.
type ArmGeometry interface {
	LinkPoints(state []float64, spacing float64) ([]r3.Vector, error)
	DoF() int
}

// Checker tests arm configurations against an occupancy grid by sampling
// points along each link and testing their cells.
type Checker struct {
	arm    ArmGeometry
	grid   *occupancygrid.Grid
	logger golog.Logger
}

// NewChecker returns a checker over the given arm and grid. Link points are
// sampled at the grid resolution.
func NewChecker(arm ArmGeometry, grid *occupancygrid.Grid, logger golog.Logger) (*Checker, error) {
	if arm == nil || grid == nil {
		return nil, errors.New("checker requires an arm and a grid")
	}
	return &Checker{arm: arm, grid: grid, logger: logger}, nil
}

// IsStateValid reports whether a configuration is collision-free and the
// distance from the arm to the nearest obstacle.
func (c *Checker) IsStateValid(state []float64, verbose bool) (bool, float64) {
	points, err := c.arm.LinkPoints(state, c.grid.Resolution())
	if err != nil {
		if verbose {
			c.logger.Warnw("cannot sample arm geometry", "error", err)
		}
		return false, 0
	}

	dist := math.Inf(1)
	for _, p := range points {
		if d := c.grid.DistanceToNearestObstacle(p); d < dist {
			dist = d
		}
		ix, iy, iz := c.grid.WorldToGrid(p.X, p.Y, p.Z)
		if c.grid.IsOccupied(ix, iy, iz) {
			if verbose {
				c.logger.Debugf("arm point (%0.3f, %0.3f, %0.3f) occupies cell (%d, %d, %d)",
					p.X, p.Y, p.Z, ix, iy, iz)
			}
			return false, dist
		}
	}
	return true, dist
}

// IsStateToStateValid reports whether the straight joint-space segment between
// two configurations is collision-free. The segment is interpolated so that no
// joint moves more than the interpolation step between checks; every
// intermediate configuration (including both endpoints) is tested. Returns
// validity, the number of interpolated configurations, the number of checks
// performed before stopping, and the worst-case obstacle distance seen.
func (c *Checker) IsStateToStateValid(from, to []float64) (bool, int, int, float64) {
	steps := interpolationSteps(from, to, c.interpolationStep())
	dist := math.Inf(1)
	checks := 0
	wp := make([]float64, len(from))
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		for j := range from {
			wp[j] = from[j] + t*(to[j]-from[j])
		}
		checks++
		valid, d := c.IsStateValid(wp, false)
		if d < dist {
			dist = d
		}
		if !valid {
			return false, steps + 1, checks, dist
		}
	}
	return true, steps + 1, checks, dist
}

// interpolationStep is the largest per-joint displacement between adjacent
// interpolated configurations. Tied to the grid resolution so workspace motion
// between checks stays near one cell for reach-scale arms.
func (c *Checker) interpolationStep() float64 {
	return c.grid.Resolution()
}

func interpolationSteps(from, to []float64, step float64) int {
	var maxDiff float64
	for j := range from {
		if d := math.Abs(to[j] - from[j]); d > maxDiff {
			maxDiff = d
		}
	}
	steps := int(math.Ceil(maxDiff / step))
	if steps < 1 {
		steps = 1
	}
	return steps
}
