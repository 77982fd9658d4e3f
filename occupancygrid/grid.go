// Package occupancygrid provides an axis-aligned voxel grid over the planning
// frame: world<->grid transforms, box-obstacle marking, occupancy queries, and
// nearest-obstacle distance.
package occupancygrid

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Grid is a dense voxel grid anchored at an origin in the planning frame. Cell
// (0,0,0) covers the half-open box [origin, origin+resolution) on each axis.
type Grid struct {
	frame      string
	origin     r3.Vector
	resolution float64
	dims       [3]int
	occupied   []bool
	obstacles  []r3.Vector
}

// New returns an empty grid of the given cell dimensions.
func New(frame string, origin r3.Vector, resolution float64, nx, ny, nz int) (*Grid, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("resolution must be positive, got %f", resolution)
	}
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, errors.Errorf("grid dimensions must be positive, got (%d, %d, %d)", nx, ny, nz)
	}
	return &Grid{
		frame:      frame,
		origin:     origin,
		resolution: resolution,
		dims:       [3]int{nx, ny, nz},
		occupied:   make([]bool, nx*ny*nz),
	}, nil
}

// ReferenceFrame returns the name of the planning frame the grid is expressed
// in.
func (g *Grid) ReferenceFrame() string {
	return g.frame
}

// Resolution returns the cell edge length in meters.
func (g *Grid) Resolution() float64 {
	return g.resolution
}

// Dimensions returns the grid's cell counts along each axis.
func (g *Grid) Dimensions() (int, int, int) {
	return g.dims[0], g.dims[1], g.dims[2]
}

// WorldToGrid maps a planning-frame point to its containing cell. Points
// outside the grid map to out-of-range indices; use InBounds to test.
func (g *Grid) WorldToGrid(x, y, z float64) (int, int, int) {
	return int(math.Floor((x - g.origin.X) / g.resolution)),
		int(math.Floor((y - g.origin.Y) / g.resolution)),
		int(math.Floor((z - g.origin.Z) / g.resolution))
}

// GridToWorld returns the planning-frame center of a cell.
func (g *Grid) GridToWorld(ix, iy, iz int) (float64, float64, float64) {
	return g.origin.X + (float64(ix)+0.5)*g.resolution,
		g.origin.Y + (float64(iy)+0.5)*g.resolution,
		g.origin.Z + (float64(iz)+0.5)*g.resolution
}

// InBounds reports whether a cell lies inside the grid.
func (g *Grid) InBounds(ix, iy, iz int) bool {
	return ix >= 0 && ix < g.dims[0] &&
		iy >= 0 && iy < g.dims[1] &&
		iz >= 0 && iz < g.dims[2]
}

func (g *Grid) index(ix, iy, iz int) int {
	return (iz*g.dims[1]+iy)*g.dims[0] + ix
}

// MarkCell marks a single cell occupied. Out-of-bounds cells are ignored.
func (g *Grid) MarkCell(ix, iy, iz int) {
	if !g.InBounds(ix, iy, iz) {
		return
	}
	idx := g.index(ix, iy, iz)
	if g.occupied[idx] {
		return
	}
	g.occupied[idx] = true
	cx, cy, cz := g.GridToWorld(ix, iy, iz)
	g.obstacles = append(g.obstacles, r3.Vector{X: cx, Y: cy, Z: cz})
}

// MarkBox marks every cell intersecting the axis-aligned box [min, max]
// occupied.
func (g *Grid) MarkBox(min, max r3.Vector) {
	ix0, iy0, iz0 := g.WorldToGrid(min.X, min.Y, min.Z)
	ix1, iy1, iz1 := g.WorldToGrid(max.X, max.Y, max.Z)
	for iz := iz0; iz <= iz1; iz++ {
		for iy := iy0; iy <= iy1; iy++ {
			for ix := ix0; ix <= ix1; ix++ {
				g.MarkCell(ix, iy, iz)
			}
		}
	}
}

// IsOccupied reports whether a cell is marked. Out-of-bounds cells are treated
// as occupied so that the planner never leaves the grid.
func (g *Grid) IsOccupied(ix, iy, iz int) bool {
	if !g.InBounds(ix, iy, iz) {
		return true
	}
	return g.occupied[g.index(ix, iy, iz)]
}

// DistanceToNearestObstacle returns the distance from a planning-frame point
// to the center of the nearest marked cell, or +Inf for an empty grid.
func (g *Grid) DistanceToNearestObstacle(p r3.Vector) float64 {
	best := math.Inf(1)
	for _, obs := range g.obstacles {
		if d := p.Sub(obs).Norm(); d < best {
			best = d
		}
	}
	return best
}

// NumOccupied returns the number of marked cells.
func (g *Grid) NumOccupied() int {
	return len(g.obstacles)
}
