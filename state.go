package latticeplan

import "encoding/binary"

// LatticeState is one discretized configuration of the lattice. The continuous
// State is the first configuration that landed in the state's bin; Cell and
// Dist are snapshots from insertion time and are never refreshed.
type LatticeState struct {
	// ID is the dense integer identifier of the state, equal to its insertion
	// index.
	ID int
	// Coord is the discrete coordinate of the state.
	Coord []int
	// State is the continuous joint configuration that produced the state.
	State []float64
	// Cell is the occupancy-grid cell of the planning-frame tip position.
	Cell [3]int
	// Dist is the distance to the nearest obstacle reported at insertion.
	Dist float64
	// Heur is scratch space for the last heuristic value computed for the
	// state.
	Heur int
}

// coordKey packs a coordinate into a string usable as a map key. Slices cannot
// key maps directly, so the coordinate ints are serialized byte-wise; equal
// coordinates produce equal keys and lookups stay O(1).
func coordKey(coord []int) string {
	buf := make([]byte, 8*len(coord))
	for i, c := range coord {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(int64(c)))
	}
	return string(buf)
}

// getHashEntry returns the state with the given coordinate, or nil. The
// reserved goal entry is excluded from the coordinate table, so the all-zero
// coordinate never resolves to it.
func (l *Lattice) getHashEntry(coord []int) *LatticeState {
	return l.byCoord[coordKey(coord)]
}

// createHashEntry inserts a new state with the next dense ID. The goal entry
// is created with register set to false and stays out of the coordinate table.
func (l *Lattice) createHashEntry(coord []int, state []float64, dist float64, cell [3]int, register bool) *LatticeState {
	entry := &LatticeState{
		ID:    len(l.states),
		Coord: append([]int{}, coord...),
		State: append([]float64{}, state...),
		Cell:  cell,
		Dist:  dist,
	}
	l.states = append(l.states, entry)
	if register {
		l.byCoord[coordKey(entry.Coord)] = entry
	}
	return entry
}

// getOrCreateState returns the state for the coordinate, inserting it first if
// absent.
func (l *Lattice) getOrCreateState(coord []int, state []float64, dist float64, cell [3]int) *LatticeState {
	if entry := l.getHashEntry(coord); entry != nil {
		return entry
	}
	return l.createHashEntry(coord, state, dist, cell, true)
}
