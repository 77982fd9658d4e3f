package search

import (
	"container/heap"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

var (
	// ErrNoSolution is returned when the open list empties without reaching the
	// goal.
	ErrNoSolution = errors.New("no solution exists")

	// ErrTimeout is returned when the allowed planning time elapses before a
	// solution is found.
	ErrTimeout = errors.New("allowed planning time elapsed")
)

// Result is a solved search: the state-ID path from start to goal, its total
// cost, and the expansions it took.
type Result struct {
	Path       []int
	Cost       int
	Expansions int
	Elapsed    time.Duration
}

// WeightedAStar searches a Graph with an inflated heuristic. With Lazy set,
// edges are generated unvalidated and their true costs are materialized only
// when a node is about to be expanded through them.
type WeightedAStar struct {
	graph   Graph
	logger  golog.Logger
	clock   clock.Clock
	epsilon float64
	lazy    bool
	allowed time.Duration
}

// SearchOption configures a WeightedAStar.
type SearchOption func(*WeightedAStar)

// WithEpsilon sets the heuristic inflation factor. Values below 1 are treated
// as 1; the solution cost is bounded by epsilon times optimal.
func WithEpsilon(eps float64) SearchOption {
	return func(s *WeightedAStar) {
		if eps < 1 {
			eps = 1
		}
		s.epsilon = eps
	}
}

// WithLazyEvaluation switches the search to lazy successor generation.
func WithLazyEvaluation() SearchOption {
	return func(s *WeightedAStar) {
		s.lazy = true
	}
}

// WithAllowedTime bounds the wall-clock time a single Search call may take.
func WithAllowedTime(d time.Duration) SearchOption {
	return func(s *WeightedAStar) {
		s.allowed = d
	}
}

// WithSearchClock substitutes the clock used for the time budget.
func WithSearchClock(c clock.Clock) SearchOption {
	return func(s *WeightedAStar) {
		s.clock = c
	}
}

// NewWeightedAStar returns a search over the given graph.
func NewWeightedAStar(graph Graph, logger golog.Logger, opts ...SearchOption) *WeightedAStar {
	s := &WeightedAStar{
		graph:   graph,
		logger:  logger,
		clock:   clock.New(),
		epsilon: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Epsilon returns the heuristic inflation factor.
func (s *WeightedAStar) Epsilon() float64 {
	return s.epsilon
}

// openEntry is a candidate expansion: reaching id through parentID at cost g.
// Unverified entries carry a lazily generated edge whose true cost has not
// been materialized.
type openEntry struct {
	id       int
	g        int
	f        int
	parentID int
	verified bool
	index    int
}

type openList []*openEntry

func (o openList) Len() int            { return len(o) }
func (o openList) Less(i, j int) bool  { return o[i].f < o[j].f }
func (o openList) Swap(i, j int)       { o[i], o[j] = o[j], o[i]; o[i].index = i; o[j].index = j }
func (o *openList) Push(x interface{}) { e := x.(*openEntry); e.index = len(*o); *o = append(*o, e) }
func (o *openList) Pop() interface{} {
	old := *o
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return e
}

// Search runs weighted A* from startID to goalID and returns the state-ID
// path.
func (s *WeightedAStar) Search(startID, goalID int) (*Result, error) {
	began := s.clock.Now()

	open := openList{}
	heap.Init(&open)
	closed := map[int]bool{}
	gScore := map[int]int{}
	parents := map[int]int{}

	heap.Push(&open, &openEntry{
		id:       startID,
		g:        0,
		f:        s.priority(0, startID),
		parentID: -1,
		verified: true,
	})

	expansions := 0
	for open.Len() > 0 {
		if s.allowed > 0 && s.clock.Since(began) > s.allowed {
			return nil, errors.Wrapf(ErrTimeout, "after %d expansions", expansions)
		}

		entry := heap.Pop(&open).(*openEntry)
		if closed[entry.id] {
			continue
		}

		if !entry.verified {
			trueCost, err := s.graph.TrueCost(entry.parentID, entry.id)
			if err != nil {
				return nil, err
			}
			if trueCost < 0 {
				continue
			}
			entry.g = gScore[entry.parentID] + trueCost
			entry.f = s.priority(entry.g, entry.id)
			entry.verified = true
			heap.Push(&open, entry)
			continue
		}

		closed[entry.id] = true
		gScore[entry.id] = entry.g
		parents[entry.id] = entry.parentID

		if entry.id == goalID {
			return &Result{
				Path:       reconstruct(parents, goalID),
				Cost:       entry.g,
				Expansions: expansions,
				Elapsed:    s.clock.Since(began),
			}, nil
		}

		expansions++
		if err := s.expand(entry, &open, closed); err != nil {
			return nil, err
		}
	}

	return nil, errors.Wrapf(ErrNoSolution, "after %d expansions", expansions)
}

func (s *WeightedAStar) expand(entry *openEntry, open *openList, closed map[int]bool) error {
	var succs, costs []int
	var verified []bool
	var err error
	if s.lazy {
		succs, costs, verified, err = s.graph.LazySuccs(entry.id)
	} else {
		succs, costs, err = s.graph.Succs(entry.id)
	}
	if err != nil {
		return err
	}

	for i, succID := range succs {
		if closed[succID] {
			continue
		}
		succEntry := &openEntry{
			id:       succID,
			g:        entry.g + costs[i],
			parentID: entry.id,
			verified: true,
		}
		if s.lazy {
			succEntry.verified = verified[i]
		}
		succEntry.f = s.priority(succEntry.g, succID)
		heap.Push(open, succEntry)
	}
	return nil
}

func (s *WeightedAStar) priority(g, stateID int) int {
	return g + int(s.epsilon*float64(s.graph.GoalHeuristic(stateID)))
}

func reconstruct(parents map[int]int, goalID int) []int {
	path := []int{goalID}
	for id := parents[goalID]; id >= 0; {
		path = append(path, id)
		id = parents[id]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
