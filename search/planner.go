package search

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/viam-labs/latticeplan"
)

// Planner ties a lattice and a weighted A* together behind a solve call that
// takes a start configuration and a goal constraint and returns a joint-space
// path.
type Planner struct {
	lattice *latticeplan.Lattice
	logger  golog.Logger
	clock   clock.Clock

	epsilon     float64
	lazy        bool
	allowedTime time.Duration

	lastStats  map[string]float64
	solveTimes []float64
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPlannerEpsilon sets the heuristic inflation factor used for every solve.
func WithPlannerEpsilon(eps float64) PlannerOption {
	return func(p *Planner) {
		p.epsilon = eps
	}
}

// WithLazyPlanning switches the planner to lazy edge evaluation.
func WithLazyPlanning() PlannerOption {
	return func(p *Planner) {
		p.lazy = true
	}
}

// WithPlannerAllowedTime bounds the wall-clock time of a single solve.
func WithPlannerAllowedTime(d time.Duration) PlannerOption {
	return func(p *Planner) {
		p.allowedTime = d
	}
}

// WithPlannerClock substitutes the clock used for solve timing.
func WithPlannerClock(c clock.Clock) PlannerOption {
	return func(p *Planner) {
		p.clock = c
	}
}

// NewPlanner returns a planner over the given lattice.
func NewPlanner(lattice *latticeplan.Lattice, logger golog.Logger, opts ...PlannerOption) *Planner {
	p := &Planner{
		lattice: lattice,
		logger:  logger,
		clock:   clock.New(),
		epsilon: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Solve sets the goal and start on the lattice, searches, and extracts the
// joint-space path. The goal is set before the start so that the start state's
// cached cell reflects the goal's tip offset.
func (p *Planner) Solve(start []float64, goal latticeplan.GoalConstraint) ([][]float64, error) {
	if err := p.lattice.SetGoal(goal); err != nil {
		return nil, errors.Wrap(err, "failed to set goal")
	}
	if err := p.lattice.SetStart(start); err != nil {
		return nil, errors.Wrap(err, "failed to set start")
	}

	searchOpts := []SearchOption{
		WithEpsilon(p.epsilon),
		WithSearchClock(p.clock),
	}
	if p.lazy {
		searchOpts = append(searchOpts, WithLazyEvaluation())
	}
	if p.allowedTime > 0 {
		searchOpts = append(searchOpts, WithAllowedTime(p.allowedTime))
	}
	astar := NewWeightedAStar(p.lattice, p.logger, searchOpts...)

	began := p.clock.Now()
	result, err := astar.Search(p.lattice.StartStateID(), p.lattice.GoalStateID())
	if err != nil {
		return nil, err
	}
	elapsed := p.clock.Since(began).Seconds()

	path, err := p.lattice.ExtractPath(result.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract path")
	}

	p.solveTimes = append(p.solveTimes, elapsed)
	p.lastStats = map[string]float64{
		"expansions":                     float64(result.Expansions),
		"solution cost":                  float64(result.Cost),
		"solution epsilon":               astar.Epsilon(),
		"initial epsilon":                astar.Epsilon(),
		"final epsilon":                  astar.Epsilon(),
		"initial solution planning time": elapsed,
		"initial solution expansions":    float64(result.Expansions),
		"final epsilon planning time":    elapsed,
		"time":                           elapsed,
	}

	p.logger.Infof("solved in %0.3fs: %d expansions, cost %d, %d waypoints",
		elapsed, result.Expansions, result.Cost, len(path))
	return path, nil
}

// Stats returns the statistics of the most recent solve, keyed the way
// planner benchmarks expect them. Returns nil before the first solve.
func (p *Planner) Stats() map[string]float64 {
	if p.lastStats == nil {
		return nil
	}
	out := make(map[string]float64, len(p.lastStats))
	for k, v := range p.lastStats {
		out[k] = v
	}
	return out
}

// SummaryStats returns aggregate timing over every successful solve: mean,
// median, min, and max planning time in seconds. Returns nil before the first
// solve.
func (p *Planner) SummaryStats() map[string]float64 {
	if len(p.solveTimes) == 0 {
		return nil
	}
	mean, err := stats.Mean(p.solveTimes)
	if err != nil {
		return nil
	}
	median, _ := stats.Median(p.solveTimes)
	min, _ := stats.Min(p.solveTimes)
	max, _ := stats.Max(p.solveTimes)
	return map[string]float64{
		"solves":               float64(len(p.solveTimes)),
		"mean planning time":   mean,
		"median planning time": median,
		"min planning time":    min,
		"max planning time":    max,
	}
}
