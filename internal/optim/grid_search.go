package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/sim"
	"go.uber.org/zap"
)

var ErrUnknownMetric = errors.New("optim: unknown metric")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if _, ok := setters[p]; !ok {
			return nil, fmt.Errorf("%q: %w", p, ErrUnknownParam)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points enumerates every combination, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.pointsRecursive(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[g.paramNames[depth]] = val
		g.pointsRecursive(depth+1, next, out)
	}
}

// Trial is the outcome of one grid point.
type Trial struct {
	Params   map[string]float64
	Metrics  map[string]float64
	Complete bool
	Elapsed  float64
}

// Run builds one experiment per grid point from copies of base and runs
// them concurrently.
func (g *GridSearch) Run(ctx context.Context, reg *experiment.Registry, base *config.Config, log *zap.Logger) ([]Trial, error) {
	if log == nil {
		log = zap.NewNop()
	}
	points := g.Points()
	jobs := make([]sim.Job, 0, len(points))
	var simCfg sim.Config
	for i, p := range points {
		cfg := *base
		for name, v := range p {
			if err := Apply(&cfg, name, v); err != nil {
				return nil, err
			}
		}
		exp, err := experiment.New(reg, &cfg, nil, log.With(zap.Int("trial", i)))
		if err != nil {
			return nil, fmt.Errorf("trial %d %v: %w", i, p, err)
		}
		simCfg = exp.SimConfig()
		jobs = append(jobs, sim.Job{
			Name:    fmt.Sprint(p),
			Engine:  exp,
			Metrics: reg.DefaultMetrics(cfg.Experiment),
		})
	}

	outcomes, err := sim.RunAll(ctx, jobs, simCfg)
	if err != nil {
		return nil, err
	}
	trials := make([]Trial, len(outcomes))
	for i, o := range outcomes {
		trials[i] = Trial{
			Params:   points[i],
			Metrics:  o.Result.Metrics,
			Complete: o.Result.Complete,
			Elapsed:  o.Result.Elapsed,
		}
	}
	log.Info("sweep finished", zap.Int("trials", len(trials)))
	return trials, nil
}

// Best returns the trial with the lowest metric, or the highest when
// maximize is set. Ties keep the earlier trial.
func Best(trials []Trial, metric string, maximize bool) (Trial, error) {
	best := -1
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}
	for i, t := range trials {
		v, ok := t.Metrics[metric]
		if !ok {
			return Trial{}, fmt.Errorf("%q: %w", metric, ErrUnknownMetric)
		}
		if (maximize && v > bestVal) || (!maximize && v < bestVal) {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		return Trial{}, fmt.Errorf("optim: no trials")
	}
	return trials[best], nil
}

// Search runs the grid and returns the parameters minimizing metric.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, base *config.Config, metric string) (map[string]float64, float64, error) {
	trials, err := g.Run(ctx, reg, base, nil)
	if err != nil {
		return nil, 0, err
	}
	t, err := Best(trials, metric, false)
	if err != nil {
		return nil, 0, err
	}
	return t.Params, t.Metrics[metric], nil
}
