package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run. Engines and metrics must not be shared
// between jobs.
type Job struct {
	Name    string
	Engine  Engine
	Metrics []Metric
}

type Outcome struct {
	Name   string
	Result *Result
}

// RunAll runs jobs concurrently, one goroutine each, and returns outcomes in
// job order. The first failure cancels the others.
func RunAll(ctx context.Context, jobs []Job, cfg Config) ([]Outcome, error) {
	out := make([]Outcome, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		eg.Go(func() error {
			s := New()
			for _, m := range job.Metrics {
				s.AddMetric(m)
			}
			res, err := s.Run(egCtx, job.Engine, cfg)
			out[i] = Outcome{Name: job.Name, Result: res}
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
