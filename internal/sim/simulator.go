package sim

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps e at a fixed dt. Every step is shown to metrics and observers;
// rows are kept at the slower log interval.
func (s *Simulator) Run(ctx context.Context, e Engine, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	result := &Result{
		Rows:    make([]LogEntry, 0, int(cfg.Duration/logInterval(cfg))+2),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	first := e.Sample(0)
	result.Rows = append(result.Rows, first)
	nextLog := logInterval(cfg)

	err := s.loop(ctx, e, cfg, steps, func(entry LogEntry) bool {
		result.StepsTaken++
		result.Elapsed = entry.Time
		result.Complete = entry.Complete
		if entry.Time >= nextLog-1e-9 {
			result.Rows = append(result.Rows, entry)
			nextLog += logInterval(cfg)
		}
		return true
	})

	if n := len(result.Rows); result.StepsTaken > 0 && result.Rows[n-1].Time < result.Elapsed {
		result.Rows = append(result.Rows, e.Sample(result.Elapsed))
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback steps e and hands every entry to callback until it
// returns false, the duration elapses or ctx is cancelled.
func (s *Simulator) RunWithCallback(ctx context.Context, e Engine, cfg Config, callback func(LogEntry) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return s.loop(ctx, e, cfg, stepCount(cfg), callback)
}

func (s *Simulator) loop(ctx context.Context, e Engine, cfg Config, steps int, callback func(LogEntry) bool) error {
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i+1) * cfg.Dt
		e.Step(cfg.Dt)
		entry := e.Sample(t)
		if !entry.IsValid() {
			return &RunError{Step: i, Time: t, Err: ErrInvalidPose}
		}

		for _, m := range s.metrics {
			m.Observe(entry)
		}
		for _, obs := range s.observers {
			obs.OnStep(entry)
		}
		if !callback(entry) {
			return nil
		}
		if cfg.StopWhenDone && e.Done() {
			return nil
		}
	}
	return nil
}

func stepCount(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func logInterval(cfg Config) float64 {
	if cfg.LogInterval <= 0 {
		return cfg.Dt
	}
	return cfg.LogInterval
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidConfig)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrInvalidConfig)
	}
	if cfg.LogInterval < 0 {
		return fmt.Errorf("log interval must not be negative, got %f: %w", cfg.LogInterval, ErrInvalidConfig)
	}
	return nil
}
