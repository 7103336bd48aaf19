package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/optim"
	"github.com/san-kum/heft/internal/sim"
	"github.com/san-kum/heft/internal/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Session is a scripted batch of experiment runs.
type Session struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

type Run struct {
	Name       string             `yaml:"name"`
	Experiment string             `yaml:"experiment"`
	Preset     string             `yaml:"preset"`
	Condition  string             `yaml:"condition"`
	Duration   float64            `yaml:"duration"`
	Seed       int64              `yaml:"seed"`
	Params     map[string]float64 `yaml:"params"`
	// Repeat runs the same configuration with consecutive seeds.
	Repeat int  `yaml:"repeat"`
	Save   bool `yaml:"save"`
}

func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if len(s.Runs) == 0 {
		return nil, fmt.Errorf("session %s has no runs", path)
	}
	return &s, nil
}

// Label is the run's name, or experiment/condition when unnamed.
func (r Run) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Preset != "" {
		return r.Experiment + "/" + r.Preset
	}
	return r.Experiment + "/" + r.Condition
}

// Config resolves the run's preset and overrides into a validated config.
func (r Run) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Experiment, r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", r.Experiment, r.Preset)
		}
	} else if r.Experiment != "" {
		cfg.Experiment = r.Experiment
	}
	if r.Condition != "" {
		cfg.Condition = r.Condition
	}
	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	for name, v := range r.Params {
		if err := optim.Apply(cfg, name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type RunResult struct {
	// SessionID is shared by every run of one RunSession call.
	SessionID string
	Name      string
	Config    *config.Config
	Result    *sim.Result
	// RunID is set when the run was saved.
	RunID string
}

// RunSession executes the runs in order. Runs marked save are written to
// store when it is not nil.
func RunSession(ctx context.Context, s *Session, reg *experiment.Registry, store *storage.Store, log *zap.Logger) ([]RunResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]RunResult, 0, len(s.Runs))
	id := uuid.NewString()
	log = log.With(zap.String("session_id", id))

	for i, run := range s.Runs {
		cfg, err := run.Config()
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, run.Label(), err)
		}
		repeat := max(run.Repeat, 1)
		for k := 0; k < repeat; k++ {
			c := *cfg
			c.Seed = cfg.Seed + int64(k)
			log.Info("session run",
				zap.String("session", s.Name),
				zap.Int("run", i+1),
				zap.Int("of", len(s.Runs)),
				zap.String("name", run.Label()),
				zap.Int64("seed", c.Seed))

			exp, err := experiment.New(reg, &c, nil, log)
			if err != nil {
				return results, fmt.Errorf("run %d (%s): %w", i+1, run.Label(), err)
			}
			exp.Setup(reg.DefaultMetrics(c.Experiment))
			res, err := exp.Run(ctx)
			if err != nil {
				return results, fmt.Errorf("run %d (%s): %w", i+1, run.Label(), err)
			}

			rr := RunResult{SessionID: id, Name: run.Label(), Config: &c, Result: res}
			if run.Save && store != nil {
				if rr.RunID, err = store.Save(&c, run.Preset, res); err != nil {
					return results, fmt.Errorf("save run %d: %w", i+1, err)
				}
			}
			results = append(results, rr)
		}
	}

	return results, nil
}

// Summary aggregates one metric across runs.
type Summary struct {
	Mean, Min, Max float64
	N              int
}

// Summarize groups results by run name and aggregates every metric.
func Summarize(results []RunResult) map[string]map[string]Summary {
	out := make(map[string]map[string]Summary)
	for _, r := range results {
		group, ok := out[r.Name]
		if !ok {
			group = make(map[string]Summary)
			out[r.Name] = group
		}
		for name, v := range r.Result.Metrics {
			s, ok := group[name]
			if !ok {
				s = Summary{Min: math.Inf(1), Max: math.Inf(-1)}
			}
			s.Mean = (s.Mean*float64(s.N) + v) / float64(s.N+1)
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
			s.N++
			group[name] = s
		}
	}
	return out
}

// MetricNames lists the metric names in a summary group in order.
func MetricNames(group map[string]Summary) []string {
	names := make([]string, 0, len(group))
	for n := range group {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
