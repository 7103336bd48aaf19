package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/heft/internal/automation"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/optim"
	"github.com/san-kum/heft/internal/sim"
	"github.com/san-kum/heft/internal/storage"
	"github.com/san-kum/heft/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sweepParams   []string
	sweepMetric   string
	sweepMaximize bool
)

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(registry, cfg, nil, logger)
	if err != nil {
		return err
	}
	exp.Setup(registry.DefaultMetrics(cfg.Experiment))

	fmt.Printf("running %s under %s...\n", cfg.Experiment, cfg.Condition)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))

	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(cfg, preset, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d  simulated: %.2fs  complete: %v\n", result.StepsTaken, result.Elapsed, result.Complete)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.4f\n", n, m[n])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so the model does not log.
	model, err := viz.NewModel(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if configFile != "" {
		go func() {
			err := config.Watch(cmd.Context(), configFile, logger, func(c *config.Config) {
				p.Send(viz.ConfigMsg{Config: c})
			})
			if err != nil {
				logger.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	_, err = p.Run()
	return err
}

func compareConditions(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	conds := cd.Conditions()
	if len(args) > 1 {
		conds = conds[:0]
		for _, a := range args[1:] {
			c, err := cd.ParseCondition(a)
			if err != nil {
				return err
			}
			conds = append(conds, c)
		}
	}

	registry := experiment.NewRegistry()
	jobs := make([]sim.Job, 0, len(conds))
	var simCfg sim.Config
	for _, c := range conds {
		run := *cfg
		run.Condition = string(c)
		exp, err := experiment.New(registry, &run, nil, logger.With(zap.String("condition", string(c))))
		if err != nil {
			return err
		}
		simCfg = exp.SimConfig()
		jobs = append(jobs, sim.Job{Name: string(c), Engine: exp, Metrics: registry.DefaultMetrics(cfg.Experiment)})
	}

	fmt.Printf("comparing %d conditions on %s...\n\n", len(jobs), cfg.Experiment)
	outcomes, err := sim.RunAll(cmd.Context(), jobs, simCfg)
	if err != nil {
		return err
	}

	var names []string
	for n := range outcomes[0].Result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CONDITION\tCOMPLETE\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%v", o.Name, o.Result.Complete)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.3f", o.Result.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// parseParam reads "name=v1,v2,...".
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2", s)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("no --param given (known: %s)", strings.Join(optim.Params(), ", "))
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, p := range sweepParams {
		name, vals, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %d points on %s...\n\n", len(grid.Points()), cfg.Experiment)
	trials, err := grid.Run(cmd.Context(), experiment.NewRegistry(), cfg, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCOMPLETE\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, t := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", t.Params[n])
		}
		fmt.Fprintf(w, "%v\t%.4f\n", t.Complete, t.Metrics[sweepMetric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, err := optim.Best(trials, sweepMetric, sweepMaximize)
	if err != nil {
		return err
	}
	fmt.Printf("\nbest %s = %.4f at %v\n", sweepMetric, best.Metrics[sweepMetric], best.Params)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	session, err := automation.LoadSession(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	results, err := automation.RunSession(cmd.Context(), session, experiment.NewRegistry(), st, logger)
	if err != nil {
		return err
	}

	fmt.Printf("session %s: %d runs\n\n", session.Name, len(results))
	for _, r := range results {
		if r.RunID != "" {
			fmt.Printf("  %s -> %s\n", r.Name, r.RunID)
		}
	}

	summary := automation.Summarize(results)
	groups := make([]string, 0, len(summary))
	for g := range summary {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nRUN\tMETRIC\tN\tMEAN\tMIN\tMAX")
	for _, g := range groups {
		for _, name := range automation.MetricNames(summary[g]) {
			s := summary[g][name]
			fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.4f\t%.4f\n", g, name, s.N, s.Mean, s.Min, s.Max)
		}
	}
	return w.Flush()
}
