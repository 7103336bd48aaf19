package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/heft/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir    string
	debug      bool
	logger     = zap.NewNop()
	configFile string
	preset     string
	condition  string
	dt         float64
	duration   float64
	seed       int64
	noSave     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "heft",
		Short: "pseudo-haptic grab experiments",
		Long: `heft replays scripted grab experiments under control/display
conditions and records how far the displayed hand falls behind the real one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if debug {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heft", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "run an experiment and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExperiment,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [experiment]",
		Short: "watch an experiment in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [experiment] [condition...]",
		Short: "run conditions side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareConditions,
	}
	addConfigFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [experiment]",
		Short: "grid search over config parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "completion_time", "metric to optimise")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "maximize", false, "maximise instead of minimise")

	batchCmd := &cobra.Command{
		Use:   "batch [session.yaml]",
		Short: "run a scripted session of experiments",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot telemetry columns",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "columns to plot (default: tracked vs visible)")
	plotCmd.Flags().StringVar(&plotAxis, "axis", "y", "axis for tracked vs visible")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the hand paths as SVG")
	plotCmd.Flags().StringVar(&plane, "plane", "side", "side or top")

	traceCmd := &cobra.Command{
		Use:   "trace [run_id|latest]",
		Short: "draw the run's hand paths",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}
	traceCmd.Flags().StringVar(&svgOut, "svg", "", "also write the drawing as SVG")
	traceCmd.Flags().StringVar(&plane, "plane", "side", "side or top")

	exportCmd := &cobra.Command{
		Use:   "export [run_id|latest]",
		Short: "export run data",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, csv or meta")
	exportCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "columns for json export (default: all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id|latest]",
		Short: "frequency analysis of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "lag", "column to analyse")

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list experiment presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	conditionsCmd := &cobra.Command{
		Use:   "conditions",
		Short: "list conditions and their C/D profiles",
		RunE:  listConditions,
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, sweepCmd, batchCmd, listCmd, plotCmd, traceCmd,
		exportCmd, analyzeCmd, presetsCmd, conditionsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&condition, "condition", "", "condition (C0..C2, P0..P2)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration limit")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
}

// resolveConfig layers preset, config file and explicit flags, in that
// order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Experiment = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Experiment, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Experiment))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && c.Experiment != args[0] {
			return nil, fmt.Errorf("config is for %s, not %s", c.Experiment, args[0])
		}
		cfg = c
	}

	if condition != "" {
		cfg.Condition = condition
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}
