package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heft/internal/analysis"
	"github.com/san-kum/heft/internal/cd"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/export"
	"github.com/san-kum/heft/internal/sim"
	"github.com/san-kum/heft/internal/storage"
	"github.com/san-kum/heft/internal/viz"
	"github.com/spf13/cobra"
)

var (
	plotColumns   []string
	plotAxis      string
	svgOut        string
	plane         string
	exportFormat  string
	analyzeColumn string
)

// loadRun resolves "latest" and loads metadata and rows.
func loadRun(id string) (*storage.RunMetadata, []sim.LogEntry, error) {
	st := storage.New(dataDir)
	if id == "latest" {
		latest, err := st.Latest()
		if err != nil {
			return nil, nil, err
		}
		id = latest
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := st.LoadRows(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, rows, nil
}

func parsePlane() (viz.Plane, error) {
	switch plane {
	case "side":
		return viz.Side, nil
	case "top":
		return viz.Top, nil
	}
	return 0, fmt.Errorf("unknown plane %q (side or top)", plane)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEXPERIMENT\tCOND\tTIME\tELAPSED\tCOMPLETE\tCONFIG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%v\t%s\n",
			run.ID,
			run.Experiment,
			run.Condition,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Elapsed,
			run.Complete,
			run.ConfigHash,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("experiment: %s (%s)\n", meta.Experiment, meta.Condition)
	fmt.Printf("samples: %d\n\n", len(rows))

	var graph string
	if len(plotColumns) > 0 {
		graph, err = viz.PlotColumns(rows, plotColumns, 80, 12)
	} else {
		graph, err = viz.PlotTrackedVsVisible(rows, plotAxis, 80, 12)
	}
	if err != nil {
		return err
	}
	fmt.Println(graph)
	fmt.Println()

	if lag, err := viz.PlotLag(rows, 80, 8); err == nil {
		fmt.Println(lag)
	}

	if svgOut != "" {
		pl, err := parsePlane()
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgOut, []byte(export.TracesToSVG(export.HandTraces(rows), pl, 800, 500)), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgOut)
	}
	return nil
}

func traceRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(args[0])
	if err != nil {
		return err
	}
	pl, err := parsePlane()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return storage.ErrNoRows
	}

	tracked := make([]mgl64.Vec3, len(rows))
	shown := make([]mgl64.Vec3, len(rows))
	lo, hi := rows[0].PrimaryTracked, rows[0].PrimaryTracked
	for i, r := range rows {
		tracked[i], shown[i] = r.PrimaryTracked, r.EndEffector
		for _, p := range []mgl64.Vec3{r.PrimaryTracked, r.EndEffector} {
			for k := 0; k < 3; k++ {
				lo[k], hi[k] = min(lo[k], p[k]), max(hi[k], p[k])
			}
		}
	}
	pad := mgl64.Vec3{0.05, 0.05, 0.05}
	scene := viz.NewScene(60, 20, pl, lo.Sub(pad), hi.Add(pad))
	scene.Path(tracked)
	scene.Path(shown)

	fmt.Printf("%s %s, %s view\n", meta.ID, meta.Condition, pl)
	fmt.Println(viz.Panel.Render(scene.String()))

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(scene.Canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(args[0])
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		return storage.ExportJSON(os.Stdout, *meta, rows, plotColumns)
	case "csv":
		return storage.WriteCSV(os.Stdout, rows)
	case "meta":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}
	return fmt.Errorf("unknown format %q (json, csv or meta)", exportFormat)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(args[0])
	if err != nil {
		return err
	}

	sp, err := analysis.ColumnSpectrum(rows, analyzeColumn)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("column: %s\n\n", analyzeColumn)
	graph := asciigraph.Plot(sp.Power,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), %.3f Hz per bin", analyzeColumn, sp.Resolution)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := sp.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := experiment.NewRegistry().List()
	if len(args) > 0 {
		names = args
	}
	for _, exp := range names {
		presets := config.ListPresets(exp)
		if len(presets) == 0 {
			fmt.Printf("no presets for experiment: %s\n", exp)
			continue
		}
		fmt.Printf("presets for %s:\n", exp)
		for _, p := range presets {
			c := config.GetPreset(exp, p)
			fmt.Printf("  %-12s %s\n", p, c.Condition)
		}
	}
	return nil
}

func listConditions(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COND\tINPUT\tINTENSITY\tH\tV\tROT\tACC\tLOADED H/V/ROT")
	for _, c := range cd.Conditions() {
		input := "controllers"
		if c.Tracking() {
			input = "hands+props"
		}
		v := cd.Presets[c.Intensity()]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c, input, c.Intensity(), profileCols(v.Normal), loadedCols(v.Loaded))
	}
	return w.Flush()
}

func profileCols(p *cd.Profile) string {
	if p == nil {
		return "1\t1\t1\t-"
	}
	return fmt.Sprintf("%.2f\t%.2f\t%.2f\t%.1f", p.HorizontalRatio, p.VerticalRatio, p.RotationalRatio, p.Acceleration)
}

func loadedCols(p *cd.Profile) string {
	if p == nil {
		return "1/1/1"
	}
	return fmt.Sprintf("%.2f/%.2f/%.2f", p.HorizontalRatio, p.VerticalRatio, p.RotationalRatio)
}
