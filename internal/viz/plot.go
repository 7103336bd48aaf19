package viz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heft/internal/sim"
)

var ErrNoData = errors.New("viz: nothing to plot")

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Yellow, asciigraph.Red, asciigraph.Green, asciigraph.Blue,
}

// Series extracts one named column from rows.
func Series(rows []sim.LogEntry, column string) ([]float64, error) {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Column(column)
		if !ok {
			return nil, fmt.Errorf("viz: unknown column %q", column)
		}
		out = append(out, v)
	}
	return out, nil
}

// PlotColumns charts one or more columns against row index on shared axes.
func PlotColumns(rows []sim.LogEntry, columns []string, width, height int) (string, error) {
	if len(rows) < 2 || len(columns) == 0 {
		return "", ErrNoData
	}
	data := make([][]float64, 0, len(columns))
	for _, c := range columns {
		s, err := Series(rows, c)
		if err != nil {
			return "", err
		}
		data = append(data, s)
	}
	last := rows[len(rows)-1].Time
	opts := []asciigraph.Option{
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s over %.1fs", strings.Join(columns, ", "), last)),
		asciigraph.SeriesColors(seriesColors[:min(len(data), len(seriesColors))]...),
	}
	if len(data) > 1 {
		opts = append(opts, asciigraph.SeriesLegends(columns...))
	}
	return asciigraph.PlotMany(data, opts...), nil
}

// PlotTrackedVsVisible charts the real and the drawn primary anchor along
// one axis ("x", "y" or "z").
func PlotTrackedVsVisible(rows []sim.LogEntry, axis string, width, height int) (string, error) {
	return PlotColumns(rows, []string{"pt." + axis, "pv." + axis}, width, height)
}

// PlotLag charts the C/D lag.
func PlotLag(rows []sim.LogEntry, width, height int) (string, error) {
	return PlotColumns(rows, []string{"lag"}, width, height)
}
