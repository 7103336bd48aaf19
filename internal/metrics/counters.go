package metrics

import (
	"math"

	"github.com/san-kum/heft/internal/sim"
)

// Column reports a telemetry column at the end of the run, or its peak.
type Column struct {
	name   string
	column string
	peak   bool
	value  float64
}

// NewFinal keeps the last observed value of column.
func NewFinal(name, column string) *Column {
	return &Column{name: name, column: column}
}

// NewPeak keeps the largest observed value of column.
func NewPeak(name, column string) *Column {
	return &Column{name: name, column: column, peak: true, value: math.Inf(-1)}
}

func (c *Column) Name() string { return c.name }

func (c *Column) Observe(e sim.LogEntry) {
	v, ok := e.Column(c.column)
	if !ok {
		return
	}
	if c.peak {
		c.value = math.Max(c.value, v)
		return
	}
	c.value = v
}

func (c *Column) Value() float64 {
	if math.IsInf(c.value, -1) {
		return 0
	}
	return c.value
}

func (c *Column) Reset() {
	c.value = 0
	if c.peak {
		c.value = math.Inf(-1)
	}
}

// CompletionTime is when the task first reported complete, or -1.
type CompletionTime struct {
	at float64
}

func NewCompletionTime() *CompletionTime {
	return &CompletionTime{at: -1}
}

func (c *CompletionTime) Name() string { return "completion_time" }

func (c *CompletionTime) Observe(e sim.LogEntry) {
	if c.at < 0 && e.Complete {
		c.at = e.Time
	}
}

func (c *CompletionTime) Value() float64 { return c.at }
func (c *CompletionTime) Reset()         { c.at = -1 }

// Standard returns a fresh set of the metrics every run reports.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewFinal("grab_count", "grab_count"),
		NewFinal("collision_count", "collision_count"),
		NewPeak("targets_reached", "targets_reached"),
		NewFinal("loads_delivered", "delivered"),
		NewLag(),
		NewPeakLag(),
		NewPathLength(),
		NewCompletionTime(),
	}
}
