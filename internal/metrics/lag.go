package metrics

import (
	"math"

	"github.com/san-kum/heft/internal/sim"
)

// Lag averages the distance between the tracked and the drawn primary
// anchor over grabbing ticks. This is the C/D mismatch the user sees.
type Lag struct {
	name    string
	sum     float64
	peak    float64
	samples int
	peakOut bool
}

func NewLag() *Lag {
	return &Lag{name: "mean_lag"}
}

// NewPeakLag reports the largest lag instead of the mean.
func NewPeakLag() *Lag {
	return &Lag{name: "peak_lag", peakOut: true}
}

func (l *Lag) Name() string {
	return l.name
}

func (l *Lag) Observe(e sim.LogEntry) {
	if e.State != "grabbing" {
		return
	}
	d := e.Lag()
	l.sum += d
	l.peak = math.Max(l.peak, d)
	l.samples++
}

func (l *Lag) Value() float64 {
	if l.peakOut {
		return l.peak
	}
	if l.samples == 0 {
		return 0
	}
	return l.sum / float64(l.samples)
}

func (l *Lag) Reset() {
	l.sum = 0
	l.peak = 0
	l.samples = 0
}
