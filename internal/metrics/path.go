package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/sim"
)

// PathLength sums how far the displayed object travelled.
type PathLength struct {
	name  string
	last  mgl64.Vec3
	total float64
	seen  bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(e sim.LogEntry) {
	if p.seen {
		p.total += e.EndEffector.Sub(p.last).Len()
	}
	p.last = e.EndEffector
	p.seen = true
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() {
	p.total = 0
	p.seen = false
}
