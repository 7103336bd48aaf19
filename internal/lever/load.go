package lever

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"
	"go.uber.org/zap"
)

// Pile is a finite heap the blade digs from. Once empty it is complete and
// never refills.
type Pile struct {
	Volume host.VolumeID
	// Margin surrounds the pile; loads are never thrown off inside it.
	Margin host.VolumeID
	Center mgl64.Vec3

	initial   float64
	remaining float64
}

func NewPile(volume, margin host.VolumeID, center mgl64.Vec3, amount float64) *Pile {
	if amount < 0 {
		amount = 0
	}
	return &Pile{Volume: volume, Margin: margin, Center: center, initial: amount, remaining: amount}
}

func (p *Pile) Remaining() float64 { return p.remaining }
func (p *Pile) Initial() float64   { return p.initial }
func (p *Pile) Complete() bool     { return p.remaining <= 0 }

// Take removes up to amount and returns what was actually removed.
func (p *Pile) Take(amount float64) float64 {
	if amount <= 0 || p.remaining <= 0 {
		return 0
	}
	t := min(amount, p.remaining)
	p.remaining -= t
	if p.remaining < 1e-12 {
		p.remaining = 0
	}
	return t
}

type LoadState int

const (
	Empty LoadState = iota
	Loaded
)

func (s LoadState) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "empty"
}

// Loader runs the blade's load/unload machine against one pile.
type Loader struct {
	cfg    Config
	pile   *Pile
	bounds host.Bounds
	fx     host.Effects
	log    *zap.Logger

	state   LoadState
	carried float64
	// inside latches after a load until the blade has fully left the pile.
	inside bool

	loads     int
	delivered float64
}

func NewLoader(cfg Config, pile *Pile, bounds host.Bounds, fx host.Effects, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{cfg: cfg, pile: pile, bounds: bounds, fx: fx, log: log}
}

func (l *Loader) State() LoadState   { return l.state }
func (l *Loader) Loaded() bool       { return l.state == Loaded }
func (l *Loader) Carried() float64   { return l.carried }
func (l *Loader) Loads() int         { return l.loads }
func (l *Loader) Delivered() float64 { return l.delivered }
func (l *Loader) Pile() *Pile        { return l.pile }

// Update evaluates the machine for the tool's new pose. It reports whether
// the state changed, in which case the tool's velocity should be reset.
func (l *Loader) Update(tool posemath.Pose, bladeVelocity mgl64.Vec3) bool {
	blade := BladeTip(tool, l.cfg)
	in := l.bounds.Contains(l.pile.Volume, blade)
	if !in {
		l.inside = false
	}

	switch l.state {
	case Empty:
		if !in || l.inside || l.pile.Complete() || !l.aimed(tool) {
			return false
		}
		l.carried = l.pile.Take(l.cfg.TransferVolume)
		l.state = Loaded
		l.inside = true
		l.loads++
		l.fx.PlayCue(host.CueLoaded)
		l.log.Debug("load",
			zap.Float64("carried", l.carried),
			zap.Float64("remaining", l.pile.Remaining()))
		if l.pile.Complete() {
			l.log.Debug("pile complete", zap.String("volume", string(l.pile.Volume)))
		}
		return true

	case Loaded:
		if posemath.AngleDeg(tool.Up(), posemath.WorldUp) <= l.cfg.UnloadTilt {
			return false
		}
		if l.bounds.Contains(l.pile.Margin, blade) {
			return false
		}
		l.fx.SpawnLooseLoad(host.LooseLoad{
			Pose:                posemath.Pose{Pos: blade, Rot: tool.Rot},
			Velocity:            bladeVelocity,
			Volume:              l.carried,
			IgnoreCollisionsFor: l.cfg.IgnoreCollisions,
		})
		l.fx.PlayCue(host.CueUnloaded)
		l.log.Debug("unload", zap.Float64("volume", l.carried))
		l.delivered += l.carried
		l.carried = 0
		l.state = Empty
		return true
	}
	return false
}

// aimed reports whether the shaft points at the pile, measured from the hilt.
func (l *Loader) aimed(tool posemath.Pose) bool {
	if !l.cfg.AngleGating {
		return true
	}
	return posemath.AngleDeg(tool.Forward(), l.pile.Center.Sub(tool.Pos)) <= l.cfg.LoadAngle
}
