package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"
	"go.uber.org/zap"
)

type Config struct {
	HandSpeed float64 `yaml:"hand_speed"` // m/s
	TurnSpeed float64 `yaml:"turn_speed"` // deg/s
	// Gain is the proportional correction applied while carrying, per
	// second.
	Gain      float64 `yaml:"gain"`
	Tolerance float64 `yaml:"tolerance"`
	// Timeout gives up on an action that cannot finish, e.g. an object too
	// heavy to move.
	Timeout float64 `yaml:"timeout"`
	Jitter  float64 `yaml:"jitter"`
	Seed    int64   `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		HandSpeed: 0.8,
		TurnSpeed: 180,
		Gain:      6,
		Tolerance: 0.01,
		Timeout:   8,
	}
}

// Parked is where anchors without a placement wait, well away from any
// grab volume.
var Parked = posemath.At(mgl64.Vec3{0, -10, 0})

type held struct {
	anchor host.AnchorID
	offset posemath.Pose
}

// Participant replays a script and serves as the host's tracking and input
// source.
type Participant struct {
	cfg    Config
	script *Script
	log    *zap.Logger
	rng    *rand.Rand

	head    posemath.Pose
	anchors map[host.AnchorID]posemath.Pose
	jitter  map[host.AnchorID]mgl64.Vec3
	pressed map[host.AnchorID]bool
	objects map[host.ObjectID]posemath.Pose
	holding map[host.ObjectID]held

	step     int
	elapsed  float64
	rolled   float64
	timeouts int
}

func NewParticipant(s *Script, cfg Config, log *zap.Logger) (*Participant, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Participant{
		cfg:     cfg,
		script:  s,
		log:     log.With(zap.String("script", s.Name)),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		head:    s.Head.pose(),
		anchors: make(map[host.AnchorID]posemath.Pose),
		jitter:  make(map[host.AnchorID]mgl64.Vec3),
		pressed: make(map[host.AnchorID]bool),
		objects: make(map[host.ObjectID]posemath.Pose),
		holding: make(map[host.ObjectID]held),
	}
	for name, pl := range s.Anchors {
		p.anchors[host.ParseAnchor(name)] = pl.pose()
	}
	for id, pl := range s.Objects {
		p.objects[id] = pl.pose()
	}
	return p, nil
}

func (pl Placement) pose() posemath.Pose {
	if pl.Forward == nil {
		return posemath.At(pl.Pos)
	}
	return posemath.NewPose(pl.Pos, *pl.Forward, posemath.WorldUp)
}

func (p *Participant) AnchorPose(a host.AnchorID) posemath.Pose {
	pose, ok := p.anchors[a]
	if !ok {
		return Parked
	}
	return pose.Translate(p.jitter[a])
}

func (p *Participant) HeadPose() posemath.Pose { return p.head }

func (p *Participant) ObjectPose(id host.ObjectID) posemath.Pose {
	if pose, ok := p.objects[id]; ok {
		return pose
	}
	return Parked
}

func (p *Participant) ActivationPressed(a host.AnchorID) bool { return p.pressed[a] }

// Done reports whether every action has finished.
func (p *Participant) Done() bool { return p.step >= len(p.script.Actions) }

func (p *Participant) Step() int     { return p.step }
func (p *Participant) Timeouts() int { return p.timeouts }

// Current describes the running action, or "done".
func (p *Participant) Current() string {
	if p.Done() {
		return "done"
	}
	return p.script.Actions[p.step].String()
}

// Update advances the running action by dt. displayed is the pose of the
// object being manipulated, as the participant sees it.
func (p *Participant) Update(dt float64, displayed posemath.Pose) {
	if dt <= 0 {
		return
	}
	if !p.Done() {
		a := p.script.Actions[p.step]
		p.elapsed += dt
		switch {
		case p.run(a, dt, displayed):
			p.next()
		case p.elapsed >= p.cfg.Timeout && a.Kind != Wait:
			p.timeouts++
			p.log.Debug("action timed out", zap.Stringer("action", a), zap.Float64("after", p.elapsed))
			p.next()
		}
	}
	p.carryHeld()
	p.sampleJitter()
}

func (p *Participant) next() {
	p.step++
	p.elapsed = 0
	p.rolled = 0
}

func (p *Participant) run(a Action, dt float64, displayed posemath.Pose) bool {
	anchor := host.ParseAnchor(a.Anchor)
	with := host.ParseAnchor(a.With)

	switch a.Kind {
	case Press, Release:
		p.pressed[anchor] = a.Kind == Press
		return true

	case Hold:
		obj := p.ObjectPose(a.Object)
		p.holding[a.Object] = held{anchor: anchor, offset: posemath.Relative(p.anchorPose(anchor), obj)}
		return true

	case Drop:
		delete(p.holding, a.Object)
		return true

	case Wait:
		return p.elapsed >= a.Seconds

	case Move:
		from := p.anchorPose(anchor)
		pos, reached := posemath.MoveTowards(from.Pos, a.To, p.cfg.HandSpeed*dt)
		to := posemath.Pose{Pos: pos, Rot: from.Rot}
		if a.Forward != nil {
			fwd, turned := posemath.RotateTowards(from.Forward(), *a.Forward, p.cfg.TurnSpeed*dt)
			to.Rot = posemath.LookRotation(fwd, posemath.WorldUp)
			reached = reached && turned
		}
		p.moveRigid(anchor, with, to)
		return reached

	case Carry:
		tol := a.Tolerance
		if tol <= 0 {
			tol = p.cfg.Tolerance
		}
		seen := posemath.Compose(displayed, posemath.At(a.Point)).Pos
		miss := a.To.Sub(seen)
		if miss.Len() <= tol {
			return true
		}
		step := miss.Mul(math.Min(p.cfg.Gain*dt, 1))
		if limit := p.cfg.HandSpeed * dt; step.Len() > limit {
			step = step.Normalize().Mul(limit)
		}
		from := p.anchorPose(anchor)
		p.moveRigid(anchor, with, from.Translate(step))
		return false

	case Roll:
		remaining := a.Degrees - p.rolled
		delta := math.Copysign(math.Min(math.Abs(remaining), p.cfg.TurnSpeed*dt), remaining)
		p.roll(anchor, with, delta)
		p.rolled += delta
		return math.Abs(a.Degrees-p.rolled) < 1e-9

	case Walk:
		pos, reached := posemath.MoveTowards(p.head.Pos, a.To, p.cfg.HandSpeed*dt)
		d := pos.Sub(p.head.Pos)
		p.head = p.head.Translate(d)
		for id, pose := range p.anchors {
			p.anchors[id] = pose.Translate(d)
		}
		return reached
	}
	panic(fmt.Sprintf("scenario: unhandled action %q", a.Kind))
}

func (p *Participant) anchorPose(a host.AnchorID) posemath.Pose {
	if pose, ok := p.anchors[a]; ok {
		return pose
	}
	return Parked
}

// moveRigid puts anchor at to and carries with along by the same rigid
// motion.
func (p *Participant) moveRigid(anchor, with host.AnchorID, to posemath.Pose) {
	from := p.anchorPose(anchor)
	if with != host.NoAnchor {
		local := posemath.Relative(from, p.anchorPose(with))
		p.anchors[with] = posemath.Compose(to, local)
	}
	p.anchors[anchor] = to
}

// roll turns anchor, and with if set, about the axis joining them.
func (p *Participant) roll(anchor, with host.AnchorID, deg float64) {
	from := p.anchorPose(anchor)
	axis := from.Forward()
	if with != host.NoAnchor {
		if d := p.anchorPose(with).Pos.Sub(from.Pos); d.Len() > 1e-9 {
			axis = d.Normalize()
		}
	}
	q := mgl64.QuatRotate(mgl64.DegToRad(deg), axis)
	p.moveRigid(anchor, with, posemath.Pose{Pos: from.Pos, Rot: q.Mul(from.Rot).Normalize()})
}

func (p *Participant) carryHeld() {
	for id, h := range p.holding {
		p.objects[id] = posemath.Compose(p.anchorPose(h.anchor), h.offset)
	}
}

func (p *Participant) sampleJitter() {
	if p.cfg.Jitter <= 0 {
		return
	}
	for _, a := range []host.AnchorID{host.LeftController, host.RightController, host.LeftHand, host.RightHand} {
		if _, ok := p.anchors[a]; !ok {
			continue
		}
		p.jitter[a] = mgl64.Vec3{p.rng.NormFloat64(), p.rng.NormFloat64(), p.rng.NormFloat64()}.Mul(p.cfg.Jitter)
	}
}

func (p *Participant) Script() *Script { return p.script }
