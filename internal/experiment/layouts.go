package experiment

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/grab"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/lever"
	"github.com/san-kum/heft/internal/posemath"
	"github.com/san-kum/heft/internal/scenario"
	"github.com/san-kum/heft/internal/task"
	"go.uber.org/zap"
)

const (
	cubeObject host.ObjectID = "cube"
	cubeProp   host.ObjectID = "cube.real"
	cubeGrip   host.VolumeID = "cube.grab"
	cubeBody   host.VolumeID = "cube.body"

	shovelObject host.ObjectID = "shovel"
	shovelGrip   host.VolumeID = "shovel.grip"
	pileVolume   host.VolumeID = "pile"
	pileMargin   host.VolumeID = "pile.margin"
)

// Table geometry. The cube is lifted over walls at carryHeight.
var (
	cubeStart   = mgl64.Vec3{-0.45, 0.85, 0.45}
	carryHeight = 1.05
	targetSize  = mgl64.Vec3{0.08, 0.08, 0.08}
	wallSize    = mgl64.Vec3{0.02, 0.15, 0.4}

	targets = []mgl64.Vec3{
		{-0.15, 0.85, 0.45},
		{0.15, 0.85, 0.45},
		{0.45, 0.85, 0.45},
		{0.45, 1.25, 0.45},
	}

	headStart = scenario.Placement{Pos: mgl64.Vec3{0, 1.6, -0.3}}
	leftRest  = mgl64.Vec3{-0.2, 0.9, -0.2}
	rightRest = mgl64.Vec3{0.2, 0.9, -0.2}
)

// Shovel geometry. The blade digs at digPoint along digDir.
var (
	hiltStart   = mgl64.Vec3{0, 1.0, 0.3}
	handSpacing = 0.65
	pileCenter  = mgl64.Vec3{0, 0.1, 1.9}
	pileSize    = mgl64.Vec3{0.8, 0.4, 0.8}
	marginSize  = mgl64.Vec3{1.4, 1.0, 1.4}
	digPoint    = mgl64.Vec3{0, 0.12, 1.68}
	digDir      = mgl64.Vec3{0, -0.78, 0.98}.Normalize()
)

// builder collects what a layout puts into the world.
type builder struct {
	cfg      *config.Config
	tracking bool
	world    *host.World
	fx       *host.Dispatcher
	env      grab.Env
	log      *zap.Logger

	primary host.AnchorID
	ctrl    *grab.Controller
	tracker *task.Tracker
	lever   *lever.Strategy
}

func (b *builder) grabConfig(obj host.ObjectID, boundary host.VolumeID, anchors ...host.AnchorID) grab.Config {
	return grab.Config{
		Object:          obj,
		Boundary:        boundary,
		Anchors:         anchors,
		ReleaseDistance: b.cfg.Grab.ReleaseDistance,
		ThrowDamping:    b.cfg.Grab.ThrowDamping,
		HapticSeconds:   b.cfg.Grab.HapticSeconds,
	}
}

func (b *builder) taskEnv() (task.Config, task.Env) {
	return task.Config{
			Object:        cubeBody,
			TargetHaptic:  b.cfg.Task.TargetHaptic,
			BarrierHaptic: b.cfg.Task.BarrierHaptic,
		}, task.Env{
			Bounds:  b.world,
			Haptics: b.fx,
			Audio:   b.fx,
			Logger:  b.log,
		}
}

func targetID(i int) host.VolumeID { return host.VolumeID(fmt.Sprintf("target.%d", i+1)) }

// addTable places the cube and the first n targets.
func (b *builder) addTable(n int) {
	start := posemath.At(cubeStart)
	b.world.AddObject(cubeObject, start)
	b.world.Attach(cubeGrip, cubeObject, host.Box(mgl64.Vec3{}, mgl64.Vec3{0.14, 0.14, 0.14}))
	b.world.Attach(cubeBody, cubeObject, host.Box(mgl64.Vec3{}, mgl64.Vec3{0.1, 0.1, 0.1}))
	for i := 0; i < n; i++ {
		b.world.AddVolume(targetID(i), host.Box(targets[i], targetSize))
	}
}

// wall stands on the table between two targets at x.
func (b *builder) wall(id host.VolumeID, x float64) host.VolumeID {
	b.world.AddVolume(id, host.Box(mgl64.Vec3{x, 0.875, 0.45}, wallSize))
	return id
}

// grabCube attaches a controller to the cube and reports its moves to t.
func (b *builder) grabCube(t *task.Tracker) error {
	var (
		strategy grab.Strategy = grab.Direct{}
		cfg      grab.Config
	)
	if b.tracking {
		strategy = &grab.Tracked{}
		cfg = b.grabConfig(cubeObject, cubeGrip, host.RightHand, host.LeftHand)
		cfg.Tracking = true
		cfg.Tracked = cubeProp
		b.primary = host.RightHand
	} else {
		cfg = b.grabConfig(cubeObject, cubeGrip, host.RightController, host.LeftController)
		b.primary = host.RightController
	}
	ctrl, err := grab.New(cfg, b.env, strategy, posemath.At(cubeStart))
	if err != nil {
		return err
	}
	ctrl.AddListener(t)
	b.ctrl = ctrl
	b.tracker = t
	return nil
}

func buildCube(b *builder) error {
	b.addTable(len(targets))
	b.world.AddVolume("beam.2", host.Box(mgl64.Vec3{0, 1.25, 0.45}, mgl64.Vec3{0.02, 0.1, 0.4}))
	b.world.AddVolume("post.4", host.Box(mgl64.Vec3{0.6, 1.05, 0.45}, mgl64.Vec3{0.02, 0.5, 0.4}))
	steps := []task.Step{
		{Target: targetID(0), Barriers: []host.VolumeID{b.wall("wall.1", -0.3)}},
		{Target: targetID(1), Barriers: []host.VolumeID{b.wall("wall.2", 0), "beam.2"}},
		{Target: targetID(2), Barriers: []host.VolumeID{b.wall("wall.3", 0.3)}},
		{Target: targetID(3), Barriers: []host.VolumeID{"post.4"}},
	}
	cfg, env := b.taskEnv()
	t, err := task.NewMultiBarrier(steps, cfg, env)
	if err != nil {
		return err
	}
	return b.grabCube(t)
}

func buildBasic(b *builder) error {
	b.addTable(3)
	ids := []host.VolumeID{targetID(0), targetID(1), targetID(2)}
	barriers := []host.VolumeID{"", b.wall("wall.2", 0), b.wall("wall.3", 0.3)}
	cfg, env := b.taskEnv()
	t, err := task.NewSingleBarrier(ids, barriers, cfg, env)
	if err != nil {
		return err
	}
	return b.grabCube(t)
}

func buildShovel(b *builder) error {
	hilt := posemath.At(hiltStart)
	b.world.AddObject(shovelObject, hilt)
	b.world.Attach(shovelGrip, shovelObject, host.Box(mgl64.Vec3{}, mgl64.Vec3{0.2, 0.2, 0.2}))
	b.world.AddVolume(pileVolume, host.Box(pileCenter, pileSize))
	b.world.AddVolume(pileMargin, host.Box(pileCenter, marginSize))

	pile := lever.NewPile(pileVolume, pileMargin, pileCenter, b.cfg.PileVolume)
	loader := lever.NewLoader(b.cfg.Lever, pile, b.world, b.fx, b.log)
	st, err := lever.NewStrategy(b.cfg.Lever, loader)
	if err != nil {
		return err
	}
	ctrl, err := grab.New(b.grabConfig(shovelObject, shovelGrip, host.LeftController, host.RightController), b.env, st, hilt)
	if err != nil {
		return err
	}
	b.primary = host.LeftController
	b.ctrl = ctrl
	b.lever = st
	return nil
}

func tableScript(name string, stops int, tracking bool) *scenario.Script {
	hand, other := host.RightController.String(), host.LeftController.String()
	if tracking {
		hand, other = host.RightHand.String(), host.LeftHand.String()
	}
	s := &scenario.Script{
		Name: name,
		Head: headStart,
		Anchors: map[string]scenario.Placement{
			hand:  {Pos: rightRest},
			other: {Pos: leftRest},
		},
	}
	if tracking {
		s.Objects = map[host.ObjectID]scenario.Placement{cubeProp: {Pos: cubeStart}}
	}

	s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Move, Anchor: hand, To: cubeStart})
	if tracking {
		s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Hold, Anchor: hand, Object: cubeProp})
	} else {
		s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Press, Anchor: hand})
	}

	carry := func(to mgl64.Vec3) {
		s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Carry, Anchor: hand, To: to})
	}
	at := cubeStart
	for _, t := range targets[:stops] {
		if t.X() != at.X() {
			carry(mgl64.Vec3{at.X(), carryHeight, at.Z()})
			carry(mgl64.Vec3{t.X(), carryHeight, t.Z()})
		}
		carry(t)
		at = t
	}

	if tracking {
		s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Drop, Anchor: hand, Object: cubeProp})
	} else {
		s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Release, Anchor: hand})
	}
	s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Move, Anchor: hand, To: rightRest})
	return s
}

func cubeScript(_ *config.Config, tracking bool) *scenario.Script {
	s := tableScript("cube", len(targets), tracking)
	s.Description = "carry the cube over the walls to each target in turn"
	return s
}

func basicScript(_ *config.Config, tracking bool) *scenario.Script {
	s := tableScript("basic", 3, tracking)
	s.Description = "carry the cube along the three table targets"
	return s
}

// shovelScript digs until the pile is empty. The shovel is always driven by
// controllers.
func shovelScript(cfg *config.Config, _ bool) *scenario.Script {
	left, right := host.LeftController.String(), host.RightController.String()
	blade := cfg.Lever.BladeLength
	approach := digPoint.Sub(digDir.Mul(blade))
	lifted := approach.Add(mgl64.Vec3{0, 0.2, 0.6})
	back := approach.Add(mgl64.Vec3{0, 0, -0.5})

	s := &scenario.Script{
		Name:        "shovel",
		Description: "dig, lift, step back and tip the load until the pile is gone",
		Head:        headStart,
		Anchors: map[string]scenario.Placement{
			left:  {Pos: hiltStart},
			right: {Pos: hiltStart.Add(mgl64.Vec3{0, 0, handSpacing})},
		},
		Actions: []scenario.Action{{Kind: scenario.Press, Anchor: left}},
	}
	cycles := int(math.Ceil(cfg.PileVolume/cfg.Lever.TransferVolume - 1e-9))
	for i := 0; i < cycles; i++ {
		s.Actions = append(s.Actions,
			scenario.Action{Kind: scenario.Move, Anchor: left, With: right, To: approach},
			scenario.Action{Kind: scenario.Carry, Anchor: right, Point: mgl64.Vec3{0, 0, blade}, To: digPoint, Tolerance: 0.05},
			scenario.Action{Kind: scenario.Wait, Seconds: 0.3},
			scenario.Action{Kind: scenario.Move, Anchor: right, To: lifted},
			scenario.Action{Kind: scenario.Move, Anchor: left, With: right, To: back},
			scenario.Action{Kind: scenario.Roll, Anchor: left, With: right, Degrees: 180},
			scenario.Action{Kind: scenario.Roll, Anchor: left, With: right, Degrees: -180},
		)
	}
	s.Actions = append(s.Actions, scenario.Action{Kind: scenario.Release, Anchor: left})
	return s
}
