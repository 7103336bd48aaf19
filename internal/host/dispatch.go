package host

import "github.com/go-gl/mathgl/mgl64"

type EffectKind int

const (
	EffectHaptic EffectKind = iota
	EffectCue
	EffectKinematic
	EffectImpulse
	EffectSpawn
)

func (k EffectKind) String() string {
	return [...]string{"haptic", "cue", "kinematic", "impulse", "spawn"}[k]
}

type Effect struct {
	Kind      EffectKind
	Anchor    AnchorID
	Seconds   float64
	Cue       CueID
	Object    ObjectID
	Kinematic bool
	Impulse   mgl64.Vec3
	Load      LooseLoad
}

// Dispatcher queues side-effect requests raised during a tick. It implements
// Effects so the core can be handed a Dispatcher in place of the host.
type Dispatcher struct {
	queue []Effect
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queue: make([]Effect, 0, 8)}
}

func (d *Dispatcher) RequestHaptic(a AnchorID, seconds float64) {
	d.queue = append(d.queue, Effect{Kind: EffectHaptic, Anchor: a, Seconds: seconds})
}

func (d *Dispatcher) PlayCue(c CueID) {
	d.queue = append(d.queue, Effect{Kind: EffectCue, Cue: c})
}

func (d *Dispatcher) SetKinematic(o ObjectID, on bool) {
	d.queue = append(d.queue, Effect{Kind: EffectKinematic, Object: o, Kinematic: on})
}

func (d *Dispatcher) ApplyImpulse(o ObjectID, v mgl64.Vec3) {
	d.queue = append(d.queue, Effect{Kind: EffectImpulse, Object: o, Impulse: v})
}

func (d *Dispatcher) SpawnLooseLoad(l LooseLoad) {
	d.queue = append(d.queue, Effect{Kind: EffectSpawn, Load: l})
}

// Pending returns the queued effects without consuming them.
func (d *Dispatcher) Pending() []Effect {
	return d.queue
}

// Flush delivers queued effects in request order and empties the queue.
func (d *Dispatcher) Flush(to Effects) []Effect {
	out := d.queue
	for _, e := range out {
		switch e.Kind {
		case EffectHaptic:
			to.RequestHaptic(e.Anchor, e.Seconds)
		case EffectCue:
			to.PlayCue(e.Cue)
		case EffectKinematic:
			to.SetKinematic(e.Object, e.Kinematic)
		case EffectImpulse:
			to.ApplyImpulse(e.Object, e.Impulse)
		case EffectSpawn:
			to.SpawnLooseLoad(e.Load)
		}
	}
	d.queue = make([]Effect, 0, cap(out))
	return out
}
