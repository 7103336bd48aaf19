package host

import (
	"sort"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/posemath"
)

// Box returns an axis-aligned box of the given size centred on center.
func Box(center, size mgl64.Vec3) cube.BBox {
	h := size.Mul(0.5)
	return cube.Box(
		center[0]-h[0], center[1]-h[1], center[2]-h[2],
		center[0]+h[0], center[1]+h[1], center[2]+h[2],
	)
}

func Center(b cube.BBox) mgl64.Vec3 {
	return b.Min().Add(b.Max()).Mul(0.5)
}

type volume struct {
	box    cube.BBox
	object ObjectID
	local  cube.BBox
}

type Object struct {
	Pose      posemath.Pose
	Kinematic bool
	Velocity  mgl64.Vec3
}

type HapticRequest struct {
	Anchor  AnchorID
	Seconds float64
}

// World is an in-memory host. Volumes are either fixed in space or attached
// to an object, in which case they follow the object's position (orientation
// is ignored; volumes stay axis aligned).
type World struct {
	volumes map[VolumeID]*volume
	objects map[ObjectID]*Object

	Haptics []HapticRequest
	Cues    []CueID
	Spawned []LooseLoad
}

func NewWorld() *World {
	return &World{
		volumes: make(map[VolumeID]*volume),
		objects: make(map[ObjectID]*Object),
	}
}

func (w *World) AddObject(id ObjectID, p posemath.Pose) *Object {
	o := &Object{Pose: p}
	w.objects[id] = o
	w.syncAttached(id)
	return o
}

func (w *World) Object(id ObjectID) (*Object, bool) {
	o, ok := w.objects[id]
	return o, ok
}

// AddVolume registers a fixed volume.
func (w *World) AddVolume(id VolumeID, b cube.BBox) {
	w.volumes[id] = &volume{box: b}
}

// Attach registers a volume that follows an object; local is relative to the
// object's position.
func (w *World) Attach(id VolumeID, obj ObjectID, local cube.BBox) {
	w.volumes[id] = &volume{object: obj, local: local, box: local}
	w.syncAttached(obj)
}

func (w *World) Volume(id VolumeID) (cube.BBox, bool) {
	v, ok := w.volumes[id]
	if !ok {
		return cube.BBox{}, false
	}
	return v.box, true
}

// VolumeIDs lists every registered volume in name order.
func (w *World) VolumeIDs() []VolumeID {
	ids := make([]VolumeID, 0, len(w.volumes))
	for id := range w.volumes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) syncAttached(obj ObjectID) {
	o, ok := w.objects[obj]
	if !ok {
		return
	}
	for _, v := range w.volumes {
		if v.object == obj {
			v.box = v.local.Translate(o.Pose.Pos)
		}
	}
}

func (w *World) Place(id ObjectID, p posemath.Pose) {
	o, ok := w.objects[id]
	if !ok {
		o = &Object{}
		w.objects[id] = o
	}
	o.Pose = p
	w.syncAttached(id)
}

func (w *World) Contains(id VolumeID, p mgl64.Vec3) bool {
	v, ok := w.volumes[id]
	return ok && v.box.Vec3Within(p)
}

func (w *World) Intersects(a, b VolumeID) bool {
	va, ok := w.volumes[a]
	if !ok {
		return false
	}
	vb, ok := w.volumes[b]
	return ok && va.box.IntersectsWith(vb.box)
}

func (w *World) SetKinematic(id ObjectID, on bool) {
	if o, ok := w.objects[id]; ok {
		o.Kinematic = on
		if on {
			o.Velocity = mgl64.Vec3{}
		}
	}
}

// ApplyImpulse is a velocity change, matching how the throw is computed.
func (w *World) ApplyImpulse(id ObjectID, v mgl64.Vec3) {
	if o, ok := w.objects[id]; ok && !o.Kinematic {
		o.Velocity = o.Velocity.Add(v)
	}
}

func (w *World) RequestHaptic(a AnchorID, seconds float64) {
	w.Haptics = append(w.Haptics, HapticRequest{Anchor: a, Seconds: seconds})
}

func (w *World) PlayCue(c CueID) {
	w.Cues = append(w.Cues, c)
}

func (w *World) SpawnLooseLoad(l LooseLoad) {
	w.Spawned = append(w.Spawned, l)
}
