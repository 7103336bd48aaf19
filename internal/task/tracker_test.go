package task_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/posemath"
	"github.com/san-kum/heft/internal/task"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var small = mgl64.Vec3{0.2, 0.2, 0.2}

// course lays out targets along +X at x = 1, 2, 3, ... with a barrier wall
// halfway before each one.
func course(n int) (*host.World, []host.VolumeID, []host.VolumeID) {
	w := host.NewWorld()
	w.AddObject("cube", posemath.Identity())
	w.Attach("cube.body", "cube", host.Box(mgl64.Vec3{}, mgl64.Vec3{0.1, 0.1, 0.1}))
	targets := make([]host.VolumeID, n)
	barriers := make([]host.VolumeID, n)
	for i := range n {
		x := float64(i + 1)
		targets[i] = host.VolumeID("target." + string(rune('a'+i)))
		barriers[i] = host.VolumeID("barrier." + string(rune('a'+i)))
		w.AddVolume(targets[i], host.Box(mgl64.Vec3{x, 0, 0}, small))
		w.AddVolume(barriers[i], host.Box(mgl64.Vec3{x - 0.5, 0, 0}, mgl64.Vec3{0.05, 1, 1}))
	}
	return w, targets, barriers
}

var _ = Describe("Tracker", func() {
	var (
		world    *host.World
		targets  []host.VolumeID
		barriers []host.VolumeID
		tracker  *task.Tracker
	)

	cfg := task.DefaultConfig()
	cfg.Object = "cube.body"

	moveTo := func(p mgl64.Vec3) {
		world.Place("cube", posemath.At(p))
		tracker.ObjectMoved(p, host.RightController)
	}
	reach := func(i int) { moveTo(mgl64.Vec3{float64(i), 0, 0}) }
	hitBarrier := func(i int) { moveTo(mgl64.Vec3{float64(i) - 0.5, 0, 0}) }

	BeforeEach(func() {
		world, targets, barriers = course(3)
		var err error
		tracker, err = task.NewSingleBarrier(targets, barriers, cfg, task.Env{
			Bounds: world, Haptics: world, Audio: world,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts at the first step", func() {
		Expect(tracker.Index()).To(Equal(1))
		Expect(tracker.MaxReached()).To(Equal(1))
		Expect(tracker.Complete()).To(BeFalse())
		id, ok := tracker.CurrentTarget()
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(targets[0]))
		Expect(tracker.Armed()).To(ConsistOf(barriers[0]))
	})

	Context("when every target is reached in order", func() {
		BeforeEach(func() {
			for i := 1; i <= 3; i++ {
				reach(i)
			}
		})

		It("completes at index N+1", func() {
			Expect(tracker.Index()).To(Equal(4))
			Expect(tracker.Complete()).To(BeTrue())
			Expect(tracker.MaxReached()).To(Equal(3))
			Expect(tracker.Armed()).To(BeEmpty())
		})

		It("pulses the target haptic and cue for each step", func() {
			Expect(world.Haptics).To(HaveLen(3))
			Expect(world.Haptics).To(HaveEach(host.HapticRequest{Anchor: host.RightController, Seconds: 0.2}))
			Expect(world.Cues).To(HaveEach(host.CueTargetReached))
		})

		It("ignores further events", func() {
			reach(3)
			hitBarrier(3)
			Expect(tracker.Index()).To(Equal(4))
			Expect(tracker.Collisions()).To(Equal(0))
			Expect(world.Cues).To(HaveLen(3))
		})
	})

	Context("when the object hits the armed barrier", func() {
		BeforeEach(func() {
			reach(1)
			reach(2)
		})

		It("steps back once per continuous contact", func() {
			for range 5 {
				hitBarrier(3)
			}
			Expect(tracker.Index()).To(Equal(2))
			Expect(tracker.Collisions()).To(Equal(1))
			Expect(world.Haptics[len(world.Haptics)-1].Seconds).To(Equal(1.0))
			Expect(world.Cues).To(HaveLen(3))
			Expect(world.Cues[2]).To(Equal(host.CueBarrierHit))
		})

		It("counts the step made current by each target", func() {
			Expect(tracker.Index()).To(Equal(3))
			Expect(tracker.MaxReached()).To(Equal(3))
		})

		It("keeps the highest step made current", func() {
			hitBarrier(3)
			Expect(tracker.MaxReached()).To(Equal(3))
			id, _ := tracker.CurrentTarget()
			Expect(id).To(Equal(targets[1]))
		})

		It("re-arms collisions after the next target", func() {
			hitBarrier(3)
			reach(2)
			Expect(tracker.Index()).To(Equal(3))
			hitBarrier(3)
			Expect(tracker.Collisions()).To(Equal(2))
			Expect(tracker.Index()).To(Equal(2))
		})

		It("ignores barriers that are not armed", func() {
			hitBarrier(1)
			Expect(tracker.Collisions()).To(Equal(0))
			Expect(tracker.Index()).To(Equal(3))
		})
	})

	It("makes the next step current after the first target", func() {
		reach(1)
		Expect(tracker.Index()).To(Equal(2))
		Expect(tracker.MaxReached()).To(Equal(2))
	})

	It("never regresses below the first step", func() {
		hitBarrier(1)
		Expect(tracker.Index()).To(Equal(1))
		Expect(tracker.Collisions()).To(Equal(1))
	})
})

var _ = Describe("NewMultiBarrier", func() {
	It("arms every barrier of the current step", func() {
		world, targets, barriers := course(2)
		cfg := task.DefaultConfig()
		cfg.Object = "cube.body"
		tracker, err := task.NewMultiBarrier([]task.Step{
			{Target: targets[0], Barriers: barriers},
			{Target: targets[1]},
		}, cfg, task.Env{Bounds: world, Haptics: world, Audio: world})
		Expect(err).NotTo(HaveOccurred())

		Expect(tracker.Armed()).To(HaveLen(2))
		world.Place("cube", posemath.At(mgl64.Vec3{1.5, 0, 0}))
		tracker.ObjectMoved(mgl64.Vec3{1.5, 0, 0}, host.LeftController)
		Expect(tracker.Collisions()).To(Equal(1))
	})

	DescribeTable("rejects malformed chains",
		func(steps []task.Step, object host.VolumeID, want error) {
			cfg := task.DefaultConfig()
			cfg.Object = object
			_, err := task.NewMultiBarrier(steps, cfg, task.Env{})
			Expect(errors.Is(err, want)).To(BeTrue(), "got %v", err)
		},
		Entry("no steps", []task.Step{}, host.VolumeID("cube"), task.ErrNoSteps),
		Entry("no object volume", []task.Step{{Target: "t"}}, host.VolumeID(""), task.ErrNoObjectVolume),
		Entry("missing target", []task.Step{{Target: "t"}, {}}, host.VolumeID("cube"), task.ErrMissingTarget),
	)

	It("requires one barrier slot per target", func() {
		_, err := task.NewSingleBarrier([]host.VolumeID{"a", "b"}, []host.VolumeID{""}, task.DefaultConfig(), task.Env{})
		Expect(err).To(MatchError(task.ErrBarrierMismatch))
	})
})
