package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/ccd/internal/core/events/bus"
	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems"
	"github.com/zeusync/ccd/internal/core/systems/physics"
	"github.com/zeusync/ccd/internal/core/systems/physics/narrow"
)

type world struct {
	calc      *physics.SweptCalculator
	scheduler *Scheduler
	delivered map[uuid.UUID][]uuid.UUID
}

func newWorld(t *testing.T, opts ...Option) *world {
	t.Helper()
	return &world{
		calc:      physics.NewSweptCalculator(),
		scheduler: NewScheduler(narrow.NewDetector(), opts...),
		delivered: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (w *world) attacker(x, y, z float64) *AttackBox {
	a := NewAttackBox(physics.KindSphere, w.calc)
	a.OnTick(unitPose(x, y, z))
	a.SetActive(true)
	a.SetHandler(func(r CollisionResult) {
		for _, hit := range r.Hits {
			w.delivered[a.ID()] = append(w.delivered[a.ID()], hit.TargetID)
		}
	})
	w.scheduler.Register(a)
	return a
}

func (w *world) hittable(x, y, z float64) *HitBox {
	h := NewHitBox(physics.KindSphere, w.calc)
	h.OnTick(unitPose(x, y, z))
	h.SetActive(true)
	w.scheduler.Register(h)
	return h
}

func TestReactivationClearsDedup(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	h := w.hittable(0.5, 0, 0)

	w.scheduler.Tick()
	assert.Equal(t, []uuid.UUID{h.ID()}, w.delivered[a.ID()])
	assert.True(t, a.IsChecked(h.ID()))

	w.scheduler.Tick()
	assert.Len(t, w.delivered[a.ID()], 1, "still overlapping, already hit")

	a.SetActive(false)
	w.scheduler.Tick()
	a.SetActive(true)
	w.scheduler.Tick()
	assert.Equal(t, []uuid.UUID{h.ID(), h.ID()}, w.delivered[a.ID()])
}

func TestDedupAcrossManyTicks(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	h := w.hittable(0, 0.5, 0)

	for i := range 20 {
		a.OnTick(unitPose(0, 0, float64(i)*0.01))
		h.OnTick(unitPose(0, 0.5, float64(i)*0.01))
		w.scheduler.Tick()
	}
	assert.Equal(t, []uuid.UUID{h.ID()}, w.delivered[a.ID()])
}

func TestIgnoreAndCheckedAreIndependent(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	h1 := w.hittable(0.3, 0, 0)
	h2 := w.hittable(0, 0.3, 0)
	h3 := w.hittable(0, 0, 0.3)

	a.AddIgnore(h1)
	a.checked[h2.ID()] = struct{}{}

	report := w.scheduler.Tick()
	assert.Equal(t, []uuid.UUID{h3.ID()}, w.delivered[a.ID()])
	assert.Equal(t, 1, report.PairsTested)
	assert.Equal(t, 1, report.Hits)

	a.SetActive(false)
	a.SetActive(true)
	w.scheduler.Tick()
	assert.NotContains(t, w.delivered[a.ID()], h1.ID(), "ignore survives reactivation")
	assert.Contains(t, w.delivered[a.ID()], h2.ID())
}

func TestSweptShapesCatchTunneling(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(-5, 0, 0)
	thin := NewHitBox(physics.KindBox, w.calc)
	thin.OnTick(physics.NewPose(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0.1, 2, 2}))
	thin.SetActive(true)
	w.scheduler.Register(thin)

	w.scheduler.Tick()
	require.Empty(t, w.delivered[a.ID()])

	a.OnTick(unitPose(5, 0, 0))
	var got CollisionHit
	thin.SetHandler(func(hit CollisionHit) { got = hit })
	w.scheduler.Tick()

	require.Equal(t, []uuid.UUID{thin.ID()}, w.delivered[a.ID()])
	assert.Equal(t, a.ID(), got.AttackerID)
	assert.InDelta(t, 5.0, got.SweepProgress, 0.6)
}

func TestHitBoxHandlerSeesEveryAttacker(t *testing.T) {
	w := newWorld(t)
	a1 := w.attacker(0, 0, 0)
	a2 := w.attacker(0.2, 0, 0)
	h := w.hittable(0.1, 0, 0)

	var from []uuid.UUID
	h.SetHandler(func(hit CollisionHit) { from = append(from, hit.AttackerID) })

	w.scheduler.Tick()
	assert.Equal(t, []uuid.UUID{a1.ID(), a2.ID()}, from)
}

func TestSweepProgressOrdering(t *testing.T) {
	prev, cur := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 10}
	p1 := SweepProgress(prev, cur, mgl64.Vec3{1, 0, 2})
	p2 := SweepProgress(prev, cur, mgl64.Vec3{0, 1, 5})
	p3 := SweepProgress(prev, cur, mgl64.Vec3{0, 0, 8})
	assert.Less(t, p1, p2)
	assert.Less(t, p2, p3)
	assert.InDelta(t, 2.0, p1, 1e-12)

	assert.InDelta(t, 5.0, SweepProgress(prev, prev, mgl64.Vec3{3, 4, 0}), 1e-12, "no motion falls back to distance")

	w := newWorld(t)
	a := w.attacker(0, 0, -3)
	far := w.hittable(0, 0, 2)
	mid := w.hittable(0, 0, 0)
	near := w.hittable(0, 0, -2)
	a.OnTick(unitPose(0, 0, 3))

	var result CollisionResult
	a.SetHandler(func(r CollisionResult) { result = r })
	w.scheduler.Tick()

	require.Len(t, result.Hits, 3)
	assert.Equal(t, []uuid.UUID{far.ID(), mid.ID(), near.ID()}, targetIDs(result.Hits), "raw results keep registration order")
	assert.Equal(t, []uuid.UUID{near.ID(), mid.ID(), far.ID()}, targetIDs(result.Ordered()))
}

func targetIDs(hits []CollisionHit) []uuid.UUID {
	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		ids[i] = h.TargetID
	}
	return ids
}

func TestTickDigestIsDeterministic(t *testing.T) {
	run := func(offset float64) uint64 {
		w := newWorld(t)
		a := w.attacker(0, 0, 0)
		w.hittable(0.5, 0, 0)
		w.hittable(0, 0.5+offset, 0)
		a.OnTick(unitPose(0.2, 0, 0))
		return w.scheduler.Tick().Digest
	}

	assert.Equal(t, run(0), run(0))
	assert.NotEqual(t, run(0), run(0.1))
}

func TestParallelMatchingKeepsDispatchOrder(t *testing.T) {
	run := func(workers int) (TickReport, map[uuid.UUID][]uuid.UUID, []int) {
		cfg := DefaultConfig()
		cfg.Workers = workers
		w := newWorld(t, WithConfig(cfg))
		var order []int
		for i := range 6 {
			a := w.attacker(float64(i)*3, 0, 0)
			a.SetHandler(func(CollisionResult) { order = append(order, i) })
			w.hittable(float64(i)*3+0.5, 0, 0)
			w.hittable(float64(i)*3, 0.5, 0)
		}
		return w.scheduler.Tick(), w.delivered, order
	}

	seqReport, _, seqOrder := run(1)
	parReport, _, parOrder := run(4)
	assert.Equal(t, 12, seqReport.Hits)
	assert.Equal(t, seqReport.Hits, parReport.Hits)
	assert.Equal(t, seqReport.PairsTested, parReport.PairsTested)
	assert.Equal(t, seqReport.Digest, parReport.Digest)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, parOrder)
	assert.Equal(t, seqOrder, parOrder)
}

func TestRegistryMutationDuringTickIsDeferred(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	h := w.hittable(0.5, 0, 0)

	late := NewHitBox(physics.KindSphere, w.calc)
	late.OnTick(unitPose(-0.5, 0, 0))
	late.SetActive(true)

	h.SetHandler(func(CollisionHit) {
		w.scheduler.Register(late)
		w.scheduler.Unregister(h)
		assert.Len(t, w.scheduler.Hittables(), 1, "registry is untouched mid-tick")
	})

	w.scheduler.Tick()
	assert.Equal(t, []*HitBox{late}, w.scheduler.Hittables())

	w.scheduler.Tick()
	assert.Equal(t, []uuid.UUID{h.ID(), late.ID()}, w.delivered[a.ID()])
}

func TestPanickingHandlerLeavesRegistryUsable(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	h := w.hittable(0.5, 0, 0)

	late := NewHitBox(physics.KindSphere, w.calc)
	late.OnTick(unitPose(-0.5, 0, 0))
	late.SetActive(true)
	h.SetHandler(func(CollisionHit) {
		w.scheduler.Register(late)
		panic("handler failed")
	})

	require.Panics(t, func() { w.scheduler.Tick() })
	assert.Equal(t, []*HitBox{h, late}, w.scheduler.Hittables(), "queued mutation applied on unwind")

	other := NewHitBox(physics.KindSphere, w.calc)
	w.scheduler.Register(other)
	assert.Len(t, w.scheduler.Hittables(), 3, "registration is immediate again")

	w.scheduler.Unregister(a)
	assert.Empty(t, w.scheduler.Attackers())
}

func TestNilObjectsAreIgnored(t *testing.T) {
	w := newWorld(t)
	w.attacker(0, 0, 0)

	var hit *HitBox
	var attack *AttackBox
	assert.NotPanics(t, func() {
		w.scheduler.Register(hit)
		w.scheduler.Register(attack)
		w.scheduler.Register(nil)
		w.scheduler.Unregister(hit)
		w.scheduler.Unregister(attack)
		w.scheduler.Unregister(nil)
	})
	assert.Equal(t, 1, w.scheduler.Len())
	assert.NotPanics(t, func() { w.scheduler.Tick() })
}

func TestRegisterIsIdempotent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := newWorld(t, WithLogger(log.FromZap(zap.New(core), log.LevelDebug)))
	a := w.attacker(0, 0, 0)

	w.scheduler.Register(a)
	assert.Len(t, w.scheduler.Attackers(), 1)
	assert.Equal(t, 1, logs.FilterMessage("already registered").Len())

	w.scheduler.Unregister(NewHitBox(physics.KindSphere, nil))
	w.scheduler.Unregister(a)
	w.scheduler.Unregister(a)
	assert.Zero(t, w.scheduler.Len())

	w.scheduler.Close()
	w.scheduler.Register(a)
	assert.Zero(t, w.scheduler.Len())
	assert.Equal(t, 1, logs.FilterMessage("register after close ignored").Len())
	assert.Zero(t, w.scheduler.Tick().Tick)
}

func TestIneligibleObjectsAreSkipped(t *testing.T) {
	w := newWorld(t)
	a := w.attacker(0, 0, 0)
	off := w.hittable(0.1, 0, 0)
	off.SetActive(false)
	hidden := w.hittable(0.2, 0, 0)
	hidden.SetEnabled(false)
	fresh := NewHitBox(physics.KindSphere, w.calc)
	fresh.SetActive(true)
	w.scheduler.Register(fresh)

	report := w.scheduler.Tick()
	assert.Equal(t, 1, report.Attackers)
	assert.Zero(t, report.PairsTested)
	assert.Empty(t, w.delivered[a.ID()])

	a.SetActive(false)
	assert.Zero(t, w.scheduler.Tick().Attackers)
}

func TestHitsArePublished(t *testing.T) {
	events := bus.New()
	var got []HitEvent
	_, err := events.SubscribeTopic("hits", EventTypeHit, func(e bus.Event) error {
		got = append(got, e.Data().(HitEvent))
		return nil
	})
	require.NoError(t, err)

	cfg := Config{PublishEvents: true, EventTopic: "hits"}
	w := newWorld(t, WithEventBus(events), WithConfig(cfg))
	a := w.attacker(0, 0, 0)
	h := w.hittable(0.5, 0, 0)

	report := w.scheduler.Tick()
	require.Len(t, got, 1)
	assert.Equal(t, report.Tick, got[0].Tick)
	assert.Equal(t, a.ID(), got[0].AttackerID)
	assert.Equal(t, h.ID(), got[0].TargetID)

	assert.ErrorIs(t, w.scheduler.SetConfig(Config{PublishEvents: true}), ErrInvalidTopic)
	assert.Equal(t, cfg, w.scheduler.Config())
}

func TestTrackerAndSchedulerRunAsSystems(t *testing.T) {
	w := newWorld(t)
	a := NewAttackBox(physics.KindSphere, w.calc)
	a.SetActive(true)
	h := w.hittable(3, 0, 0)
	w.scheduler.Register(a)

	var hits int
	a.SetHandler(func(r CollisionResult) { hits += len(r.Hits) })

	x := -3.0
	tracker := NewTracker()
	tracker.Bind(a, PoseFunc(func() physics.Pose { return unitPose(x, 0, 0) }))
	tracker.Bind(h, PoseFunc(func() physics.Pose { return unitPose(3, 0, 0) }))
	assert.Equal(t, 2, tracker.Len())

	m := systems.NewManager(nil)
	require.NoError(t, m.Register(w.scheduler))
	require.NoError(t, m.Register(tracker))
	assert.Equal(t, []string{"collision.tracker", "collision.scheduler"}, m.ExecutionOrder())

	for range 4 {
		require.NoError(t, m.Step(1.0/60))
		x += 2.7
	}
	assert.Equal(t, 1, hits)
	assert.EqualValues(t, 4, w.scheduler.GetMetrics().ExecutionCount)
	assert.EqualValues(t, 4, w.scheduler.LastReport().Tick)

	tracker.Unbind(a.ID())
	assert.Equal(t, 1, tracker.Len())
}
