package collision

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/events/bus"
	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems"
	"github.com/zeusync/ccd/internal/core/systems/physics/narrow"
	"github.com/zeusync/ccd/pkg/concurrent"
	"github.com/zeusync/ccd/pkg/sequence"
)

var _ systems.System = (*Scheduler)(nil)

// TickReport summarizes one matching pass.
type TickReport struct {
	Tick        uint64
	Attackers   int
	PairsTested int
	Hits        int
	// Digest hashes every dispatched hit in order; equal registrations and
	// geometry give equal digests.
	Digest   uint64
	Duration time.Duration
}

type mutation struct {
	obj      Object
	register bool
}

// Scheduler owns the registered attackers and hittables and runs one matching
// pass per Tick. It is not safe for concurrent use; hosts drive it from their
// tick loop. Register and Unregister called from a handler during Tick take
// effect once the pass is over.
type Scheduler struct {
	*systems.Base

	tester narrow.Tester
	logger log.Log
	events bus.EventBus
	config Config

	attackers []*AttackBox
	hittables []*HitBox
	roles     map[uuid.UUID]Role

	ticking bool
	pending []mutation
	closed  bool
	tick    uint64
	last    TickReport
}

type Option func(*Scheduler)

func WithLogger(logger log.Log) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventBus mirrors hits onto b when the config enables publishing.
func WithEventBus(b bus.EventBus) Option {
	return func(s *Scheduler) {
		s.events = b
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.config = cfg
	}
}

func NewScheduler(tester narrow.Tester, opts ...Option) *Scheduler {
	s := &Scheduler{
		Base:   systems.NewBase("collision.scheduler", systems.PhaseLateUpdate, systems.PriorityNormal),
		tester: tester,
		logger: log.NewNop(),
		config: DefaultConfig(),
		roles:  make(map[uuid.UUID]Role),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scheduler")
	return s
}

// Register adds obj to the matching set. Registering an object twice is a
// no-op, as is registering after Close.
func (s *Scheduler) Register(obj Object) {
	if isNil(obj) {
		return
	}
	if s.ticking {
		s.pending = append(s.pending, mutation{obj: obj, register: true})
		s.logger.Debug("register deferred until tick end", log.Stringer("id", obj.ID()))
		return
	}
	s.register(obj)
}

// Unregister removes obj. Unknown objects are ignored.
func (s *Scheduler) Unregister(obj Object) {
	if isNil(obj) {
		return
	}
	if s.ticking {
		s.pending = append(s.pending, mutation{obj: obj})
		s.logger.Debug("unregister deferred until tick end", log.Stringer("id", obj.ID()))
		return
	}
	s.unregister(obj)
}

func isNil(obj Object) bool {
	switch o := obj.(type) {
	case nil:
		return true
	case *AttackBox:
		return o == nil
	case *HitBox:
		return o == nil
	}
	return false
}

func (s *Scheduler) register(obj Object) {
	if s.closed {
		s.logger.Warn("register after close ignored", log.Stringer("id", obj.ID()))
		return
	}
	if role, ok := s.roles[obj.ID()]; ok {
		s.logger.Debug("already registered", log.Stringer("id", obj.ID()), log.Stringer("role", role))
		return
	}
	switch o := obj.(type) {
	case *AttackBox:
		s.attackers = append(s.attackers, o)
	case *HitBox:
		s.hittables = append(s.hittables, o)
	default:
		s.logger.Warn("unsupported object type", log.Stringer("id", obj.ID()), log.Stringer("role", obj.Role()))
		return
	}
	s.roles[obj.ID()] = obj.Role()
}

func (s *Scheduler) unregister(obj Object) {
	id := obj.ID()
	role, ok := s.roles[id]
	if !ok {
		s.logger.Debug("unregister of unknown object", log.Stringer("id", id))
		return
	}
	delete(s.roles, id)
	switch role {
	case RoleAttacker:
		s.attackers = slices.DeleteFunc(s.attackers, func(a *AttackBox) bool { return a.ID() == id })
	case RoleHittable:
		s.hittables = slices.DeleteFunc(s.hittables, func(h *HitBox) bool { return h.ID() == id })
	}
}

// Tick runs one matching pass. Every eligible attacker is tested against every
// eligible hittable it neither ignores nor already hit; the swept shapes of
// both sides are used. Results are dispatched only after all of them were
// built: first to each target's handler, then to the attacker, then to the
// event bus.
func (s *Scheduler) Tick() TickReport {
	if s.closed {
		return TickReport{}
	}

	start := time.Now()
	s.ticking = true
	defer func() {
		// a handler may panic; mutations queued so far still apply
		s.ticking = false
		s.applyPending()
	}()
	s.tick++
	report := TickReport{Tick: s.tick}

	slots := make([]int, len(s.attackers))
	for ai := range slots {
		slots[ai] = ai
	}
	eligible := sequence.From(slots).Filter(func(ai int) bool { return s.attackers[ai].Eligible() })
	report.Attackers = eligible.Count()

	matches := concurrent.ParallelMap(eligible, s.config.Workers, s.match)
	var results []CollisionResult
	for _, m := range matches {
		report.PairsTested += m.pairs
		if len(m.result.Hits) > 0 {
			results = append(results, m.result)
		}
	}

	digest := newTickDigest(s.tick)
	for _, result := range results {
		for _, hit := range result.Hits {
			digest.add(hit)
			hit.Target.OnHitEvent(hit)
		}
		result.Attacker.OnCollisionEvent(result)
		s.publish(result)
		report.Hits += len(result.Hits)
	}

	report.Digest = digest.sum()
	report.Duration = time.Since(start)
	s.last = report
	return report
}

type attackerMatch struct {
	result CollisionResult
	pairs  int
}

// match tests the attacker in registry slot ai against every hittable. It only
// reads shared state, so several attackers may be matched at once.
func (s *Scheduler) match(ai int) attackerMatch {
	attacker := s.attackers[ai]
	m := attackerMatch{result: CollisionResult{Tick: s.tick, Attacker: attacker}}
	swept := attacker.Swept()
	from, to := attacker.Previous().Center(), attacker.Current().Center()
	for ti, target := range s.hittables {
		if !target.Eligible() || attacker.skips(target.ID()) {
			continue
		}
		m.pairs++
		info := s.tester.CheckCollisionInfo(swept, target.Swept())
		if !info.HasCollision {
			continue
		}
		m.result.Hits = append(m.result.Hits, CollisionHit{
			AttackerID:    attacker.ID(),
			TargetID:      target.ID(),
			Target:        target,
			ContactPoint:  info.ContactPoint,
			SweepProgress: SweepProgress(from, to, info.ContactPoint),
			slots:         [2]int{ai, ti},
		})
	}
	return m
}

func (s *Scheduler) publish(result CollisionResult) {
	if s.events == nil || !s.config.PublishEvents {
		return
	}
	var errs []error
	for _, event := range hitEvents(result) {
		if err := s.events.PublishToTopic(s.config.EventTopic, event); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("hit event handlers failed",
			log.Stringer("attacker", result.Attacker.ID()),
			log.Error(err),
		)
	}
}

func (s *Scheduler) applyPending() {
	pending := s.pending
	s.pending = nil
	for _, m := range pending {
		if m.register {
			s.register(m.obj)
		} else {
			s.unregister(m.obj)
		}
	}
}

// Update lets the scheduler run as a system in the late update phase.
func (s *Scheduler) Update(float64) error {
	s.Tick()
	return nil
}

func (s *Scheduler) Shutdown(context.Context) error {
	s.Close()
	return nil
}

// Close drops the registry. Later registrations are ignored and Tick does
// nothing.
func (s *Scheduler) Close() {
	s.closed = true
	s.attackers = nil
	s.hittables = nil
	s.pending = nil
	clear(s.roles)
}

func (s *Scheduler) Len() int {
	return len(s.attackers) + len(s.hittables)
}

func (s *Scheduler) Attackers() []*AttackBox {
	return slices.Clone(s.attackers)
}

func (s *Scheduler) Hittables() []*HitBox {
	return slices.Clone(s.hittables)
}

func (s *Scheduler) Config() Config {
	return s.config
}

// SetConfig replaces the scheduler config; it applies from the next tick.
func (s *Scheduler) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// LastReport returns the report of the most recent Tick.
func (s *Scheduler) LastReport() TickReport {
	return s.last
}
