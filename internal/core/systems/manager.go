package systems

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/ccd/internal/core/observability/log"
)

type executionRecorder interface {
	RecordExecution(d time.Duration, err error)
}

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	EnabledSystems    uint32
	Steps             uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	LastUpdateTime    time.Time
}

// Manager runs registered systems phase by phase. Inside a phase higher
// priorities run first and equal priorities keep registration order.
type Manager struct {
	mu      sync.Mutex
	systems []System
	order   []System
	logger  log.Log
	metrics ManagerMetrics
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{logger: logger.Named("systems")}
}

func (m *Manager) Register(s System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexLocked(s.Name()) >= 0 {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	m.systems = append(m.systems, s)
	m.rebuildOrderLocked()
	m.logger.Debug("system registered",
		log.String("system", s.Name()),
		log.Stringer("phase", s.ExecutionPhase()),
		log.Int("priority", int(s.Priority())),
	)
	return nil
}

func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	m.systems = slices.Delete(m.systems, i, i+1)
	m.rebuildOrderLocked()
	return nil
}

func (m *Manager) Get(name string) (System, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(name); i >= 0 {
		return m.systems[i], true
	}
	return nil, false
}

// ExecutionOrder lists system names in the order Step runs them.
func (m *Manager) ExecutionOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.order))
	for i, s := range m.order {
		names[i] = s.Name()
	}
	return names
}

// InitializeAll initializes systems in execution order and stops at the first
// failure.
func (m *Manager) InitializeAll(ctx context.Context) error {
	for _, s := range m.snapshot() {
		if err := s.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", s.Name(), err)
		}
	}
	return nil
}

// ShutdownAll shuts systems down in reverse execution order and joins every
// failure.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	order := m.snapshot()
	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if err := order[i].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", order[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Step runs one update of every enabled system. A failing system does not
// stop the rest of the step; all failures are joined into the result.
func (m *Manager) Step(deltaTime float64) error {
	start := time.Now()
	var errs []error
	enabled := uint32(0)
	for _, s := range m.snapshot() {
		if !s.IsEnabled() {
			continue
		}
		enabled++
		began := time.Now()
		err := s.Update(deltaTime)
		if r, ok := s.(executionRecorder); ok {
			r.RecordExecution(time.Since(began), err)
		}
		if err != nil {
			m.logger.Error("system update failed", log.String("system", s.Name()), log.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}

	m.mu.Lock()
	m.metrics.Steps++
	m.metrics.EnabledSystems = enabled
	m.metrics.TotalUpdateTime += time.Since(start)
	m.metrics.AverageUpdateTime = m.metrics.TotalUpdateTime / time.Duration(m.metrics.Steps)
	m.metrics.LastUpdateTime = time.Now()
	m.mu.Unlock()

	return errors.Join(errs...)
}

func (m *Manager) GetMetrics() ManagerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.metrics
	out.RegisteredSystems = uint32(len(m.systems))
	return out
}

func (m *Manager) snapshot() []System {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

func (m *Manager) indexLocked(name string) int {
	return slices.IndexFunc(m.systems, func(s System) bool { return s.Name() == name })
}

func (m *Manager) rebuildOrderLocked() {
	m.order = slices.Clone(m.systems)
	slices.SortStableFunc(m.order, func(a, b System) int {
		if a.ExecutionPhase() != b.ExecutionPhase() {
			return int(a.ExecutionPhase()) - int(b.ExecutionPhase())
		}
		return int(b.Priority()) - int(a.Priority())
	})
}
