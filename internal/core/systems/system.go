package systems

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// System is one stage of the host tick, run by Manager once per step.
type System interface {
	Name() string

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Update(deltaTime float64) error

	Priority() Priority
	ExecutionPhase() ExecutionPhase

	IsEnabled() bool
	SetEnabled(bool) error

	GetMetrics() Metrics
}

// Priority orders systems inside one phase; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 700
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseFixedUpdate
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseFixedUpdate:
		return "fixed_update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

// Base carries the bookkeeping every System needs. Embed a *Base and
// implement Update.
type Base struct {
	name     string
	phase    ExecutionPhase
	priority Priority
	enabled  atomic.Bool

	mu      sync.Mutex
	metrics Metrics
}

func NewBase(name string, phase ExecutionPhase, priority Priority) *Base {
	b := &Base{name: name, phase: phase, priority: priority}
	b.enabled.Store(true)
	return b
}

func (b *Base) Name() string                     { return b.name }
func (b *Base) Priority() Priority               { return b.priority }
func (b *Base) ExecutionPhase() ExecutionPhase   { return b.phase }
func (b *Base) IsEnabled() bool                  { return b.enabled.Load() }
func (b *Base) Initialize(context.Context) error { return nil }
func (b *Base) Shutdown(context.Context) error   { return nil }

func (b *Base) SetEnabled(enabled bool) error {
	b.enabled.Store(enabled)
	return nil
}

func (b *Base) GetMetrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}

// RecordExecution folds one Update run into the metrics. Manager calls it
// after every Update of a system that embeds Base.
func (b *Base) RecordExecution(d time.Duration, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := &b.metrics
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if d > m.MaxExecutionTime {
		m.MaxExecutionTime = d
	}
	if m.ExecutionCount == 1 || d < m.MinExecutionTime {
		m.MinExecutionTime = d
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
	m.LastExecutionTime = time.Now()
}
