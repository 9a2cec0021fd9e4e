package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ccd/internal/config"
	"github.com/zeusync/ccd/internal/core/events/bus"
	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems"
	"github.com/zeusync/ccd/internal/core/systems/collision"
	"github.com/zeusync/ccd/internal/core/systems/physics"
	"github.com/zeusync/ccd/internal/core/systems/physics/narrow"
)

// Simulation is the assembled collision pipeline: the tracker refreshes
// shapes in the update phase and the scheduler matches them in late update.
type Simulation struct {
	Logger    *log.Logger
	Swept     *physics.SweptCalculator
	Detector  *narrow.Detector
	Events    bus.EventBus
	Scheduler *collision.Scheduler
	Tracker   *collision.Tracker
	Systems   *systems.Manager
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideSweptCalculator,
	ProvideDetector,
	wire.Bind(new(narrow.Tester), new(*narrow.Detector)),
	ProvideEventBus,
	ProvideScheduler,
	collision.NewTracker,
	ProvideSystems,
	wire.Struct(new(Simulation), "*"),
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.NewFromConfig(cfg.Log)
}

func ProvideSweptCalculator(cfg config.Config, logger log.Log) (*physics.SweptCalculator, error) {
	calc := physics.NewSweptCalculator(physics.WithLogger(logger))
	if err := calc.SetConfig(cfg.Swept); err != nil {
		return nil, err
	}
	return calc, nil
}

func ProvideDetector(logger log.Log) *narrow.Detector {
	return narrow.NewDetector(narrow.WithLogger(logger))
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideScheduler(cfg config.Config, tester narrow.Tester, events bus.EventBus, logger log.Log) (*collision.Scheduler, error) {
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	return collision.NewScheduler(tester,
		collision.WithLogger(logger),
		collision.WithEventBus(events),
		collision.WithConfig(cfg.Scheduler),
	), nil
}

// ProvideSystems registers the tracker and the scheduler with a fresh manager.
func ProvideSystems(logger log.Log, tracker *collision.Tracker, scheduler *collision.Scheduler) (*systems.Manager, error) {
	m := systems.NewManager(logger)
	if err := m.Register(tracker); err != nil {
		return nil, err
	}
	if err := m.Register(scheduler); err != nil {
		return nil, err
	}
	return m, nil
}
