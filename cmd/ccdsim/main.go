package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/ccd/internal/config"
	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/debugview"
	"github.com/zeusync/ccd/internal/injector"
	"github.com/zeusync/ccd/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	watch := flag.Bool("watch", false, "reload the config file when it changes")
	flag.Parse()

	if err := run(*configPath, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "ccdsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, watch bool) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	sim, err := injector.InitializeSimulation(cfg)
	if err != nil {
		return err
	}
	logger := sim.Logger
	defer func() { _ = logger.Sync() }()

	// opened before any goroutine starts
	var watcher *config.Watcher
	if watch && configPath != "" {
		if watcher, err = config.NewWatcher(configPath, logger); err != nil {
			return err
		}
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = sim.Systems.InitializeAll(ctx); err != nil {
		return err
	}

	var prefs *debugview.Store
	if cfg.Debug.Persist {
		prefs = debugview.OpenStore(cfg.Debug.AppName, logger)
	} else {
		prefs = debugview.NewStore(nil, logger)
	}

	var feed *server.Feed
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Debug.FeedEnabled {
		feed = server.NewFeed(logger)
		g.Go(func() error {
			return feed.ListenAndServe(ctx, cfg.Debug.FeedAddress)
		})
	}

	reloads := make(chan config.Config, 1)
	if watcher != nil {
		g.Go(func() error {
			return reloadLoop(ctx, watcher, reloads, logger)
		})
	}

	g.Go(func() error {
		defer stop()
		return tickLoop(ctx, cfg.Simulation, sim, feed, prefs, reloads)
	})

	err = g.Wait()
	if shutdownErr := sim.Systems.ShutdownAll(context.Background()); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	logger.Info("simulation stopped", log.Uint64("ticks", sim.Scheduler.LastReport().Tick))
	return err
}

// tickLoop owns the simulation: configs from reloads are applied here, between
// steps, and nowhere else.
func tickLoop(
	ctx context.Context,
	cfg config.SimulationConfig,
	sim *injector.Simulation,
	feed *server.Feed,
	prefs *debugview.Store,
	reloads <-chan config.Config,
) error {
	scene := newScenario(sim, sim.Logger)
	dt := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for steps := 0; cfg.Ticks == 0 || steps < cfg.Ticks; steps++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		select {
		case next := <-reloads:
			applyConfig(sim, next)
		default:
		}

		scene.advance()
		if err := sim.Systems.Step(dt.Seconds()); err != nil {
			sim.Logger.Error("step failed", log.Error(err))
		}

		report := sim.Scheduler.LastReport()
		sim.Logger.Debug("tick",
			log.Uint64("tick", report.Tick),
			log.Int("pairs", report.PairsTested),
			log.Int("hits", report.Hits),
			log.Uint64("digest", report.Digest),
			log.Duration("took", report.Duration),
		)

		if feed != nil {
			frame := debugview.BuildFrame(report.Tick, debugview.Objects(sim.Scheduler), prefs.Preferences())
			if err := feed.Broadcast(frame); err != nil && !errors.Is(err, server.ErrFeedClosed) {
				return err
			}
		}
	}
	return nil
}

// applyConfig installs the parts of cfg that may change at runtime: the
// swept thresholds, the scheduler publishing settings and the log level. The
// rest needs a restart.
func applyConfig(sim *injector.Simulation, cfg config.Config) {
	if err := sim.Swept.SetConfig(cfg.Swept); err != nil {
		sim.Logger.Warn("swept config rejected", log.Error(err))
	}
	if err := sim.Scheduler.SetConfig(cfg.Scheduler); err != nil {
		sim.Logger.Warn("scheduler config rejected", log.Error(err))
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		sim.Logger.SetLevel(level)
	}
}

// reloadLoop hands every valid config the watcher reports to the tick loop.
// Only the newest pending config is kept.
func reloadLoop(ctx context.Context, w *config.Watcher, reloads chan config.Config, logger log.Log) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-w.Updates:
			if !ok {
				return nil
			}
			// sole sender: after the drain there is room for cfg
			select {
			case <-reloads:
			default:
			}
			reloads <- cfg
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config reload skipped", log.Error(err))
		}
	}
}
