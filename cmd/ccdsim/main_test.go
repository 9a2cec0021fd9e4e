package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ccd/internal/config"
	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems/collision"
	"github.com/zeusync/ccd/internal/injector"
)

func TestProjectileCannotTunnelThroughWall(t *testing.T) {
	sim, err := injector.InitializeSimulation(config.Default())
	require.NoError(t, err)
	scene := newScenario(sim, log.NewNop())

	var wallHits []collision.CollisionHit
	scene.wall.SetHandler(func(hit collision.CollisionHit) {
		wallHits = append(wallHits, hit)
	})

	for range 7 {
		scene.advance()
		require.NoError(t, sim.Systems.Step(1.0/60))
	}

	require.Len(t, wallHits, 1)
	assert.Equal(t, scene.projectile.ID(), wallHits[0].AttackerID)
	assert.InDelta(t, -3.75, wallHits[0].ContactPoint.Z(), 0.3)
	assert.Greater(t, wallHits[0].SweepProgress, 0.0)
	assert.Less(t, wallHits[0].SweepProgress, 1.0)
}

func TestScenarioIsDeterministic(t *testing.T) {
	digests := func() []uint64 {
		sim, err := injector.InitializeSimulation(config.Default())
		require.NoError(t, err)
		scene := newScenario(sim, log.NewNop())
		var out []uint64
		for range 2 * swingPeriod {
			scene.advance()
			require.NoError(t, sim.Systems.Step(1.0/60))
			out = append(out, sim.Scheduler.LastReport().Digest)
		}
		return out
	}
	assert.Equal(t, digests(), digests())
}

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	return cfg
}

func TestTickLoopAppliesPendingConfig(t *testing.T) {
	sim, err := injector.InitializeSimulation(quietConfig())
	require.NoError(t, err)

	next := quietConfig()
	next.Swept.MinMovement = 0.01
	next.Scheduler.Workers = 3
	reloads := make(chan config.Config, 1)
	reloads <- next

	sim.Logger.SetLevel(log.LevelFatal)
	err = tickLoop(context.Background(), config.SimulationConfig{TickRate: 1000, Ticks: 1}, sim, nil, nil, reloads)
	require.NoError(t, err)

	assert.Equal(t, next.Swept, sim.Swept.Config())
	assert.Equal(t, next.Scheduler, sim.Scheduler.Config())
	assert.Equal(t, log.LevelError, sim.Logger.GetLevel())
	assert.Equal(t, uint64(1), sim.Scheduler.LastReport().Tick)
}

func TestReloadLoopKeepsNewestConfig(t *testing.T) {
	updates := make(chan config.Config)
	w := &config.Watcher{Updates: updates, Errors: make(chan error)}
	reloads := make(chan config.Config, 1)

	done := make(chan error, 1)
	go func() { done <- reloadLoop(context.Background(), w, reloads, log.NewNop()) }()

	for _, ticks := range []int{1, 2, 3} {
		cfg := quietConfig()
		cfg.Simulation.Ticks = ticks
		updates <- cfg
	}
	close(updates)
	require.NoError(t, <-done)

	require.Len(t, reloads, 1)
	assert.Equal(t, 3, (<-reloads).Simulation.Ticks)
}

func TestReloadWhileTicking(t *testing.T) {
	sim, err := injector.InitializeSimulation(quietConfig())
	require.NoError(t, err)

	updates := make(chan config.Config)
	w := &config.Watcher{Updates: updates, Errors: make(chan error)}
	reloads := make(chan config.Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, reloadLoop(ctx, w, reloads, log.NewNop()))
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		assert.NoError(t, tickLoop(ctx, config.SimulationConfig{TickRate: 1000, Ticks: 200}, sim, nil, nil, reloads))
	}()

	topics := []string{"collision", "collision.alt"}
	for i := 0; i < 100; i++ {
		cfg := quietConfig()
		cfg.Scheduler.PublishEvents = i%2 == 0
		cfg.Scheduler.EventTopic = topics[i%2]
		cfg.Scheduler.Workers = 1 + i%4
		select {
		case updates <- cfg:
		case <-ctx.Done():
		}
		time.Sleep(time.Millisecond)
	}
	wg.Wait()

	assert.Contains(t, topics, sim.Scheduler.Config().EventTopic)
	assert.Positive(t, sim.Scheduler.LastReport().Tick)
}
