package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ccd/internal/core/systems/collision"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(`
log:
  level: debug
swept:
  min_movement: 0.01
scheduler:
  publish_events: true
simulation:
  ticks: 120
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0.01, cfg.Swept.MinMovement)
	assert.True(t, cfg.Swept.Enabled)
	assert.Equal(t, 15.0, cfg.Swept.CapsuleTranslationAngleDeg)
	assert.True(t, cfg.Scheduler.PublishEvents)
	assert.Equal(t, "collision", cfg.Scheduler.EventTopic)
	assert.Equal(t, 60, cfg.Simulation.TickRate)
	assert.Equal(t, 120, cfg.Simulation.Ticks)
}

func TestLoadYAMLEmptyDocument(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("swept:\n  min_move: 1\n"))
	assert.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Swept.CapsuleRotationAngleDeg = 120
	cfg.Scheduler = collisionConfigWithoutTopic()
	cfg.Debug.FeedEnabled = true
	cfg.Debug.FeedAddress = ""
	cfg.Simulation.TickRate = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	msg := err.Error()
	for _, part := range []string{"log", "capsule_rotation_angle_deg", "scheduler", "feed_address", "tick_rate"} {
		assert.Contains(t, msg, part)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug:\n  feed_enabled: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug.FeedEnabled)
	assert.Equal(t, "127.0.0.1:8089", cfg.Debug.FeedAddress)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  ticks: 1\n"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  ticks: 42\n"), 0o644))
	select {
	case cfg := <-w.Updates:
		assert.Equal(t, 42, cfg.Simulation.Ticks)
	case err := <-w.Errors:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  tick_rate: -1\n"), 0o644))
	select {
	case err := <-w.Errors:
		assert.ErrorIs(t, err, ErrInvalidConfig)
	case cfg := <-w.Updates:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("no error observed")
	}

	require.NoError(t, w.Close())
	_, open := <-w.Updates
	assert.False(t, open)
}

func collisionConfigWithoutTopic() collision.Config {
	return collision.Config{PublishEvents: true}
}
