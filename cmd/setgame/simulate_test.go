package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/randutil"
	"github.com/lox/setgame/internal/results"
)

const smallConfig = `
log_level = "error"

game {
  feature_count  = 3
  table_size     = 9
  table_delay    = "0s"
  point_freeze   = "1ms"
  penalty_freeze = "1ms"
  ai_throttle    = "0s"
  seed           = 11
}

player "alice" {
  human = true
}

player "bob" {}
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setgame.hcl")
	require.NoError(t, os.WriteFile(path, []byte(smallConfig), 0o644))
	return path
}

func TestSimulate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "results.json")
	journals := filepath.Join(dir, "journals")

	cmd := &SimulateCmd{
		Games:      3,
		Parallel:   2,
		Duration:   200 * time.Millisecond,
		Out:        out,
		JournalDir: journals,
	}
	require.NoError(t, cmd.Run(&Globals{Config: writeConfig(t)}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var summary results.Summary
	require.NoError(t, json.Unmarshal(data, &summary))

	require.Len(t, summary.Games, 3)
	assert.Zero(t, summary.Failed)
	for i, g := range summary.Games {
		assert.Equal(t, i, g.Index)
		assert.Equal(t, randutil.Derive(11, i), g.Seed, "each game gets its own seed")
		assert.Equal(t, []string{"alice", "bob"}, g.Players)
		assert.NotEmpty(t, g.Winners)
	}

	entries, err := os.ReadDir(journals)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSimulateRejectsBadInput(t *testing.T) {
	t.Parallel()
	config := writeConfig(t)

	t.Run("no games", func(t *testing.T) {
		err := (&SimulateCmd{Games: 0}).Run(&Globals{Config: config})
		require.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		err := (&SimulateCmd{Games: 1}).Run(&Globals{Config: config, LogLevel: "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log level")
	})
}

func TestSimulationConfig(t *testing.T) {
	t.Parallel()
	cfg := game.DefaultConfig(2)
	cfg.Players[0].Role = game.Human

	t.Run("keeps declared players", func(t *testing.T) {
		got := simulationConfig(cfg, 0)
		require.Len(t, got.Players, 2)
		for _, p := range got.Players {
			assert.Equal(t, game.Automated, p.Role)
		}
		assert.Zero(t, got.EndGamePause)
		assert.Equal(t, game.Human, cfg.Players[0].Role, "input is not modified")
	})

	t.Run("overrides player count", func(t *testing.T) {
		got := simulationConfig(cfg, 4)
		require.Len(t, got.Players, 4)
		assert.Equal(t, "bot4", got.Players[3].Name)
	})
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()
	fc, err := loadConfig(&Globals{Config: writeConfig(t), LogLevel: "debug", Seed: 99})
	require.NoError(t, err)
	assert.Equal(t, "debug", fc.LogLevel)
	assert.Equal(t, int64(99), fc.Game.Seed)
	assert.Equal(t, 1, fc.Humans())

	fc, err = loadConfig(&Globals{Config: filepath.Join(t.TempDir(), "missing.hcl")})
	require.NoError(t, err)
	assert.Equal(t, 12, fc.Game.TableSize)
}
