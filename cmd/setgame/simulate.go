package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/randutil"
	"github.com/lox/setgame/internal/results"
)

// SimulateCmd runs automated games side by side
type SimulateCmd struct {
	Games      int           `default:"10" help:"Number of games to play"`
	Parallel   int           `default:"0" help:"Games to run at once (0 = number of CPUs)"`
	Players    int           `default:"0" help:"Automated players per game (0 = as many as the config declares)"`
	Duration   time.Duration `default:"0s" help:"Terminate each game after this long (0 = play until no legal combination is left)"`
	Out        string        `type:"path" help:"Write a JSON summary of every game to this file"`
	JournalDir string        `type:"path" help:"Write one JSON lines journal per game into this directory"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	fc, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	parallel := c.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	if c.JournalDir != "" {
		if err := os.MkdirAll(c.JournalDir, 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}

	logger, err := newLogger(os.Stderr, fc.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := fc.GameConfig()
	if err != nil {
		return err
	}
	cfg = simulationConfig(cfg, c.Players)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext(logger)
	defer stop()

	base := randutil.Seed(fc.Game.Seed)
	logger.Info("Starting simulation", "games", c.Games, "parallel", parallel, "players", len(cfg.Players), "seed", base)

	collector := results.NewCollector()
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for i := range c.Games {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			gameLogger := logger.With("game", i)
			s, err := newSession(cfg, fc, randutil.Derive(base, i), gameLogger)
			if err != nil {
				return err
			}
			collector.Add(c.playOne(ctx, i, s))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	summary := collector.Summary()
	logger.Info("Simulation complete", "games", len(summary.Games), "failed", summary.Failed, "elapsed", time.Since(start).Round(time.Millisecond))
	printSummary(summary)
	if summary.Failed > 0 {
		logger.Warn("Some games failed", "failed", summary.Failed)
	}

	if c.Out != "" {
		if err := results.Write(c.Out, summary); err != nil {
			return err
		}
		logger.Info("Results written", "path", c.Out)
	}
	return nil
}

// playOne runs a single game to completion. Failures are recorded in the
// result rather than stopping the other games.
func (c *SimulateCmd) playOne(ctx context.Context, index int, s *session) results.Game {
	started := time.Now()
	record := func(err error) results.Game {
		var scores []int
		var winners []int
		if s.dealer != nil {
			scores, winners = s.dealer.Scores(), s.dealer.Winners()
		}
		return results.NewGame(index, s.seed, s.names, scores, winners, time.Since(started), err)
	}

	var sinks []game.Display
	if c.JournalDir != "" {
		j, err := openJournal(filepath.Join(c.JournalDir, fmt.Sprintf("game-%04d.jsonl", index)), s.cfg, s.seed)
		if err != nil {
			return record(err)
		}
		defer closeJournal(j, s.logger)
		sinks = append(sinks, j)
	}
	if err := s.deal(sinks...); err != nil {
		return record(err)
	}

	if c.Duration > 0 {
		timer := s.clock.AfterFunc(c.Duration, s.dealer.Terminate, "simulate", "duration")
		defer timer.Stop()
	}
	err := s.dealer.Run(ctx)
	if err != nil {
		s.logger.Error("Game failed", "error", err)
	}
	return record(err)
}

// simulationConfig makes every player automated and drops the pauses that
// only matter to people watching.
func simulationConfig(cfg game.Config, players int) game.Config {
	cfg.Players = slices.Clone(cfg.Players)
	if players > 0 {
		cfg.Players = make([]game.PlayerSpec, players)
		for i := range cfg.Players {
			cfg.Players[i].Name = fmt.Sprintf("bot%d", i+1)
		}
	}
	for i := range cfg.Players {
		cfg.Players[i].Role = game.Automated
	}
	cfg.EndGamePause = 0
	return cfg
}

func printSummary(s results.Summary) {
	names := make([]string, 0, len(s.Points))
	for name := range s.Points {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if s.Wins[a] != s.Wins[b] {
			return s.Wins[b] - s.Wins[a]
		}
		return s.Points[b] - s.Points[a]
	})

	fmt.Printf("%-12s %6s %8s\n", "player", "wins", "points")
	for _, name := range names {
		fmt.Printf("%-12s %6d %8d\n", name, s.Wins[name], s.Points[name])
	}
}
