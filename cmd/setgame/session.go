package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/setgame/internal/config"
	"github.com/lox/setgame/internal/display"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/journal"
	"github.com/lox/setgame/internal/randutil"
	"github.com/lox/setgame/internal/setrules"
)

// session is one game being assembled: rules, board and, once dealt, the
// table and dealer.
type session struct {
	cfg    game.Config
	rules  *setrules.Rules
	names  []string
	board  *display.Board
	seed   int64
	clock  quartz.Clock
	logger *log.Logger

	dealer *game.Dealer
}

func loadConfig(g *Globals) (*config.Config, error) {
	fc, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		fc.LogLevel = g.LogLevel
	}
	if g.Seed != 0 {
		fc.Game.Seed = g.Seed
	}
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}
	return fc, nil
}

func newSession(cfg game.Config, fc *config.Config, seed int64, logger *log.Logger) (*session, error) {
	rules, err := setrules.New(fc.Game.FeatureSize, fc.Game.FeatureCount)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		names[i] = p.Name
	}
	return &session{
		cfg:    cfg,
		rules:  rules,
		names:  names,
		board:  display.NewBoard(cfg.TableSize, len(cfg.Players)),
		seed:   seed,
		clock:  quartz.NewReal(),
		logger: logger,
	}, nil
}

// deal builds the table and dealer. Every notification goes to the board and
// the logger, plus any extra sinks.
func (s *session) deal(sinks ...game.Display) error {
	all := append([]game.Display{s.board, display.NewLogger(s.logger, s.names)}, sinks...)
	out := display.NewMulti(all...)

	table := game.NewTable(s.cfg, out, s.clock, s.logger)
	dealer, err := game.NewDealer(s.cfg, table, s.rules, out, s.clock, s.logger, randutil.New(s.seed))
	if err != nil {
		return err
	}
	s.dealer = dealer
	return nil
}

// result formats the final scores with winners marked
func (s *session) result() string {
	scores := s.dealer.Scores()
	winners := make(map[int]bool)
	for _, w := range s.dealer.Winners() {
		winners[w] = true
	}

	var b strings.Builder
	for i, name := range s.names {
		marker := " "
		if winners[i] {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-12s %3d\n", marker, name, scores[i])
	}
	return b.String()
}

// openJournal creates path and records the session header in it. The journal
// owns the file from then on.
func openJournal(path string, cfg game.Config, seed int64) (*journal.Journal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	j, err := journal.New(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	j.Start(cfg, seed)
	return j, nil
}

func closeJournal(j *journal.Journal, logger *log.Logger) {
	if err := j.Close(); err != nil {
		logger.Error("Failed to close journal", "error", err)
	}
	if dropped := j.Dropped(); dropped > 0 {
		logger.Warn("Journal dropped events", "dropped", dropped)
	}
}
