package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setgame/internal/feed"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/randutil"
	"github.com/lox/setgame/internal/tui"
)

// PlayCmd plays one game, in the terminal unless headless
type PlayCmd struct {
	Headless bool   `help:"Run without the terminal UI, logging to stderr (every player must be automated)"`
	Hints    bool   `help:"Log a legal combination whenever the table is dealt"`
	Journal  string `type:"path" help:"Write every game event as JSON lines to this file"`
	FeedAddr string `help:"Serve a read-only websocket feed for spectators on this address (e.g. localhost:8090)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	fc, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Hints {
		fc.Game.Hints = true
	}
	humans := fc.Humans()
	if humans > tui.MaxHumans() {
		return fmt.Errorf("at most %d human players can share a keyboard, config has %d", tui.MaxHumans(), humans)
	}
	if c.Headless && humans > 0 {
		return fmt.Errorf("headless games cannot have human players, config has %d", humans)
	}

	var logs *tui.LogBuffer
	var out io.Writer = os.Stderr
	if !c.Headless {
		logs = tui.NewLogBuffer(500)
		out = logs
	}
	logger, err := newLogger(out, fc.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := fc.GameConfig()
	if err != nil {
		return err
	}
	seed := randutil.Seed(fc.Game.Seed)
	s, err := newSession(cfg, fc, seed, logger)
	if err != nil {
		return err
	}

	var sinks []game.Display
	if c.Journal != "" {
		j, err := openJournal(c.Journal, cfg, seed)
		if err != nil {
			return err
		}
		defer closeJournal(j, logger)
		sinks = append(sinks, j)
	}
	var hub *feed.Hub
	if c.FeedAddr != "" {
		hub = feed.NewHub(s.board, s.names, logger)
		sinks = append(sinks, hub)
	}
	if err := s.deal(sinks...); err != nil {
		return err
	}

	sigCtx, stop := signalContext(logger)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logger.Info("Starting game", "players", len(cfg.Players), "humans", humans, "deck", cfg.DeckSize, "seed", seed)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if c.Headless {
			defer cancel()
		}
		return s.dealer.Run(ctx)
	})
	if hub != nil {
		eg.Go(func() error { return hub.Serve(ctx, c.FeedAddr) })
	}
	if !c.Headless {
		model := tui.NewModel(tui.Options{
			Board:    s.board,
			Names:    s.names,
			Seats:    humanSeats(s.dealer),
			Describe: s.rules,
			Logs:     logs,
			Done:     s.dealer.Done(),
			Quit:     s.dealer.Terminate,
		}, logger)
		eg.Go(func() error {
			defer cancel()
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	fmt.Print(s.result())
	return nil
}

// humanSeats returns the keyboard players in id order
func humanSeats(d *game.Dealer) []tui.Seat {
	var seats []tui.Seat
	for _, p := range d.Players() {
		if p.Role() == game.Human {
			seats = append(seats, p)
		}
	}
	return seats
}
