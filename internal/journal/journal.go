// Package journal records game notifications as JSON lines, one event per
// line, so a session can be inspected or replayed after the fact.
package journal

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"

	"github.com/lox/setgame/internal/game"
)

// bufferedEvents is how many events can wait for the writer goroutine before
// new ones are dropped.
const bufferedEvents = 8192

// Journal is a game.Display that writes every notification as an event.
// Events go through a diode ring buffer drained by its own goroutine, so the
// callbacks never wait on file I/O while the table holds a slot lock. Close
// flushes what is buffered.
type Journal struct {
	logger  zerolog.Logger
	out     diode.Writer
	session string
	dropped atomic.Int64
}

var _ game.Display = (*Journal)(nil)

// New creates a journal writing to w. Every event carries a fresh session id.
func New(w io.Writer) (*Journal, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return NewWithSession(w, id.String()), nil
}

// NewWithSession creates a journal with a fixed session id
func NewWithSession(w io.Writer, session string) *Journal {
	j := &Journal{session: session}
	j.out = diode.NewWriter(w, bufferedEvents, 0, func(missed int) {
		j.dropped.Add(int64(missed))
	})
	j.logger = zerolog.New(j.out).With().
		Timestamp().
		Str("session", session).
		Logger()
	return j
}

// Close writes out buffered events and closes w if it is an io.Closer
func (j *Journal) Close() error {
	return j.out.Close()
}

// Dropped returns how many events were lost because the buffer was full
func (j *Journal) Dropped() int {
	return int(j.dropped.Load())
}

// Session returns the session id stamped on every event
func (j *Journal) Session() string {
	return j.session
}

// Start records the session parameters
func (j *Journal) Start(cfg game.Config, seed int64) {
	names := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		names[i] = p.Name
	}
	j.logger.Info().
		Str("event", "start").
		Int("table_size", cfg.TableSize).
		Int("deck_size", cfg.DeckSize).
		Int("selection_size", cfg.SelectionSize).
		Strs("players", names).
		Int64("seed", seed).
		Send()
}

func (j *Journal) PlaceCard(card, slot int) {
	j.logger.Info().Str("event", "place_card").Int("card", card).Int("slot", slot).Send()
}

func (j *Journal) RemoveCard(slot int) {
	j.logger.Info().Str("event", "remove_card").Int("slot", slot).Send()
}

func (j *Journal) PlaceToken(player, slot int) {
	j.logger.Info().Str("event", "place_token").Int("player", player).Int("slot", slot).Send()
}

func (j *Journal) RemoveToken(player, slot int) {
	j.logger.Info().Str("event", "remove_token").Int("player", player).Int("slot", slot).Send()
}

func (j *Journal) SetScore(player, score int) {
	j.logger.Info().Str("event", "score").Int("player", player).Int("score", score).Send()
}

func (j *Journal) SetFreeze(player int, remaining time.Duration) {
	j.logger.Debug().Str("event", "freeze").Int("player", player).Dur("remaining", remaining).Send()
}

// SetCountdown is not journalled; the dealer refreshes it many times a second
// near the deadline and it can be derived from the other events.
func (j *Journal) SetCountdown(time.Duration, bool) {}

func (j *Journal) AnnounceWinners(players []int) {
	j.logger.Info().Str("event", "winners").Ints("players", players).Send()
}
