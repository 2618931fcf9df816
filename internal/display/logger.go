package display

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/setgame/internal/game"
)

// Logger writes notifications to a structured logger. Table movement goes to
// debug level; scores and results go to info.
type Logger struct {
	logger *log.Logger
	names  []string
}

var _ game.Display = (*Logger)(nil)

// NewLogger creates a logging sink. names maps player ids to display names.
func NewLogger(logger *log.Logger, names []string) *Logger {
	return &Logger{logger: logger.WithPrefix("display"), names: names}
}

func (l *Logger) name(player int) string {
	if player >= 0 && player < len(l.names) {
		return l.names[player]
	}
	return fmt.Sprintf("player%d", player)
}

func (l *Logger) PlaceCard(card, slot int) {
	l.logger.Debug("Card placed", "card", card, "slot", slot)
}

func (l *Logger) RemoveCard(slot int) {
	l.logger.Debug("Card removed", "slot", slot)
}

func (l *Logger) PlaceToken(player, slot int) {
	l.logger.Debug("Token placed", "player", l.name(player), "slot", slot)
}

func (l *Logger) RemoveToken(player, slot int) {
	l.logger.Debug("Token removed", "player", l.name(player), "slot", slot)
}

func (l *Logger) SetScore(player, score int) {
	l.logger.Info("Score", "player", l.name(player), "score", score)
}

func (l *Logger) SetFreeze(player int, remaining time.Duration) {
	l.logger.Debug("Freeze", "player", l.name(player), "remaining", remaining)
}

func (l *Logger) SetCountdown(remaining time.Duration, warn bool) {
	if warn {
		l.logger.Debug("Countdown", "remaining", remaining.Round(10*time.Millisecond), "warn", warn)
	}
}

func (l *Logger) AnnounceWinners(players []int) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = l.name(p)
	}
	l.logger.Info("Winners", "players", names)
}
