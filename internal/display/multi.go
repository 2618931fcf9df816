// Package display provides game.Display sinks: a fan-out, a logging sink and
// a snapshot board that renderers poll.
package display

import (
	"time"

	"github.com/lox/setgame/internal/game"
)

// Multi forwards every notification to each sink in order. Nil entries are
// skipped.
type Multi []game.Display

var _ game.Display = Multi(nil)

// NewMulti builds a fan-out, dropping nil sinks
func NewMulti(sinks ...game.Display) Multi {
	m := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m Multi) PlaceCard(card, slot int) {
	for _, d := range m {
		d.PlaceCard(card, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) SetScore(player, score int) {
	for _, d := range m {
		d.SetScore(player, score)
	}
}

func (m Multi) SetFreeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.SetFreeze(player, remaining)
	}
}

func (m Multi) SetCountdown(remaining time.Duration, warn bool) {
	for _, d := range m {
		d.SetCountdown(remaining, warn)
	}
}

func (m Multi) AnnounceWinners(players []int) {
	for _, d := range m {
		d.AnnounceWinners(players)
	}
}
