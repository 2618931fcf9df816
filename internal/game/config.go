package game

import (
	"fmt"
	"time"
)

// PlayerSpec describes one seat at the table
type PlayerSpec struct {
	Name string
	Role Role
}

// Config holds the session parameters. It is read-only once a dealer is built.
type Config struct {
	TableSize     int
	DeckSize      int
	SelectionSize int // K, the number of tokens making a submission
	Players       []PlayerSpec

	TurnTimeout        time.Duration
	TurnTimeoutWarning time.Duration
	TableDelay         time.Duration // simulated card movement latency
	PointFreeze        time.Duration
	PenaltyFreeze      time.Duration
	EndGamePause       time.Duration

	AIThrottle        time.Duration
	MaxPendingIntents int

	Hints bool
}

// DefaultConfig returns a config with sensible defaults and n automated players
func DefaultConfig(n int) Config {
	players := make([]PlayerSpec, n)
	for i := range players {
		players[i] = PlayerSpec{Name: fmt.Sprintf("player%d", i+1), Role: Automated}
	}
	return Config{
		TableSize:          12,
		DeckSize:           81,
		SelectionSize:      3,
		Players:            players,
		TurnTimeout:        60 * time.Second,
		TurnTimeoutWarning: 5 * time.Second,
		TableDelay:         100 * time.Millisecond,
		PointFreeze:        time.Second,
		PenaltyFreeze:      3 * time.Second,
		EndGamePause:       5 * time.Second,
		AIThrottle:         2 * time.Millisecond,
		MaxPendingIntents:  32,
	}
}

// Validate checks the config is internally consistent
func (c Config) Validate() error {
	if c.TableSize <= 0 {
		return fmt.Errorf("table size must be positive, got %d", c.TableSize)
	}
	if c.SelectionSize <= 0 || c.SelectionSize > c.TableSize {
		return fmt.Errorf("selection size must be between 1 and table size %d, got %d", c.TableSize, c.SelectionSize)
	}
	if c.DeckSize < c.SelectionSize {
		return fmt.Errorf("deck size %d is smaller than selection size %d", c.DeckSize, c.SelectionSize)
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player must be configured")
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeout must be positive, got %s", c.TurnTimeout)
	}
	if c.TurnTimeoutWarning < 0 || c.TurnTimeoutWarning > c.TurnTimeout {
		return fmt.Errorf("turn timeout warning %s must be within turn timeout %s", c.TurnTimeoutWarning, c.TurnTimeout)
	}
	if c.TableDelay < 0 || c.PointFreeze < 0 || c.PenaltyFreeze < 0 || c.EndGamePause < 0 || c.AIThrottle < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.MaxPendingIntents <= 0 {
		return fmt.Errorf("max pending intents must be positive, got %d", c.MaxPendingIntents)
	}
	return nil
}
