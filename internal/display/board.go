package display

import (
	"slices"
	"sync"
	"time"

	"github.com/lox/setgame/internal/game"
)

// Snapshot is a copy of everything a renderer needs to draw the game
type Snapshot struct {
	Cards     []int    // card per slot, game.NoCard when empty
	Tokens    [][]bool // Tokens[slot][player]
	Scores    []int
	Frozen    []time.Duration // remaining freeze per player
	Countdown time.Duration
	Warn      bool
	Winners   []int
	Over      bool
	Version   uint64 // increases with every notification
}

// HasToken reports whether player has a token on slot in the snapshot
func (s Snapshot) HasToken(player, slot int) bool {
	if slot < 0 || slot >= len(s.Tokens) || player < 0 || player >= len(s.Tokens[slot]) {
		return false
	}
	return s.Tokens[slot][player]
}

// Board accumulates notifications into a state that can be read at any time.
// All methods are safe for concurrent use.
type Board struct {
	mu    sync.Mutex
	state Snapshot
}

var _ game.Display = (*Board)(nil)

// NewBoard creates an empty board for the given table size and player count
func NewBoard(slots, players int) *Board {
	b := &Board{}
	b.state.Cards = make([]int, slots)
	b.state.Tokens = make([][]bool, slots)
	for i := range slots {
		b.state.Cards[i] = game.NoCard
		b.state.Tokens[i] = make([]bool, players)
	}
	b.state.Scores = make([]int, players)
	b.state.Frozen = make([]time.Duration, players)
	return b
}

// Snapshot returns a deep copy of the current state
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	s.Cards = slices.Clone(s.Cards)
	s.Tokens = make([][]bool, len(b.state.Tokens))
	for i, tokens := range b.state.Tokens {
		s.Tokens[i] = slices.Clone(tokens)
	}
	s.Scores = slices.Clone(s.Scores)
	s.Frozen = slices.Clone(s.Frozen)
	s.Winners = slices.Clone(s.Winners)
	return s
}

func (b *Board) update(fn func(s *Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
	b.state.Version++
}

func (b *Board) PlaceCard(card, slot int) {
	b.update(func(s *Snapshot) {
		if slot >= 0 && slot < len(s.Cards) {
			s.Cards[slot] = card
		}
	})
}

func (b *Board) RemoveCard(slot int) {
	b.update(func(s *Snapshot) {
		if slot >= 0 && slot < len(s.Cards) {
			s.Cards[slot] = game.NoCard
			clear(s.Tokens[slot])
		}
	})
}

func (b *Board) PlaceToken(player, slot int) {
	b.setToken(player, slot, true)
}

func (b *Board) RemoveToken(player, slot int) {
	b.setToken(player, slot, false)
}

func (b *Board) setToken(player, slot int, on bool) {
	b.update(func(s *Snapshot) {
		if slot >= 0 && slot < len(s.Tokens) && player >= 0 && player < len(s.Tokens[slot]) {
			s.Tokens[slot][player] = on
		}
	})
}

func (b *Board) SetScore(player, score int) {
	b.update(func(s *Snapshot) {
		if player >= 0 && player < len(s.Scores) {
			s.Scores[player] = score
		}
	})
}

func (b *Board) SetFreeze(player int, remaining time.Duration) {
	b.update(func(s *Snapshot) {
		if player >= 0 && player < len(s.Frozen) {
			s.Frozen[player] = remaining
		}
	})
}

func (b *Board) SetCountdown(remaining time.Duration, warn bool) {
	b.update(func(s *Snapshot) {
		s.Countdown = remaining
		s.Warn = warn
	})
}

func (b *Board) AnnounceWinners(players []int) {
	b.update(func(s *Snapshot) {
		s.Winners = slices.Clone(players)
		s.Over = true
	})
}
