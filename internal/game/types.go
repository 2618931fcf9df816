package game

import (
	"fmt"
	"time"
)

// NoCard marks an empty slot, or a card that is not on the table.
const NoCard = -1

// Verdict is the dealer's ruling on a submitted candidate set
type Verdict int

const (
	Approved Verdict = iota
	Rejected
	Discarded
)

func (v Verdict) String() string {
	switch v {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Role distinguishes keyboard-driven players from generated ones
type Role int

const (
	Human Role = iota
	Automated
)

func (r Role) String() string {
	if r == Human {
		return "human"
	}
	return "automated"
}

// State is a player's lifecycle state
type State int32

const (
	Active State = iota
	Frozen
	Terminated
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Frozen:
		return "frozen"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CandidateSet is a player's complete selection, submitted once to the dealer.
// Cards holds the card that was under each token when the set was built, so
// the dealer can tell whether the table changed underneath it.
type CandidateSet struct {
	Player int
	Slots  []int
	Cards  []int
}

func newCandidateSet(player int, slots, cards []int) CandidateSet {
	return CandidateSet{
		Player: player,
		Slots:  append([]int(nil), slots...),
		Cards:  append([]int(nil), cards...),
	}
}

// Evaluator decides whether cards form a legal combination and enumerates
// legal combinations. Implementations must be safe for concurrent use.
type Evaluator interface {
	TestSet(cards []int) bool
	FindSets(cards []int, limit int) [][]int
}

// Display receives fire-and-forget notifications about game state. Calls may
// arrive from any goroutine, sometimes while a slot lock is held, so
// implementations must not block or call back into the game.
type Display interface {
	PlaceCard(card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
	SetScore(player, score int)
	SetFreeze(player int, remaining time.Duration)
	SetCountdown(remaining time.Duration, warn bool)
	AnnounceWinners(players []int)
}

// NopDisplay discards every notification
type NopDisplay struct{}

func (NopDisplay) PlaceCard(int, int) {}
func (NopDisplay) RemoveCard(int) {}
func (NopDisplay) PlaceToken(int, int) {}
func (NopDisplay) RemoveToken(int, int) {}
func (NopDisplay) SetScore(int, int) {}
func (NopDisplay) SetFreeze(int, time.Duration) {}
func (NopDisplay) SetCountdown(time.Duration, bool) {}
func (NopDisplay) AnnounceWinners([]int) {}
