package game

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

var (
	ErrNoSuchSlot   = errors.New("no such slot")
	ErrNoSuchCard   = errors.New("no such card")
	ErrSlotOccupied = errors.New("slot already holds a card")
	ErrCardOnTable  = errors.New("card is already on the table")
)

// slot is one grid position. mu guards card and every player's token bit.
type slot struct {
	mu     sync.Mutex
	card   int
	tokens []bool
}

// Table is the shared grid. It enforces no game rules; it only keeps the
// slot/card bijection and token bits consistent under concurrent access.
type Table struct {
	slots      []slot
	cardToSlot []atomic.Int32
	players    int
	delay      time.Duration
	display    Display
	clock      quartz.Clock
	logger     *log.Logger
}

// NewTable creates an empty table sized from cfg
func NewTable(cfg Config, display Display, clock quartz.Clock, logger *log.Logger) *Table {
	if display == nil {
		display = NopDisplay{}
	}
	t := &Table{
		slots:      make([]slot, cfg.TableSize),
		cardToSlot: make([]atomic.Int32, cfg.DeckSize),
		players:    len(cfg.Players),
		delay:      cfg.TableDelay,
		display:    display,
		clock:      clock,
		logger:     logger.WithPrefix("table"),
	}
	for i := range t.slots {
		t.slots[i].card = NoCard
		t.slots[i].tokens = make([]bool, t.players)
	}
	for i := range t.cardToSlot {
		t.cardToSlot[i].Store(NoCard)
	}
	return t
}

// Size returns the number of slots
func (t *Table) Size() int {
	return len(t.slots)
}

// PlaceCard puts card into an empty slot. A refused placement returns
// without the movement delay.
func (t *Table) PlaceCard(card, slot int) error {
	if slot < 0 || slot >= len(t.slots) {
		return fmt.Errorf("place card %d: %w: %d", card, ErrNoSuchSlot, slot)
	}
	if card < 0 || card >= len(t.cardToSlot) {
		return fmt.Errorf("place card in slot %d: %w: %d", slot, ErrNoSuchCard, card)
	}

	if _, ok := t.CardAt(slot); ok {
		return fmt.Errorf("place card %d: %w: slot %d", card, ErrSlotOccupied, slot)
	}
	t.moveDelay("place")

	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card != NoCard {
		return fmt.Errorf("place card %d: %w: slot %d holds %d", card, ErrSlotOccupied, slot, s.card)
	}
	if !t.cardToSlot[card].CompareAndSwap(NoCard, int32(slot)) {
		return fmt.Errorf("place card %d in slot %d: %w", card, slot, ErrCardOnTable)
	}
	s.card = card
	t.display.PlaceCard(card, slot)
	return nil
}

// RemoveCard empties a slot, clearing every token on it in the same critical
// section. It returns the removed card and the players whose tokens were
// cleared; ok is false, with no delay, if the slot was already empty.
func (t *Table) RemoveCard(slot int) (card int, cleared []int, ok bool) {
	if slot < 0 || slot >= len(t.slots) {
		return NoCard, nil, false
	}

	if _, ok := t.CardAt(slot); !ok {
		return NoCard, nil, false
	}
	t.moveDelay("remove")

	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == NoCard {
		return NoCard, nil, false
	}
	for player, has := range s.tokens {
		if has {
			s.tokens[player] = false
			cleared = append(cleared, player)
			t.display.RemoveToken(player, slot)
		}
	}
	card = s.card
	s.card = NoCard
	t.cardToSlot[card].Store(NoCard)
	t.display.RemoveCard(slot)
	return card, cleared, true
}

// PlaceToken marks player's token on slot. It fails without mutation when
// the slot is empty.
func (t *Table) PlaceToken(player, slot int) bool {
	if !t.valid(player, slot) {
		return false
	}
	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == NoCard {
		return false
	}
	if !s.tokens[player] {
		s.tokens[player] = true
		t.display.PlaceToken(player, slot)
	}
	return true
}

// RemoveToken clears player's token on slot and reports whether one was there
func (t *Table) RemoveToken(player, slot int) bool {
	if !t.valid(player, slot) {
		return false
	}
	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tokens[player] {
		return false
	}
	s.tokens[player] = false
	t.display.RemoveToken(player, slot)
	return true
}

// PlayerHasToken reports whether player currently has a token on slot
func (t *Table) PlayerHasToken(player, slot int) bool {
	if !t.valid(player, slot) {
		return false
	}
	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[player]
}

// CardAt returns the card in slot
func (t *Table) CardAt(slot int) (int, bool) {
	if slot < 0 || slot >= len(t.slots) {
		return NoCard, false
	}
	s := &t.slots[slot]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card, s.card != NoCard
}

// SlotOf returns the slot currently holding card
func (t *Table) SlotOf(card int) (int, bool) {
	if card < 0 || card >= len(t.cardToSlot) {
		return NoCard, false
	}
	slot := int(t.cardToSlot[card].Load())
	return slot, slot != NoCard
}

// Cards returns the cards on the table in slot order. Each slot is read under
// its own lock, so the result is only a consistent snapshot when no one else
// is moving cards.
func (t *Table) Cards() []int {
	cards := make([]int, 0, len(t.slots))
	for i := range t.slots {
		if card, ok := t.CardAt(i); ok {
			cards = append(cards, card)
		}
	}
	return cards
}

// CountCards returns the number of occupied slots
func (t *Table) CountCards() int {
	return len(t.Cards())
}

// EmptySlots lists the slots without a card
func (t *Table) EmptySlots() []int {
	var empty []int
	for i := range t.slots {
		if _, ok := t.CardAt(i); !ok {
			empty = append(empty, i)
		}
	}
	return empty
}

// TokensOf lists the slots on which player has a token
func (t *Table) TokensOf(player int) []int {
	var slots []int
	for i := range t.slots {
		if t.PlayerHasToken(player, i) {
			slots = append(slots, i)
		}
	}
	return slots
}

// Hints returns every legal combination on the table as sorted slot lists
func (t *Table) Hints(eval Evaluator) [][]int {
	sets := eval.FindSets(t.Cards(), math.MaxInt)
	hints := make([][]int, 0, len(sets))
	for _, set := range sets {
		slots := make([]int, 0, len(set))
		for _, card := range set {
			if slot, ok := t.SlotOf(card); ok {
				slots = append(slots, slot)
			}
		}
		if len(slots) != len(set) {
			continue // a card moved while we were looking
		}
		slices.Sort(slots)
		hints = append(hints, slots)
	}
	return hints
}

func (t *Table) valid(player, slot int) bool {
	if slot < 0 || slot >= len(t.slots) || player < 0 || player >= t.players {
		t.logger.Debug("Ignoring out of range token operation", "player", player, "slot", slot)
		return false
	}
	return true
}

func (t *Table) moveDelay(op string) {
	if t.delay <= 0 {
		return
	}
	timer := t.clock.NewTimer(t.delay, "table", op)
	defer timer.Stop()
	<-timer.C
}
