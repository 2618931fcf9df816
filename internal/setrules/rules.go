// Package setrules implements the legality rules of the card game Set.
//
// A card is an integer in [0, size^count). Written in base size, its count
// digits are the card's features (colour, number, shape, shading in the
// classic deck of 81). A selection of size cards is legal when, feature by
// feature, the cards either all agree or all differ.
package setrules

import "fmt"

// Rules evaluates card selections. It holds no mutable state and is safe for
// concurrent use.
type Rules struct {
	size  int // values per feature, also the selection size
	count int // features per card
	deck  int
}

// New creates rules for cards with count features of size values each
func New(size, count int) (*Rules, error) {
	if size < 2 {
		return nil, fmt.Errorf("feature size must be at least 2, got %d", size)
	}
	if count < 1 {
		return nil, fmt.Errorf("feature count must be positive, got %d", count)
	}
	deck := 1
	for range count {
		deck *= size
		if deck > 1<<20 {
			return nil, fmt.Errorf("deck of %d^%d cards is too large", size, count)
		}
	}
	return &Rules{size: size, count: count, deck: deck}, nil
}

// Classic returns the rules of the standard 81 card game
func Classic() *Rules {
	r, _ := New(3, 4)
	return r
}

// DeckSize returns the number of distinct cards
func (r *Rules) DeckSize() int { return r.deck }

// SelectionSize returns how many cards make a selection
func (r *Rules) SelectionSize() int { return r.size }

// Features returns the feature digits of card, most significant first
func (r *Rules) Features(card int) []int {
	features := make([]int, r.count)
	for i := r.count - 1; i >= 0; i-- {
		features[i] = card % r.size
		card /= r.size
	}
	return features
}

// TestSet reports whether cards form a legal set
func (r *Rules) TestSet(cards []int) bool {
	if len(cards) != r.size {
		return false
	}
	for _, card := range cards {
		if card < 0 || card >= r.deck {
			return false
		}
	}

	seen := make([]bool, r.size)
	divisor := 1
	for range r.count {
		clear(seen)
		distinct := 0
		for _, card := range cards {
			digit := (card / divisor) % r.size
			if !seen[digit] {
				seen[digit] = true
				distinct++
			}
		}
		if distinct != 1 && distinct != r.size {
			return false
		}
		divisor *= r.size
	}
	return true
}

// FindSets returns up to limit legal sets drawn from cards, each in the order
// the cards were given. A limit below one returns nothing.
func (r *Rules) FindSets(cards []int, limit int) [][]int {
	if limit < 1 || len(cards) < r.size {
		return nil
	}

	var sets [][]int
	pick := make([]int, 0, r.size)
	var walk func(start int) bool
	walk = func(start int) bool {
		if len(pick) == r.size {
			if r.TestSet(pick) {
				sets = append(sets, append([]int(nil), pick...))
				return len(sets) >= limit
			}
			return false
		}
		// Stop early when too few cards are left to finish the pick.
		for i := start; i <= len(cards)-(r.size-len(pick)); i++ {
			pick = append(pick, cards[i])
			done := walk(i + 1)
			pick = pick[:len(pick)-1]
			if done {
				return true
			}
		}
		return false
	}
	walk(0)
	return sets
}
