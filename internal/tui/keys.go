package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// Keyboard layouts for human seats. Each row of keys maps onto a row of the
// table grid, left to right.
var layouts = [][]string{
	{"q", "w", "e", "r", "a", "s", "d", "f", "z", "x", "c", "v"},
	{"u", "i", "o", "p", "j", "k", "l", ";", "m", ",", ".", "/"},
}

// MaxHumans is the number of human seats that have a keyboard layout
func MaxHumans() int {
	return len(layouts)
}

// seatKeys maps key presses to table slots for one human player
type seatKeys struct {
	player int
	slots  []key.Binding
}

func newSeatKeys(layout, player, tableSize int) seatKeys {
	keys := layouts[layout]
	s := seatKeys{player: player, slots: make([]key.Binding, min(tableSize, len(keys)))}
	for slot := range s.slots {
		s.slots[slot] = key.NewBinding(
			key.WithKeys(keys[slot]),
			key.WithHelp(keys[slot], fmt.Sprintf("slot %d", slot+1)),
		)
	}
	return s
}

// keyMap holds the global bindings
type keyMap struct {
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "up"),
			key.WithHelp("↑/pgup", "scroll log"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "down"),
			key.WithHelp("↓/pgdn", "scroll log"),
		),
	}
}
