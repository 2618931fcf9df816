package tui

import (
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/internal/display"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type fakeSeat struct {
	id      int
	mu      sync.Mutex
	pressed []int
}

func (s *fakeSeat) ID() int { return s.id }

func (s *fakeSeat) KeyPressed(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed = append(s.pressed, slot)
	return true
}

type digits struct{}

func (digits) Features(card int) []int {
	return []int{card / 27 % 3, card / 9 % 3, card / 3 % 3, card % 3}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(t *testing.T, seats ...Seat) (*Model, *display.Board) {
	t.Helper()
	board := display.NewBoard(12, 3)
	m := NewModel(Options{
		Board:    board,
		Names:    []string{"alice", "bob", "bot"},
		Seats:    seats,
		Describe: digits{},
		Logs:     NewLogBuffer(50),
	}, testLogger())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, board
}

func TestKeyPressesReachSeats(t *testing.T) {
	t.Parallel()
	alice, bob := &fakeSeat{id: 0}, &fakeSeat{id: 1}
	m, _ := newTestModel(t, alice, bob)

	for _, r := range []rune{'q', 'v', 'u', ';', '/', 'x'} {
		m.Update(runeKey(r))
	}
	m.Update(runeKey('!'))

	assert.Equal(t, []int{0, 11, 9}, alice.pressed)
	assert.Equal(t, []int{0, 7, 11}, bob.pressed)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	quits := 0
	board := display.NewBoard(12, 1)
	m := NewModel(Options{Board: board, Quit: func() { quits++ }}, testLogger())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, quits, "quit callback runs once")
	assert.Empty(t, m.View())
}

func TestViewShowsBoard(t *testing.T) {
	t.Parallel()
	alice := &fakeSeat{id: 0}
	m, board := newTestModel(t, alice)

	board.PlaceCard(0, 0)
	board.PlaceCard(80, 5)
	board.PlaceToken(1, 5)
	board.SetScore(1, 4)
	board.SetFreeze(2, 2*time.Second)
	board.SetCountdown(42*time.Second, false)
	m.Update(tickMsg{})

	view := m.View()
	assert.Contains(t, view, "SET")
	assert.Contains(t, view, "42s")
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "bob")
	assert.Contains(t, view, "frozen 2s")
	assert.Contains(t, view, "◆")
	assert.Contains(t, view, "■■■")
	assert.Contains(t, view, "alice: qwerasdfzxcv")

	t.Run("warning countdown shows tenths", func(t *testing.T) {
		board.SetCountdown(2300*time.Millisecond, true)
		m.Update(tickMsg{})
		assert.Contains(t, m.View(), "2.3s")
	})

	t.Run("game over", func(t *testing.T) {
		board.AnnounceWinners([]int{1})
		m.Update(gameOverMsg{})
		view := m.View()
		assert.Contains(t, view, "Game over")
		assert.Contains(t, view, "winner")

		_, cmd := m.Update(runeKey('q'))
		require.NotNil(t, cmd, "any key exits once the game is over")
		assert.Empty(t, alice.pressed)
	})
}

func TestLogBuffer(t *testing.T) {
	t.Parallel()
	b := NewLogBuffer(3)

	_, err := b.Write([]byte("one\ntwo\n"))
	require.NoError(t, err)
	_, err = b.Write([]byte("three\n"))
	require.NoError(t, err)
	_, err = b.Write([]byte("four\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"two", "three", "four"}, b.Lines())
}
