// Package tui renders a game in the terminal with Bubble Tea and turns key
// presses into slot toggles for human players.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/setgame/internal/display"
	"github.com/lox/setgame/internal/game"
)

const (
	refreshInterval = 100 * time.Millisecond
	gridColumns     = 4
)

// Seat is a human player the keyboard can drive
type Seat interface {
	ID() int
	KeyPressed(slot int) bool
}

// Describer turns a card into its feature digits
type Describer interface {
	Features(card int) []int
}

// Options configures a Model
type Options struct {
	Board    *display.Board
	Names    []string
	Seats    []Seat // at most MaxHumans, in layout order
	Describe Describer
	Logs     *LogBuffer
	Done     <-chan struct{} // closed when the game is over
	Quit     func()          // called once when the user quits
}

type tickMsg struct{}

type gameOverMsg struct{}

// Model is the Bubble Tea model for a running game
type Model struct {
	opts   Options
	logger *log.Logger

	keys    keyMap
	seats   []seatKeys
	logView viewport.Model

	snap     display.Snapshot
	over     bool
	quitting bool
	quitOnce sync.Once

	width  int
	height int
}

// NewModel creates a model. Seats beyond the available keyboard layouts are
// ignored with a warning.
func NewModel(opts Options, logger *log.Logger) *Model {
	m := &Model{
		opts:    opts,
		logger:  logger.WithPrefix("tui"),
		keys:    defaultKeyMap(),
		logView: viewport.New(10, 5),
		snap:    opts.Board.Snapshot(),
	}
	for i, seat := range opts.Seats {
		if i >= len(layouts) {
			m.logger.Warn("No keyboard layout left for player", "player", seat.ID())
			break
		}
		m.seats = append(m.seats, newSeatKeys(i, seat.ID(), len(m.snap.Cards)))
	}
	return m
}

// Init starts the refresh loop and watches for the end of the game
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.opts.Done != nil {
		done := m.opts.Done
		cmds = append(cmds, func() tea.Msg {
			<-done
			return gameOverMsg{}
		})
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case gameOverMsg:
		m.over = true
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = max(msg.Width-2, 1)
		m.logView.Height = max(msg.Height/4, 3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), m.over:
		m.quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.ScrollUp):
		m.logView.ScrollUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.logView.ScrollDown(1)
		return m, nil
	}

	for i, seat := range m.seats {
		for slot, binding := range seat.slots {
			if key.Matches(msg, binding) {
				if !m.opts.Seats[i].KeyPressed(slot) {
					m.logger.Debug("Key press dropped", "player", seat.player, "slot", slot)
				}
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *Model) quit() {
	m.quitting = true
	m.quitOnce.Do(func() {
		if m.opts.Quit != nil {
			m.opts.Quit()
		}
	})
}

func (m *Model) refresh() {
	m.snap = m.opts.Board.Snapshot()
	if m.opts.Logs == nil {
		return
	}
	follow := m.logView.AtBottom()
	m.logView.SetContent(strings.Join(m.opts.Logs.Lines(), "\n"))
	if follow {
		m.logView.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderGrid(), "  ", m.renderScores()),
		m.renderHelp(),
	}
	if m.opts.Logs != nil && m.height > 0 {
		sections = append(sections, LogPaneStyle.Width(m.logView.Width).Render(m.logView.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render("SET")
	if m.over {
		return title + " " + WinnerStyle.Render("Game over")
	}
	return title + " " + m.renderCountdown()
}

func (m *Model) renderCountdown() string {
	if m.snap.Warn {
		return WarningStyle.Render(fmt.Sprintf("%.1fs", m.snap.Countdown.Seconds()))
	}
	secs := int((m.snap.Countdown + time.Second - 1) / time.Second)
	return CountdownStyle.Render(fmt.Sprintf("%ds", secs))
}

func (m *Model) renderGrid() string {
	var rows []string
	var row []string
	for slot := range m.snap.Cards {
		row = append(row, m.renderSlot(slot))
		if len(row) == gridColumns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	card := m.snap.Cards[slot]

	var tokens strings.Builder
	selected := false
	for player := range m.snap.Scores {
		if m.snap.HasToken(player, slot) {
			tokens.WriteString(tokenStyle(player).Render(strconv.Itoa(player + 1)))
			selected = true
		}
	}

	var box string
	switch {
	case card == game.NoCard:
		box = EmptyCardStyle.Render("·")
	case selected:
		box = SelectedCardStyle.Render(m.renderCard(card))
	default:
		box = CardStyle.Render(m.renderCard(card))
	}

	var hints []string
	for _, seat := range m.seats {
		if slot < len(seat.slots) {
			hints = append(hints, seat.slots[slot].Help().Key)
		}
	}
	hint := InfoStyle.Render(strings.Join(hints, "/"))

	return lipgloss.NewStyle().Width(12).Align(lipgloss.Center).Render(
		lipgloss.JoinVertical(lipgloss.Center, box, tokens.String(), hint))
}

var shapes = []string{"◆", "●", "■", "▲", "★"}

// renderCard draws a card from its features: colour, count, shape, shading
func (m *Model) renderCard(card int) string {
	if m.opts.Describe == nil {
		return strconv.Itoa(card)
	}
	f := m.opts.Describe.Features(card)
	if len(f) == 0 {
		return strconv.Itoa(card)
	}

	style := lipgloss.NewStyle().Foreground(featureColors[f[0]%len(featureColors)])
	count, shape := 1, shapes[0]
	if len(f) > 1 {
		count = f[1] + 1
	}
	if len(f) > 2 {
		shape = shapes[f[2]%len(shapes)]
	}
	if len(f) > 3 {
		switch f[3] % 3 {
		case 0:
			style = style.Bold(true)
		case 1:
			style = style.Faint(true)
		case 2:
			style = style.Underline(true)
		}
	}
	return style.Render(strings.Repeat(shape, count))
}

func (m *Model) renderScores() string {
	winners := make(map[int]bool, len(m.snap.Winners))
	for _, w := range m.snap.Winners {
		winners[w] = true
	}

	var b strings.Builder
	b.WriteString(InfoStyle.Render("Players"))
	b.WriteString("\n")
	for player, score := range m.snap.Scores {
		line := fmt.Sprintf("%s %-10s %3d", tokenStyle(player).Render(strconv.Itoa(player+1)), m.name(player), score)
		switch {
		case m.snap.Over && winners[player]:
			line = WinnerStyle.Render(line + "  winner")
		case player < len(m.snap.Frozen) && m.snap.Frozen[player] > 0:
			line = PlayerInfoStyle.Render(line) + FrozenStyle.Render(fmt.Sprintf("  frozen %ds", int(m.snap.Frozen[player].Round(time.Second)/time.Second)))
		default:
			line = PlayerInfoStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	if m.over {
		return InfoStyle.Render("Press any key to exit")
	}
	var parts []string
	for _, seat := range m.seats {
		var keys []string
		for _, binding := range seat.slots {
			keys = append(keys, binding.Help().Key)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", m.name(seat.player), strings.Join(keys, "")))
	}
	parts = append(parts, m.keys.Quit.Help().Key+" to quit")
	return InfoStyle.Render(strings.Join(parts, " • "))
}

func (m *Model) name(player int) string {
	if player >= 0 && player < len(m.opts.Names) {
		return m.opts.Names[player]
	}
	return fmt.Sprintf("player%d", player+1)
}
