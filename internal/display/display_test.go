package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/internal/game"
)

func TestBoard(t *testing.T) {
	t.Parallel()
	b := NewBoard(4, 2)

	initial := b.Snapshot()
	assert.Equal(t, []int{game.NoCard, game.NoCard, game.NoCard, game.NoCard}, initial.Cards)
	assert.Equal(t, []int{0, 0}, initial.Scores)
	assert.False(t, initial.Over)

	b.PlaceCard(17, 2)
	b.PlaceToken(1, 2)
	b.PlaceToken(0, 2)
	b.SetScore(1, 3)
	b.SetFreeze(0, 2*time.Second)
	b.SetCountdown(4*time.Second, true)

	s := b.Snapshot()
	assert.Equal(t, 17, s.Cards[2])
	assert.True(t, s.HasToken(1, 2))
	assert.True(t, s.HasToken(0, 2))
	assert.False(t, s.HasToken(0, 1))
	assert.False(t, s.HasToken(5, 9), "out of range is never a token")
	assert.Equal(t, 3, s.Scores[1])
	assert.Equal(t, 2*time.Second, s.Frozen[0])
	assert.Equal(t, 4*time.Second, s.Countdown)
	assert.True(t, s.Warn)
	assert.Greater(t, s.Version, initial.Version)

	t.Run("snapshots are copies", func(t *testing.T) {
		s.Cards[2] = 99
		s.Tokens[2][0] = false
		again := b.Snapshot()
		assert.Equal(t, 17, again.Cards[2])
		assert.True(t, again.HasToken(0, 2))
	})

	t.Run("removing a card clears its tokens", func(t *testing.T) {
		b.RemoveCard(2)
		s := b.Snapshot()
		assert.Equal(t, game.NoCard, s.Cards[2])
		assert.False(t, s.HasToken(0, 2))
		assert.False(t, s.HasToken(1, 2))
	})

	t.Run("winners end the game", func(t *testing.T) {
		b.AnnounceWinners([]int{1})
		s := b.Snapshot()
		assert.True(t, s.Over)
		assert.Equal(t, []int{1}, s.Winners)
	})

	t.Run("out of range updates are ignored", func(t *testing.T) {
		before := b.Snapshot()
		b.PlaceCard(1, 40)
		b.SetScore(-1, 5)
		after := b.Snapshot()
		assert.Equal(t, before.Cards, after.Cards)
		assert.Equal(t, before.Scores, after.Scores)
	})
}

func TestMulti(t *testing.T) {
	t.Parallel()
	a, b := NewBoard(3, 1), NewBoard(3, 1)
	m := NewMulti(a, nil, b)
	require.Len(t, m, 2)

	m.PlaceCard(5, 0)
	m.PlaceToken(0, 0)
	m.SetScore(0, 1)
	m.AnnounceWinners([]int{0})

	for _, board := range []*Board{a, b} {
		s := board.Snapshot()
		assert.Equal(t, 5, s.Cards[0])
		assert.True(t, s.HasToken(0, 0))
		assert.Equal(t, 1, s.Scores[0])
		assert.True(t, s.Over)
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	l := NewLogger(logger, []string{"alice", "bob"})

	l.PlaceCard(3, 1)
	l.SetScore(1, 2)
	l.AnnounceWinners([]int{0, 7})

	out := buf.String()
	assert.NotContains(t, out, "Card placed", "movement is debug only")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "player7")
}
