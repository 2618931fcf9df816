package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailbox(t *testing.T) {
	t.Parallel()
	m := newMailbox[int]()

	assert.Empty(t, m.drain())

	for i := range 100 {
		m.push(i)
	}
	select {
	case <-m.ready():
	default:
		t.Fatal("mailbox was not signalled after push")
	}

	items := m.drain()
	assert.Len(t, items, 100)
	assert.Equal(t, 0, items[0])
	assert.Equal(t, 99, items[99])
	assert.Empty(t, m.drain())
}
