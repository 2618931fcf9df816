package tui

import (
	"slices"
	"strings"
	"sync"
)

// LogBuffer is an io.Writer that keeps the most recent log lines so the TUI
// can show them instead of writing to the terminal underneath it.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// NewLogBuffer keeps up to limit lines
func NewLogBuffer(limit int) *LogBuffer {
	return &LogBuffer{limit: limit}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, strings.Split(strings.TrimRight(string(p), "\n"), "\n")...)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = slices.Delete(b.lines, 0, over)
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.lines)
}
