package results

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSummary(t *testing.T) {
	t.Parallel()
	names := []string{"alice", "bob"}
	c := NewCollector()

	var wg sync.WaitGroup
	for i, outcome := range []struct {
		scores  []int
		winners []int
		err     error
	}{
		{[]int{5, 3}, []int{0}, nil},
		{[]int{4, 4}, []int{0, 1}, nil},
		{[]int{1, 0}, []int{0}, errors.New("dealer main loop panicked")},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(NewGame(i, int64(100+i), names, outcome.scores, outcome.winners, time.Second, outcome.err))
		}()
	}
	wg.Wait()

	s := c.Summary()
	require.Len(t, s.Games, 3)
	for i, g := range s.Games {
		assert.Equal(t, i, g.Index, "games are ordered by index")
	}
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, s.Wins)
	assert.Equal(t, map[string]int{"alice": 9, "bob": 7}, s.Points)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, []string{"alice", "bob"}, s.Games[1].Winners)
	assert.Equal(t, int64(1000), s.Games[0].DurationMS)
	assert.Contains(t, s.Games[2].Error, "panicked")
}

func TestWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	c := NewCollector()
	c.Add(NewGame(0, 7, []string{"a"}, []int{2}, []int{0}, 0, nil))
	require.NoError(t, Write(path, c.Summary()))

	// Overwrite to exercise the rename over an existing file
	c.Add(NewGame(1, 8, []string{"a"}, []int{1}, []int{0}, 0, nil))
	require.NoError(t, Write(path, c.Summary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.Games, 2)
	assert.Equal(t, 3, got.Points["a"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWriteInvalidDir(t *testing.T) {
	t.Parallel()
	err := Write("/nonexistent/dir/results.json", Summary{})
	require.Error(t, err)
}

func TestWriteCleansUpOnFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "results.json")
	require.NoError(t, os.Mkdir(target, 0o755))

	err := Write(target, Summary{})
	require.Error(t, err, "a file cannot replace a directory")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.json", entries[0].Name())
}
