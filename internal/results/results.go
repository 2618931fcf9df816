// Package results aggregates the outcome of simulated games and writes them
// out as JSON.
package results

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Game is the outcome of one session
type Game struct {
	Index      int      `json:"index"`
	Seed       int64    `json:"seed"`
	Players    []string `json:"players"`
	Scores     []int    `json:"scores"`
	Winners    []string `json:"winners"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// Summary is the report for a batch of games
type Summary struct {
	Games  []Game         `json:"games"`
	Wins   map[string]int `json:"wins"`   // ties credit every winner
	Points map[string]int `json:"points"` // approved sets across all games
	Failed int            `json:"failed"`
}

// Collector gathers games from concurrent sessions
type Collector struct {
	mu    sync.Mutex
	games []Game
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add records one finished game
func (c *Collector) Add(g Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = append(c.games, g)
}

// NewGame builds a game record from a finished session
func NewGame(index int, seed int64, names []string, scores, winners []int, elapsed time.Duration, err error) Game {
	g := Game{
		Index:      index,
		Seed:       seed,
		Players:    slices.Clone(names),
		Scores:     slices.Clone(scores),
		Winners:    make([]string, 0, len(winners)),
		DurationMS: elapsed.Milliseconds(),
	}
	for _, w := range winners {
		if w >= 0 && w < len(names) {
			g.Winners = append(g.Winners, names[w])
		}
	}
	if err != nil {
		g.Error = err.Error()
	}
	return g
}

// Summary totals everything collected so far, with games in index order
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	games := slices.Clone(c.games)
	c.mu.Unlock()

	slices.SortFunc(games, func(a, b Game) int { return a.Index - b.Index })
	s := Summary{
		Games:  games,
		Wins:   make(map[string]int),
		Points: make(map[string]int),
	}
	for _, g := range games {
		if g.Error != "" {
			s.Failed++
			continue
		}
		for _, w := range g.Winners {
			s.Wins[w]++
		}
		for i, score := range g.Scores {
			if i < len(g.Players) {
				s.Points[g.Players[i]] += score
			}
		}
	}
	return s
}

// Write stores the summary at path as indented JSON, replacing any previous
// file atomically.
func Write(path string, s Summary) error {
	if err := writeJSONAtomic(path, s, 0o644); err != nil {
		return fmt.Errorf("write results %s: %w", path, err)
	}
	return nil
}
