package game

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// testConfig returns a config with n human players and no artificial delays
func testConfig(n int) Config {
	cfg := DefaultConfig(n)
	for i := range cfg.Players {
		cfg.Players[i].Role = Human
	}
	cfg.TableDelay = 0
	cfg.PointFreeze = 0
	cfg.PenaltyFreeze = 0
	cfg.EndGamePause = 0
	cfg.AIThrottle = 0
	return cfg
}

func waitForCondition(t *testing.T, condition func() bool, timeout time.Duration, errMsg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(errMsg)
}

// fakeEvaluator answers TestSet with a fixed verdict and pretends a legal
// combination exists whenever enough cards remain.
type fakeEvaluator struct {
	mu        sync.Mutex
	legal     bool
	exhausted bool
	gate      chan struct{} // when set, the first TestSet blocks on it
	panics    bool
	tested    [][]int
}

func (f *fakeEvaluator) TestSet(cards []int) bool {
	f.mu.Lock()
	f.tested = append(f.tested, slices.Clone(cards))
	first := len(f.tested) == 1
	gate, legal, panics := f.gate, f.legal, f.panics
	f.mu.Unlock()

	if panics {
		panic("evaluator exploded")
	}
	if first && gate != nil {
		<-gate
	}
	return legal
}

func (f *fakeEvaluator) FindSets(cards []int, limit int) [][]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exhausted || len(cards) < 3 || limit < 1 {
		return nil
	}
	return [][]int{slices.Clone(cards[:3])}
}

func (f *fakeEvaluator) calls() [][]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tested)
}

// recordingDisplay counts notifications and keeps the announced winners
type recordingDisplay struct {
	mu       sync.Mutex
	placed   int
	removed  int
	scores   map[int]int
	winners  []int
	announce int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{scores: make(map[int]int)}
}

func (r *recordingDisplay) PlaceCard(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed++
}

func (r *recordingDisplay) RemoveCard(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed++
}

func (r *recordingDisplay) PlaceToken(int, int) {}
func (r *recordingDisplay) RemoveToken(int, int) {}
func (r *recordingDisplay) SetFreeze(int, time.Duration) {}
func (r *recordingDisplay) SetCountdown(time.Duration, bool) {}

func (r *recordingDisplay) SetScore(player, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[player] = score
}

func (r *recordingDisplay) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = slices.Clone(players)
	r.announce++
}

func (r *recordingDisplay) counts() (placed, removed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.placed, r.removed
}

// fakeDealer collects submissions without ruling on them
type fakeDealer struct {
	sets   chan CandidateSet
	closed bool
}

func newFakeDealer() *fakeDealer {
	return &fakeDealer{sets: make(chan CandidateSet, 16)}
}

func (f *fakeDealer) submit(ctx context.Context, set CandidateSet) error {
	if f.closed {
		return ErrNotAccepting
	}
	select {
	case f.sets <- set:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeDealer) next(t *testing.T) CandidateSet {
	t.Helper()
	select {
	case set := <-f.sets:
		return set
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a submission")
		return CandidateSet{}
	}
}

// fullTable returns a table whose slot i holds card i
func fullTable(t *testing.T, cfg Config) *Table {
	t.Helper()
	table := NewTable(cfg, nil, quartz.NewReal(), testLogger())
	for slot := range cfg.TableSize {
		require.NoError(t, table.PlaceCard(slot, slot))
	}
	return table
}

// startTestPlayer starts a player against table and a fake dealer
func startTestPlayer(t *testing.T, cfg Config, table *Table, id int) (*Player, *fakeDealer) {
	t.Helper()
	dealer := newFakeDealer()
	p := newPlayer(id, cfg.Players[id], cfg, table, dealer, nil, quartz.NewReal(), testLogger(), randutil.New(int64(id+1)))
	p.Start(context.Background())
	t.Cleanup(func() {
		require.NoError(t, p.Terminate())
	})
	return p, dealer
}

// assertBijection checks slot->card and card->slot agree everywhere
func assertBijection(t *testing.T, table *Table, deckSize int) {
	t.Helper()
	for slot := range table.Size() {
		if card, ok := table.CardAt(slot); ok {
			got, found := table.SlotOf(card)
			require.True(t, found, "card %d in slot %d has no reverse mapping", card, slot)
			require.Equal(t, slot, got)
		}
	}
	for card := range deckSize {
		if slot, ok := table.SlotOf(card); ok {
			got, found := table.CardAt(slot)
			require.True(t, found, "card %d maps to empty slot %d", card, slot)
			require.Equal(t, card, got)
		}
	}
}
