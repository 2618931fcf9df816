package game

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// ErrNotAccepting is returned to a player submitting after the dealer stopped
// taking submissions.
var ErrNotAccepting = errors.New("dealer is not accepting submissions")

// freezeStep is how often a frozen player's remaining time is redisplayed
const freezeStep = time.Second

type submitter interface {
	submit(ctx context.Context, set CandidateSet) error
}

// Player is one participant. Its actor goroutine is the only writer of its
// held-token bookkeeping; other goroutines reach it through the intent
// channel, the verdict channel and the removal mailbox.
type Player struct {
	id      int
	name    string
	role    Role
	cfg     Config
	table   *Table
	dealer  submitter
	display Display
	clock   quartz.Clock
	logger  *log.Logger
	rng     *rand.Rand // generator goroutine only

	intents  chan int
	verdicts chan Verdict
	removals *mailbox[int]

	held    []int // actor goroutine only
	holding atomic.Int32
	score   atomic.Int64
	state   atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func newPlayer(id int, spec PlayerSpec, cfg Config, table *Table, dealer submitter, display Display, clock quartz.Clock, logger *log.Logger, rng *rand.Rand) *Player {
	if display == nil {
		display = NopDisplay{}
	}
	return &Player{
		id:       id,
		name:     spec.Name,
		role:     spec.Role,
		cfg:      cfg,
		table:    table,
		dealer:   dealer,
		display:  display,
		clock:    clock,
		logger:   logger.WithPrefix("player").With("player", spec.Name, "id", id),
		rng:      rng,
		intents:  make(chan int, cfg.MaxPendingIntents),
		verdicts: make(chan Verdict, 1),
		removals: newMailbox[int](),
		held:     make([]int, 0, cfg.SelectionSize),
	}
}

func (p *Player) ID() int { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) Role() Role { return p.role }
func (p *Player) Score() int { return int(p.score.Load()) }
func (p *Player) State() State { return State(p.state.Load()) }
func (p *Player) Holding() int { return int(p.holding.Load()) }
func (p *Player) Pending() int { return len(p.intents) }

// Start launches the actor goroutine, and the intent generator for
// automated players.
func (p *Player) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.group != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)
	p.group.Go(func() error { return p.run(ctx) })
	if p.role == Automated {
		p.group.Go(func() error { return p.generate(ctx) })
	}
	p.logger.Debug("Player started", "role", p.role)
}

// Terminate interrupts the player's goroutines and waits for all of them to
// exit. It is safe to call more than once.
func (p *Player) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Store(int32(Terminated))
	if p.group == nil {
		return nil
	}
	p.cancel()
	err := p.group.Wait()
	p.logger.Debug("Player terminated", "score", p.Score())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// KeyPressed queues a slot toggle from an input source. It never blocks: the
// press is dropped while the player is frozen or when the queue is full.
func (p *Player) KeyPressed(slot int) bool {
	if p.State() != Active {
		return false
	}
	select {
	case p.intents <- slot:
		return true
	default:
		p.logger.Debug("Intent queue full, dropping key press", "slot", slot)
		return false
	}
}

// deliver hands a verdict to the player without blocking the dealer. A player
// has at most one submission in flight, so the buffer always has room.
func (p *Player) deliver(v Verdict) {
	select {
	case p.verdicts <- v:
	default:
		p.logger.Warn("Dropping verdict, previous one not consumed", "verdict", v)
	}
}

// award adds a point. The dealer calls it before delivering Approved, so the
// point counts even if the player is terminated before reading the verdict.
func (p *Player) award() int {
	score := int(p.score.Add(1))
	p.display.SetScore(p.id, score)
	return score
}

// tokenRemoved tells the actor the dealer cleared its token on slot
func (p *Player) tokenRemoved(slot int) {
	p.removals.push(slot)
}

func (p *Player) run(ctx context.Context) error {
	for {
		p.applyRemovals()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.removals.ready():
		case slot := <-p.intents:
			if err := p.toggle(ctx, slot); err != nil {
				return err
			}
		}
	}
}

func (p *Player) toggle(ctx context.Context, slot int) error {
	if p.table.PlayerHasToken(p.id, slot) {
		p.table.RemoveToken(p.id, slot)
		p.forget(slot)
		return nil
	}

	if len(p.held) >= p.cfg.SelectionSize {
		p.reconcile()
		if len(p.held) >= p.cfg.SelectionSize {
			return nil
		}
	}

	if !p.table.PlaceToken(p.id, slot) {
		p.logger.Debug("Cannot place token on empty slot", "slot", slot)
		p.forget(slot)
		return nil
	}
	p.remember(slot)

	if len(p.held) < p.cfg.SelectionSize {
		return nil
	}
	p.reconcile()
	if len(p.held) < p.cfg.SelectionSize {
		return nil
	}
	return p.claim(ctx)
}

// claim submits the held tokens and blocks until the dealer rules on them.
// No intents are consumed meanwhile.
func (p *Player) claim(ctx context.Context) error {
	slots := slices.Clone(p.held)
	slices.Sort(slots)
	cards := make([]int, len(slots))
	for i, slot := range slots {
		card, ok := p.table.CardAt(slot)
		if !ok {
			p.reconcile()
			return nil
		}
		cards[i] = card
	}

	set := newCandidateSet(p.id, slots, cards)
	if err := p.dealer.submit(ctx, set); err != nil {
		if errors.Is(err, ErrNotAccepting) {
			p.logger.Debug("Dealer closed, abandoning selection", "slots", slots)
			p.clearTokens()
			return nil
		}
		return err
	}
	p.logger.Debug("Submitted candidate set", "slots", slots, "cards", cards)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case v := <-p.verdicts:
		return p.handleVerdict(ctx, v)
	}
}

func (p *Player) handleVerdict(ctx context.Context, v Verdict) error {
	p.logger.Debug("Received verdict", "verdict", v)

	var err error
	switch v {
	case Approved:
		err = p.freeze(ctx, p.cfg.PointFreeze)
	case Rejected:
		err = p.freeze(ctx, p.cfg.PenaltyFreeze)
	case Discarded:
	}
	p.clearTokens()
	return err
}

func (p *Player) freeze(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	p.state.CompareAndSwap(int32(Active), int32(Frozen))
	defer func() {
		p.state.CompareAndSwap(int32(Frozen), int32(Active))
		p.display.SetFreeze(p.id, 0)
	}()

	deadline := p.clock.Now("player", "freeze").Add(d)
	for {
		remaining := deadline.Sub(p.clock.Now("player", "freeze"))
		if remaining <= 0 {
			return nil
		}
		p.display.SetFreeze(p.id, remaining)

		timer := p.clock.NewTimer(min(remaining, freezeStep), "player", "freeze")
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// generate feeds random slot toggles into the intent channel. The channel is
// bounded, so a backlog blocks the generator instead of growing.
func (p *Player) generate(ctx context.Context) error {
	for {
		slot := p.rng.IntN(p.table.Size())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p.intents <- slot:
		}

		if p.cfg.AIThrottle <= 0 {
			continue
		}
		timer := p.clock.NewTimer(p.cfg.AIThrottle, "player", "throttle")
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Player) applyRemovals() {
	for _, slot := range p.removals.drain() {
		// The token may have been placed again on a fresh card since.
		if !p.table.PlayerHasToken(p.id, slot) {
			p.forget(slot)
		}
	}
}

// reconcile drops held slots whose token the table no longer shows
func (p *Player) reconcile() {
	p.held = slices.DeleteFunc(p.held, func(slot int) bool {
		return !p.table.PlayerHasToken(p.id, slot)
	})
	p.holding.Store(int32(len(p.held)))
}

func (p *Player) clearTokens() {
	for _, slot := range p.held {
		p.table.RemoveToken(p.id, slot)
	}
	p.held = p.held[:0]
	p.holding.Store(0)
}

func (p *Player) remember(slot int) {
	if !slices.Contains(p.held, slot) {
		p.held = append(p.held, slot)
	}
	p.holding.Store(int32(len(p.held)))
}

func (p *Player) forget(slot int) {
	p.held = slices.DeleteFunc(p.held, func(s int) bool { return s == slot })
	p.holding.Store(int32(len(p.held)))
}
