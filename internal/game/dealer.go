package game

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/setgame/internal/randutil"
)

var errAlreadyRun = errors.New("dealer has already run")

// featurer is implemented by evaluators that can describe a card, which makes
// hint output readable.
type featurer interface {
	Features(card int) []int
}

// Dealer owns the deck and the game lifecycle. Run drives everything from a
// single goroutine: dealing, the countdown, and the evaluation of submitted
// candidate sets one at a time in submission order.
type Dealer struct {
	cfg     Config
	table   *Table
	players []*Player
	eval    Evaluator
	display Display
	clock   quartz.Clock
	logger  *log.Logger
	rng     *rand.Rand

	deck      []int // dealer goroutine only
	claimed   int
	countdown *countdown

	submissions chan CandidateSet
	acceptMu    sync.RWMutex
	accepting   bool

	terminate     chan struct{}
	terminateOnce sync.Once
	done          chan struct{}
	ran           atomic.Bool

	mu      sync.Mutex
	winners []int
}

// NewDealer creates a dealer and its players. The table must have been built
// from the same config.
func NewDealer(cfg Config, table *Table, eval Evaluator, display Display, clock quartz.Clock, logger *log.Logger, rng *rand.Rand) (*Dealer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if table.Size() != cfg.TableSize {
		return nil, fmt.Errorf("table has %d slots, config wants %d", table.Size(), cfg.TableSize)
	}
	if display == nil {
		display = NopDisplay{}
	}

	d := &Dealer{
		cfg:         cfg,
		table:       table,
		eval:        eval,
		display:     display,
		clock:       clock,
		logger:      logger.WithPrefix("dealer"),
		rng:         rng,
		deck:        make([]int, cfg.DeckSize),
		countdown:   newCountdown(clock, cfg.TurnTimeout, cfg.TurnTimeoutWarning),
		submissions: make(chan CandidateSet, len(cfg.Players)),
		accepting:   true,
		terminate:   make(chan struct{}),
		done:        make(chan struct{}),
	}
	for i := range d.deck {
		d.deck[i] = i
	}
	d.players = make([]*Player, len(cfg.Players))
	for i, spec := range cfg.Players {
		d.players[i] = newPlayer(i, spec, cfg, table, d, display, clock, logger, randutil.New(rng.Int64()))
	}
	return d, nil
}

// Players returns the players in start order
func (d *Dealer) Players() []*Player {
	return slices.Clone(d.players)
}

// Player returns the player with the given id
func (d *Dealer) Player(id int) (*Player, bool) {
	if id < 0 || id >= len(d.players) {
		return nil, false
	}
	return d.players[id], true
}

// Table returns the shared table
func (d *Dealer) Table() *Table {
	return d.table
}

// Terminate asks the dealer to end the game. Run returns once every player
// has stopped.
func (d *Dealer) Terminate() {
	d.terminateOnce.Do(func() {
		d.logger.Info("Termination requested")
		close(d.terminate)
	})
}

// Done is closed when Run has returned
func (d *Dealer) Done() <-chan struct{} {
	return d.done
}

// Winners returns the ids of every player at the maximum score. It is empty
// until the game has ended.
func (d *Dealer) Winners() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.winners)
}

// Scores returns each player's score, indexed by player id
func (d *Dealer) Scores() []int {
	scores := make([]int, len(d.players))
	for i, p := range d.players {
		scores[i] = p.Score()
	}
	return scores
}

// Run plays the game until it is terminated or no legal combination is left
// among the deck and the table. Players are always shut down before Run
// returns, including when the main loop fails.
func (d *Dealer) Run(ctx context.Context) (err error) {
	if !d.ran.CompareAndSwap(false, true) {
		return errAlreadyRun
	}
	defer close(d.done)

	d.logger.Info("Dealer starting", "players", len(d.players), "deck", len(d.deck))
	for _, p := range d.players {
		p.Start(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dealer main loop panicked: %v", r)
		}
		if err != nil {
			d.logger.Error("Dealer failed, shutting down players", "error", err)
		}
		if shutdownErr := d.shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
	}()

	for !d.shouldFinish(ctx) {
		if err := d.placeCardsOnTable(ctx); err != nil {
			return err
		}
		d.updateTimerDisplay(true)
		if err := d.timerLoop(ctx); err != nil {
			return err
		}
		if d.terminated(ctx) {
			// shutdown clears the table once the players are stopped
			break
		}
		d.updateTimerDisplay(true)
		d.removeAllCardsFromTable()
	}
	return nil
}

// submit queues a candidate set for evaluation. The queue holds one entry per
// player and each player has at most one set in flight, so it never fills.
func (d *Dealer) submit(ctx context.Context, set CandidateSet) error {
	d.acceptMu.RLock()
	defer d.acceptMu.RUnlock()
	if !d.accepting {
		return ErrNotAccepting
	}
	select {
	case d.submissions <- set:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dealer) timerLoop(ctx context.Context) error {
	for !d.terminated(ctx) && !d.countdown.expired() {
		set, ok := d.waitForSubmission(ctx)
		d.updateTimerDisplay(false)
		if ok && d.evaluate(set) == Approved && !d.legalCombinationExists() {
			d.logger.Info("No legal combination left, ending round")
			return nil
		}
		if err := d.placeCardsOnTable(ctx); err != nil {
			return err
		}
	}
	return nil
}

// waitForSubmission blocks until a set arrives, the next countdown refresh
// is due, or the game is terminated.
func (d *Dealer) waitForSubmission(ctx context.Context) (CandidateSet, bool) {
	timer := d.clock.NewTimer(d.countdown.nextWait(), "dealer", "wait")
	defer timer.Stop()

	select {
	case set := <-d.submissions:
		return set, true
	case <-timer.C:
	case <-d.terminate:
	case <-ctx.Done():
	}
	return CandidateSet{}, false
}

// evaluate rules on one candidate set and delivers the verdict to its owner
func (d *Dealer) evaluate(set CandidateSet) Verdict {
	player, ok := d.Player(set.Player)
	if !ok {
		d.logger.Error("Candidate set from unknown player", "player", set.Player)
		return Discarded
	}
	logger := d.logger.With("player", player.Name(), "slots", set.Slots)

	if len(set.Slots) != d.cfg.SelectionSize || len(set.Cards) != len(set.Slots) {
		logger.Warn("Malformed candidate set", "cards", set.Cards)
		player.deliver(Discarded)
		return Discarded
	}

	for i, slot := range set.Slots {
		if card, ok := d.table.CardAt(slot); !ok || card != set.Cards[i] {
			logger.Debug("Candidate set is stale, discarding", "slot", slot, "want", set.Cards[i], "have", card)
			player.deliver(Discarded)
			return Discarded
		}
	}

	if !d.eval.TestSet(set.Cards) {
		logger.Debug("Rejected candidate set", "cards", set.Cards)
		player.deliver(Rejected)
		return Rejected
	}

	for _, slot := range set.Slots {
		if _, ok := d.removeCardAndTokens(slot); ok {
			d.claimed++
		}
	}
	score := player.award()
	logger.Info("Approved candidate set", "cards", set.Cards, "score", score)
	player.deliver(Approved)
	d.updateTimerDisplay(true)
	return Approved
}

// placeCardsOnTable fills empty slots from the shuffled deck
func (d *Dealer) placeCardsOnTable(ctx context.Context) error {
	empty := d.table.EmptySlots()
	if len(empty) == 0 || len(d.deck) == 0 {
		return nil
	}

	d.rng.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})

	placed := 0
	for _, slot := range empty {
		if len(d.deck) == 0 || d.terminated(ctx) {
			break
		}
		card := d.deck[len(d.deck)-1]
		if err := d.table.PlaceCard(card, slot); err != nil {
			return fmt.Errorf("deal card %d: %w", card, err)
		}
		d.deck = d.deck[:len(d.deck)-1]
		placed++
	}

	d.logger.Debug("Dealt cards", "placed", placed, "deck", len(d.deck))
	if placed > 0 && d.cfg.Hints {
		d.logHints()
	}
	return nil
}

// removeAllCardsFromTable returns every table card to the deck
func (d *Dealer) removeAllCardsFromTable() {
	for slot := range d.table.Size() {
		if card, ok := d.removeCardAndTokens(slot); ok {
			d.deck = append(d.deck, card)
		}
	}
}

// removeCardAndTokens empties slot and tells every player who had a token
// there, so their own bookkeeping follows.
func (d *Dealer) removeCardAndTokens(slot int) (int, bool) {
	card, cleared, ok := d.table.RemoveCard(slot)
	for _, id := range cleared {
		d.players[id].tokenRemoved(slot)
	}
	return card, ok
}

func (d *Dealer) updateTimerDisplay(reset bool) {
	if reset {
		d.countdown.reset()
	}
	d.display.SetCountdown(d.countdown.remaining(), d.countdown.warn())
}

func (d *Dealer) shouldFinish(ctx context.Context) bool {
	return d.terminated(ctx) || !d.legalCombinationExists()
}

func (d *Dealer) legalCombinationExists() bool {
	cards := append(slices.Clone(d.deck), d.table.Cards()...)
	return len(d.eval.FindSets(cards, 1)) > 0
}

func (d *Dealer) terminated(ctx context.Context) bool {
	select {
	case <-d.terminate:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// shutdown stops intake, stops players newest first, clears the table and
// announces the winners.
func (d *Dealer) shutdown(ctx context.Context) error {
	d.acceptMu.Lock()
	d.accepting = false
	d.acceptMu.Unlock()

	var errs []error
	for i := len(d.players) - 1; i >= 0; i-- {
		p := d.players[i]
		if err := p.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminate player %s: %w", p.Name(), err))
		}
	}

drain:
	for {
		select {
		case set := <-d.submissions:
			d.logger.Debug("Discarding submission received during shutdown", "player", set.Player)
			d.players[set.Player].deliver(Discarded)
		default:
			break drain
		}
	}

	d.removeAllCardsFromTable()
	d.announceWinners()
	d.logger.Info("Dealer finished", "deck", len(d.deck), "claimed", d.claimed)

	if d.cfg.EndGamePause > 0 {
		timer := d.clock.NewTimer(d.cfg.EndGamePause, "dealer", "pause")
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return errors.Join(errs...)
}

func (d *Dealer) announceWinners() {
	best := 0
	for _, p := range d.players {
		best = max(best, p.Score())
	}
	var winners []int
	var names []string
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.ID())
			names = append(names, p.Name())
		}
	}

	d.mu.Lock()
	d.winners = winners
	d.mu.Unlock()

	d.display.AnnounceWinners(slices.Clone(winners))
	d.logger.Info("Game over", "winners", names, "score", best)
}

func (d *Dealer) logHints() {
	describe, _ := d.eval.(featurer)
	for _, slots := range d.table.Hints(d.eval) {
		if describe == nil {
			d.logger.Info("Hint: set found", "slots", slots)
			continue
		}
		features := make([][]int, 0, len(slots))
		for _, slot := range slots {
			if card, ok := d.table.CardAt(slot); ok {
				features = append(features, describe.Features(card))
			}
		}
		d.logger.Info("Hint: set found", "slots", slots, "features", features)
	}
}
