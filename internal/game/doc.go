// Package game implements a real-time card matching game played by several
// concurrent actors against a shared table.
//
// Three components cooperate:
//   - Table: the grid of slots. Each slot has its own mutex guarding the card
//     in it and every player's token bit for it, so mutations of different
//     slots never contend.
//   - Player: one goroutine consuming slot-toggle intents. Automated players
//     run a second goroutine that generates intents into a bounded channel.
//     When a player holds K tokens it submits a CandidateSet and blocks until
//     the dealer answers.
//   - Dealer: owns the deck, deals, runs the countdown, evaluates submissions
//     one at a time in arrival order and shuts everything down in order.
//
// # Basic Usage
//
//	table := game.NewTable(cfg, display, clock, logger)
//	dealer, err := game.NewDealer(cfg, table, evaluator, display, clock, logger, rng)
//	if err != nil {
//		return err
//	}
//	err = dealer.Run(ctx)
//	winners := dealer.Winners()
//
// Cancelling ctx or calling Dealer.Terminate ends the session. Run returns
// only after every player goroutine has exited.
//
// # Deterministic Testing
//
// All waits go through a quartz.Clock and all randomness through an injected
// *rand.Rand, so tests can use quartz.NewMock and fixed seeds.
package game
