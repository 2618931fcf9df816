package game

import (
	"time"

	"github.com/coder/quartz"
)

const (
	countdownStep        = time.Second
	countdownWarningStep = 10 * time.Millisecond
)

// countdown tracks the reshuffle deadline. Only the dealer goroutine uses it.
type countdown struct {
	clock    quartz.Clock
	timeout  time.Duration
	warning  time.Duration
	deadline time.Time
}

func newCountdown(clock quartz.Clock, timeout, warning time.Duration) *countdown {
	c := &countdown{clock: clock, timeout: timeout, warning: warning}
	c.reset()
	return c
}

func (c *countdown) reset() {
	c.deadline = c.clock.Now("dealer", "countdown").Add(c.timeout)
}

func (c *countdown) remaining() time.Duration {
	return max(c.deadline.Sub(c.clock.Now("dealer", "countdown")), 0)
}

func (c *countdown) expired() bool {
	return c.remaining() == 0
}

func (c *countdown) warn() bool {
	return c.remaining() <= c.warning
}

// nextWait is how long the dealer may block before it has to refresh the
// countdown display. Inside the warning window the display shows fractions
// of a second, so the step shrinks.
func (c *countdown) nextWait() time.Duration {
	remaining := c.remaining()
	step := countdownStep
	if remaining <= c.warning {
		step = countdownWarningStep
	}
	return min(remaining, step)
}
