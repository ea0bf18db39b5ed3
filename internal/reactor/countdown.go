package reactor

import "time"

// Countdown fires a tick every interval until total elapses, then finishes.
// Tick n receives the time left after n intervals, so a 10s countdown with
// 1s ticks reports 9s, 8s, ... 0s and then calls the finish callback.
//
// A Countdown is driven entirely by tasks on its Loop; StartCountdown and
// Stop must be called from loop tasks as well.
type Countdown struct {
	// loop runs the tick and finish callbacks.
	loop *Loop
	// total is the countdown length.
	total time.Duration
	// interval is the tick granularity.
	interval time.Duration
	// onTick receives the remaining time on every tick.
	onTick func(remaining time.Duration)
	// onFinish runs once after the last tick.
	onFinish func()

	// startedAt anchors tick deadlines so they do not drift.
	startedAt time.Time
	// elapsed is the countdown time covered by ticks so far.
	elapsed time.Duration
	// ticks counts fired ticks.
	ticks int
	// timer is the pending tick timer.
	timer *time.Timer
	// stopped is set by Stop and by finishing.
	stopped bool
}

// StartCountdown schedules the first tick one interval from now.
func StartCountdown(
	loop *Loop,
	total, interval time.Duration,
	onTick func(remaining time.Duration),
	onFinish func(),
) *Countdown {
	c := &Countdown{
		loop:      loop,
		total:     total,
		interval:  interval,
		onTick:    onTick,
		onFinish:  onFinish,
		startedAt: time.Now(),
	}

	c.schedule()

	return c
}

// Stop cancels pending ticks; the finish callback will not run.
func (c *Countdown) Stop() {
	c.stopped = true

	if c.timer != nil {
		c.timer.Stop()
	}
}

// Ticks returns the number of ticks fired so far.
func (c *Countdown) Ticks() int {
	return c.ticks
}

// Finished reports whether the countdown ran to completion or was stopped.
func (c *Countdown) Finished() bool {
	return c.stopped
}

// schedule arms the timer for the next tick.
func (c *Countdown) schedule() {
	step := min(c.interval, c.total-c.elapsed)
	c.elapsed += step

	deadline := c.startedAt.Add(c.elapsed)
	c.timer = c.loop.AfterFunc(time.Until(deadline), c.tick)
}

// tick runs on the loop.
func (c *Countdown) tick() {
	if c.stopped {
		return
	}

	c.ticks++

	remaining := c.total - c.elapsed
	if c.onTick != nil {
		c.onTick(remaining)
	}

	if c.stopped {
		return
	}

	if remaining > 0 {
		c.schedule()

		return
	}

	c.stopped = true

	if c.onFinish != nil {
		c.onFinish()
	}
}
