package reactor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
	"github.com/oshokin/proximity-alarm/internal/sensor"
	"github.com/oshokin/proximity-alarm/internal/sound"
)

// Policy decides what a new near sample does to sequences still running.
type Policy uint8

const (
	// PolicyOverlap lets every sequence run to completion independently.
	PolicyOverlap Policy = iota
	// PolicyLatest cancels the running sequence when a new one starts.
	PolicyLatest
)

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("unknown alarm policy")

// ParsePolicy converts a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overlap":
		return PolicyOverlap, nil
	case "latest":
		return PolicyLatest, nil
	default:
		return PolicyOverlap, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// String returns the config name of the policy.
func (p Policy) String() string {
	if p == PolicyLatest {
		return "latest"
	}

	return "overlap"
}

const (
	// DefaultDuration is the countdown length and the alarm delay.
	DefaultDuration = 10 * time.Second
	// DefaultTick is the countdown granularity.
	DefaultTick = time.Second
)

// Options tunes the reactor.
type Options struct {
	// Duration is the countdown length and the delay of the alarm action.
	Duration time.Duration
	// Tick is the countdown granularity.
	Tick time.Duration
	// Rate is the sampling-rate hint passed to the sensor.
	Rate sensor.Rate
	// Policy governs overlapping sequences.
	Policy Policy
}

// Status is a point-in-time view of the reactor.
type Status struct {
	// Active reports whether the sensor is subscribed.
	Active bool
	// Pending counts alarm sequences that have not completed yet.
	Pending int
	// Started counts alarm sequences started since creation.
	Started uint64
}

// Reactor turns proximity samples into display changes and alarms.
type Reactor struct {
	// ctx carries the logger for callbacks and bounds sound playback.
	ctx context.Context //nolint:containedctx // Callbacks outlive the calls that schedule them.
	// loop runs every display mutation.
	loop *Loop
	// source delivers samples while active.
	source sensor.Source
	// display receives label and image changes.
	display display.Sink
	// player plays the notification sound.
	player sound.Player
	// opts holds timings and the overlap policy.
	opts Options

	// lifecycle serialises Activate and Deactivate.
	lifecycle sync.Mutex

	// The fields below are owned by the loop.

	// active reports whether samples are accepted.
	active bool
	// subscription identifies the current subscription; queued samples
	// from an older one are dropped.
	subscription uint64
	// generation is bumped when PolicyLatest supersedes sequences.
	generation uint64
	// started counts sequences and provides their ids.
	started uint64
	// sequences holds the sequences that have not completed.
	sequences map[uint64]*sequence
}

// sequence is one alarm triggered by a near sample.
type sequence struct {
	// id is the ordinal of the sequence.
	id uint64
	// generation is the reactor generation at start.
	generation uint64
	// startedAt is when the near sample was handled.
	startedAt time.Time
	// countdown drives the label.
	countdown *Countdown
	// alarm is the delayed action timer.
	alarm *time.Timer
	// countdownDone and alarmDone track the two timelines.
	countdownDone, alarmDone bool
}

// New creates an inactive reactor. Zero options take the defaults.
func New(
	ctx context.Context,
	loop *Loop,
	source sensor.Source,
	sink display.Sink,
	player sound.Player,
	opts Options,
) *Reactor {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}

	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}

	if player == nil {
		player = sound.Nop{}
	}

	return &Reactor{
		ctx:       ctx,
		loop:      loop,
		source:    source,
		display:   sink,
		player:    player,
		opts:      opts,
		sequences: make(map[uint64]*sequence),
	}
}

// Activate subscribes to the sensor. Calling it while active does nothing.
func (r *Reactor) Activate(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	var (
		already bool
		token   uint64
	)

	err := r.loop.Do(ctx, func() {
		if r.active {
			already = true

			return
		}

		r.active = true
		r.subscription++
		token = r.subscription
	})
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	if already {
		return nil
	}

	handler := func(sample proximity.Sample) {
		r.loop.Post(func() {
			if !r.active || r.subscription != token {
				return
			}

			r.onSample(sample)
		})
	}

	if err = r.source.Subscribe(r.ctx, r.opts.Rate, handler); err != nil {
		_ = r.loop.Do(ctx, func() {
			if r.subscription == token {
				r.active = false
			}
		})

		return fmt.Errorf("subscribe to proximity sensor: %w", err)
	}

	logger.InfoKV(r.ctx, "Reactor activated", "rate", r.opts.Rate.String(), "policy", r.opts.Policy.String())

	return nil
}

// Deactivate unsubscribes from the sensor. Samples still queued on the loop
// are discarded, so no sample is handled after it returns. Running alarm
// sequences are left alone.
func (r *Reactor) Deactivate(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	var wasActive bool

	err := r.loop.Do(ctx, func() {
		wasActive = r.active
		r.active = false
		r.subscription++
	})
	if err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}

	if !wasActive {
		return nil
	}

	if err = r.source.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribe from proximity sensor: %w", err)
	}

	logger.Info(r.ctx, "Reactor deactivated")

	return nil
}

// Status reports the lifecycle state and the number of pending sequences.
func (r *Reactor) Status(ctx context.Context) (Status, error) {
	var status Status

	err := r.loop.Do(ctx, func() {
		status = Status{
			Active:  r.active,
			Pending: len(r.sequences),
			Started: r.started,
		}
	})

	return status, err
}

// onSample runs on the loop for every accepted sample.
func (r *Reactor) onSample(sample proximity.Sample) {
	logger.DebugKV(r.ctx, "Proximity sample", "distance", sample.Distance().String(), "raw", sample.Raw)

	if !sample.Near() {
		r.display.SetImage(proximity.ImageNaruto)

		return
	}

	r.startSequence()
}

// startSequence begins the countdown and schedules the delayed alarm.
func (r *Reactor) startSequence() {
	if r.opts.Policy == PolicyLatest {
		r.supersede()
	}

	r.started++

	seq := &sequence{
		id:         r.started,
		generation: r.generation,
		startedAt:  time.Now(),
	}
	r.sequences[seq.id] = seq

	seq.countdown = StartCountdown(r.loop, r.opts.Duration, r.opts.Tick,
		func(remaining time.Duration) {
			if r.current(seq) {
				r.display.SetText(proximity.CountdownText(remaining))
			}
		},
		func() {
			if !r.current(seq) {
				return
			}

			r.display.SetText(proximity.FinishedText)

			seq.countdownDone = true
			r.retire(seq)
		},
	)

	r.display.SetImage(proximity.ImageDownload)

	seq.alarm = r.loop.AfterFunc(r.opts.Duration, func() {
		if !r.current(seq) {
			return
		}

		r.playSound(seq.id)
		r.display.SetImage(proximity.ImageEmoji)

		seq.alarmDone = true
		r.retire(seq)
	})

	logger.InfoKV(r.ctx, "Alarm sequence started", "sequence", seq.id, "pending", len(r.sequences))
}

// supersede stops every running sequence and invalidates their callbacks.
func (r *Reactor) supersede() {
	r.generation++

	for id, seq := range r.sequences {
		seq.countdown.Stop()
		seq.alarm.Stop()
		delete(r.sequences, id)

		logger.DebugKV(r.ctx, "Alarm sequence superseded", "sequence", id)
	}
}

// current reports whether callbacks of seq may still apply their effect.
func (r *Reactor) current(seq *sequence) bool {
	return seq.generation == r.generation
}

// retire forgets seq once both of its timelines have completed.
func (r *Reactor) retire(seq *sequence) {
	if !seq.countdownDone || !seq.alarmDone {
		return
	}

	delete(r.sequences, seq.id)

	logger.DebugKV(r.ctx, "Alarm sequence completed", "sequence", seq.id, "took", time.Since(seq.startedAt).String())
}

// playSound plays the notification once off the loop. Failures never reach
// the display, they are only logged.
func (r *Reactor) playSound(id uint64) {
	go func() {
		if err := r.player.Play(r.ctx); err != nil {
			logger.WarnKV(r.ctx, "Notification sound failed", "sequence", id, "error", err)
		}
	}()
}
