package reactor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// defaultQueueSize bounds the number of pending tasks.
const defaultQueueSize = 64

// ErrLoopStopped is returned when a task is submitted after the loop exits.
var ErrLoopStopped = errors.New("loop stopped")

// Loop runs posted tasks one at a time on a single goroutine.
// Tasks never run concurrently with each other, so state touched only from
// tasks needs no locking.
type Loop struct {
	// tasks is the FIFO queue drained by Run.
	tasks chan func()
	// done is closed when Run returns.
	done chan struct{}
	// stopOnce guards closing done.
	stopOnce sync.Once
}

// NewLoop creates a loop; it does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), defaultQueueSize),
		done:  make(chan struct{}),
	}
}

// Run drains the task queue until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-l.tasks:
			task()
		}
	}
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post enqueues a task. It reports false if the loop has stopped.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	}
}

// Do runs task on the loop and waits for it to finish.
// It must not be called from a task, that would deadlock.
func (l *Loop) Do(ctx context.Context, task func()) error {
	finished := make(chan struct{})

	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc posts task to the loop once d has elapsed.
// Stopping the returned timer after it fired does not recall a task that
// was already posted.
func (l *Loop) AfterFunc(d time.Duration, task func()) *time.Timer {
	return time.AfterFunc(d, func() {
		l.Post(task)
	})
}
