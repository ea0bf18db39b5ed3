package sensor

import (
	"context"
	"sync"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// Push is a source fed by Publish calls instead of hardware.
type Push struct {
	// mu is held for reading while a sample is delivered so Unsubscribe
	// can wait for in-flight deliveries.
	mu sync.RWMutex
	// handler is nil while unsubscribed.
	handler Handler
}

// NewPush creates an idle push source.
func NewPush() *Push {
	return new(Push)
}

// Subscribe registers h; the rate hint is meaningless here.
func (p *Push) Subscribe(_ context.Context, _ Rate, h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handler != nil {
		return ErrAlreadySubscribed
	}

	p.handler = h

	return nil
}

// Unsubscribe drops the handler after in-flight deliveries finish.
func (p *Push) Unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handler = nil

	return nil
}

// Subscribed reports whether a handler is registered.
func (p *Push) Subscribed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.handler != nil
}

// Publish delivers a raw reading to the subscriber.
func (p *Push) Publish(raw float64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.handler == nil {
		return ErrNotSubscribed
	}

	p.handler(proximity.NewSample(raw))

	return nil
}
