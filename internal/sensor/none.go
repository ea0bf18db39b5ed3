package sensor

import (
	"context"

	"github.com/oshokin/proximity-alarm/internal/logger"
)

// None stands in for a device without a proximity sensor.
// Subscribing succeeds and nothing is ever delivered.
type None struct{}

// Subscribe is a no-op.
func (None) Subscribe(ctx context.Context, _ Rate, _ Handler) error {
	logger.Debug(ctx, "No proximity sensor configured, samples will never arrive")

	return nil
}

// Unsubscribe is a no-op.
func (None) Unsubscribe() error {
	return nil
}
