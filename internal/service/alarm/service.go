package alarm

import (
	"context"
	"errors"
	"fmt"

	api "github.com/oshokin/proximity-alarm/internal/api/grpc/reactor"
	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/logger"
	"github.com/oshokin/proximity-alarm/internal/reactor"
	"github.com/oshokin/proximity-alarm/internal/sensor"
)

// service adapts the reactor to the gRPC API and the terminal UI.
type service struct {
	// reactor handles samples and the lifecycle.
	reactor *reactor.Reactor
	// store holds the display content.
	store *display.Store
	// push is set when the reactor reads the push source.
	push *sensor.Push
}

// newService creates a service; push may be nil.
func newService(r *reactor.Reactor, store *display.Store, push *sensor.Push) *service {
	return &service{
		reactor: r,
		store:   store,
		push:    push,
	}
}

// PushSample feeds raw to the push source.
func (s *service) PushSample(ctx context.Context, raw float64) error {
	if s.push == nil {
		return api.ErrPushUnsupported
	}

	err := s.push.Publish(raw)
	switch {
	case err == nil:
		logger.DebugKV(ctx, "Sample pushed", "raw", raw)

		return nil
	case errors.Is(err, sensor.ErrNotSubscribed):
		return api.ErrInactive
	default:
		return fmt.Errorf("publish sample: %w", err)
	}
}

// Snapshot returns the display content with the reactor status.
func (s *service) Snapshot(ctx context.Context) (api.Snapshot, error) {
	status, err := s.reactor.Status(ctx)
	if err != nil {
		return api.Snapshot{}, err
	}

	return api.Snapshot{
		Display: s.store.Snapshot(),
		Active:  status.Active,
		Pending: status.Pending,
	}, nil
}

// SetActive resumes or pauses the reactor.
func (s *service) SetActive(ctx context.Context, active bool) error {
	if active {
		return s.reactor.Activate(ctx)
	}

	return s.reactor.Deactivate(ctx)
}
