package display

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
)

// FieldState holds the protojson encoded state in each stream entry.
const FieldState = "state"

// StreamPublisher appends display revisions to a Redis stream so other
// renderers can follow the display.
type StreamPublisher struct {
	// client is the Redis connection.
	client *redis.Client
	// stream is the stream key.
	stream string
	// maxLen approximately caps the stream length.
	maxLen int64
}

// NewStreamPublisher creates a publisher writing to stream.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Run follows the store until ctx is canceled. Publish failures are logged
// and the next revision is tried again.
func (p *StreamPublisher) Run(ctx context.Context, store *Store) error {
	updates, stop := store.Watch()
	defer stop()

	logger.InfoKV(ctx, "Publishing display to Redis stream", "stream", p.stream)

	for {
		select {
		case <-ctx.Done():
			return nil
		case state := <-updates:
			if _, err := p.Publish(ctx, state); err != nil {
				logger.WarnKV(ctx, "Failed to publish display state", "revision", state.Revision, "error", err)
			}
		}
	}
}

// Publish appends one state and returns the entry id.
func (p *StreamPublisher) Publish(ctx context.Context, state proximity.DisplayState) (string, error) {
	encoded, err := ToStruct(state, nil)
	if err != nil {
		return "", err
	}

	data, err := protojson.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("marshal display state: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			FieldText:     state.Text,
			FieldImage:    string(state.Image),
			FieldRevision: state.Revision,
			FieldState:    string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	return id, nil
}
