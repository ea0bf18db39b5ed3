package display

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// newTestRedis starts an in-memory Redis and returns a client for it.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// TestStreamPublisher_Publish checks the fields of a stream entry.
func TestStreamPublisher_Publish(t *testing.T) {
	t.Parallel()

	client := newTestRedis(t)
	publisher := NewStreamPublisher(client, "proximity:display", 100)

	state := proximity.DisplayState{
		Text:     "Time left for selfdistruction 3",
		Image:    proximity.ImageDownload,
		Revision: 7,
	}

	id, err := publisher.Publish(context.Background(), state)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := client.XRange(context.Background(), "proximity:display", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	require.Equal(t, state.Text, values[FieldText])
	require.Equal(t, "download", values[FieldImage])
	require.Equal(t, "7", values[FieldRevision])

	var decoded structpb.Struct
	require.NoError(t, protojson.Unmarshal([]byte(values[FieldState].(string)), &decoded))

	got, err := FromStruct(&decoded)
	require.NoError(t, err)
	require.Equal(t, state, got)
}

// TestStreamPublisher_RunFollowsStore verifies that store revisions reach the stream.
func TestStreamPublisher_RunFollowsStore(t *testing.T) {
	t.Parallel()

	client := newTestRedis(t)
	store := NewStore(proximity.InitialDisplayState())
	publisher := NewStreamPublisher(client, "display", 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- publisher.Run(ctx, store)
	}()

	store.SetImage(proximity.ImageNaruto)

	require.Eventually(t, func() bool {
		entries, err := client.XRevRangeN(context.Background(), "display", "+", "-", 1).Result()
		if err != nil || len(entries) == 0 {
			return false
		}

		return entries[0].Values[FieldImage] == "naruto"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
