package alarm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/proximity-alarm/internal/api/grpc/reactor"
	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/reactor"
	"github.com/oshokin/proximity-alarm/internal/sensor"
	"github.com/oshokin/proximity-alarm/internal/sound"
)

// startService runs a loop and a reactor over push inside a synctest bubble.
func startService(t *testing.T, push *sensor.Push) (*service, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := reactor.NewLoop()

	go func() {
		_ = loop.Run(ctx)
	}()

	var source sensor.Source = sensor.None{}
	if push != nil {
		source = push
	}

	store := display.NewStore(proximity.InitialDisplayState())
	r := reactor.New(ctx, loop, source, store, sound.Nop{}, reactor.Options{})

	return newService(r, store, push), func() {
		cancel()
		<-loop.Done()
	}
}

// TestService_PushSample maps source states to API errors.
func TestService_PushSample(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()

		svc, stop := startService(t, sensor.NewPush())
		defer stop()

		require.ErrorIs(t, svc.PushSample(ctx, 0), api.ErrInactive)

		require.NoError(t, svc.SetActive(ctx, true))
		require.NoError(t, svc.PushSample(ctx, 0))
		synctest.Wait()

		snapshot, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		require.True(t, snapshot.Active)
		require.Equal(t, 1, snapshot.Pending)
		require.Equal(t, proximity.ImageDownload, snapshot.Display.Image)

		// Let the sequence finish before the loop stops.
		time.Sleep(10 * time.Second)
		synctest.Wait()

		snapshot, err = svc.Snapshot(ctx)
		require.NoError(t, err)
		require.Zero(t, snapshot.Pending)
		require.Equal(t, proximity.ImageEmoji, snapshot.Display.Image)
		require.Equal(t, proximity.FinishedText, snapshot.Display.Text)

		require.NoError(t, svc.SetActive(ctx, false))
		require.ErrorIs(t, svc.PushSample(ctx, 0), api.ErrInactive)
	})
}

// TestService_PushUnsupported rejects samples for non-push sources.
func TestService_PushUnsupported(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, nil)
		defer stop()

		require.ErrorIs(t, svc.PushSample(context.Background(), 0), api.ErrPushUnsupported)

		require.NoError(t, svc.SetActive(context.Background(), true))

		snapshot, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
		require.True(t, snapshot.Active)
		require.Equal(t, proximity.InitialDisplayState(), snapshot.Display)
	})
}

// TestLoadSettings_Overrides applies command line values on top of the file.
func TestLoadSettings_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sensor:\n  source: none\n"), config.DefaultFilePermissions))

	settings, err := loadSettings(&Options{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, config.SourceNone, settings.Sensor.Source)

	settings, err = loadSettings(&Options{ConfigPath: path, Source: "PUSH", ListenAddress: "127.0.0.1:50099"})
	require.NoError(t, err)
	require.Equal(t, config.SourcePush, settings.Sensor.Source)
	require.Equal(t, "127.0.0.1:50099", settings.ListenAddress)

	_, err = loadSettings(&Options{ConfigPath: path, Source: "bluetooth"})
	require.Error(t, err)
}

// TestNewSource builds every configured source.
func TestNewSource(t *testing.T) {
	t.Parallel()

	settings := config.Default()

	for _, name := range []string{config.SourceIIO, config.SourceMQTT, config.SourcePush, config.SourceNone} {
		settings.Sensor.Source = name
		settings.Sensor.IIORoot = t.TempDir()
		settings.Sensor.MQTT.Broker = "tcp://127.0.0.1:1883"

		source, push, closeSource, err := newSource(context.Background(), settings)
		require.NoError(t, err, name)
		require.NotNil(t, source, name)
		require.Equal(t, name == config.SourcePush, push != nil, name)

		closeSource()
	}

	settings.Sensor.Source = "bluetooth"

	_, _, _, err := newSource(context.Background(), settings)
	require.ErrorIs(t, err, errUnknownSource)
}
