package sensor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// recorder collects delivered samples.
type recorder struct {
	// mu protects samples.
	mu sync.Mutex
	// samples are the raw values in delivery order.
	samples []float64
}

// handle is a Handler appending to the recorder.
func (r *recorder) handle(s proximity.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, s.Raw)
}

// values returns a copy of the recorded values.
func (r *recorder) values() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]float64(nil), r.samples...)
}

// TestParseRate checks config names and polling intervals.
func TestParseRate(t *testing.T) {
	t.Parallel()

	rate, err := ParseRate("")
	require.NoError(t, err)
	require.Equal(t, RateNormal, rate)
	require.Equal(t, 200*time.Millisecond, rate.Interval())

	rate, err = ParseRate("GAME")
	require.NoError(t, err)
	require.Equal(t, RateGame, rate)
	require.Equal(t, "game", rate.String())

	_, err = ParseRate("slow")
	require.ErrorIs(t, err, ErrUnknownRate)
}

// TestPush_Lifecycle verifies Publish only reaches an active subscriber.
func TestPush_Lifecycle(t *testing.T) {
	t.Parallel()

	var (
		rec    recorder
		source = NewPush()
		ctx    = context.Background()
	)

	require.ErrorIs(t, source.Publish(0), ErrNotSubscribed)

	require.NoError(t, source.Subscribe(ctx, RateNormal, rec.handle))
	require.ErrorIs(t, source.Subscribe(ctx, RateNormal, rec.handle), ErrAlreadySubscribed)
	require.True(t, source.Subscribed())

	require.NoError(t, source.Publish(0))
	require.NoError(t, source.Publish(-1.5))

	require.NoError(t, source.Unsubscribe())
	require.ErrorIs(t, source.Publish(3), ErrNotSubscribed)
	require.Equal(t, []float64{0, -1.5}, rec.values())
}

// TestNone_NeverDelivers checks the sensorless source accepts subscriptions.
func TestNone_NeverDelivers(t *testing.T) {
	t.Parallel()

	var source None

	require.NoError(t, source.Subscribe(context.Background(), RateNormal, func(proximity.Sample) {
		t.Fatal("unexpected sample")
	}))
	require.NoError(t, source.Unsubscribe())
}

// fakeIIODevice creates an IIO sysfs layout with a proximity attribute.
func fakeIIODevice(t *testing.T, device, attribute, value string) (root, path string) {
	t.Helper()

	root = t.TempDir()
	dir := filepath.Join(root, device)

	require.NoError(t, os.MkdirAll(dir, 0o755))

	path = filepath.Join(dir, attribute)
	require.NoError(t, os.WriteFile(path, []byte(value+"\n"), 0o600))

	return root, path
}

// TestFindProximityChannel verifies discovery and the missing-sensor case.
func TestFindProximityChannel(t *testing.T) {
	t.Parallel()

	root, path := fakeIIODevice(t, "iio:device1", "in_proximity_raw", "5")

	// A second device with an indexed channel sorts after device1.
	second := filepath.Join(root, "iio:device2")
	require.NoError(t, os.MkdirAll(second, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "in_proximity0_raw"), []byte("1"), 0o600))

	got, err := FindProximityChannel(root)
	require.NoError(t, err)
	require.Equal(t, path, got)

	_, err = FindProximityChannel(t.TempDir())
	require.ErrorIs(t, err, ErrNoSensor)
}

// TestIIO_DeliversChanges polls a fake device and reports only changes.
func TestIIO_DeliversChanges(t *testing.T) {
	t.Parallel()

	root, path := fakeIIODevice(t, "iio:device0", "in_proximity_raw", "5")

	synctest.Test(t, func(t *testing.T) {
		var rec recorder

		source := NewIIO(root)
		require.NoError(t, source.Subscribe(context.Background(), RateNormal, rec.handle))

		// First reading is always delivered.
		synctest.Wait()
		require.Equal(t, []float64{5}, rec.values())

		// Unchanged readings are not delivered again.
		time.Sleep(RateNormal.Interval())
		synctest.Wait()
		require.Equal(t, []float64{5}, rec.values())

		require.NoError(t, os.WriteFile(path, []byte("0\n"), 0o600))
		time.Sleep(RateNormal.Interval())
		synctest.Wait()
		require.Equal(t, []float64{5, 0}, rec.values())

		require.NoError(t, source.Unsubscribe())

		// Nothing arrives after Unsubscribe.
		require.NoError(t, os.WriteFile(path, []byte("5\n"), 0o600))
		time.Sleep(time.Second)
		synctest.Wait()
		require.Equal(t, []float64{5, 0}, rec.values())
	})
}

// TestIIO_MissingSensorIsNoop checks the "no sensor" platform behaviour.
func TestIIO_MissingSensorIsNoop(t *testing.T) {
	t.Parallel()

	source := NewIIO(t.TempDir())

	require.NoError(t, source.Subscribe(context.Background(), RateNormal, func(proximity.Sample) {
		t.Fatal("unexpected sample")
	}))
	require.NoError(t, source.Unsubscribe())
}
