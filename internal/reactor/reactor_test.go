package reactor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/sensor"
)

var (
	errSpeakerMissing = errors.New("speaker missing")
	errSensorBusy     = errors.New("sensor busy")
)

// fakePlayer counts Play calls.
type fakePlayer struct {
	// mu protects plays.
	mu sync.Mutex
	// plays is the number of Play calls.
	plays int
	// err is returned from Play.
	err error
}

// Play implements sound.Player.
func (p *fakePlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plays++

	return p.err
}

// count returns the number of Play calls.
func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.plays
}

// textRecorder keeps every label the reactor sets.
type textRecorder struct {
	// texts lists labels in order; only the loop writes it.
	texts []string
}

func (r *textRecorder) SetText(text string)      { r.texts = append(r.texts, text) }
func (r *textRecorder) SetImage(proximity.Image) {}

// failingSource refuses subscriptions.
type failingSource struct{}

func (failingSource) Subscribe(context.Context, sensor.Rate, sensor.Handler) error {
	return errSensorBusy
}
func (failingSource) Unsubscribe() error { return nil }

// capturingSource keeps every handler it is given, like a driver that
// may still deliver a reading after Unsubscribe returned.
type capturingSource struct {
	// mu protects handlers.
	mu sync.Mutex
	// handlers lists subscriptions in order.
	handlers []sensor.Handler
}

func (s *capturingSource) Subscribe(_ context.Context, _ sensor.Rate, h sensor.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = append(s.handlers, h)

	return nil
}

func (s *capturingSource) Unsubscribe() error { return nil }

// handler returns the i-th captured handler.
func (s *capturingSource) handler(t *testing.T, i int) sensor.Handler {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	require.Greater(t, len(s.handlers), i)

	return s.handlers[i]
}

// harness wires a reactor to a push source, a store and a fake player.
type harness struct {
	loop    *Loop
	push    *sensor.Push
	store   *display.Store
	texts   *textRecorder
	player  *fakePlayer
	reactor *Reactor
	stop    func()
}

// newHarness must be called inside a synctest bubble.
func newHarness(t *testing.T, policy Policy) *harness {
	t.Helper()

	loop, stop := runLoop(t)

	h := &harness{
		loop:   loop,
		push:   sensor.NewPush(),
		store:  display.NewStore(proximity.InitialDisplayState()),
		texts:  new(textRecorder),
		player: new(fakePlayer),
		stop:   stop,
	}

	h.reactor = New(context.Background(), loop, h.push, display.Multi{h.store, h.texts}, h.player, Options{
		Duration: 10 * time.Second,
		Tick:     time.Second,
		Policy:   policy,
	})

	require.NoError(t, h.reactor.Activate(context.Background()))

	return h
}

// publish delivers a raw sample and waits until the loop handled it.
func (h *harness) publish(t *testing.T, raw float64) {
	t.Helper()

	require.NoError(t, h.push.Publish(raw))
	synctest.Wait()
	require.NoError(t, h.loop.Do(context.Background(), func() {}))
}

// advance moves the fake clock and lets every callback run.
func (h *harness) advance(d time.Duration) {
	time.Sleep(d)
	synctest.Wait()
}

// status reads the reactor status.
func (h *harness) status(t *testing.T) Status {
	t.Helper()

	status, err := h.reactor.Status(context.Background())
	require.NoError(t, err)

	return status
}

// TestParsePolicy checks config names.
func TestParsePolicy(t *testing.T) {
	t.Parallel()

	policy, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyOverlap, policy)

	policy, err = ParsePolicy("Latest")
	require.NoError(t, err)
	require.Equal(t, PolicyLatest, policy)
	require.Equal(t, "latest", policy.String())

	_, err = ParsePolicy("first")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

// TestReactor_NearRunsFullSequence walks one alarm sequence second by second.
func TestReactor_NearRunsFullSequence(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		h.publish(t, 0)

		// The image changes synchronously, the label waits for the first tick.
		state := h.store.Snapshot()
		require.Equal(t, proximity.ImageDownload, state.Image)
		require.Equal(t, proximity.InitialText, state.Text)
		require.Equal(t, 1, h.status(t).Pending)

		for second := 1; second < 10; second++ {
			h.advance(time.Second)

			state = h.store.Snapshot()
			require.Equal(t, proximity.CountdownText(time.Duration(10-second)*time.Second), state.Text, "second %d", second)
			require.Equal(t, proximity.ImageDownload, state.Image)
			require.Zero(t, h.player.count())
		}

		h.advance(time.Second)

		state = h.store.Snapshot()
		require.Equal(t, proximity.FinishedText, state.Text)
		require.Equal(t, proximity.ImageEmoji, state.Image)
		require.Equal(t, 1, h.player.count())

		// Ten ticks counting 9..0, then the finish text.
		want := make([]string, 0, 11)
		for s := 9; s >= 0; s-- {
			want = append(want, proximity.CountdownText(time.Duration(s)*time.Second))
		}

		want = append(want, proximity.FinishedText)

		require.NoError(t, h.loop.Do(context.Background(), func() {
			require.Equal(t, want, h.texts.texts)
		}))

		// Nothing else happens afterwards.
		h.advance(time.Minute)
		require.Equal(t, state, h.store.Snapshot())
		require.Zero(t, h.status(t).Pending)
	})
}

// TestReactor_FarSetsNaruto covers the far branch and exact-zero routing.
func TestReactor_FarSetsNaruto(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		for _, raw := range []float64{5, -1, 0.5, -0.0001} {
			h.store.SetImage(proximity.ImageNone)
			h.publish(t, raw)

			state := h.store.Snapshot()
			require.Equal(t, proximity.ImageNaruto, state.Image, "raw=%g", raw)
			require.Equal(t, proximity.InitialText, state.Text, "raw=%g", raw)
		}

		status := h.status(t)
		require.Zero(t, status.Started)
		require.Zero(t, status.Pending)
	})
}

// TestReactor_AlarmIgnoresFarInBetween shows the delayed action is independent of later samples.
func TestReactor_AlarmIgnoresFarInBetween(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		h.publish(t, 0)
		h.advance(4 * time.Second)

		h.publish(t, 5)
		require.Equal(t, proximity.ImageNaruto, h.store.Snapshot().Image)
		require.Equal(t, proximity.CountdownText(6*time.Second), h.store.Snapshot().Text)

		h.advance(6 * time.Second)
		require.Equal(t, proximity.ImageEmoji, h.store.Snapshot().Image)
		require.Equal(t, proximity.FinishedText, h.store.Snapshot().Text)
		require.Equal(t, 1, h.player.count())
	})
}

// TestReactor_OverlappingSequencesBothFire documents the unguarded default:
// two near samples two seconds apart run two full sequences.
func TestReactor_OverlappingSequencesBothFire(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		h.publish(t, 0)
		h.advance(2 * time.Second)
		h.publish(t, 0)

		status := h.status(t)
		require.Equal(t, 2, status.Pending)
		require.Equal(t, uint64(2), status.Started)

		// First delayed action at t=10s.
		h.advance(8 * time.Second)
		require.Equal(t, 1, h.player.count())
		require.Equal(t, proximity.ImageEmoji, h.store.Snapshot().Image)
		require.Equal(t, 1, h.status(t).Pending)

		// Second sequence keeps counting and fires its own action at t=12s.
		h.advance(time.Second)
		require.Equal(t, proximity.CountdownText(time.Second), h.store.Snapshot().Text)

		h.advance(time.Second)
		require.Equal(t, 2, h.player.count())
		require.Equal(t, proximity.FinishedText, h.store.Snapshot().Text)
		require.Zero(t, h.status(t).Pending)
	})
}

// TestReactor_LatestPolicySupersedes checks that only the newest sequence applies.
func TestReactor_LatestPolicySupersedes(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyLatest)
		defer h.stop()

		h.publish(t, 0)
		h.advance(2 * time.Second)
		require.Equal(t, proximity.CountdownText(8*time.Second), h.store.Snapshot().Text)

		h.publish(t, 0)
		require.Equal(t, 1, h.status(t).Pending)

		// The first sequence would have fired at t=10s.
		h.advance(8 * time.Second)
		require.Zero(t, h.player.count())
		require.Equal(t, proximity.ImageDownload, h.store.Snapshot().Image)
		require.Equal(t, proximity.CountdownText(2*time.Second), h.store.Snapshot().Text)

		h.advance(2 * time.Second)
		require.Equal(t, 1, h.player.count())
		require.Equal(t, proximity.ImageEmoji, h.store.Snapshot().Image)
		require.Equal(t, proximity.FinishedText, h.store.Snapshot().Text)
		require.Zero(t, h.status(t).Pending)
	})
}

// TestReactor_SoundFailureIsSilent verifies the display still changes when playback fails.
func TestReactor_SoundFailureIsSilent(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		h.player.err = errSpeakerMissing

		h.publish(t, 0)
		h.advance(10 * time.Second)

		require.Equal(t, 1, h.player.count())
		require.Equal(t, proximity.ImageEmoji, h.store.Snapshot().Image)
	})
}

// TestReactor_Lifecycle covers idempotent activation and deactivation.
func TestReactor_Lifecycle(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		// A second subscription would fail in the push source.
		require.NoError(t, h.reactor.Activate(context.Background()))
		require.True(t, h.status(t).Active)

		require.NoError(t, h.reactor.Deactivate(context.Background()))
		require.NoError(t, h.reactor.Deactivate(context.Background()))
		require.False(t, h.status(t).Active)
		require.ErrorIs(t, h.push.Publish(0), sensor.ErrNotSubscribed)
		require.Equal(t, proximity.ImageNone, h.store.Snapshot().Image)

		require.NoError(t, h.reactor.Activate(context.Background()))
		h.publish(t, 3)
		require.Equal(t, proximity.ImageNaruto, h.store.Snapshot().Image)
	})
}

// TestReactor_DeactivateKeepsRunningSequence checks that pausing does not cancel an alarm.
func TestReactor_DeactivateKeepsRunningSequence(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, PolicyOverlap)
		defer h.stop()

		h.publish(t, 0)
		require.NoError(t, h.reactor.Deactivate(context.Background()))

		h.advance(10 * time.Second)
		require.Equal(t, 1, h.player.count())
		require.Equal(t, proximity.ImageEmoji, h.store.Snapshot().Image)
	})
}

// TestReactor_ActivateFailure leaves the reactor inactive.
func TestReactor_ActivateFailure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		loop, stop := runLoop(t)
		defer stop()

		store := display.NewStore(proximity.InitialDisplayState())
		r := New(context.Background(), loop, failingSource{}, store, nil, Options{})

		require.ErrorIs(t, r.Activate(context.Background()), errSensorBusy)

		status, err := r.Status(context.Background())
		require.NoError(t, err)
		require.False(t, status.Active)
	})
}

// TestReactor_LateDeliveryAfterDeactivate drops samples from a stale subscription.
func TestReactor_LateDeliveryAfterDeactivate(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		loop, stop := runLoop(t)
		defer stop()

		var (
			source = new(capturingSource)
			store  = display.NewStore(proximity.InitialDisplayState())
			ctx    = context.Background()
			r      = New(ctx, loop, source, store, new(fakePlayer), Options{
				Duration: 10 * time.Second,
				Tick:     time.Second,
			})
		)

		// settle lets posted handler work reach the loop.
		settle := func() {
			synctest.Wait()
			require.NoError(t, loop.Do(ctx, func() {}))
		}

		require.NoError(t, r.Activate(ctx))
		stale := source.handler(t, 0)

		require.NoError(t, r.Deactivate(ctx))

		stale(proximity.NewSample(5))
		settle()
		require.Equal(t, proximity.ImageNone, store.Snapshot().Image)

		require.NoError(t, r.Activate(ctx))

		// The old subscription stays dead after reactivation.
		stale(proximity.NewSample(0))
		settle()
		require.Equal(t, proximity.ImageNone, store.Snapshot().Image)

		source.handler(t, 1)(proximity.NewSample(5))
		settle()
		require.Equal(t, proximity.ImageNaruto, store.Snapshot().Image)
	})
}
