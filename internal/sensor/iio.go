package sensor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
)

// iioChannelPatterns match the raw proximity attributes exposed by IIO drivers.
//
//nolint:gochecknoglobals // Read-only lookup table.
var iioChannelPatterns = []string{
	"in_proximity_raw",
	"in_proximity[0-9]*_raw",
}

// ErrNoSensor is returned when no proximity channel exists under the IIO root.
var ErrNoSensor = errors.New("no proximity sensor found")

// IIO polls the first proximity channel found under a Linux IIO sysfs root
// and delivers a sample whenever the reading changes.
type IIO struct {
	// root is the directory holding iio:deviceN entries.
	root string

	// mu serialises Subscribe and Unsubscribe.
	mu sync.Mutex
	// cancel stops the polling goroutine; nil while idle.
	cancel context.CancelFunc
	// done is closed when the polling goroutine exits.
	done chan struct{}
}

// NewIIO creates a source reading devices under root.
func NewIIO(root string) *IIO {
	return &IIO{
		root: filepath.Clean(root),
	}
}

// FindProximityChannel returns the raw attribute path of the default
// proximity sensor: the first match in lexical device order.
func FindProximityChannel(root string) (string, error) {
	var matches []string

	for _, pattern := range iioChannelPatterns {
		found, err := filepath.Glob(filepath.Join(root, "*", pattern))
		if err != nil {
			return "", fmt.Errorf("glob %s: %w", pattern, err)
		}

		matches = append(matches, found...)
	}

	if len(matches) == 0 {
		return "", ErrNoSensor
	}

	sort.Strings(matches)

	return matches[0], nil
}

// Subscribe starts polling. Without a sensor it succeeds and never delivers.
func (s *IIO) Subscribe(ctx context.Context, rate Rate, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadySubscribed
	}

	channel, err := FindProximityChannel(s.root)
	if errors.Is(err, ErrNoSensor) {
		logger.DebugKV(ctx, "No proximity sensor found", "iio_root", s.root)

		return nil
	}

	if err != nil {
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done

	logger.InfoKV(ctx, "Polling proximity sensor", "channel", channel, "rate", rate.String())

	go func() {
		defer close(done)

		poll(pollCtx, channel, rate.Interval(), h)
	}()

	return nil
}

// Unsubscribe stops polling and waits for the goroutine to exit.
func (s *IIO) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done

	s.cancel = nil
	s.done = nil

	return nil
}

// poll reads the channel every interval and reports changes.
func poll(ctx context.Context, channel string, interval time.Duration, h Handler) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last     float64
		haveLast bool
		failing  bool
	)

	read := func() {
		raw, err := readRaw(channel)
		if err != nil {
			// Log the first failure of a streak only.
			if !failing {
				logger.WarnKV(ctx, "Failed to read proximity sensor", "channel", channel, "error", err)
			}

			failing = true

			return
		}

		failing = false

		if haveLast && raw == last {
			return
		}

		last, haveLast = raw, true

		// A cancel racing with the read must not leak a late delivery.
		if ctx.Err() != nil {
			return
		}

		h(proximity.NewSample(raw))
	}

	read()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			read()
		}
	}
}

// readRaw parses a sysfs attribute holding a single number.
func readRaw(path string) (float64, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(string(contents)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	return raw, nil
}
