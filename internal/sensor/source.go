package sensor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// Handler receives samples. It must not block for long: sources call it
// from their delivery goroutine.
type Handler func(sample proximity.Sample)

// Source is a subscribable proximity sensor.
type Source interface {
	// Subscribe starts delivering samples to h.
	Subscribe(ctx context.Context, rate Rate, h Handler) error
	// Unsubscribe stops delivery; h is not called after it returns.
	Unsubscribe() error
}

// Rate is a sampling-rate hint.
type Rate uint8

const (
	// RateNormal suits screen orientation style updates.
	RateNormal Rate = iota
	// RateUI suits user interface updates.
	RateUI
	// RateGame suits games.
	RateGame
	// RateFastest asks for data as fast as possible.
	RateFastest
)

var (
	// ErrAlreadySubscribed is returned by Subscribe on an active source.
	ErrAlreadySubscribed = errors.New("sensor source already subscribed")
	// ErrNotSubscribed is returned when samples are pushed to an idle source.
	ErrNotSubscribed = errors.New("sensor source not subscribed")
	// ErrUnknownRate is returned by ParseRate.
	ErrUnknownRate = errors.New("unknown sampling rate")
)

// ParseRate converts a config value to a Rate.
func ParseRate(s string) (Rate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return RateNormal, nil
	case "ui":
		return RateUI, nil
	case "game":
		return RateGame, nil
	case "fastest":
		return RateFastest, nil
	default:
		return RateNormal, fmt.Errorf("%w: %q", ErrUnknownRate, s)
	}
}

// Interval returns the polling period for the rate.
func (r Rate) Interval() time.Duration {
	switch r {
	case RateUI:
		return 60 * time.Millisecond
	case RateGame:
		return 20 * time.Millisecond
	case RateFastest:
		return 5 * time.Millisecond
	default:
		return 200 * time.Millisecond
	}
}

// String returns the config name of the rate.
func (r Rate) String() string {
	switch r {
	case RateUI:
		return "ui"
	case RateGame:
		return "game"
	case RateFastest:
		return "fastest"
	default:
		return "normal"
	}
}
