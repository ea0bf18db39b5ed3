package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/oshokin/proximity-alarm/internal/config"
)

// Player plays the notification sound once.
type Player interface {
	Play(ctx context.Context) error
}

// ErrUnknownBackend is returned by New for an unsupported backend.
var ErrUnknownBackend = errors.New("unknown sound backend")

// New builds the player selected by cfg. Terminal bells go to out.
//
//nolint:ireturn // The backend is chosen at runtime.
func New(cfg config.SoundConfig, timeout time.Duration, out io.Writer) (Player, error) {
	switch cfg.Backend {
	case config.SoundBell:
		return NewBell(out), nil
	case config.SoundCommand, "":
		return NewCommand(cfg.Command, cfg.File), nil
	case config.SoundNtfy:
		return NewNtfy(cfg.Ntfy, timeout), nil
	case config.SoundNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Nop plays nothing.
type Nop struct{}

// Play implements Player.
func (Nop) Play(context.Context) error {
	return nil
}

// Bell rings the terminal bell.
type Bell struct {
	// mu serialises writes to out.
	mu sync.Mutex
	// out is usually the terminal.
	out io.Writer
}

// NewBell creates a bell writing to out, or to stdout when out is nil.
func NewBell(out io.Writer) *Bell {
	if out == nil {
		out = os.Stdout
	}

	return &Bell{out: out}
}

// Play writes a BEL character.
func (b *Bell) Play(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := io.WriteString(b.out, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}

	return nil
}
