package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	api "github.com/oshokin/proximity-alarm/internal/api/grpc/reactor"
	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/logger"
	"github.com/oshokin/proximity-alarm/internal/service/common"
)

// Action selects what Run does.
type Action uint8

const (
	// ActionPush sends Options.Value as a raw reading.
	ActionPush Action = iota
	// ActionState prints the display once.
	ActionState
	// ActionSetActive resumes or pauses the reactor per Options.Active.
	ActionSetActive
	// ActionWatch prints every display revision until canceled.
	ActionWatch
)

// Options configures a probe invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the reactor address from config when specified.
	ServerAddress string
	// Action is the operation to perform.
	Action Action
	// Value is the raw reading for ActionPush.
	Value float64
	// Active is the desired lifecycle state for ActionSetActive.
	Active bool
	// PollInterval is the delay between polls for ActionWatch.
	PollInterval time.Duration
	// Output receives state lines, os.Stdout when nil.
	Output io.Writer
}

// DefaultPollInterval is the watch polling interval.
const DefaultPollInterval = 250 * time.Millisecond

// errUnknownAction is returned for an Action without a handler.
var errUnknownAction = errors.New("unknown probe action")

// Run performs the requested action against the reactor API.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "proximity-probe")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	serverAddress := cfg.ListenAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	// Printed state shares stdout with the logger, keep only warnings.
	if opts.Action == ActionState || opts.Action == ActionWatch {
		ctx = logger.RaiseLevel(ctx, zapcore.WarnLevel)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial reactor: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	switch opts.Action {
	case ActionPush:
		if err = client.PushSample(ctx, opts.Value); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Sample pushed", "server_address", serverAddress, "raw", opts.Value)

		return nil
	case ActionState:
		snapshot, err := client.GetDisplayState(ctx)
		if err != nil {
			return err
		}

		return printSnapshot(out, snapshot)
	case ActionSetActive:
		if err = client.SetActive(ctx, opts.Active); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Reactor lifecycle changed", "server_address", serverAddress, "active", opts.Active)

		return nil
	case ActionWatch:
		return watch(ctx, client, out, opts.PollInterval)
	default:
		return fmt.Errorf("%w: %d", errUnknownAction, opts.Action)
	}
}

// watch polls the display and prints each new revision.
func watch(ctx context.Context, client *common.Client, out io.Writer, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logger.InfoKV(ctx, "Watching display", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		lastRevision uint64
		printed      bool
	)

	for {
		snapshot, err := client.GetDisplayState(ctx)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}

			logger.ErrorKV(ctx, "Get display state failed", "error", err)
		case !printed || snapshot.Display.Revision != lastRevision:
			if err = printSnapshot(out, snapshot); err != nil {
				return err
			}

			printed = true
			lastRevision = snapshot.Display.Revision
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}

// printSnapshot writes one human-readable line.
func printSnapshot(out io.Writer, snapshot api.Snapshot) error {
	status := "paused"
	if snapshot.Active {
		status = "active"
	}

	_, err := fmt.Fprintf(out, "#%d %q image=%s %s pending=%d\n",
		snapshot.Display.Revision,
		snapshot.Display.Text,
		snapshot.Display.Image,
		status,
		snapshot.Pending,
	)
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	return nil
}
