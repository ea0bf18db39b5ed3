package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/service/probe"
	"github.com/oshokin/proximity-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the reactor address.
	serverAddress string
	// pollInterval is the watch polling interval.
	pollInterval time.Duration

	// rootCmd is the base command; every action is a subcommand.
	rootCmd = &cobra.Command{
		Use:   "proximity-probe",
		Short: "Control a running proximity-alarm.",
		Long: `Talks to the gRPC API of a running proximity-alarm.

It can inject readings when the reactor uses the push source, print the
display, pause or resume the reactor and follow display changes.`,
	}

	pushCmd = &cobra.Command{
		Use:   "push <value>",
		Short: "Inject a raw reading; 0 is near, anything else is far.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse reading %q: %w", args[0], err)
			}

			return run(&probe.Options{Action: probe.ActionPush, Value: value})
		},
	}

	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Print the display and the reactor status.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(&probe.Options{Action: probe.ActionState})
		},
	}

	pauseCmd = &cobra.Command{
		Use:   "pause",
		Short: "Unsubscribe the reactor from its sensor.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(&probe.Options{Action: probe.ActionSetActive, Active: false})
		},
	}

	resumeCmd = &cobra.Command{
		Use:   "resume",
		Short: "Subscribe the reactor to its sensor.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(&probe.Options{Action: probe.ActionSetActive, Active: true})
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print every display change until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(&probe.Options{Action: probe.ActionWatch, PollInterval: pollInterval})
		},
	}
)

// run fills the shared options and executes the probe with signal handling.
func run(opts *probe.Options) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	opts.ConfigPath = cfgPath
	opts.ServerAddress = serverAddress

	return probe.Run(ctx, opts)
}

// Execute runs the proximity-probe CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "address", "a", "", "reactor address (overrides config)")

	watchCmd.Flags().DurationVarP(&pollInterval, "interval", "i", probe.DefaultPollInterval, "polling interval")

	rootCmd.AddCommand(pushCmd, stateCmd, pauseCmd, resumeCmd, watchCmd)
}
