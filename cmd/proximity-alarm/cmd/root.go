package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/service/alarm"
	"github.com/oshokin/proximity-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// listenAddress overrides the gRPC listen address.
	listenAddress string
	// source overrides the sensor source.
	source string
	// headless disables the terminal UI.
	headless bool

	// rootCmd represents the reactor process.
	rootCmd = &cobra.Command{
		Use:   "proximity-alarm",
		Short: "React to a proximity sensor with a countdown and an alarm.",
		Long: `Listens to a proximity sensor and reacts to every reading.

A far reading shows the naruto picture. A near reading (exactly zero) shows the
download picture, counts down from ten seconds and then plays a notification
sound and shows the emoji picture with "some one took ur phone".

The terminal UI activates the sensor while it has focus and pauses it when
focus is lost. Use --headless to keep the sensor active without a UI.
A gRPC API lets proximity-probe push samples and read the display.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return alarm.Run(ctx, &alarm.Options{
				ConfigPath:    cfgPath,
				ListenAddress: listenAddress,
				Source:        source,
				Headless:      headless,
			})
		},
	}
)

// Execute runs the proximity-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "gRPC listen address (overrides config)")
	rootCmd.Flags().StringVarP(&source, "source", "s", "", "sensor source: iio, mqtt, push or none (overrides config)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without the terminal UI, always active")
}
