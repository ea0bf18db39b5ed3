package alarm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/proximity-alarm/internal/api/grpc/reactor"
	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
	pb "github.com/oshokin/proximity-alarm/internal/pb/v1"
	"github.com/oshokin/proximity-alarm/internal/reactor"
	"github.com/oshokin/proximity-alarm/internal/sensor"
	"github.com/oshokin/proximity-alarm/internal/service/common"
	"github.com/oshokin/proximity-alarm/internal/sound"
	"github.com/oshokin/proximity-alarm/internal/tui"
	"github.com/oshokin/proximity-alarm/internal/version"
)

// Options controls the proximity-alarm process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the gRPC listen address.
	ListenAddress string
	// Source overrides the sensor source.
	Source string
	// Headless replaces the terminal UI with an always-active reactor.
	Headless bool
}

// errUnknownSource is returned for a source that passed validation but has no builder.
var errUnknownSource = errors.New("unknown sensor source")

// Run starts the reactor and blocks until ctx is canceled or the UI quits.
//
//nolint:funlen // Linear wiring of the process components.
func Run(ctx context.Context, opts *Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// The UI owns the terminal, so logs go to a file while it runs.
	if !opts.Headless {
		closeLog, logErr := logger.RedirectToFile(settings.LogFile, config.DefaultFilePermissions)
		if logErr != nil {
			return logErr
		}

		defer closeLog()
	}

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "proximity-alarm")

	logger.InfoKV(ctx, "Starting proximity-alarm", version.Fields()...)

	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	source, push, closeSource, err := newSource(ctx, settings)
	if err != nil {
		return err
	}

	defer closeSource()

	player, err := sound.New(settings.Sound, settings.Timeout, os.Stdout)
	if err != nil {
		return fmt.Errorf("initialise sound: %w", err)
	}

	rate, err := sensor.ParseRate(settings.Sensor.Rate)
	if err != nil {
		return err
	}

	policy, err := reactor.ParsePolicy(settings.Alarm.Policy)
	if err != nil {
		return err
	}

	store := display.NewStore(proximity.InitialDisplayState())

	// The loop outlives the other components so they can still deactivate
	// the reactor while shutting down.
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	loop := reactor.NewLoop()

	go func() {
		_ = loop.Run(loopCtx)
	}()

	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	r := reactor.New(ctx, loop, source, store, player, reactor.Options{
		Duration: settings.Alarm.Duration,
		Tick:     settings.Alarm.Tick,
		Rate:     rate,
		Policy:   policy,
	})

	svc := newService(r, store, push)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterReactorServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Reactor API listening",
		"listen_address", settings.ListenAddress,
		"source", settings.Sensor.Source,
		"sound", settings.Sound.Backend,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(gctx, grpcServer, lis)
	})

	if settings.Display.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     settings.Display.Redis.Addr,
			Password: settings.Display.Redis.Password,
			DB:       settings.Display.Redis.DB,
		})

		defer func() {
			_ = client.Close()
		}()

		publisher := display.NewStreamPublisher(client, settings.Display.Redis.Stream, settings.Display.Redis.MaxLen)

		g.Go(func() error {
			return publisher.Run(gctx, store)
		})
	}

	g.Go(func() error {
		// Leaving the front end stops the whole process.
		defer cancel()

		if opts.Headless {
			return runHeadless(gctx, svc)
		}

		return tui.Run(gctx, svc, store)
	})

	err = g.Wait()

	if deactivateErr := r.Deactivate(context.WithoutCancel(ctx)); deactivateErr != nil {
		logger.WarnKV(ctx, "Failed to deactivate reactor", "error", deactivateErr)
	}

	return err
}

// loadSettings reads the config file and applies command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ListenAddress == "" && opts.Source == "" {
		return settings, nil
	}

	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.Source != "" {
		settings.Sensor.Source = opts.Source
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}

	return settings, nil
}

// newSource builds the configured sensor source. push is non-nil only for
// the push source.
//
//nolint:ireturn // The source is chosen at runtime.
func newSource(ctx context.Context, settings *config.Config) (sensor.Source, *sensor.Push, func(), error) {
	noop := func() {}

	switch settings.Sensor.Source {
	case config.SourceIIO:
		source := sensor.NewIIO(settings.Sensor.IIORoot)

		if _, err := sensor.FindProximityChannel(settings.Sensor.IIORoot); err != nil {
			logger.WarnKV(ctx, "No proximity sensor found, samples will not arrive", "iio_root", settings.Sensor.IIORoot)
		}

		return source, nil, noop, nil
	case config.SourceMQTT:
		source := sensor.NewMQTT(settings.Sensor.MQTT, settings.Timeout)

		return source, nil, source.Close, nil
	case config.SourcePush:
		push := sensor.NewPush()

		return push, push, noop, nil
	case config.SourceNone:
		return sensor.None{}, nil, noop, nil
	default:
		return nil, nil, noop, fmt.Errorf("%w: %q", errUnknownSource, settings.Sensor.Source)
	}
}

// serve runs the gRPC server until ctx is canceled.
func serve(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// runHeadless keeps the reactor active until ctx is canceled.
func runHeadless(ctx context.Context, svc *service) error {
	if err := svc.SetActive(ctx, true); err != nil {
		return err
	}

	<-ctx.Done()

	return nil
}
