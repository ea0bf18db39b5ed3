//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/proximity-alarm/internal/api/grpc/reactor"
	"github.com/oshokin/proximity-alarm/internal/config"
	pb "github.com/oshokin/proximity-alarm/internal/pb/v1"
)

// Client wraps the gRPC ReactorService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the reactor.
	conn *grpc.ClientConn
	// api is the ReactorService client interface.
	api pb.ReactorServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// withAPI replaces the RPC stub, tests use it to skip the network.
func withAPI(stub pb.ReactorServiceClient) Option {
	return func(c *Client) {
		c.api = stub
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the reactor.
// Note: this uses insecure transport credentials; the API is meant to listen
// on loopback or a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial reactor: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewReactorServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// PushSample sends a raw proximity reading to the reactor's push source.
func (c *Client) PushSample(ctx context.Context, raw float64) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.PushSample(callCtx, wrapperspb.Double(raw)); err != nil {
		return fmt.Errorf("push sample: %w", err)
	}

	return nil
}

// GetDisplayState retrieves the display content and the reactor status.
func (c *Client) GetDisplayState(ctx context.Context) (api.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetDisplayState(callCtx, new(emptypb.Empty))
	if err != nil {
		return api.Snapshot{}, fmt.Errorf("get display state: %w", err)
	}

	snapshot, err := api.FromStruct(response)
	if err != nil {
		return api.Snapshot{}, fmt.Errorf("decode display state: %w", err)
	}

	return snapshot, nil
}

// SetActive activates or pauses the remote reactor.
func (c *Client) SetActive(ctx context.Context, active bool) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.SetActive(callCtx, wrapperspb.Bool(active)); err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
