package reactor

import (
	"context"
	"errors"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	pb "github.com/oshokin/proximity-alarm/internal/pb/v1"
)

// Extra fields GetDisplayState adds next to the display fields.
const (
	FieldActive        = "active"
	FieldPendingAlarms = "pending_alarms"
)

var (
	// ErrPushUnsupported is returned when samples are pushed to a reactor
	// that reads another source.
	ErrPushUnsupported = errors.New("reactor does not accept pushed samples")
	// ErrInactive is returned when samples are pushed while the reactor is paused.
	ErrInactive = errors.New("reactor is not active")
)

// Snapshot is what the transport reports about the reactor.
type Snapshot struct {
	// Display is the current label and image.
	Display proximity.DisplayState
	// Active reports whether the sensor is subscribed.
	Active bool
	// Pending counts alarm sequences that have not completed.
	Pending int
}

// Service abstracts the reactor operations the transport layer depends on.
type Service interface {
	PushSample(ctx context.Context, raw float64) error
	Snapshot(ctx context.Context) (Snapshot, error)
	SetActive(ctx context.Context, active bool) error
}

// Server implements the ReactorService gRPC API.
type Server struct {
	pb.UnimplementedReactorServiceServer

	// service runs the reactor operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// PushSample feeds one raw reading to the push source.
func (s *Server) PushSample(ctx context.Context, req *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "value is required")
	}

	raw := req.GetValue()
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil, status.Error(codes.InvalidArgument, "value must be a finite number")
	}

	if err := s.service.PushSample(ctx, raw); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// GetDisplayState returns the display fields plus the reactor status.
func (s *Server) GetDisplayState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, err := s.service.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := display.ToStruct(snapshot.Display, map[string]any{
		FieldActive:        snapshot.Active,
		FieldPendingAlarms: float64(snapshot.Pending),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode display state")
	}

	return result, nil
}

// SetActive activates or deactivates the reactor.
func (s *Server) SetActive(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "value is required")
	}

	if err := s.service.SetActive(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// FromStruct decodes a GetDisplayState response.
func FromStruct(s *structpb.Struct) (Snapshot, error) {
	state, err := display.FromStruct(s)
	if err != nil {
		return Snapshot{}, err
	}

	fields := s.GetFields()

	return Snapshot{
		Display: state,
		Active:  fields[FieldActive].GetBoolValue(),
		Pending: int(fields[FieldPendingAlarms].GetNumberValue()),
	}, nil
}

// toStatus maps service errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrPushUnsupported):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrInactive):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
