package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Full method names of ReactorService.
const (
	ReactorServicePushSampleFullMethodName      = "/proximity.v1.ReactorService/PushSample"
	ReactorServiceGetDisplayStateFullMethodName = "/proximity.v1.ReactorService/GetDisplayState"
	ReactorServiceSetActiveFullMethodName       = "/proximity.v1.ReactorService/SetActive"
)

// ReactorServiceClient is the client API for ReactorService.
type ReactorServiceClient interface {
	// PushSample delivers a raw proximity reading through the push source.
	PushSample(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	// GetDisplayState returns the label, the image and the reactor status.
	GetDisplayState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// SetActive activates or deactivates the reactor.
	SetActive(ctx context.Context, in *wrapperspb.BoolValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type reactorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReactorServiceClient creates a client bound to cc.
//
//nolint:ireturn // Mirrors generated gRPC constructors.
func NewReactorServiceClient(cc grpc.ClientConnInterface) ReactorServiceClient {
	return &reactorServiceClient{cc}
}

func (c *reactorServiceClient) PushSample(
	ctx context.Context,
	in *wrapperspb.DoubleValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, ReactorServicePushSampleFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *reactorServiceClient) GetDisplayState(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReactorServiceGetDisplayStateFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *reactorServiceClient) SetActive(
	ctx context.Context,
	in *wrapperspb.BoolValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, ReactorServiceSetActiveFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ReactorServiceServer is the server API for ReactorService.
// Implementations must embed UnimplementedReactorServiceServer.
type ReactorServiceServer interface {
	PushSample(ctx context.Context, in *wrapperspb.DoubleValue) (*emptypb.Empty, error)
	GetDisplayState(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	SetActive(ctx context.Context, in *wrapperspb.BoolValue) (*emptypb.Empty, error)
	mustEmbedUnimplementedReactorServiceServer()
}

// UnimplementedReactorServiceServer answers every method with Unimplemented.
type UnimplementedReactorServiceServer struct{}

func (UnimplementedReactorServiceServer) PushSample(context.Context, *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PushSample not implemented")
}

func (UnimplementedReactorServiceServer) GetDisplayState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDisplayState not implemented")
}

func (UnimplementedReactorServiceServer) SetActive(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetActive not implemented")
}

func (UnimplementedReactorServiceServer) mustEmbedUnimplementedReactorServiceServer() {}

// RegisterReactorServiceServer registers srv with s.
func RegisterReactorServiceServer(s grpc.ServiceRegistrar, srv ReactorServiceServer) {
	s.RegisterService(&ReactorService_ServiceDesc, srv)
}

func reactorServicePushSampleHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ReactorServiceServer).PushSample(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReactorServicePushSampleFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReactorServiceServer).PushSample(ctx, req.(*wrapperspb.DoubleValue))
	}

	return interceptor(ctx, in, info, handler)
}

func reactorServiceGetDisplayStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ReactorServiceServer).GetDisplayState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReactorServiceGetDisplayStateFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReactorServiceServer).GetDisplayState(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func reactorServiceSetActiveHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.BoolValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ReactorServiceServer).SetActive(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReactorServiceSetActiveFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReactorServiceServer).SetActive(ctx, req.(*wrapperspb.BoolValue))
	}

	return interceptor(ctx, in, info, handler)
}

// ReactorService_ServiceDesc is the grpc.ServiceDesc for ReactorService.
//
//nolint:gochecknoglobals,revive,stylecheck // Mirrors generated gRPC descriptors.
var ReactorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "proximity.v1.ReactorService",
	HandlerType: (*ReactorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushSample",
			Handler:    reactorServicePushSampleHandler,
		},
		{
			MethodName: "GetDisplayState",
			Handler:    reactorServiceGetDisplayStateHandler,
		},
		{
			MethodName: "SetActive",
			Handler:    reactorServiceSetActiveHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proximity/v1/reactor.proto",
}
