// Package reactor implements the gRPC transport for the proximity reactor.
//
// It converts well-known protobuf messages to domain values and maps
// service errors to gRPC status codes.
package reactor
