// Package pb declares the proximity.v1.ReactorService gRPC contract.
//
// Messages are protobuf well-known types, so the service descriptor is
// declared directly in Go instead of being generated from a .proto file:
//
//	service ReactorService {
//	  rpc PushSample(google.protobuf.DoubleValue) returns (google.protobuf.Empty);
//	  rpc GetDisplayState(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc SetActive(google.protobuf.BoolValue) returns (google.protobuf.Empty);
//	}
package pb
