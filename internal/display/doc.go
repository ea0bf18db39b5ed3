// Package display holds what the user sees and fans it out to renderers.
//
// Store is the authoritative DisplayState: the reactor mutates it from its
// loop, the terminal UI and the gRPC API read snapshots or watch revisions.
// StreamPublisher mirrors every revision to a Redis stream.
package display
