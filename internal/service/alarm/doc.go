// Package alarm runs the proximity-alarm process: the sensor source, the
// reactor loop, the display sinks, the gRPC API and the terminal UI.
package alarm
