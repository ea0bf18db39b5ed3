// Package probe implements proximity-probe, a remote control for a running
// reactor: it pushes samples, reads the display and toggles the lifecycle.
package probe
