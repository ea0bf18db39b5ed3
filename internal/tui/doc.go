// Package tui renders the reactor display in a terminal.
//
// The model follows display.Store revisions, activates the reactor when the
// terminal gains focus and pauses it when focus is lost.
package tui
