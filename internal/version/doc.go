// Package version exposes build metadata for the proximity-alarm binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short and Full render them for CLI output, Fields for logs.
package version
