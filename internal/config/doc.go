// Package config defines the settings used by the proximity-alarm binaries
// and provides helpers to load, validate and save them in YAML format.
//
// Validate fills defaults (listen address, sensor source, alarm timings,
// sound backend) so callers can rely on every field being set.
package config
