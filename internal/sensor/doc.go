// Package sensor delivers proximity samples from the available sources.
//
// Every source implements Source: Subscribe starts delivering samples to a
// Handler at a sampling-rate hint, Unsubscribe stops it and guarantees the
// handler is not invoked after it returns. Available sources read the Linux
// industrial I/O sysfs tree, an MQTT topic, or samples pushed by the process
// itself (the gRPC API and the terminal UI).
package sensor
