// Package logger wraps zap with a process-wide console logger and context
// helpers. The reactor, the sensor sources and the transport take the
// logger from their context, so every line carries the component name.
package logger
