package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the process-wide logger; contexts without their own logger use it.
	//nolint:gochecknoglobals // Every package logs through it.
	global atomic.Pointer[zap.SugaredLogger]
	// globalLevel is shared by every logger built with a nil level.
	//nolint:gochecknoglobals // Changed at runtime from the log_level setting.
	globalLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() { //nolint:gochecknoinits // Packages may log before main configures anything.
	SetLogger(build(zapcore.Lock(os.Stdout), globalLevel, true))
}

// NewWithOutput creates a console-format logger writing plain text to output.
// A nil level follows the global level.
func NewWithOutput(output zapcore.WriteSyncer, level zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	return build(output, level, false, options...)
}

// build assembles the console core. Colored level names are only for terminals.
func build(
	output zapcore.WriteSyncer,
	level zapcore.LevelEnabler,
	colored bool,
	options ...zap.Option,
) *zap.SugaredLogger {
	if level == nil {
		level = globalLevel
	}

	encodeLevel := zapcore.CapitalLevelEncoder
	if colored {
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	//nolint:exhaustruct // Function and stacktrace keys stay disabled.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		TimeKey:          "time",
		CallerKey:        "caller",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      encodeLevel,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: ", ",
	})

	return zap.New(zapcore.NewCore(encoder, output, level), options...).Sugar()
}

// ParseLogLevel maps a log_level setting to a zap level.
// Unknown names yield info and false.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global.Load()
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.SugaredLogger) {
	global.Store(l)
}

// SetLevel changes the threshold of every logger following the global level.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// RedirectToFile sends the global logger to the file at path, appending to it.
// The returned function flushes, restores the previous logger and closes the file.
// The terminal UI uses it so log lines do not tear the screen.
func RedirectToFile(path string, perm os.FileMode) (func(), error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, perm)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	previous := Logger()
	SetLogger(NewWithOutput(zapcore.Lock(file), nil))

	return func() {
		_ = Logger().Sync()

		SetLogger(previous)

		_ = file.Close()
	}, nil
}
