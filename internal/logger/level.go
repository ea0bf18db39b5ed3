package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thresholdCore drops entries below floor, whatever the wrapped core allows.
type thresholdCore struct {
	zapcore.Core

	// floor is the lowest level written.
	floor zapcore.Level
}

func (c *thresholdCore) Enabled(l zapcore.Level) bool {
	return l >= c.floor && c.Core.Enabled(l)
}

//nolint:gocritic // zapcore.Core passes entries by value.
func (c *thresholdCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

//nolint:ireturn // Required by zapcore.Core.
func (c *thresholdCore) With(fields []zapcore.Field) zapcore.Core {
	return &thresholdCore{Core: c.Core.With(fields), floor: c.floor}
}

// RaiseLevel returns ctx with a logger that skips entries below floor.
// Command-line clients use it to keep their stdout for results.
func RaiseLevel(ctx context.Context, floor zapcore.Level) context.Context {
	l := FromContext(ctx).WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &thresholdCore{Core: core, floor: floor}
	}))

	return ToContext(ctx, l)
}
