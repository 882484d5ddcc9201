// Package log carries a logrus entry through context and accepts alternating
// key/value arguments.
package log

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// NewEntry builds a text-formatted entry without timestamps.
func NewEntry(out io.Writer, level logrus.Level) *logrus.Entry {
	return logrus.NewEntry(&logrus.Logger{
		Out: out,
		Formatter: &logrus.TextFormatter{
			DisableQuote:     true,
			DisableTimestamp: true,
			DisableSorting:   true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	})
}

// DefaultEntry is used when the context carries no logger.
var DefaultEntry = NewEntry(os.Stderr, logrus.InfoLevel)

func Error(ctx context.Context, msg string, args ...interface{}) {
	AppendArgs(GetLogger(ctx), args...).Error(msg)
}

func Info(ctx context.Context, msg string, args ...interface{}) {
	AppendArgs(GetLogger(ctx), args...).Info(msg)
}

func Debug(ctx context.Context, msg string, args ...interface{}) {
	AppendArgs(GetLogger(ctx), args...).Debug(msg)
}

// AppendArgs adds alternating key/value pairs as fields.
func AppendArgs(logger *logrus.Entry, args ...interface{}) *logrus.Entry {
	if len(args) == 0 {
		return logger
	}
	if len(args)%2 != 0 {
		logger.WithField("count", len(args)).Warning("count of log arguments must be even")
	}
	fields := make(logrus.Fields)
	for idx := 0; idx+1 < len(args); idx += 2 {
		if key, ok := args[idx].(string); ok {
			fields[key] = args[idx+1]
		} else {
			logger.WithFields(logrus.Fields{"idx": idx, "key_type": fmt.Sprintf("%T", args[idx])}).
				Warning("argument for key must be string")
		}
	}
	return logger.WithFields(fields)
}

// WithLogger returns a new context with the provided logger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger.WithContext(ctx))
}

// GetLogger retrieves the current logger from the context. If no logger is
// available, the default logger is returned.
func GetLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(loggerKey{})
	if logger == nil {
		return DefaultEntry.WithContext(ctx)
	}
	return logger.(*logrus.Entry)
}
