// Package logging adapts go-kit/log to the etcd.Logger interface.
package logging

import (
	"io"
	"sort"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger writes logfmt lines through a go-kit logger.
type Logger struct {
	logger kitlog.Logger
}

// New creates a logfmt logger on w. Debug lines are dropped unless verbose
// is set.
func New(w io.Writer, verbose bool) *Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	if !verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return &Logger{logger: logger}
}

// With returns a logger that adds keyvals to every line.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{logger: kitlog.With(l.logger, keyvals...)}
}

// Debug implements etcd.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	_ = level.Debug(l.logger).Log(keyvals(msg, fields)...)
}

// Info implements etcd.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	_ = level.Info(l.logger).Log(keyvals(msg, fields)...)
}

// Warn implements etcd.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	_ = level.Warn(l.logger).Log(keyvals(msg, fields)...)
}

// Error implements etcd.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	_ = level.Error(l.logger).Log(keyvals(msg, fields)...)
}

// keyvals flattens fields in key order so lines are stable.
func keyvals(msg string, fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]interface{}, 0, 2+len(fields)*2)
	out = append(out, "msg", msg)

	for _, key := range keys {
		out = append(out, key, fields[key])
	}

	return out
}
