package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Logger is the structured logger handle passed explicitly into every
// component that logs. There is no package-level default.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field                 { return stringField{key, value} }
func Int(key string, value int) Field                { return intField{key, value} }
func Int64(key string, value int64) Field            { return int64Field{key, value} }
func Float64(key string, value float64) Field        { return float64Field{key, value} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
func Error(key string, err error) Field              { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

type slogLogger struct{ l *slog.Logger }

// NewSlogLogger adapts a *slog.Logger. A nil logger discards everything.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slogLogger{l: l}
}

func (s slogLogger) Debug(msg string, fields ...Field) { s.log(slog.LevelDebug, msg, fields) }
func (s slogLogger) Info(msg string, fields ...Field)  { s.log(slog.LevelInfo, msg, fields) }
func (s slogLogger) Warn(msg string, fields ...Field)  { s.log(slog.LevelWarn, msg, fields) }
func (s slogLogger) Error(msg string, fields ...Field) { s.log(slog.LevelError, msg, fields) }

func (s slogLogger) With(fields ...Field) Logger {
	return slogLogger{l: s.l.With(attrs(fields)...)}
}

func (s slogLogger) log(level slog.Level, msg string, fields []Field) {
	s.l.Log(context.Background(), level, msg, attrs(fields)...)
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		v := f.Value()
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		out = append(out, slog.Any(f.Key(), v))
	}
	return out
}

// Trace runs fn, logging entry, exit with the elapsed time, and failure.
// A panic inside fn is recovered and returned as an error.
func Trace(l Logger, name string, fn func() error) (err error) {
	l = OrNop(l).With(String("operation", name))
	start := time.Now()
	l.Debug("entering")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
		elapsed := time.Since(start)
		if err != nil {
			l.Error("failed", Duration("duration", elapsed), Error("error", err))
			return
		}
		l.Debug("exiting", Duration("duration", elapsed))
	}()
	return fn()
}

// Standard metric names emitted by the report pipeline.
const (
	MetricPageCount      = "report.pages.count"
	MetricTableRows      = "report.table.rows"
	MetricImagesPlaced   = "report.images.placed"
	MetricImagesDegraded = "report.images.degraded"
	MetricWriteTime      = "report.write.duration"
)
