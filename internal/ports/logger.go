package ports

import "context"

// Level orders log messages by severity. A logger emits a message only when
// its level is at or above the logger's own.
type Level int

// Levels, least severe first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field keys shared by the pipeline, the executor and the fetcher. Every
// message logged during a run carries FieldRunID, and every message logged
// while a step is running also carries FieldStep.
const (
	FieldRunID   = "run_id"
	FieldStep    = "step"
	FieldURL     = "url"
	FieldPath    = "path"
	FieldCommand = "command"
	FieldError   = "error"
)

// String returns the upper-case label printed by console loggers.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is one key/value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for Field{Key: key, Value: value}.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logging port. Implementations must be safe for
// use by a logger and the loggers derived from it through With.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// With derives a logger that prefixes fields to every message. The
	// receiver is left unchanged, so a run logger can hand a step-scoped
	// child to each step.
	With(fields ...Field) Logger

	// Level and SetLevel read and change the minimum level emitted.
	Level() Level
	SetLevel(level Level)
}

// Discard returns a logger that drops every message. Components that are
// not given a logger use it.
func Discard() Logger {
	return &discard{level: LevelInfo}
}

type discard struct {
	level Level
}

func (*discard) Debug(context.Context, string, ...Field) {}
func (*discard) Info(context.Context, string, ...Field)  {}
func (*discard) Warn(context.Context, string, ...Field)  {}
func (*discard) Error(context.Context, string, ...Field) {}

func (d *discard) With(...Field) Logger { return d }

func (d *discard) Level() Level         { return d.level }
func (d *discard) SetLevel(level Level) { d.level = level }

// LoggerFromContext returns the logger stored by ContextWithLogger, or nil.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return nil
}

// LoggerFromContextOr is LoggerFromContext with a fallback for contexts
// that carry no logger.
func LoggerFromContextOr(ctx context.Context, fallback Logger) Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return fallback
}

// ContextWithLogger stores logger in ctx. Step work reads it back to log
// with the step's run_id and step fields already attached.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}
