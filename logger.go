package prefs

import (
	"context"
	"log/slog"
	"time"
)

// LogLevel grades a LogEvent.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// LogEvent describes one engine operation for logging.
type LogEvent struct {
	Level    LogLevel
	Op       string
	Setting  string
	Value    string
	Message  string
	Duration time.Duration
	Err      error
}

// Logger records engine events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// NoopLogger returns a Logger that drops every event.
func NoopLogger() Logger {
	return noopLogger{}
}

// SlogLogger forwards events to a structured slog.Logger.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event LogEvent) {
	attrs := []slog.Attr{slog.String("op", event.Op)}
	if event.Setting != "" {
		attrs = append(attrs, slog.String("setting", event.Setting))
	}
	if event.Value != "" {
		attrs = append(attrs, slog.String("value", event.Value))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	msg := event.Message
	if msg == "" {
		msg = "prefs " + event.Op
	}
	l.logger.LogAttrs(context.Background(), event.Level.slog(), msg, attrs...)
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
