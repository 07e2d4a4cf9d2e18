package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vietlabor/lawrag/core"
)

// Logger defines the minimal logging interface used across lawrag. Components
// accept a Logger and substitute NoOpLogger when given nil, so logging never
// becomes a hard dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// EngineLogger wraps slog.Logger adding session/turn context and domain
// convenience methods. With* methods return cheap copies so handlers can fan
// out per-request loggers.
type EngineLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
	turnID    string
}

// EngineLoggerConfig configures construction of an EngineLogger.
type EngineLoggerConfig struct {
	Level     slog.Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// NewEngineLogger builds an EngineLogger from a config (or JSON info-level
// defaults if nil).
func NewEngineLogger(cfg *EngineLoggerConfig) *EngineLogger {
	if cfg == nil {
		cfg = &EngineLoggerConfig{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &EngineLogger{logger: slog.New(handler), component: cfg.Component}
}

// WithComponent sets the logical component (engine, retriever, server, ...).
func (l *EngineLogger) WithComponent(c string) *EngineLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches session and turn identifiers.
func (l *EngineLogger) WithSession(sessionID, turnID string) *EngineLogger {
	nl := *l
	nl.sessionID = sessionID
	nl.turnID = turnID
	return &nl
}

func (l *EngineLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+3)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionID != "" {
		out = append(out, slog.String("session_id", l.sessionID))
	}
	if l.turnID != "" {
		out = append(out, slog.String("turn_id", l.turnID))
	}
	return append(out, extra...)
}

func (l *EngineLogger) log(level slog.Level, msg string, extra ...slog.Attr) {
	l.logger.LogAttrs(context.Background(), level, msg, l.attrs(extra...)...)
}

// Debug logs at debug level.
func (l *EngineLogger) Debug(msg string, args ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, append(l.attrs(), slog.Group("args", args...))...)
}

// Info logs at info level.
func (l *EngineLogger) Info(msg string, args ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, append(l.attrs(), slog.Group("args", args...))...)
}

// Warn logs at warn level.
func (l *EngineLogger) Warn(msg string, args ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, append(l.attrs(), slog.Group("args", args...))...)
}

// Error logs at error level.
func (l *EngineLogger) Error(msg string, args ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, append(l.attrs(), slog.Group("args", args...))...)
}

// LogLLMCall records model call latency and success.
func (l *EngineLogger) LogLLMCall(model string, dur time.Duration, success bool, err error) {
	extra := []slog.Attr{
		slog.String("model", model),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	}
	if err != nil {
		extra = append(extra, slog.String("error", err.Error()))
	}
	level, msg := slog.LevelInfo, "LLM call completed"
	if !success {
		level, msg = slog.LevelError, "LLM call failed"
	}
	l.log(level, msg, extra...)
}

// LogRetrieval records hybrid retrieval counts and latency for one query.
func (l *EngineLogger) LogRetrieval(denseHits, sparseHits, fused int, dur time.Duration) {
	l.log(slog.LevelInfo, "Hybrid retrieval completed",
		slog.Int("dense_hits", denseHits),
		slog.Int("sparse_hits", sparseHits),
		slog.Int("fused", fused),
		slog.Duration("duration", dur),
	)
}

// LogRouterDecision records one intent classification outcome.
func (l *EngineLogger) LogRouterDecision(d core.RouterDecision) {
	l.log(slog.LevelInfo, "Router decision",
		slog.String("intent", string(d.Intent)),
		slog.Float64("confidence", d.Confidence),
		slog.String("reasoning", d.Reasoning),
	)
}
