// Package log wraps log/slog with component-scoped loggers and the
// attribute names shared by the HTTP server, the services and the workers.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger tagged with the component that owns it. The
// component attribute appears once per record, even after WithComponent.
type Logger struct {
	*slog.Logger
	base      *slog.Logger // without the component attribute
	component string
}

// Config holds logger configuration. A nil Handler means text on stdout.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp}
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewWithLevel returns a text logger on stdout for the given level name.
func NewWithLevel(level, component string) *Logger {
	return New(Config{Level: ParseLevel(level), Component: component})
}

func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	return wrap(slog.New(handler), cfg.Component)
}

func wrap(base *slog.Logger, component string) *Logger {
	l := &Logger{Logger: base, base: base, component: component}
	if component != "" {
		l.Logger = base.With(FieldComponent, component)
	}
	return l
}

// With returns a logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		base:      l.base.With(args...),
		component: l.component,
	}
}

// WithComponent returns a logger for component, replacing the current one.
func (l *Logger) WithComponent(component string) *Logger {
	return wrap(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs logger as the slog default, so package-level slog
// calls in services and workers share its handler.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
