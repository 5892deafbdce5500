// Package qlog provides the structured logger injected into
// blockingqueue.Queue for capacity rejections and interrupts:
// a slog.Logger wrapped for dependency injection, backed by stdout or a
// lumberjack-rotated file.
package qlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/wire"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProviderSet is the Wire provider set for the qlog package.
var ProviderSet = wire.NewSet(ProvideLogger)

// Conf configures the logger's output and rotation.
type Conf struct {
	Output     string // "stdout" or "file"
	Path       string
	Filename   string
	Level      string
	KeepDays   int
	RotateSize int
	RotateNum  int
}

// Logger wraps slog.Logger with the trio of plain/structured/context
// methods the blockingqueue.Logger interface (and Go callers generally)
// expect.
type Logger struct {
	*slog.Logger
}

// ProvideLogger builds a *Logger for dependency injection.
func ProvideLogger(conf *Conf) (*Logger, error) {
	l, err := New(conf)
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l}, nil
}

// SetDefaults returns a default Conf logging to stdout at info level.
func SetDefaults() *Conf {
	return &Conf{
		Output:     "stdout",
		Path:       "./logs",
		Filename:   "queue.log",
		Level:      "INFO",
		KeepDays:   7,
		RotateSize: 100,
		RotateNum:  10,
	}
}

// Validate normalizes Conf, filling unset fields with defaults.
func (c *Conf) Validate() error {
	if c == nil {
		return fmt.Errorf("qlog: config is nil")
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Output == "file" {
		if c.Path == "" {
			return fmt.Errorf("qlog: path is required when output is 'file'")
		}
		if c.Filename == "" {
			c.Filename = "queue.log"
		}
		if c.RotateSize <= 0 {
			c.RotateSize = 100
		}
		if c.RotateNum <= 0 {
			c.RotateNum = 10
		}
		if c.KeepDays <= 0 {
			c.KeepDays = 7
		}
	}
	return nil
}

// New builds a *slog.Logger from conf, defaulting conf when nil.
func New(conf *Conf) (*slog.Logger, error) {
	if conf == nil {
		conf = SetDefaults()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("qlog: invalid config: %w", err)
	}

	output, err := buildOutputWriter(conf)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{
		Level: parseLevel(conf.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	l := slog.New(slog.NewTextHandler(output, handlerOptions))
	l = l.With("component", "concurrentqueue")
	return l, nil
}

func buildOutputWriter(conf *Conf) (io.Writer, error) {
	switch conf.Output {
	case "file":
		return fileWriter(conf)
	default:
		return os.Stdout, nil
	}
}

func fileWriter(conf *Conf) (io.Writer, error) {
	if err := os.MkdirAll(conf.Path, 0o755); err != nil {
		return nil, fmt.Errorf("qlog: create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, conf.Filename),
		MaxSize:    conf.RotateSize,
		MaxBackups: conf.RotateNum,
		MaxAge:     conf.KeepDays,
		Compress:   true,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultContext() context.Context { return context.Background() }

// Info logs msg at info level with no structured fields.
func (l *Logger) Info(msg string) { l.Logger.Log(defaultContext(), slog.LevelInfo, msg) }

// Infow logs a structured message at info level.
func (l *Logger) Infow(msg string, keysAndValues ...any) {
	l.InfoContext(defaultContext(), msg, keysAndValues...)
}

// InfoContext logs a context-aware structured message at info level.
func (l *Logger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.Logger.Log(ctx, slog.LevelInfo, msg, keysAndValues...)
}

// Debug logs msg at debug level with no structured fields.
func (l *Logger) Debug(msg string) { l.Logger.Log(defaultContext(), slog.LevelDebug, msg) }

// Debugw logs a structured message at debug level.
func (l *Logger) Debugw(msg string, keysAndValues ...any) {
	l.DebugContext(defaultContext(), msg, keysAndValues...)
}

// DebugContext logs a context-aware structured message at debug level.
func (l *Logger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.Logger.Log(ctx, slog.LevelDebug, msg, keysAndValues...)
}

// Warn logs msg at warn level with no structured fields.
func (l *Logger) Warn(msg string) { l.Logger.Log(defaultContext(), slog.LevelWarn, msg) }

// Warnw logs a structured message at warn level.
func (l *Logger) Warnw(msg string, keysAndValues ...any) {
	l.WarnContext(defaultContext(), msg, keysAndValues...)
}

// WarnContext logs a context-aware structured message at warn level.
func (l *Logger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.Logger.Log(ctx, slog.LevelWarn, msg, keysAndValues...)
}

// Error logs msg at error level with no structured fields.
func (l *Logger) Error(msg string) { l.Logger.Log(defaultContext(), slog.LevelError, msg) }

// Errorw logs a structured message at error level.
func (l *Logger) Errorw(msg string, keysAndValues ...any) {
	l.ErrorContext(defaultContext(), msg, keysAndValues...)
}

// ErrorContext logs a context-aware structured message at error level.
func (l *Logger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.Logger.Log(ctx, slog.LevelError, msg, keysAndValues...)
}
