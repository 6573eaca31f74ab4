package logx

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type (
	Level string

	// Logger is the structured logger used across the client.
	Logger interface {
		Debug(msg string, keyvals ...any)
		Info(msg string, keyvals ...any)
		Warn(msg string, keyvals ...any)
		Error(msg string, keyvals ...any)
	}

	charmLogger struct {
		l *charmlog.Logger
	}

	nopLogger struct{}
)

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (lv Level) charmLevel() charmlog.Level {
	switch Level(strings.ToLower(strings.TrimSpace(string(lv)))) {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

type Config struct {
	Level      Level
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.charmLevel(),
		Prefix:          "billing",
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &charmLogger{l: l}
}

// Nop discards everything.
func Nop() Logger { return nopLogger{} }

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any) { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any) { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
