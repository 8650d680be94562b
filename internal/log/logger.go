// Package log is the structured logger shared by the serializers and tools.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts debug, info, warn (or warning) and error, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) String() string {
	return toZapLevel(l).String()
}

// Options configures New. Encoding is "console" or "json".
type Options struct {
	Level    Level
	Encoding string
	Output   []string
}

type Logger struct {
	zapLogger *zap.Logger
}

func New(opts Options) (*Logger, error) {
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "console"
	}
	output := opts.Output
	if len(output) == 0 {
		output = []string{"stderr"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if encoding == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(toZapLevel(opts.Level)),
		Development:       false,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       output,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{zapLogger: zapLogger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

// FromZap wraps an existing zap logger, e.g. one built on zaptest/observer.
func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{zapLogger: z}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zap().Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zap().Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zap().Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zap().Error(msg, fields...) }

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{zapLogger: l.zap().With(fields...)}
}

// Named adds a sub-scope to the logger name, joined with dots.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zapLogger: l.zap().Named(name)}
}

func (l *Logger) Enabled(level Level) bool {
	return l.zap().Core().Enabled(toZapLevel(level))
}

func (l *Logger) Sync() error {
	return l.zap().Sync()
}

// zap tolerates a nil *Logger so zero-value serializers still work.
func (l *Logger) zap() *zap.Logger {
	if l == nil || l.zapLogger == nil {
		return zap.NewNop()
	}
	return l.zapLogger
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
