package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
)

// Logger is the logging interface used throughout the snitch.
type Logger interface {
	Debug(msg string, tags ...tag.Tag)
	Info(msg string, tags ...tag.Tag)
	Warn(msg string, tags ...tag.Tag)
	Error(msg string, tags ...tag.Tag)
	Fatal(msg string, tags ...tag.Tag)
}

type zapLogger struct {
	zl *zap.Logger
}

var _ Logger = (*zapLogger)(nil)

// NewCLILogger returns a logger writing human-readable output to stderr.
// Debug-level messages are emitted only when debug is true.
func NewCLILogger(debug bool) Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return &zapLogger{zl: zap.New(core)}
}

// NewFileLogger returns a logger appending to the file at path, truncating any
// previous contents, along with a close function flushing buffered entries.
func NewFileLogger(path string) (Logger, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("log: failed to open %s: %w", path, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(f),
		zapcore.InfoLevel,
	)
	zl := zap.New(core)
	closeFn := func() error {
		_ = zl.Sync()
		return f.Close()
	}
	return &zapLogger{zl: zl}, closeFn, nil
}

func (l *zapLogger) Debug(msg string, tags ...tag.Tag) {
	l.zl.Debug(msg, fields(tags)...)
}

func (l *zapLogger) Info(msg string, tags ...tag.Tag) {
	l.zl.Info(msg, fields(tags)...)
}

func (l *zapLogger) Warn(msg string, tags ...tag.Tag) {
	l.zl.Warn(msg, fields(tags)...)
}

func (l *zapLogger) Error(msg string, tags ...tag.Tag) {
	l.zl.Error(msg, fields(tags)...)
}

func (l *zapLogger) Fatal(msg string, tags ...tag.Tag) {
	l.zl.Fatal(msg, fields(tags)...)
}

func fields(tags []tag.Tag) []zap.Field {
	fs := make([]zap.Field, len(tags))
	for i, t := range tags {
		fs[i] = t.Field()
	}
	return fs
}

type noopLogger struct{}

var _ Logger = (*noopLogger)(nil)

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (n *noopLogger) Debug(string, ...tag.Tag) {}
func (n *noopLogger) Info(string, ...tag.Tag)  {}
func (n *noopLogger) Warn(string, ...tag.Tag)  {}
func (n *noopLogger) Error(string, ...tag.Tag) {}
func (n *noopLogger) Fatal(string, ...tag.Tag) {}
