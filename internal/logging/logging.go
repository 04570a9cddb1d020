package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option customises the logger built by New.
type Option func(*options)

type options struct {
	level       string
	encoding    string
	outputPaths []string
	writer      io.Writer
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error"). Empty keeps info.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithEncoding selects "json" or "console" output.
func WithEncoding(encoding string) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// WithOutputPaths overrides where log lines are written (default stderr).
func WithOutputPaths(paths ...string) Option {
	return func(o *options) {
		o.outputPaths = paths
	}
}

// WithWriter sends log lines to w instead of the configured output paths.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New creates a production-ready structured logger, JSON encoded unless configured otherwise.
func New(opts ...Option) (*zap.Logger, error) {
	o := options{encoding: "json"}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = o.encoding
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	if len(o.outputPaths) > 0 {
		cfg.OutputPaths = o.outputPaths
	}

	if o.level != "" {
		level, err := zapcore.ParseLevel(o.level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	if o.encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if o.writer != nil {
		var enc zapcore.Encoder
		if o.encoding == "console" {
			enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		} else {
			enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
		}
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(o.writer), cfg.Level), zap.AddCaller()), nil
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
