// Package logger holds the process wide structured logger.
package logger

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Standard field names used across the code base.
const (
	FieldComponent = "component"
	FieldSession   = "session_id"
	FieldSeq       = "seq"
	FieldGesture   = "gesture"
	FieldTracking  = "tracking_id"
	FieldAddress   = "address"
	FieldRemote    = "remote"
	FieldFile      = "file"
	FieldCount     = "count"
	FieldError     = "error"
)

// Options configures the logger.
type Options struct {
	// JSON selects machine readable output instead of the console encoder.
	JSON bool
	// Level is one of debug, info, warn, error.
	Level string
	// File, when set, additionally writes JSON logs to a rotated file.
	File string
}

// Logger is the global logger. It discards everything until Initialize is called.
var Logger = zap.NewNop().Sugar()

// Initialize replaces the global logger according to opts.
func Initialize(opts Options) error {
	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return errors.WithHint(
				errors.Wrapf(err, "invalid log level %q", opts.Level),
				"use one of: debug, info, warn, error",
			)
		}
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotated),
			level,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

// ComponentLogger returns a logger tagged with the component name.
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name).With(FieldComponent, name)
}

// Cleanup flushes any buffered log entries.
func Cleanup() {
	_ = Logger.Sync()
}
