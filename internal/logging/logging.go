// Package logging builds the process-wide structured logger and the
// startup banner. Grounded on RoseWrightdev-Video-Conferencing's
// internal/v1/logging/logger.go (zap.Config construction, colored
// level encoder) standing in for the Rust backend's
// env_logger+colored+chrono console logger in
// original_source/backend/src/logger.rs.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the CLI-facing log level, one notch wider than zap's own
// level set: error, warn, info, debug, trace (trace has no native
// zap level — see New).
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String renders the level the way the CLI flag and config file
// expect it, mirroring the Rust LogLevel's Display.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "info"
	}
}

// Type satisfies pflag.Value so Level can be used directly as a
// --log flag.
func (l Level) Type() string { return "level" }

// Set satisfies pflag.Value, parsing the flag's string form.
func (l *Level) Set(text string) error {
	parsed, err := ParseLevel(text)
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// ParseLevel is the inverse of String; unrecognized text is an error,
// matching the Rust LogLevel's FromStr.
func ParseLevel(text string) (Level, error) {
	switch text {
	case "error":
		return LevelError, nil
	case "warn":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelInfo, fmt.Errorf("unrecognized log level %q", text)
	}
}

// zapLevel maps a Level onto the nearest zapcore.Level. trace has no
// native zap level; it collapses onto DebugLevel and callers add an
// extra trace=true field (see Trace below) to distinguish it in
// output — the closest available fit, not a perfect translation.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelDebug, LevelTrace:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a development-style, colorized console logger at the
// given level, the way logger::init configures env_logger in the
// original, adapted to zap.Config per RoseWrightdev-Video-Conferencing.
func New(level Level) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(level.zapLevel())
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// Trace logs at the synthetic trace level: zap's DebugLevel plus a
// trace=true field, so a "debug" reader can still tell trace lines
// apart from ordinary debug lines.
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) {
	logger.Debug(msg, append(fields, zap.Bool("trace", true))...)
}

// Welcome logs the startup banner, mirroring
// backend/src/logger.rs::welcome: bind address, WebSocket URL, and
// session limit in one line.
func Welcome(logger *zap.Logger, addr string, limit int) {
	logger.Info("poker server listening",
		zap.String("http", fmt.Sprintf("http://%s", addr)),
		zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
		zap.Int("session_limit", limit),
	)
}
