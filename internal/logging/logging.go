// Package logging builds the zap loggers used by the server and CLI.
//
// All output goes to stderr. Stdout is reserved for the MCP protocol stream
// and for command results.
package logging

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured log lines.
const (
	FieldRequestID  = "request_id"
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldSkipped    = "skipped"
	FieldEnhanced   = "enhanced"
	FieldPath       = "path"
	FieldTool       = "tool"
	FieldMethod     = "method"
	FieldBackend    = "backend"
	FieldStage      = "stage"
	FieldBatchSize  = "batch_size"
	FieldWorkers    = "workers"
)

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// zap level. The empty string means info.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", name)
	}
	return lvl, nil
}

// New returns a logger at the given level writing to stderr, JSON-encoded
// when jsonOutput is set and human-readable otherwise.
func New(level string, jsonOutput bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return newWithSink(lvl, jsonOutput, zapcore.Lock(os.Stderr)), nil
}

func newWithSink(lvl zapcore.Level, jsonOutput bool, sink zapcore.WriteSyncer) *zap.Logger {
	var enc zapcore.Encoder
	if jsonOutput {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeCaller = nil
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, sink, lvl))
}
