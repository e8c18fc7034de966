package testutil

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/dtroode/auth-service/internal/logger"
)

// MakeNoopLogger returns a logger that drops everything.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, int(slog.LevelDebug), "text")
}

// MakeBufferLogger returns a logger together with the buffer it writes to,
// for asserting on log output.
func MakeBufferLogger(level slog.Level, format string) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter(&buf, int(level), format), &buf
}
