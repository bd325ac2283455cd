package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything, keeping test output
// free of connection lifecycle noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
