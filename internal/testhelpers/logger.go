package testhelpers

import (
	"github.com/myrjola/sentinels/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a debug level logger writing to logSink such as io.Discard. Timestamps are dropped so that
// tests can compare log output.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	return slog.New(handler)
}
