package tracepad

import (
	"log/slog"

	"github.com/wbrown/tracepad/internal/logging"
)

// SetLogger configures the logger used by tracepad and its packages.
// Nothing is logged by default. Pass nil to silence it again.
//
// Debug covers stroke transitions, history evictions, empty undos and
// filter timing. Info covers surface initialization and resizing.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
