package ycbcr

import (
	"log/slog"

	"github.com/gogpu/ycbcr/lower"
)

// SetLogger configures the logger for the lowering pipeline. By default
// nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-site decisions (lowered, skipped)
//   - [slog.LevelInfo]: per-function summaries
//
// Example:
//
//	ycbcr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	lower.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return lower.Logger()
}
