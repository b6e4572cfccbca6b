// Package notify abstracts user-visible success and failure messages. The
// engine never decides how messages are rendered, only when exactly one is
// owed.
package notify

import (
	"context"

	"github.com/momentfin/ledgersync/internal/logging"
)

type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// LogNotifier writes notifications to the structured log. Used by the demo
// wiring and as a safe default.
type LogNotifier struct{}

func (LogNotifier) Success(ctx context.Context, message string) {
	logging.FromContext(ctx).Info("notify", "kind", "success", "message", message)
}

func (LogNotifier) Error(ctx context.Context, message string) {
	logging.FromContext(ctx).Warn("notify", "kind", "error", "message", message)
}
