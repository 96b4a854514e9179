package worker

import (
	"context"
	"log/slog"

	audit "nyaya/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. It runs until
// the inbox is closed, so closing the channel drains everything queued.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run persists events until the inbox closes. A failed write is logged and
// the worker moves on; async events are best-effort by contract.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(context.WithoutCancel(ctx), event); err != nil {
			w.logger.ErrorContext(ctx, "async audit persistence failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
	}
}
