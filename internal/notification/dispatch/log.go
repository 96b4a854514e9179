package dispatch

import (
	"context"
	"log/slog"

	"nyaya/internal/notification/models"
)

// Log writes alerts to the structured log. Used when no broker is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, channel models.Channel, recipient string, payload []byte, dedupeKey string) error {
	l.logger.InfoContext(ctx, "informant notification",
		"channel", channel,
		"recipient", recipient,
		"dedupe_key", dedupeKey,
		"payload", string(payload),
	)
	return nil
}
