package events

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// LogHandler writes one audit log line per account event.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler writing to the given logger.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger.With(slog.String("component", "audit"))}
}

// HandleEvent logs the event at info level. It never fails.
func (h *LogHandler) HandleEvent(ctx context.Context, event *AccountEvent) error {
	keys := make([]string, 0, len(event.Attributes))
	for k := range event.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, event.Attributes[k]))
	}

	h.logger.InfoContext(ctx, "account event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("account_id", event.AccountID.String()),
		slog.String("occurred_at", event.OccurredAt.UTC().Format(time.RFC3339Nano)),
		slog.Group("attributes", attrs...))
	return nil
}

var _ EventHandler = (*LogHandler)(nil)
