package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log. It is the notifier used when
// no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"audience", n.Audience,
		"reference_number", n.ReferenceNumber,
		"status", n.Status,
	)
	return nil
}
