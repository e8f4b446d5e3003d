package notifier

import (
	"context"
	"log/slog"
)

// Log writes notifications to the application log. Used when no webhook
// URL is configured and as a stand-in during tests.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (n *Log) NotifyUser(ctx context.Context, userID, text string) error {
	n.logger.Info("user notification", "user_id", userID, "text", text)
	return nil
}
