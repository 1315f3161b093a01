package notifier

import (
	"context"

	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
)

// LogSink writes events to the structured log. It is the default sink in dev.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event notification.Event) error {
	s.logger.InfoContext(ctx, "notification published",
		"event_id", event.ID,
		"match_id", event.MatchID,
		"category", event.Category,
		"title", event.Title,
		"body", event.Body,
	)
	return nil
}
