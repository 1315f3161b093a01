package scheduler

import (
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

type cronLogger struct {
	logger *logging.Logger
}

// NewCronLogger adapts the service logger to cron.Logger. Cron's info chatter goes to debug.
func NewCronLogger(logger *logging.Logger) cron.Logger {
	return cronLogger{logger: logger}
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
