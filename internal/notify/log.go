package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher writes notifications to the log instead of delivering them.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(_ context.Context, kind Kind, recipient string, payload Payload) error {
	d.log.Info("notification",
		zap.String("kind", string(kind)),
		zap.String("recipient", recipient),
		zap.Any("payload", payload),
	)
	return nil
}
