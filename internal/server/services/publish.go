package services

import (
	"context"

	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/logging"
)

// publish emits an event after the data is committed. Failures are logged
// and never fail the operation.
func publish(ctx context.Context, pub events.Publisher, log logging.Logger, topic string, ev any) {
	if err := pub.Publish(ctx, topic, ev); err != nil {
		log.Warn(ctx, "event not published", "topic", topic, "error", err)
	}
}
