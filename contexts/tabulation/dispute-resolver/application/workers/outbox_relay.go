package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "scrutin/contexts/tabulation/dispute-resolver/application"
	"scrutin/contexts/tabulation/dispute-resolver/ports"
)

// OutboxRelay publishes persisted dispute outbox records to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after broker publish succeeds.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("dispute outbox list failed",
			"event", "dispute_outbox_list_failed",
			"module", "tabulation/dispute-resolver",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("dispute outbox decode failed",
				"event", "dispute_outbox_decode_failed",
				"module", "tabulation/dispute-resolver",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("dispute outbox publish failed",
				"event", "dispute_outbox_publish_failed",
				"module", "tabulation/dispute-resolver",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"topic", topic,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("dispute outbox mark published failed",
				"event", "dispute_outbox_mark_published_failed",
				"module", "tabulation/dispute-resolver",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("dispute outbox batch published",
		"event", "dispute_outbox_batch_published",
		"module", "tabulation/dispute-resolver",
		"layer", "worker",
		"count", len(pending),
	)
	return nil
}
