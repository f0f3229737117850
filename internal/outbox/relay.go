package outbox

import (
	"context"
	"time"

	"stylemart-be/internal/logger"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

type Observer interface {
	ObserveOutbox(result string)
}

// Relay moves pending outbox rows to Kafka. Delivery is at least once: a row
// is marked sent only after the broker acknowledged it.
type Relay struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	observer  Observer
}

func NewRelay(store Store, publisher Publisher, interval time.Duration, observer Observer) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		observer:  observer,
	}
}

func (r *Relay) Run(ctx context.Context) {
	log := logger.FromCtx(ctx).With(zap.String("component", "outbox_relay"))
	log.Info("outbox relay started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := r.publisher.Close(); err != nil {
				log.Warn("failed to close publisher", zap.Error(err))
			}
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				log.Error("outbox batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes up to one batch of pending rows and returns how many
// were marked sent. Rows after the first publish failure are left for the
// next tick so per-key ordering holds.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx).With(zap.String("component", "outbox_relay"))

	records, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range records {
		if err := r.publisher.WriteMessages(ctx, toMessage(rec)); err != nil {
			r.observe("failed")
			log.Warn("failed to publish outbox event",
				zap.Int64("outbox_id", rec.ID),
				zap.String("event_type", rec.EventType),
				zap.Error(err),
			)
			return sent, nil
		}

		if err := r.store.MarkSent(ctx, rec.ID); err != nil {
			return sent, err
		}
		r.observe("sent")
		sent++
	}

	return sent, nil
}

func (r *Relay) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveOutbox(result)
	}
}
