package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/log"
	"subtrack/internal/metrics"
	"subtrack/internal/ports"
)

// PauseStore is what the scheduled pause trigger needs from storage.
type PauseStore interface {
	ports.SubscriptionReader
	ports.PauseApplier
}

// PauseProcessor applies pause-at-renewal requests whose billing date has
// arrived. It is the external trigger the lifecycle policy relies on.
type PauseProcessor struct {
	store     PauseStore
	publisher ports.EventPublisher
	metrics   *metrics.Metrics
}

// NewPauseProcessor returns a processor over store. publisher and m may be nil.
func NewPauseProcessor(store PauseStore, publisher ports.EventPublisher, m *metrics.Metrics) *PauseProcessor {
	return &PauseProcessor{
		store:     store,
		publisher: publisher,
		metrics:   m,
	}
}

// ProcessDuePauses pauses every subscription whose scheduled pause is due
// at now and returns how many were paused. A failure on one record is
// logged and skipped.
func (p *PauseProcessor) ProcessDuePauses(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, errors.New("processor not properly initialized")
	}

	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		p.metrics.IncPauseCheckFailure("list")
		return 0, err
	}

	slog.InfoContext(ctx, "Checking scheduled pauses",
		"total", len(subs),
		"processing_date", core.DateOf(now).String())

	processed := 0
	for i, sub := range subs {
		paused, due := ApplyScheduledPause(sub, now)
		if !due {
			continue
		}

		applied, err := p.store.ApplyScheduledPause(ctx, sub.ID, sub.PauseScheduledAt)
		if err != nil {
			p.metrics.IncPauseCheckFailure("apply")
			slog.ErrorContext(ctx, "Failed to apply scheduled pause",
				log.FieldSubscriptionID, sub.ID,
				log.FieldSubscriptionName, sub.Name,
				log.FieldError, err)
			continue
		}
		if !applied {
			// Changed since it was listed (resumed, rescheduled or already paused).
			slog.DebugContext(ctx, "Scheduled pause no longer pending", "subscription_id", sub.ID)
			continue
		}

		subs[i] = paused
		processed++
		p.metrics.IncScheduledPauseApplied()
		p.publish(ctx, paused, now)

		fields := log.NewFields().
			WithOperation(log.OpScheduledPause).
			WithSubscription(paused).
			With("start_date", sub.StartDate.String())
		slog.InfoContext(ctx, "Applied scheduled pause", fields.Args()...)
	}

	p.metrics.ObserveSnapshot(subs, ComputeTotals(subs, now))

	slog.InfoContext(ctx, "Scheduled pause processing complete",
		"processed", processed,
		"total_checked", len(subs))

	return processed, nil
}

// Run calls ProcessDuePauses once immediately and then on every tick of
// interval until ctx is done. clock supplies the reference instant.
func (p *PauseProcessor) Run(ctx context.Context, interval time.Duration, clock func() time.Time) error {
	if clock == nil {
		clock = time.Now
	}

	p.runOnce(ctx, clock())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Scheduled pause trigger stopped")
			return nil
		case <-ticker.C:
			now := clock()
			p.runOnce(ctx, now)
			slog.DebugContext(ctx, "Next scheduled pause check", "at", now.Add(interval).Format("15:04:05"))
		}
	}
}

func (p *PauseProcessor) runOnce(ctx context.Context, now time.Time) {
	count, err := p.ProcessDuePauses(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled pause processing failed", "error", err)
		return
	}
	if count > 0 {
		slog.InfoContext(ctx, "Scheduled pauses applied", log.FieldCount, count)
	}
}

func (p *PauseProcessor) publish(ctx context.Context, sub core.Subscription, now time.Time) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, core.NewEvent(core.EventScheduledPauseApplied, sub, now)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish scheduled pause event",
			log.FieldSubscriptionID, sub.ID,
			log.FieldEventType, core.EventScheduledPauseApplied,
			log.FieldError, err)
	}
}
