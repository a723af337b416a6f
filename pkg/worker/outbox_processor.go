// Package worker drains the outbox: pending events are published to the
// broker and marked processed, with retries on transient failures.
package worker

import (
	"context"
	"time"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/repository"
	"github.com/clinicops/frontdesk-api/pkg/circuitbreaker"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/messaging"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

type Config struct {
	PollInterval  time.Duration
	BatchSize     int
	MaxRetries    int
	RetentionDays int
}

type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
	metrics *metrics.Metrics
	cfg     Config
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg Config,
) *OutboxProcessor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		breaker: circuitbreaker.New(5, 30*time.Second),
		logger:  log,
		metrics: m,
		cfg:     cfg,
	}
}

// Start polls until the context is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	p.logger.Info("outbox processor started", map[string]interface{}{
		"poll_interval": p.cfg.PollInterval.String(),
		"batch_size":    p.cfg.BatchSize,
	})

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return
		case <-ticker.C:
			p.processBatch(ctx)
		case <-cleanup.C:
			p.cleanupProcessed(ctx)
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) {
	events, err := p.repo.GetPendingEvents(ctx, p.cfg.BatchSize)
	if err != nil {
		p.logger.Error(err, "failed to fetch pending events")
		return
	}
	p.metrics.OutboxPendingEvents.Set(float64(len(events)))

	for _, event := range events {
		p.processEvent(ctx, event)
	}
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) {
	err := p.breaker.Execute(func() error {
		return p.broker.Publish(ctx, event.EventType, []byte(event.Payload))
	})
	if err != nil {
		msg := err.Error()
		status := model.OutboxStatusPending
		if event.RetryCount+1 >= p.cfg.MaxRetries {
			status = model.OutboxStatusFailed
		}
		if uerr := p.repo.UpdateStatus(ctx, event.ID, status, &msg); uerr != nil {
			p.logger.Error(uerr, "failed to record publish failure", map[string]interface{}{
				"event_id": event.ID.String(),
			})
		}
		p.metrics.OutboxEventsTotal.WithLabelValues(event.EventType, string(status)).Inc()
		p.logger.Error(err, "failed to publish event", map[string]interface{}{
			"event_id":    event.ID.String(),
			"event_type":  event.EventType,
			"retry_count": event.RetryCount + 1,
		})
		return
	}

	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		p.logger.Error(err, "failed to mark event processed", map[string]interface{}{
			"event_id": event.ID.String(),
		})
		return
	}
	p.metrics.OutboxEventsTotal.WithLabelValues(event.EventType, "processed").Inc()
}

func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.RetentionDays)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error(err, "failed to clean up processed events")
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up processed events", map[string]interface{}{
			"deleted": deleted,
		})
	}
}
