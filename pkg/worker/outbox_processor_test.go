package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

type fakeOutboxRepo struct {
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]model.OutboxStatus
}

func (f *fakeOutboxRepo) Create(context.Context, *model.OutboxEvent) error { return nil }
func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.pending, nil
}
func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, _ *string) error {
	if f.statuses == nil {
		f.statuses = make(map[uuid.UUID]model.OutboxStatus)
	}
	f.statuses[id] = status
	return nil
}
func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeBroker struct {
	err    error
	topics []string
}

func (f *fakeBroker) Publish(_ context.Context, topic string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeBroker) Close() error { return nil }

func event(eventType string, retries int) *model.OutboxEvent {
	e := &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    []byte(`{}`),
		Status:     model.OutboxStatusPending,
		RetryCount: retries,
	}
	return e
}

func newProcessor(repo *fakeOutboxRepo, broker *fakeBroker, maxRetries int) *OutboxProcessor {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewOutboxProcessor(repo, broker, log, m, Config{MaxRetries: maxRetries})
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	e1 := event(model.EventPatientAssigned, 0)
	e2 := event(model.EventPatientUnassigned, 0)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{e1, e2}}
	broker := &fakeBroker{}

	p := newProcessor(repo, broker, 5)
	p.processBatch(context.Background())

	assert.Equal(t, []string{model.EventPatientAssigned, model.EventPatientUnassigned}, broker.topics)
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[e1.ID])
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[e2.ID])
}

func TestProcessBatchKeepsRetryableFailuresPending(t *testing.T) {
	e := event(model.EventPatientAssigned, 0)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{e}}
	broker := &fakeBroker{err: errors.New("redis unavailable")}

	p := newProcessor(repo, broker, 5)
	p.processBatch(context.Background())

	require.Contains(t, repo.statuses, e.ID)
	assert.Equal(t, model.OutboxStatusPending, repo.statuses[e.ID])
}

func TestProcessBatchGivesUpAfterMaxRetries(t *testing.T) {
	e := event(model.EventPatientAssigned, 4)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{e}}
	broker := &fakeBroker{err: errors.New("redis unavailable")}

	p := newProcessor(repo, broker, 5)
	p.processBatch(context.Background())

	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[e.ID])
}
