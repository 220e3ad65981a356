package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/jobs"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/middleware/requestid"
)

type changePublisher interface {
	Publish(ctx context.Context, resource string, payload []byte) (int64, error)
}

const changeEventJob = "change_event"

// ChangeEvent is the JSON envelope pushed to subscribers after a committed change.
type ChangeEvent struct {
	Resource   string      `json:"resource"`
	Action     string      `json:"action"`
	Payload    interface{} `json:"payload"`
	Actor      string      `json:"actor,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NotificationConfig tunes the dispatch queue.
type NotificationConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationService fans committed changes out to subscribers without blocking the caller.
type NotificationService struct {
	publisher changePublisher
	queue     *jobs.Queue
	enabled   bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService builds the dispatcher. A disabled service drops every event.
func NewNotificationService(publisher changePublisher, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		publisher: publisher,
		enabled:   cfg.Enabled && publisher != nil,
		logger:    logger,
		now:       time.Now,
	}
	svc.queue = jobs.NewQueue("notifications", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop cancels the dispatch workers and waits for them to exit.
func (s *NotificationService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// Notify queues a change event. Failures are logged and never returned to the caller.
func (s *NotificationService) Notify(ctx context.Context, resource, action string, payload interface{}, actor string) {
	if s == nil || !s.enabled {
		return
	}
	event := ChangeEvent{
		Resource:   resource,
		Action:     action,
		Payload:    payload,
		Actor:      actor,
		RequestID:  requestid.FromContext(ctx),
		OccurredAt: s.now().UTC(),
	}
	job := jobs.Job{ID: uuid.NewString(), Type: changeEventJob, Payload: event}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("dropping change notification",
			zap.String("resource", resource),
			zap.String("action", action),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(ChangeEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode change notification", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	receivers, err := s.publisher.Publish(ctx, event.Resource, body)
	if err != nil {
		return err
	}
	s.logger.Debug("change notification published",
		zap.String("resource", event.Resource),
		zap.String("action", event.Action),
		zap.Int64("receivers", receivers),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}
