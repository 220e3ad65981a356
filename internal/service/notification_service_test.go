package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/middleware/requestid"
)

type publishedMessage struct {
	resource string
	body     []byte
}

type stubPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	messages chan publishedMessage
}

func newStubPublisher(failures int) *stubPublisher {
	return &stubPublisher{failures: failures, messages: make(chan publishedMessage, 8)}
}

func (p *stubPublisher) Publish(ctx context.Context, resource string, payload []byte) (int64, error) {
	p.mu.Lock()
	p.calls++
	fail := p.calls <= p.failures
	p.mu.Unlock()
	if fail {
		return 0, errors.New("redis unavailable")
	}
	p.messages <- publishedMessage{resource: resource, body: payload}
	return 1, nil
}

func TestNotificationServicePublishesEvent(t *testing.T) {
	pub := newStubPublisher(0)
	svc := NewNotificationService(pub, NotificationConfig{Enabled: true, Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	ctx := requestid.WithValue(context.Background(), "req-1")
	svc.Notify(ctx, resourceExamProctors, "created", map[string]interface{}{"exam_id": "E1"}, "admin-1")

	select {
	case msg := <-pub.messages:
		assert.Equal(t, resourceExamProctors, msg.resource)
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.body, &event))
		assert.Equal(t, "created", event["action"])
		assert.Equal(t, "admin-1", event["actor"])
		assert.Equal(t, "req-1", event["request_id"])
		assert.Equal(t, "E1", event["payload"].(map[string]interface{})["exam_id"])
		assert.NotEmpty(t, event["occurred_at"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification not published")
	}
}

func TestNotificationServiceRetriesPublish(t *testing.T) {
	pub := newStubPublisher(2)
	svc := NewNotificationService(pub, NotificationConfig{Enabled: true, Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), resourceExamRegistrations, "created", nil, "")

	select {
	case msg := <-pub.messages:
		assert.Equal(t, resourceExamRegistrations, msg.resource)
	case <-time.After(2 * time.Second):
		t.Fatal("notification not retried")
	}
}

func TestNotificationServiceDisabledDropsEvents(t *testing.T) {
	pub := newStubPublisher(0)
	svc := NewNotificationService(pub, NotificationConfig{Enabled: false}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), resourceExamRegistrations, "created", nil, "")

	select {
	case <-pub.messages:
		t.Fatal("disabled service must not publish")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationServiceNotStartedDoesNotBlock(t *testing.T) {
	svc := NewNotificationService(newStubPublisher(0), NotificationConfig{Enabled: true}, nil)
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), resourceExamProctors, "created", nil, "")
	})
}
