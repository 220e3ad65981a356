package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NotificationRepository publishes change events on Redis Pub/Sub channels.
type NotificationRepository struct {
	client *redis.Client
	prefix string
}

// NewNotificationRepository constructs the publisher. Channels are named "<prefix>:<resource>".
func NewNotificationRepository(client *redis.Client, prefix string) *NotificationRepository {
	return &NotificationRepository{client: client, prefix: prefix}
}

// Channel returns the Pub/Sub channel for resource.
func (r *NotificationRepository) Channel(resource string) string {
	if r.prefix == "" {
		return resource
	}
	return r.prefix + ":" + resource
}

// Publish sends payload to the resource channel and returns the number of subscribers reached.
func (r *NotificationRepository) Publish(ctx context.Context, resource string, payload []byte) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	channel := r.Channel(resource)
	receivers, err := r.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return receivers, nil
}

// Close releases the underlying Redis connection if present.
func (r *NotificationRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// PingContext checks that the broker answers.
func (r *NotificationRepository) PingContext(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}
