package broadcast

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const DefaultEventChannel = "orders:events"

// RedisMirror publishes broadcast payloads to a Redis pub/sub channel so
// other processes can observe order changes.
type RedisMirror struct {
	client  *redis.Client
	channel string
}

func NewRedisMirror(client *redis.Client, channel string) *RedisMirror {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &RedisMirror{client: client, channel: channel}
}

func (m *RedisMirror) Publish(ctx context.Context, payload []byte) error {
	if err := m.client.Publish(ctx, m.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", m.channel, err)
	}
	return nil
}
