package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix is prepended to the event type to form the Redis channel.
const ChannelPrefix = "board."

// RedisPublisher publishes events on Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher publishes through rdb and closes it on Close.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Channel returns the Redis channel of t.
func Channel(t Type) string { return ChannelPrefix + string(t) }

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	if err := p.rdb.Publish(ctx, Channel(e.Type), payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
