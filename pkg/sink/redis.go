package sink

import (
	"context"

	"github.com/redis/go-redis/v9"

	"digital.vasic.contracts/pkg/record"
)

// Publisher is the subset of a Redis client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisSink publishes records as JSON on a Redis channel.
type RedisSink struct {
	client  Publisher
	channel string
}

// NewRedisSink creates a sink publishing through client.
func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// DialRedis creates a Redis sink connected to addr.
func DialRedis(addr, password string, db int, channel string) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisSink(client, channel)
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, rec *record.FunctionTestRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return deliveryError(s.Name(), rec, err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return deliveryError(s.Name(), rec, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
