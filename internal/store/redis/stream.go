// Package redis publishes settlement journal events to a Redis stream so
// downstream consumers (reporting, the agent's chat brain) can follow
// completed settlements without polling Postgres.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Stream wraps a Redis Streams producer.
type Stream struct {
	client *redis.Client
}

func NewStream(url string) (*Stream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Stream{client: client}, nil
}

// PublishJSON appends v as a JSON payload to the named stream and returns
// the entry id Redis assigned.
func (s *Stream) PublishJSON(ctx context.Context, stream string, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal stream payload: %w", err)
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"payload": string(payload)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}

func (s *Stream) Client() *redis.Client {
	return s.client
}
