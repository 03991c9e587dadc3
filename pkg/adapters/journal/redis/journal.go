// Package redis provides the Redis-backed event journal, for operators who
// want the recent event window to survive a restart.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/enrolld/enrolld/pkg/domain"
)

// Journal keeps the most recent events in a capped Redis list: each append
// pushes to the tail and trims the head down to capacity.
type Journal struct {
	client   *redis.Client
	key      string
	capacity int64
	logger   *zap.Logger
}

func NewJournal(client *redis.Client, key string, capacity int, logger *zap.Logger) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{
		client:   client,
		key:      key,
		capacity: int64(capacity),
		logger:   logger,
	}
}

func (j *Journal) Append(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := j.client.RPush(ctx, j.key, data).Err(); err != nil {
		return fmt.Errorf("failed to append to journal: %w", err)
	}
	if err := j.client.LTrim(ctx, j.key, -j.capacity, -1).Err(); err != nil {
		return fmt.Errorf("failed to trim journal: %w", err)
	}

	j.logger.Debug("event journaled",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)))

	return nil
}

// Recent returns up to n events, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]domain.Event, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := j.client.LRange(ctx, j.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	// The list is stored oldest to newest; reverse while decoding.
	out := make([]domain.Event, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var event domain.Event
		if err := json.Unmarshal([]byte(raw[i]), &event); err != nil {
			j.logger.Error("failed to unmarshal journaled event", zap.Error(err))
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (j *Journal) Size(ctx context.Context) (int, error) {
	n, err := j.client.LLen(ctx, j.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read journal size: %w", err)
	}
	return int(n), nil
}
