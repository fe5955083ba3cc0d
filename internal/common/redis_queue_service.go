package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisQueueService appends to and inspects Redis Streams.
type RedisQueueService struct {
	client *redis.Client
}

func NewRedisQueueService(client *redis.Client) *RedisQueueService {
	return &RedisQueueService{
		client: client,
	}
}

// Enqueue serialises item to JSON and appends it to streamName
// (XADD stream * data <json>). It returns the entry id.
func (s *RedisQueueService) Enqueue(ctx context.Context, streamName string, item interface{}) (string, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("failed to marshal queue item: %w", err)
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add to stream: %w", err)
	}

	return id, nil
}

// CreateConsumerGroup creates the group (and stream) if missing.
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context, streamName, groupName string) error {
	err := s.client.XGroupCreateMkStream(ctx, streamName, groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// GetQueueLength returns the number of entries in the stream
func (s *RedisQueueService) GetQueueLength(ctx context.Context, streamName string) (int64, error) {
	length, err := s.client.XLen(ctx, streamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// GetPendingCount returns the number of pending (unacknowledged) messages for a consumer group
func (s *RedisQueueService) GetPendingCount(ctx context.Context, streamName, groupName string) (int64, error) {
	pending, err := s.client.XPending(ctx, streamName, groupName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return pending.Count, nil
}

// TrimStream keeps only the most recent maxLen entries.
func (s *RedisQueueService) TrimStream(ctx context.Context, streamName string, maxLen int64) error {
	return s.client.XTrimMaxLen(ctx, streamName, maxLen).Err()
}

// Ping checks the connection.
func (s *RedisQueueService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
