package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisHistory keeps each subject's exchange in a Redis list, one JSON
// message per element, trimmed to the cap on every append so the window
// survives restarts without growing unbounded.
type RedisHistory struct {
	client *redis.Client
}

func NewRedisHistory(client *redis.Client) *RedisHistory {
	return &RedisHistory{client: client}
}

func historyKey(subjectID string) string {
	return "conversation:" + subjectID
}

func (h *RedisHistory) Messages(ctx context.Context, subjectID string) ([]Message, error) {
	raw, err := h.client.LRange(ctx, historyKey(subjectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode history message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (h *RedisHistory) Append(ctx context.Context, subjectID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode history message: %w", err)
	}
	key := historyKey(subjectID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -historyCap, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
