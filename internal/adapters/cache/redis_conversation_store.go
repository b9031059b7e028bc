package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

const (
	// conversationWindow caps stored turns so upstream prompts stay bounded.
	conversationWindow = 40
	conversationTTL    = 7 * 24 * time.Hour
)

// RedisConversationStore keeps per-user chat history as a Redis list of JSON
// entries, trimmed to a recent window. This replaces process-local history so
// any number of gateway workers see the same conversation.
type RedisConversationStore struct {
	client *redis.Client
}

// NewRedisConversationStore creates a history store backed by Redis lists.
func NewRedisConversationStore(client *redis.Client) *RedisConversationStore {
	return &RedisConversationStore{client: client}
}

func (s *RedisConversationStore) History(ctx context.Context, userID string) ([]ports.Message, error) {
	raw, err := s.client.LRange(ctx, "chat:history:"+userID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]ports.Message, 0, len(raw))
	for _, entry := range raw {
		var msg ports.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisConversationStore) Append(ctx context.Context, userID string, messages ...ports.Message) error {
	if len(messages) == 0 {
		return nil
	}
	key := "chat:history:" + userID
	entries := make([]any, 0, len(messages))
	for _, msg := range messages {
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		entries = append(entries, raw)
	}

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, entries...)
		p.LTrim(ctx, key, -conversationWindow, -1)
		p.Expire(ctx, key, conversationTTL)
		return nil
	})
	return err
}
