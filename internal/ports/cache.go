package ports

import (
	"context"
	"time"
)

// QuotaStore is the atomic per-key usage counter behind quota admission.
// Incr must be a single atomic increment-and-read against the backing store;
// two concurrent calls for the same key must never observe the same value.
type QuotaStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Message is one conversation turn relayed to the generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationStore keeps per-user chat history so the relay can send context
// to the upstream model. Implementations cap history to a recent window.
type ConversationStore interface {
	History(ctx context.Context, userID string) ([]Message, error)
	Append(ctx context.Context, userID string, messages ...Message) error
}
