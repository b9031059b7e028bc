package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

const chatRelayBuffer = 16

// Chat admits the request against the user's daily quota and relays the
// upstream completion stream. The returned channel delivers chunks as they
// arrive; a chunk with Err set means the stream broke after partial delivery.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, req ChatRequest) (<-chan ports.Chunk, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}

	limit, err := s.resolveDailyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.admit(ctx, userID, limit); err != nil {
		return nil, err
	}

	uid := userID.String()
	history, err := s.conversations.History(ctx, uid)
	if err != nil {
		// degraded but serviceable: answer without context
		appLogger().WarnContext(ctx, "conversation history unavailable",
			"operation", "chat",
			"outcome", "warning",
			"error", err.Error(),
		)
		history = nil
	}
	if s.cfg.HistoryLimit > 0 && len(history) > s.cfg.HistoryLimit {
		history = history[len(history)-s.cfg.HistoryLimit:]
	}
	messages := append(history, ports.Message{Role: "user", Content: prompt})

	upstream, err := s.generator.Stream(ctx, messages)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	out := make(chan ports.Chunk, chatRelayBuffer)
	go s.relay(ctx, uid, prompt, upstream, out)
	return out, nil
}

// relay copies upstream chunks to the caller while accumulating the assistant
// reply. History is persisted only for streams that complete cleanly.
func (s *Service) relay(ctx context.Context, userID, prompt string, upstream <-chan ports.Chunk, out chan<- ports.Chunk) {
	defer close(out)

	var reply strings.Builder
	for chunk := range upstream {
		if chunk.Err != nil {
			appLogger().WarnContext(ctx, "upstream stream interrupted",
				"operation", "chat",
				"outcome", "failure",
				"relayed_bytes", reply.Len(),
				"error", chunk.Err.Error(),
			)
			select {
			case out <- chunk:
			case <-ctx.Done():
			}
			return
		}
		reply.WriteString(chunk.Content)
		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	if err := s.conversations.Append(ctx, userID,
		ports.Message{Role: "user", Content: prompt},
		ports.Message{Role: "assistant", Content: reply.String()},
	); err != nil {
		appLogger().WarnContext(ctx, "conversation append failed",
			"operation", "chat",
			"outcome", "warning",
			"error", err.Error(),
		)
	}
}

// admit runs count-then-compare against the (user, UTC day) counter. The
// increment always lands, including on the request that trips the limit.
func (s *Service) admit(ctx context.Context, userID uuid.UUID, limit int) error {
	now := s.now()
	key := quotaDayKey(userID.String(), now)
	// TTL sits just past 24h so the key self-expires after the day boundary
	// even under clock skew.
	current, err := s.quota.Incr(ctx, key, 24*time.Hour+time.Minute)
	if err != nil {
		return fmt.Errorf("quota increment: %w", err)
	}
	denied := limit > 0 && current > int64(limit)
	outcome := "success"
	if denied {
		outcome = "failure"
	}
	appLogger().InfoContext(ctx, "quota admission",
		"operation", "chat_admit",
		"outcome", outcome,
		"current", current,
		"limit", limit,
	)
	if denied {
		return fmt.Errorf("%w: %d/%d", domain.ErrQuotaExceeded, current, limit)
	}
	return nil
}

// resolveDailyLimit maps the user's active plan to its daily message
// allowance. Absence of an active subscription is a payment problem, not a
// quota one.
func (s *Service) resolveDailyLimit(ctx context.Context, userID uuid.UUID) (int, error) {
	sub, err := s.subscriptions.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrSubscriptionLimitExceeded
		}
		return 0, fmt.Errorf("resolve subscription: %w", err)
	}
	if sub.Plan.Features.MaxMessages > 0 {
		return sub.Plan.Features.MaxMessages, nil
	}
	return s.cfg.DefaultDailyQuota, nil
}
