package ports

import (
	"context"
	"time"

	"github.com/viralforge/prompt-gateway/internal/domain"
)

// CodeNotifier delivers a raw OTP code to the user out-of-band. This is the
// only place the raw code leaves the process; it is never persisted or logged.
// Delivery is fire-and-forget from the orchestrator's point of view.
type CodeNotifier interface {
	SendCode(ctx context.Context, email, code string, purpose domain.Purpose, expiresIn time.Duration) error
}
