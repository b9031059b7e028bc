package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/viralforge/prompt-gateway/internal/domain"
)

// LogNotifier is the development stand-in for SMTP. It records that a code
// was issued without ever logging the code itself.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendCode(ctx context.Context, email, code string, purpose domain.Purpose, expiresIn time.Duration) error {
	_ = code
	n.logger.InfoContext(ctx, "otp notification suppressed",
		slog.String("module", "notifier"),
		slog.String("operation", "send_code"),
		slog.String("email", domain.MaskEmail(email)),
		slog.String("purpose", string(purpose)),
		slog.Duration("expires_in", expiresIn),
	)
	return nil
}
