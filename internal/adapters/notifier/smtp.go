package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/viralforge/prompt-gateway/internal/domain"
)

// SMTPNotifier delivers one-time passcodes over plain SMTP. Delivery is
// best effort; callers decide whether a failure blocks the flow.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (n *SMTPNotifier) SendCode(ctx context.Context, email, code string, purpose domain.Purpose, expiresIn time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := subjectFor(purpose)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Your verification code is %s.\r\n\r\nIt expires in %d minutes. If you did not request it, ignore this message.\r\n",
		n.from, email, subject, code, int(expiresIn.Minutes()),
	)
	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func subjectFor(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposePasswordReset:
		return "Reset your password"
	case domain.PurposeLogin:
		return "Your sign-in code"
	default:
		return "Confirm your account"
	}
}
