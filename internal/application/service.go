package application

import (
	"time"

	"github.com/viralforge/prompt-gateway/internal/ports"
)

// Service drives the signup/verify/login state machine and the metered chat
// relay. All shared mutable state lives behind the injected ports.
type Service struct {
	cfg           Config
	users         ports.UserRepository
	subscriptions ports.SubscriptionRepository
	ledger        *OTPLedger
	codec         ports.VerificationTokenCodec
	hasher        ports.PasswordHasher
	tokenSigner   ports.TokenSigner
	notifier      ports.CodeNotifier
	quota         ports.QuotaStore
	conversations ports.ConversationStore
	generator     ports.Generator
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Users         ports.UserRepository
	Subscriptions ports.SubscriptionRepository
	OTPs          ports.OTPRepository
	Codec         ports.VerificationTokenCodec
	Hasher        ports.PasswordHasher
	TokenSigner   ports.TokenSigner
	Notifier      ports.CodeNotifier
	Quota         ports.QuotaStore
	Conversations ports.ConversationStore
	Generator     ports.Generator
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:           deps.Config,
		users:         deps.Users,
		subscriptions: deps.Subscriptions,
		codec:         deps.Codec,
		hasher:        deps.Hasher,
		tokenSigner:   deps.TokenSigner,
		notifier:      deps.Notifier,
		quota:         deps.Quota,
		conversations: deps.Conversations,
		generator:     deps.Generator,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
	// The ledger shares the service clock so tests can move both together.
	s.ledger = NewOTPLedger(deps.OTPs, LedgerConfig{
		CodeLength:  deps.Config.OTPLength,
		TTL:         deps.Config.OTPTTL,
		Cooldown:    deps.Config.OTPCooldown,
		MaxAttempts: deps.Config.OTPMaxAttempts,
	}, s.now)
	return s
}

func (s *Service) now() time.Time {
	return s.nowFn()
}
