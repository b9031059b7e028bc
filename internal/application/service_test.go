package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/adapters/security"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

func TestSignupVerifyLoginFlow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if signupRes.VerificationToken == "" {
		t.Fatalf("signup returned empty verification token")
	}
	code := f.notifier.lastCode()
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	// login before verification must be rejected
	if _, err := f.service.Login(ctx, LoginRequest{Email: "user@example.com", Password: "SecurePass123!"}); !errors.Is(err, domain.ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified before otp verify, got %v", err)
	}

	verifyRes, err := f.service.Verify(ctx, VerifyRequest{
		VerificationToken: signupRes.VerificationToken,
		Code:              code,
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verifyRes.Access == "" || verifyRes.Refresh == "" {
		t.Fatalf("expected token pair after verify")
	}

	claims, err := f.service.ValidateAccessToken(ctx, verifyRes.Access)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims email %q", claims.Email)
	}

	loginRes, err := f.service.Login(ctx, LoginRequest{Email: "user@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("login after verify failed: %v", err)
	}
	if loginRes.Access == "" || loginRes.Refresh == "" {
		t.Fatalf("expected token pair from login")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Signup(ctx, SignupRequest{Email: "dup@example.com", Password: "SecurePass123!"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := f.service.Signup(ctx, SignupRequest{Email: "dup@example.com", Password: "OtherPass456!"}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSignupRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Signup(ctx, SignupRequest{Email: "not-an-email", Password: "SecurePass123!"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for malformed email, got %v", err)
	}
	if _, err := f.service.Signup(ctx, SignupRequest{Email: "ok@example.com", Password: "short"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestResendCooldownAndSupersede(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "cool@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	firstCode := f.notifier.lastCode()

	// immediately asking again hits the cooldown window
	if _, err := f.service.Resend(ctx, ResendRequest{VerificationToken: signupRes.VerificationToken}); !errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("expected ErrThrottled inside cooldown, got %v", err)
	}

	f.clock.Advance(61 * time.Second)
	resendRes, err := f.service.Resend(ctx, ResendRequest{VerificationToken: signupRes.VerificationToken})
	if err != nil {
		t.Fatalf("resend after cooldown failed: %v", err)
	}
	secondCode := f.notifier.lastCode()
	if secondCode == firstCode {
		t.Fatalf("expected a fresh code on resend")
	}

	// the superseded challenge must no longer verify, even with its own code
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: firstCode}); !errors.Is(err, domain.ErrOTPAlreadyUsed) {
		t.Fatalf("expected ErrOTPAlreadyUsed for superseded challenge, got %v", err)
	}

	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: resendRes.VerificationToken, Code: secondCode}); err != nil {
		t.Fatalf("verify with fresh challenge failed: %v", err)
	}
}

func TestVerifyWrongCodeConsumesAttempts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "attempts@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	code := f.notifier.lastCode()
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < 5; i++ {
		if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: wrong}); !errors.Is(err, domain.ErrOTPCodeMismatch) {
			t.Fatalf("attempt %d: expected ErrOTPCodeMismatch, got %v", i+1, err)
		}
	}

	// even the correct code is dead once attempts are exhausted
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code}); !errors.Is(err, domain.ErrOTPAttemptsExceeded) {
		t.Fatalf("expected ErrOTPAttemptsExceeded after 5 misses, got %v", err)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "expiry@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	code := f.notifier.lastCode()

	f.clock.Advance(6 * time.Minute)
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code}); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestVerificationTokenExpiryIsIndependent(t *testing.T) {
	t.Parallel()

	// token goes stale before the code: a 2 minute max age against a 5 minute
	// code TTL
	cfg := defaultTestConfig()
	cfg.VerificationTokenMaxAge = 2 * time.Minute
	f := newFixtureWithConfig(cfg)
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "stale@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	code := f.notifier.lastCode()

	f.clock.Advance(3 * time.Minute)
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code}); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired while code still live, got %v", err)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: "not-a-real-token", Code: "123456"}); !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for garbage token, got %v", err)
	}
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: "", Code: "123456"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing token, got %v", err)
	}
}

func TestVerifyAfterSuccessIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "twice@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	code := f.notifier.lastCode()

	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code}); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	if _, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code}); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified on replay, got %v", err)
	}
	if _, err := f.service.Resend(ctx, ResendRequest{VerificationToken: signupRes.VerificationToken}); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified on resend after verify, got %v", err)
	}
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: "race@example.com", Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	code := f.notifier.lastCode()

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Verify(ctx, VerifyRequest{VerificationToken: signupRes.VerificationToken, Code: code})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, domain.ErrOTPAlreadyUsed) && !errors.Is(err, domain.ErrAlreadyVerified) {
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning verify, got %d", wins)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	verifyRes := f.signupAndVerify(t, "refresh@example.com")

	refreshRes, err := f.service.Refresh(ctx, RefreshRequest{Refresh: verifyRes.Refresh})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := f.service.ValidateAccessToken(ctx, refreshRes.Access); err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}

	// token types are not interchangeable
	if _, err := f.service.Refresh(ctx, RefreshRequest{Refresh: verifyRes.Access}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for access token in refresh, got %v", err)
	}
	if _, err := f.service.ValidateAccessToken(ctx, verifyRes.Refresh); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for refresh token on protected route, got %v", err)
	}
}

func (f *fixture) signupAndVerify(t *testing.T, email string) VerifyResponse {
	t.Helper()
	ctx := context.Background()
	signupRes, err := f.service.Signup(ctx, SignupRequest{Email: email, Password: "SecurePass123!"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	verifyRes, err := f.service.Verify(ctx, VerifyRequest{
		VerificationToken: signupRes.VerificationToken,
		Code:              f.notifier.lastCode(),
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	return verifyRes
}

func newFixture() *fixture {
	return newFixtureWithConfig(defaultTestConfig())
}

func defaultTestConfig() Config {
	return Config{
		OTPLength:               6,
		OTPTTL:                  5 * time.Minute,
		OTPCooldown:             time.Minute,
		OTPMaxAttempts:          5,
		VerificationTokenMaxAge: 30 * time.Minute,
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTL:         7 * 24 * time.Hour,
		DefaultDailyQuota:       10,
		HistoryLimit:            20,
	}
}

func newFixtureWithConfig(cfg Config) *fixture {
	clock := &testClock{now: time.Now().UTC()}
	subscriptions := &fakeSubscriptions{byUser: map[uuid.UUID]domain.Subscription{}}
	users := &fakeUsers{
		byEmail:       map[string]domain.User{},
		byID:          map[uuid.UUID]domain.User{},
		subscriptions: subscriptions,
		planLimit:     3,
	}
	otps := &fakeOTPs{byID: map[uuid.UUID]domain.OTPChallenge{}}
	codec := &fakeCodec{
		items:  map[string]ports.VerificationClaims{},
		maxAge: cfg.VerificationTokenMaxAge,
		nowFn:  clock.Now,
	}
	notifier := &fakeNotifier{}
	quota := &fakeQuota{counts: map[string]int64{}}
	conversations := &fakeConversations{byUser: map[string][]ports.Message{}}
	generator := &fakeGenerator{}

	signer, err := security.NewJWTSigner("unit-test-secret", "HS256")
	if err != nil {
		panic(err)
	}

	svc := NewService(Dependencies{
		Config:        cfg,
		Users:         users,
		Subscriptions: subscriptions,
		OTPs:          otps,
		Codec:         codec,
		Hasher:        &fakeHasher{},
		TokenSigner:   signer,
		Notifier:      notifier,
		Quota:         quota,
		Conversations: conversations,
		Generator:     generator,
	})
	svc.nowFn = clock.Now

	return &fixture{
		service:       svc,
		clock:         clock,
		users:         users,
		subscriptions: subscriptions,
		otps:          otps,
		notifier:      notifier,
		quota:         quota,
		conversations: conversations,
		generator:     generator,
	}
}

type fixture struct {
	service       *Service
	clock         *testClock
	users         *fakeUsers
	subscriptions *fakeSubscriptions
	otps          *fakeOTPs
	notifier      *fakeNotifier
	quota         *fakeQuota
	conversations *fakeConversations
	generator     *fakeGenerator
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUsers struct {
	mu            sync.Mutex
	byEmail       map[string]domain.User
	byID          map[uuid.UUID]domain.User
	subscriptions *fakeSubscriptions
	planLimit     int
}

func (f *fakeUsers) CreateWithDefaultPlan(_ context.Context, params ports.CreateUserParams) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	u := domain.User{
		UserID:       uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    params.RegisteredAtUTC,
		UpdatedAt:    params.RegisteredAtUTC,
	}
	f.byEmail[u.Email] = u
	f.byID[u.UserID] = u
	f.subscriptions.put(domain.Subscription{
		SubscriptionID: uuid.New(),
		UserID:         u.UserID,
		Plan: domain.SubscriptionPlan{
			PlanID:   uuid.New(),
			Name:     "Free",
			Slug:     "free",
			Features: domain.PlanFeatures{MaxMessages: f.planLimit},
			IsActive: true,
		},
		StartDate: params.RegisteredAtUTC,
		IsActive:  true,
	})
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.IsVerified {
		return domain.ErrAlreadyVerified
	}
	u.IsVerified = true
	u.UpdatedAt = verifiedAt
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

type fakeSubscriptions struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]domain.Subscription
}

func (f *fakeSubscriptions) put(sub domain.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[sub.UserID] = sub
}

func (f *fakeSubscriptions) remove(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byUser, userID)
}

func (f *fakeSubscriptions) GetActiveByUser(_ context.Context, userID uuid.UUID) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byUser[userID]
	if !ok || !sub.IsActive {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return sub, nil
}

type fakeOTPs struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.OTPChallenge
}

func (f *fakeOTPs) CreateInvalidatingActive(_ context.Context, params ports.NewChallengeParams) (domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.byID {
		if c.UserID == params.UserID && c.Purpose == params.Purpose && !c.IsUsed {
			c.IsUsed = true
			f.byID[id] = c
		}
	}
	challenge := domain.OTPChallenge{
		ChallengeID: uuid.New(),
		UserID:      params.UserID,
		Purpose:     params.Purpose,
		CodeHash:    params.CodeHash,
		CreatedAt:   params.CreatedAt,
		ExpiresAt:   params.ExpiresAt,
		MaxAttempts: params.MaxAttempts,
	}
	f.byID[challenge.ChallengeID] = challenge
	return challenge, nil
}

func (f *fakeOTPs) LatestActive(_ context.Context, userID uuid.UUID, purpose domain.Purpose, now time.Time) (domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest domain.OTPChallenge
	found := false
	for _, c := range f.byID {
		if c.UserID != userID || c.Purpose != purpose || c.IsUsed || c.IsExpired(now) {
			continue
		}
		if !found || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
			found = true
		}
	}
	if !found {
		return domain.OTPChallenge{}, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeOTPs) GetByID(_ context.Context, challengeID uuid.UUID) (domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[challengeID]
	if !ok {
		return domain.OTPChallenge{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeOTPs) IncrementAttempts(_ context.Context, challengeID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[challengeID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	c.AttemptCount++
	f.byID[challengeID] = c
	return c.AttemptCount, nil
}

func (f *fakeOTPs) MarkUsed(_ context.Context, challengeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[challengeID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	f.byID[challengeID] = c
	return true, nil
}

// fakeCodec enforces max age against the fixture clock so token staleness can
// be tested without real waiting.
type fakeCodec struct {
	mu     sync.Mutex
	items  map[string]ports.VerificationClaims
	maxAge time.Duration
	nowFn  func() time.Time
	seq    int
}

func (f *fakeCodec) Encode(claims ports.VerificationClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("vtoken-%d", f.seq)
	f.items[token] = claims
	return token, nil
}

func (f *fakeCodec) Decode(token string) (ports.VerificationClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.items[token]
	if !ok {
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}
	if f.nowFn().Sub(claims.IssuedAt) > f.maxAge {
		return ports.VerificationClaims{}, domain.ErrTokenExpired
	}
	return claims, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	codes []string
}

func (f *fakeNotifier) SendCode(_ context.Context, _, code string, _ domain.Purpose, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeNotifier) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.codes) == 0 {
		return ""
	}
	return f.codes[len(f.codes)-1]
}

type fakeQuota struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeQuota) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

type fakeConversations struct {
	mu         sync.Mutex
	byUser     map[string][]ports.Message
	historyErr error
	appendErr  error
}

func (f *fakeConversations) History(_ context.Context, userID string) ([]ports.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return append([]ports.Message(nil), f.byUser[userID]...), nil
}

func (f *fakeConversations) Append(_ context.Context, userID string, messages ...ports.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.byUser[userID] = append(f.byUser[userID], messages...)
	return nil
}

func (f *fakeConversations) stored(userID string) []ports.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Message(nil), f.byUser[userID]...)
}

// fakeGenerator replays a scripted chunk sequence and records what it was
// asked to generate from.
type fakeGenerator struct {
	mu        sync.Mutex
	chunks    []ports.Chunk
	streamErr error
	requests  [][]ports.Message
}

func (f *fakeGenerator) Stream(_ context.Context, messages []ports.Message) (<-chan ports.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	f.requests = append(f.requests, append([]ports.Message(nil), messages...))
	out := make(chan ports.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (f *fakeGenerator) lastRequest() []ports.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}
