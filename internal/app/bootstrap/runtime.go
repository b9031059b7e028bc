package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/viralforge/prompt-gateway/internal/adapters/cache"
	httpadapter "github.com/viralforge/prompt-gateway/internal/adapters/http"
	"github.com/viralforge/prompt-gateway/internal/adapters/notifier"
	"github.com/viralforge/prompt-gateway/internal/adapters/postgres"
	"github.com/viralforge/prompt-gateway/internal/adapters/security"
	"github.com/viralforge/prompt-gateway/internal/adapters/upstream"
	"github.com/viralforge/prompt-gateway/internal/application"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping prompt gateway", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("using ephemeral JWT secret for local/dev runtime")
		secret, err = randomSecret()
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("generate ephemeral jwt secret: %w", err)
		}
	}
	tokenSigner, err := security.NewJWTSigner(secret, cfg.JWTAlgorithm)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init jwt signer: %w", err)
	}
	codec, err := security.NewVerificationTokenCodec(secret, cfg.VerificationTokenMaxAge)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init verification token codec: %w", err)
	}

	var codeNotifier ports.CodeNotifier
	if cfg.SMTPHost != "" {
		codeNotifier = notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		logger.Warn("smtp not configured, otp delivery is log-only")
		codeNotifier = notifier.NewLogNotifier(logger)
	}

	repos := postgres.NewRepositories(db)
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			OTPLength:               cfg.OTPLength,
			OTPTTL:                  cfg.OTPTTL,
			OTPCooldown:             cfg.OTPCooldown,
			OTPMaxAttempts:          cfg.OTPMaxAttempts,
			VerificationTokenMaxAge: cfg.VerificationTokenMaxAge,
			AccessTokenTTL:          cfg.AccessTokenTTL,
			RefreshTokenTTL:         cfg.RefreshTokenTTL,
			DefaultDailyQuota:       cfg.DefaultDailyQuota,
			HistoryLimit:            cfg.HistoryLimit,
			DebugExposeOTP:          cfg.DebugExposeOTP,
		},
		Users:         repos.Users,
		Subscriptions: repos.Subscriptions,
		OTPs:          repos.OTPs,
		Codec:         codec,
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner:   tokenSigner,
		Notifier:      codeNotifier,
		Quota:         cacheadapter.NewRedisQuotaStore(redisClient),
		Conversations: cacheadapter.NewRedisConversationStore(redisClient),
		Generator: upstream.NewClient(upstream.Config{
			BaseURL: cfg.UpstreamURL,
			Model:   cfg.UpstreamModel,
			Timeout: cfg.UpstreamTimeout,
		}),
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
