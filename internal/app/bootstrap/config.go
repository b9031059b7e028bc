package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the gateway.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTSecret         string
	JWTAlgorithm      string
	AllowEphemeralJWT bool

	BcryptCost int

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	OTPLength               int
	OTPTTL                  time.Duration
	OTPCooldown             time.Duration
	OTPMaxAttempts          int
	VerificationTokenMaxAge time.Duration

	DefaultDailyQuota int
	HistoryLimit      int
	DebugExposeOTP    bool

	UpstreamURL     string
	UpstreamModel   string
	UpstreamTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Upstream struct {
		URL            string `yaml:"url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"upstream"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:               "prompt-gateway",
		HTTPPort:                8080,
		GRPCPort:                9090,
		JWTAlgorithm:            "HS256",
		AllowEphemeralJWT:       true,
		BcryptCost:              12,
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTL:         7 * 24 * time.Hour,
		OTPLength:               6,
		OTPTTL:                  5 * time.Minute,
		OTPCooldown:             time.Minute,
		OTPMaxAttempts:          5,
		VerificationTokenMaxAge: 30 * time.Minute,
		DefaultDailyQuota:       10,
		HistoryLimit:            20,
		UpstreamURL:             "http://localhost:11434",
		UpstreamModel:           "llama3",
		UpstreamTimeout:         60 * time.Second,
		SMTPPort:                587,
		MaxDBConns:              20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Upstream.URL != "" {
			cfg.UpstreamURL = f.Upstream.URL
		}
		if f.Upstream.Model != "" {
			cfg.UpstreamModel = f.Upstream.Model
		}
		if f.Upstream.TimeoutSeconds > 0 {
			cfg.UpstreamTimeout = time.Duration(f.Upstream.TimeoutSeconds) * time.Second
		}
		if f.SMTP.Host != "" {
			cfg.SMTPHost = f.SMTP.Host
		}
		if f.SMTP.Port > 0 {
			cfg.SMTPPort = f.SMTP.Port
		}
		if f.SMTP.Username != "" {
			cfg.SMTPUsername = f.SMTP.Username
		}
		if f.SMTP.Password != "" {
			cfg.SMTPPassword = f.SMTP.Password
		}
		if f.SMTP.From != "" {
			cfg.SMTPFrom = f.SMTP.From
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTAlgorithm = envOrDefault("JWT_ALGORITHM", cfg.JWTAlgorithm)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.UpstreamURL = envOrDefault("UPSTREAM_URL", cfg.UpstreamURL)
	cfg.UpstreamModel = envOrDefault("UPSTREAM_MODEL", cfg.UpstreamModel)
	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPUsername = envOrDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)
	cfg.DebugExposeOTP = envBool("DEBUG_EXPOSE_OTP", cfg.DebugExposeOTP)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.OTPLength = envInt("OTP_LENGTH", cfg.OTPLength)
	cfg.OTPMaxAttempts = envInt("OTP_MAX_ATTEMPTS", cfg.OTPMaxAttempts)
	cfg.DefaultDailyQuota = envInt("DEFAULT_DAILY_QUOTA", cfg.DefaultDailyQuota)
	cfg.HistoryLimit = envInt("CHAT_HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(envInt("REFRESH_TOKEN_TTL_HOURS", int(cfg.RefreshTokenTTL.Hours()))) * time.Hour
	cfg.OTPTTL = time.Duration(envInt("OTP_TTL_SECONDS", int(cfg.OTPTTL.Seconds()))) * time.Second
	cfg.OTPCooldown = time.Duration(envInt("OTP_COOLDOWN_SECONDS", int(cfg.OTPCooldown.Seconds()))) * time.Second
	cfg.VerificationTokenMaxAge = time.Duration(envInt("VERIFICATION_TOKEN_TTL_MINUTES", int(cfg.VerificationTokenMaxAge.Minutes()))) * time.Minute
	cfg.UpstreamTimeout = time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", int(cfg.UpstreamTimeout.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.JWTSecret == "" && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
