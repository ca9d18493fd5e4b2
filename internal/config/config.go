package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "Farbour"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultDBMaxConns      = 8
	defaultOTPTTL          = 5 * time.Minute
	defaultOTPLength       = 6
	defaultOTPMaxAttempts  = 5
	defaultAccessTTL       = time.Hour
	defaultRefreshTTL      = 30 * 24 * time.Hour
	defaultSettleDelay     = 2 * time.Second
	defaultProfileRetries  = 3
	defaultProfileBackoff  = time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	DBMaxConns     int
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Token issuance.
	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Phone verification.
	OTPTTL         time.Duration
	OTPLength      int
	OTPMaxAttempts int

	// Profile provisioning lag tolerances used by the session manager. The
	// settle delay is tuned against backend trigger latency; keep it
	// overridable per environment.
	ProfileSettleDelay  time.Duration
	ProfileRetryCount   int
	ProfileRetryBackoff time.Duration

	// SMS delivery. When the Twilio credentials are absent the server falls
	// back to a logger-backed sender.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// OAuth callback deep link scheme consumed by the mobile client.
	OAuthRedirectURL string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBMaxConns:          defaultDBMaxConns,
		RedisURL:            os.Getenv("REDIS_URL"),
		ShutdownPeriod:      defaultShutdownDelay,
		IdempotencyTTL:      defaultIdempotencyTTL,
		JWTSecret:           os.Getenv("JWT_SECRET"),
		RefreshSecret:       os.Getenv("REFRESH_SECRET"),
		AccessTokenTTL:      defaultAccessTTL,
		RefreshTokenTTL:     defaultRefreshTTL,
		OTPTTL:              defaultOTPTTL,
		OTPLength:           defaultOTPLength,
		OTPMaxAttempts:      defaultOTPMaxAttempts,
		ProfileSettleDelay:  defaultSettleDelay,
		ProfileRetryCount:   defaultProfileRetries,
		ProfileRetryBackoff: defaultProfileBackoff,
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:    os.Getenv("TWILIO_FROM_NUMBER"),
		OAuthRedirectURL:    getEnv("OAUTH_REDIRECT_URL", "farbour://auth"),
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":      &cfg.AccessTokenTTL,
		"REFRESH_TOKEN_TTL":     &cfg.RefreshTokenTTL,
		"OTP_TTL":               &cfg.OTPTTL,
		"PROFILE_SETTLE_DELAY":  &cfg.ProfileSettleDelay,
		"PROFILE_RETRY_BACKOFF": &cfg.ProfileRetryBackoff,
		"IDEMPOTENCY_TTL":       &cfg.IdempotencyTTL,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"OTP_LENGTH":          &cfg.OTPLength,
		"OTP_MAX_ATTEMPTS":    &cfg.OTPMaxAttempts,
		"PROFILE_RETRY_COUNT": &cfg.ProfileRetryCount,
		"DB_MAX_CONNS":        &cfg.DBMaxConns,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	if cfg.JWTSecret == "" || cfg.RefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
