package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "PointsHub"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultMinWithdrawal  = 10
	defaultExchangeRatio  = 10

	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	withdrawEnabledEnvVar  = "WITHDRAWALS_ENABLED"
	minWithdrawalEnvVar    = "MIN_WITHDRAWAL"
	exchangeRatioEnvVar    = "EXCHANGE_RATIO"
)

// Config captures application runtime configuration loaded from environment variables.
//
// The withdrawal policy values (enabled flag, minimum amount, exchange ratio)
// are explicit fields handed to the cash service at wiring time rather than
// read from ambient process state inside the settlement path.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// WithdrawalsEnabled gates the cash request operation entirely.
	WithdrawalsEnabled bool
	// MinWithdrawal is the smallest accepted withdrawal amount in currency units.
	MinWithdrawal int64
	// ExchangeRatio is the number of points one currency unit is worth.
	ExchangeRatio int64
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ShutdownPeriod:     defaultShutdownDelay,
		IdempotencyTTL:     defaultIdempotencyTTL,
		WithdrawalsEnabled: true,
		MinWithdrawal:      defaultMinWithdrawal,
		ExchangeRatio:      defaultExchangeRatio,
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

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if v := os.Getenv(withdrawEnabledEnvVar); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", withdrawEnabledEnvVar, err)
		}
		cfg.WithdrawalsEnabled = enabled
	}

	if v := os.Getenv(minWithdrawalEnvVar); v != "" {
		min, err := strconv.ParseInt(v, 10, 64)
		if err != nil || min < 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", minWithdrawalEnvVar, v)
		}
		cfg.MinWithdrawal = min
	}

	if v := os.Getenv(exchangeRatioEnvVar); v != "" {
		ratio, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ratio <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", exchangeRatioEnvVar, v)
		}
		cfg.ExchangeRatio = ratio
	}

	if cfg.DatabaseURL == "" && !isDev(cfg.AppEnv) {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" && !isDev(cfg.AppEnv) {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
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

// IsDev reports whether the configured environment is a development one.
func (c Config) IsDev() bool {
	return isDev(c.AppEnv)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
