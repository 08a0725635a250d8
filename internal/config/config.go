package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName       = "PhoneID"
	defaultAppEnv        = "development"
	defaultPort          = "3000"
	defaultLogLevel      = "info"
	defaultMasterSecret  = "ThisIsADefaultSecretPhrase"
	defaultSMSFrom       = "PhoneID"
	defaultVerifyAPIURL  = "https://api.nexmo.com"
	defaultSMSAPIURL     = "https://rest.nexmo.com"
	defaultPushAPIURL    = "https://fcm.googleapis.com/fcm/send"
	defaultOTPTTL        = 60 * time.Second
	defaultShutdownDelay = 10 * time.Second
	defaultVerifyRate    = 5
)

// Config captures application runtime configuration. It is populated once at
// startup and passed to component constructors; nothing mutates it afterwards.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// MasterSecret keys every HMAC derivation and console session token.
	MasterSecret string

	// SMS provider credentials. When key or secret is empty the service runs
	// the provider adapter in test mode.
	SMSAPIURL    string
	VerifyAPIURL string
	SMSAPIKey    string
	SMSAPISecret string
	SMSFrom      string

	// OTPTTL bounds how long a pending verification code stays valid.
	OTPTTL time.Duration
	// VerifyRatePerMin caps verification requests per phone number.
	VerifyRatePerMin int

	PushAPIURL  string
	PushEnabled bool

	// Bootstrap admin provisioned at startup when both values are set.
	AdminEmail    string
	AdminPassword string

	ShutdownPeriod time.Duration
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MasterSecret:     getEnv("MASTER_SECRET", defaultMasterSecret),
		SMSAPIURL:        getEnv("SMS_API_URL", defaultSMSAPIURL),
		VerifyAPIURL:     getEnv("VERIFY_API_URL", defaultVerifyAPIURL),
		SMSAPIKey:        os.Getenv("SMS_API_KEY"),
		SMSAPISecret:     os.Getenv("SMS_API_SECRET"),
		SMSFrom:          getEnv("SMS_FROM", defaultSMSFrom),
		OTPTTL:           defaultOTPTTL,
		VerifyRatePerMin: defaultVerifyRate,
		PushAPIURL:       getEnv("PUSH_API_URL", defaultPushAPIURL),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		ShutdownPeriod:   defaultShutdownDelay,
	}

	cfg.PushEnabled = getEnv("PUSH_ENABLED", "false") == "true"

	if v := os.Getenv("OTP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_TTL: %w", err)
		}
		cfg.OTPTTL = d
	}

	if v := os.Getenv("VERIFY_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid VERIFY_RATE_PER_MIN: %w", err)
		}
		cfg.VerifyRatePerMin = n
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.MasterSecret == defaultMasterSecret {
			return Config{}, fmt.Errorf("MASTER_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development environment, where
// in-memory stores are allowed in place of Postgres and Redis.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// SMSConfigured reports whether live provider credentials are present. When
// false the provider adapter runs in test mode.
func (c Config) SMSConfigured() bool {
	return c.SMSAPIKey != "" && c.SMSAPISecret != ""
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
