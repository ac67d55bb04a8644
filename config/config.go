package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string

	// Identity provider (GoTrue/Supabase-compatible)
	IdentityURL       string
	IdentityKey       string
	IdentityJWTSecret string
	IdentityTimeout   time.Duration

	// Redis (local snapshot store + rate limiting)
	RedisURL      string
	RedisPassword string
	SnapshotTTL   time.Duration

	// NATS (auth event bus); empty falls back to the in-process bus
	NATSUrl string

	// S3-compatible picture storage
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PublicBaseURL   string

	// Stripe (premium conversion)
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	// Session policies
	AssumeOnboardedOnRestore    bool
	Step3ProceedOnRemoteFailure bool
	SignOutGracePeriod          time.Duration

	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
}

func LoadConfig() (*Config, error) {
	// .env only matters locally; ignored in production when absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		IdentityURL:       strings.TrimRight(getEnv("IDENTITY_URL", ""), "/"),
		IdentityKey:       getEnv("IDENTITY_KEY", getEnv("IDENTITY_ANON_KEY", "")),
		IdentityJWTSecret: getEnv("IDENTITY_JWT_SECRET", ""),
		IdentityTimeout:   time.Duration(getEnvInt("IDENTITY_TIMEOUT_SECONDS", 10)) * time.Second,

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SnapshotTTL:   time.Duration(getEnvInt("SNAPSHOT_TTL_HOURS", 0)) * time.Hour,

		NATSUrl: getEnv("NATS_URL", ""),

		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnv("STRIPE_PREMIUM_PRICE_ID", ""),

		AssumeOnboardedOnRestore:    getEnvBool("ASSUME_ONBOARDED_ON_RESTORE", true),
		Step3ProceedOnRemoteFailure: getEnvBool("STEP3_PROCEED_ON_REMOTE_FAILURE", true),
		SignOutGracePeriod:          time.Duration(getEnvInt("SIGNOUT_GRACE_MILLIS", 500)) * time.Millisecond,

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.IdentityURL == "" {
		log.Println("WARNING: IDENTITY_URL is missing. Authentication will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Snapshots and rate limiting will be unavailable.")
	}
	if cfg.NATSUrl == "" {
		log.Println("WARNING: NATS_URL not configured. Auth events will use the in-process bus.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
