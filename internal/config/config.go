package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all process-wide configuration, loaded once at startup.
// The JWT signing key is immutable after Load; every token issuer and
// validator must share the same key material.
type Config struct {
	Port string

	DatabaseDSN string

	JWTKey          []byte // HMAC-SHA512 key, hex-decoded from JWT_SECRET
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// Load reads configuration from the environment. It fails if the JWT
// secret is missing or not valid hex, since a bad key renders every
// issued token unverifiable.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in production mode")
		}
		// Development fallback only, never use in production
		secret = "5f8d2c3b4a6978e1f0a1b2c3d4e5f60718293a4b5c6d7e8f9091a2b3c4d5e6f7"
	}

	key, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET must be hex-encoded: %w", err)
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))

	return &Config{
		Port:        envOr("PORT", "8080"),
		DatabaseDSN: dsn,

		JWTKey:          key,
		AccessTokenTTL:  durationEnv("JWT_ACCESS_TTL", time.Hour),
		RefreshTokenTTL: durationEnv("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL:   durationEnv("JWT_RESET_TTL", 5*time.Minute),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PWD"),
		RedisDB:       redisDB,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envOr("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
	}, nil
}
