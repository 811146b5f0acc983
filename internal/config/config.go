// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "POS_"

// Config holds everything the API process needs at startup. Token secrets
// are mandatory: the process refuses to start without them instead of
// failing on the first login.
type Config struct {
	HTTPAddr string
	GRPCAddr string
	PGDSN    string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	RateBurst  int
	RatePerSec int
}

// Load reads configuration from environment variables. It returns an error
// when a required variable is missing so main can fail fast.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:        getEnv("GRPC_ADDR", ""),
		PGDSN:           getEnv("PG_DSN", ""),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RateBurst:       getInt("RATE_BURST", 40),
		RatePerSec:      getInt("RATE_PER_SEC", 20),
	}

	var err error
	if cfg.AccessTokenSecret, err = getRequired("ACCESS_TOKEN_SECRET"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenSecret, err = getRequired("REFRESH_TOKEN_SECRET"); err != nil {
		return nil, err
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("config: access and refresh token secrets must differ")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	return v
}

func getRequired(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return "", fmt.Errorf("config: %s%s is required", envPrefix, key)
	}
	return v, nil
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
