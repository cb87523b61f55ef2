package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	NATSSubject    string
	CacheRoot      string
	Timezone       *time.Location
	StatsCacheTTL  time.Duration
	RefreshTimeout time.Duration
	GitBinary      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KURSUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "KURSUS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cache.root", "/var/lib/kursus/cache")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("refresh.timeout", "10m")
	v.SetDefault("git.binary", "git")
	v.SetDefault("nats.subject", "kursus.course.refreshed")

	ttlString := v.GetString("stats.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	refreshTimeoutString := v.GetString("refresh.timeout")
	if refreshTimeoutString == "" {
		refreshTimeoutString = "10m"
	}

	refreshTimeout, err := time.ParseDuration(refreshTimeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh timeout: %w", err)
	}

	// Deadlines and visibility cutoffs are normalized in one canonical zone
	// rather than whatever zone the host happens to run in.
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		CacheRoot:      v.GetString("cache.root"),
		Timezone:       loc,
		StatsCacheTTL:  ttl,
		RefreshTimeout: refreshTimeout,
		GitBinary:      v.GetString("git.binary"),
	}

	if cfg.CacheRoot == "" {
		return Config{}, fmt.Errorf("cache root must be provided")
	}

	return cfg, nil
}
