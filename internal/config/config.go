package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration sourced from the environment.
type Config struct {
	// Host is the interface to bind (empty means all interfaces)
	Host string
	// Port is the TCP port to listen on
	Port int
	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string
	// RedisURL is the Redis connection string (required for redis storage)
	RedisURL string
	// RoomTTL bounds the lifetime of a room key in Redis
	RoomTTL time.Duration
	// PassagesFile optionally points at a newline-delimited passage file
	PassagesFile string
	// CountdownFrom is the first tick of the pre-race countdown
	CountdownFrom int
	// TickInterval is the spacing between countdown ticks
	TickInterval time.Duration
	// AllowedOrigins restricts CORS; empty means allow all
	AllowedOrigins []string
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Port:          4000,
		StorageType:   "memory",
		RoomTTL:       24 * time.Hour,
		CountdownFrom: 3,
		TickInterval:  time.Second,
	}
}

// Load reads configuration from the environment, layering a .env file
// underneath if one is present in the working directory.
func Load() (Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := Default()

	cfg.Host = os.Getenv("HOST")
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.StorageType = v
	}
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if v := os.Getenv("ROOM_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROOM_TTL %q: %w", v, err)
		}
		cfg.RoomTTL = ttl
	}

	cfg.PassagesFile = os.Getenv("PASSAGES_FILE")

	if v := os.Getenv("COUNTDOWN_FROM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid COUNTDOWN_FROM %q", v)
		}
		cfg.CountdownFrom = n
	}
	if v := os.Getenv("COUNTDOWN_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COUNTDOWN_TICK_INTERVAL %q: %w", v, err)
		}
		cfg.TickInterval = d
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}
