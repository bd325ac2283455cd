package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL is a safety net for abandoned rooms. The session deletes a
	// room when its last player disconnects; the TTL only reclaims rooms
	// orphaned by a crashed or partitioned server.
	RoomTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
	}
}
