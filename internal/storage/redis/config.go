package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// KeyPrefix namespaces every key written by this process group
	KeyPrefix string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types
	RoomTTL time.Duration
	GameTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		KeyPrefix:    "wordgame",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      2 * time.Hour,
		GameTTL:      24 * time.Hour,
	}
}
