// Package config loads server settings from defaults, a .env file, WORDGAME_*
// environment variables, an optional config file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WORDGAME_STORAGE_TYPE
const EnvPrefix = "WORDGAME"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Keys
const (
	KeyAddr                 = "addr"
	KeyLogLevel             = "log_level"
	KeyStorageType          = "storage.type"
	KeyRedisURL             = "redis.url"
	KeyRedisKeyPrefix       = "redis.key_prefix"
	KeyArchivePath          = "archive.path"
	KeyDictionaryPath       = "dictionary.path"
	KeySessionSecret        = "session.secret"
	KeySessionDuration      = "session.duration"
	KeyAIThinkMin           = "ai.think_min"
	KeyAIThinkMax           = "ai.think_max"
	KeyAIMaxNewTiles        = "ai.max_new_tiles"
	KeyRoomsDisconnectGrace = "rooms.disconnect_grace"
	KeyRoomsMaxAge          = "rooms.max_age"
	KeyRoomsSweepInterval   = "rooms.sweep_interval"
	KeyWSAllowedOrigins     = "ws.allowed_origins"
)

// Config is the resolved server configuration
type Config struct {
	Addr     string
	LogLevel string

	StorageType    string
	RedisURL       string
	RedisKeyPrefix string

	// ArchivePath is the sqlite results file; empty keeps results in memory
	ArchivePath string
	// DictionaryPath is a word list file; empty uses storage or the embedded list
	DictionaryPath string

	SessionSecret   string
	SessionDuration time.Duration

	AIThinkMin    time.Duration
	AIThinkMax    time.Duration
	AIMaxNewTiles int

	DisconnectGrace time.Duration
	RoomMaxAge      time.Duration
	SweepInterval   time.Duration

	AllowedOrigins []string
}

var defaults = map[string]any{
	KeyAddr:                 ":8080",
	KeyLogLevel:             "info",
	KeyStorageType:          StorageMemory,
	KeyRedisURL:             "redis://localhost:6379",
	KeyRedisKeyPrefix:       "wordgame",
	KeyArchivePath:          "",
	KeyDictionaryPath:       "",
	KeySessionSecret:        "",
	KeySessionDuration:      24 * time.Hour,
	KeyAIThinkMin:           400 * time.Millisecond,
	KeyAIThinkMax:           1800 * time.Millisecond,
	KeyAIMaxNewTiles:        4,
	KeyRoomsDisconnectGrace: 5 * time.Minute,
	KeyRoomsMaxAge:          time.Hour,
	KeyRoomsSweepInterval:   time.Minute,
	KeyWSAllowedOrigins:     []string{},
}

// NewViper returns a viper instance with defaults registered and environment
// lookups enabled
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads file (if set) into v and resolves the configuration
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Addr:            v.GetString(KeyAddr),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		StorageType:     strings.ToLower(v.GetString(KeyStorageType)),
		RedisURL:        v.GetString(KeyRedisURL),
		RedisKeyPrefix:  v.GetString(KeyRedisKeyPrefix),
		ArchivePath:     v.GetString(KeyArchivePath),
		DictionaryPath:  v.GetString(KeyDictionaryPath),
		SessionSecret:   v.GetString(KeySessionSecret),
		SessionDuration: v.GetDuration(KeySessionDuration),
		AIThinkMin:      v.GetDuration(KeyAIThinkMin),
		AIThinkMax:      v.GetDuration(KeyAIThinkMax),
		AIMaxNewTiles:   v.GetInt(KeyAIMaxNewTiles),
		DisconnectGrace: v.GetDuration(KeyRoomsDisconnectGrace),
		RoomMaxAge:      v.GetDuration(KeyRoomsMaxAge),
		SweepInterval:   v.GetDuration(KeyRoomsSweepInterval),
		AllowedOrigins:  splitList(v.GetStringSlice(KeyWSAllowedOrigins)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and combinations
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis.url is required when storage.type is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, errors.New("session.duration must be positive"))
	}
	if c.AIThinkMin < 0 || c.AIThinkMax < c.AIThinkMin {
		errs = append(errs, errors.New("ai.think_min must be non-negative and no greater than ai.think_max"))
	}
	if c.AIMaxNewTiles < 1 || c.AIMaxNewTiles > 7 {
		errs = append(errs, errors.New("ai.max_new_tiles must be between 1 and 7"))
	}
	if c.DisconnectGrace <= 0 || c.RoomMaxAge <= 0 || c.SweepInterval <= 0 {
		errs = append(errs, errors.New("rooms durations must be positive"))
	}
	return errors.Join(errs...)
}

// splitList accepts both list values and comma separated strings
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
