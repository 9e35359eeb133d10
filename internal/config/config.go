// Package config reads process settings from QUEST_* environment variables.
// Command-line flags override whatever is read here.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name below.
const Prefix = "QUEST_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the settings shared by every quest command.
type Config struct {
	// ContentPath is a YAML world file or a directory of scene documents.
	// Empty selects the embedded world.
	ContentPath string `env:"CONTENT"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Store         string        `env:"STORE" envDefault:"file"`
	SessionDir    string        `env:"SESSION_DIR" envDefault:".quest/sessions"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:".quest/quest.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"quest:session:"`
	RedisTTL      time.Duration `env:"REDIS_TTL"`
	RedisLock     bool          `env:"REDIS_LOCK"`
	EncryptionKey string        `env:"ENCRYPTION_KEY"`
	// PIIPatterns are regular expressions over entity roles ("player" covers the subject name)
	// whose values are masked before a record is stored.
	PIIPatterns []string `env:"PII_PATTERNS" envSeparator:","`

	MaxInputSize     int      `env:"MAX_INPUT_SIZE" envDefault:"4096"`
	MinKeywordLength int      `env:"MIN_KEYWORD_LENGTH"`
	StopWords        []string `env:"STOP_WORDS" envSeparator:","`

	HTTPPort     int    `env:"HTTP_PORT" envDefault:"8080"`
	MCPTransport string `env:"MCP_TRANSPORT" envDefault:"stdio"`
	MCPPort      int    `env:"MCP_PORT" envDefault:"8081"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set or a range.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, sqlite or redis)", c.Store)
	}
	switch c.MCPTransport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q (want stdio or sse)", c.MCPTransport)
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("max input size must not be negative")
	}
	if k := len(c.EncryptionKey); k != 0 && k != 32 {
		return fmt.Errorf("encryption key must be 32 bytes, got %d", k)
	}
	for _, p := range c.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
	}
	return nil
}
