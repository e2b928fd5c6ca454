// Package config loads letluck.yaml.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. Its absence is not an error.
const DefaultPath = "letluck.yaml"

// EnvEncryptionKey overrides store.encryption_key so the key can stay out of the file.
const EnvEncryptionKey = "LETLUCK_ENCRYPTION_KEY"

const keySize = 32 // AES-256

// Config is the full runtime configuration.
type Config struct {
	// Tree is a YAML/JSON tree file. Empty means the built-in sample tree.
	Tree string `mapstructure:"tree"`
	// Content is a Loam document directory. It takes precedence over Tree.
	Content string `mapstructure:"content"`
	// Watch reloads the tree when its source changes.
	Watch bool `mapstructure:"watch"`

	Store   StoreConfig   `mapstructure:"store"`
	Recency RecencyConfig `mapstructure:"recency"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Display DisplayConfig `mapstructure:"display"`
}

// StoreConfig selects where sessions and recency history live.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"` // file | redis | memory
	Dir     string        `mapstructure:"dir"`
	Redis   RedisConfig   `mapstructure:"redis"`
	TTL     time.Duration `mapstructure:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, stored sessions are sealed.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys still open sessions sealed before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (c StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		if len(c.FallbackKeys) > 0 {
			return nil, nil, errors.New("fallback keys need an encryption key")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey(c.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("want %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// RedisConfig is used when Backend is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Lock     bool   `mapstructure:"lock"`
}

// RecencyConfig bounds the anti-repeat history.
type RecencyConfig struct {
	Limit int `mapstructure:"limit"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// DisplayConfig tunes the terminal presentation.
type DisplayConfig struct {
	Layout        string `mapstructure:"layout"` // desktop | mobile
	ReducedMotion bool   `mapstructure:"reduced_motion"`
	Color         bool   `mapstructure:"color"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: "file",
			Dir:     ".letluck",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "letluck:",
			},
		},
		Recency: RecencyConfig{Limit: 20},
		Log:     LogConfig{Level: "info", Format: "text"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Display: DisplayConfig{Layout: "desktop", Color: true},
	}
}

// Load reads path over the defaults. A missing DefaultPath yields the defaults;
// any other missing path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load %s: %w", path, err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if key := os.Getenv(EnvEncryptionKey); key != "" {
		cfg.Store.EncryptionKey = key
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, keeping fields the document does not set.
func Parse(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate rejects unknown enumerations.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Display.Layout {
	case "desktop", "mobile":
	default:
		return fmt.Errorf("unknown layout %q", c.Display.Layout)
	}
	if c.Recency.Limit < 0 {
		return fmt.Errorf("recency limit cannot be negative")
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	return nil
}
