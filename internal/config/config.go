package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: STEPWISE_STORE_REDIS_ADDR sets store.redis.addr.
const EnvPrefix = "STEPWISE"

// FileName is the config file looked up when --config is not given.
const FileName = "stepwise.yaml"

// Config holds everything the CLI needs to build an engine and its transports.
type Config struct {
	// File is the wizard definition (YAML or JSON).
	File  string      `mapstructure:"file"`
	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	Serve ServeConfig `mapstructure:"serve"`
	MCP   MCPConfig   `mapstructure:"mcp"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects and configures the session backend.
type StoreConfig struct {
	Type string `mapstructure:"type"`
	// Dir is the file backend's directory.
	Dir   string      `mapstructure:"dir"`
	Redis RedisConfig `mapstructure:"redis"`
	// EncryptionKey enables at-rest encryption. 32 bytes, hex or base64 encoded.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are older keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys"`
	// LockTTL bounds how long a distributed session lock is held.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr            string        `mapstructure:"addr"`
	Metrics         bool          `mapstructure:"metrics"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		File: "wizard.yaml",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Type:         "file",
			Dir:          filepath.Join(".stepwise", "sessions"),
			FallbackKeys: []string{},
			LockTTL:      30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "stepwise:session:",
			},
		},
		Serve: ServeConfig{
			Addr:            ":8080",
			Metrics:         true,
			ShutdownTimeout: 5 * time.Second,
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8080,
		},
	}
}

// SetDefaults registers every key with v so file, env and flag overrides all resolve.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("file", defaults.File)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("store.type", defaults.Store.Type)
	v.SetDefault("store.dir", defaults.Store.Dir)
	v.SetDefault("store.encryption_key", defaults.Store.EncryptionKey)
	v.SetDefault("store.fallback_keys", defaults.Store.FallbackKeys)
	v.SetDefault("store.lock_ttl", defaults.Store.LockTTL)
	v.SetDefault("store.redis.addr", defaults.Store.Redis.Addr)
	v.SetDefault("store.redis.password", defaults.Store.Redis.Password)
	v.SetDefault("store.redis.db", defaults.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", defaults.Store.Redis.Prefix)
	v.SetDefault("store.redis.ttl", defaults.Store.Redis.TTL)

	v.SetDefault("serve.addr", defaults.Serve.Addr)
	v.SetDefault("serve.metrics", defaults.Serve.Metrics)
	v.SetDefault("serve.shutdown_timeout", defaults.Serve.ShutdownTimeout)

	v.SetDefault("mcp.transport", defaults.MCP.Transport)
	v.SetDefault("mcp.port", defaults.MCP.Port)
}

// Init prepares v: defaults, environment overrides and the config file.
// An explicit cfgFile must exist. Without one, FileName is looked up in the working
// directory and in ConfigDir, and a missing file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the user's stepwise config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepwise")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stepwise"
	}
	return filepath.Join(home, ".config", "stepwise")
}

// EncryptionKeys decodes the active and fallback keys. ok is false when encryption is off.
func (c *StoreConfig) EncryptionKeys() (active []byte, fallback [][]byte, ok bool, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, false, nil
	}
	active, err = DecodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, false, fmt.Errorf("store.encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := DecodeKey(k)
		if err != nil {
			return nil, nil, false, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, true, nil
}

// DecodeKey accepts a 32-byte key as 64 hex characters or standard base64.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.New("key must be 64 hex characters or base64")
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
