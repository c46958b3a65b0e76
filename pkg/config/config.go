// Package config loads lineage settings from a TOML file, a .env file and
// the environment, in increasing order of precedence.
//
// The file lives at $XDG_CONFIG_HOME/lineage/config.toml (default
// ~/.config/lineage/config.toml):
//
//	[storage]
//	backend = "postgres"
//	postgres_dsn = "host=localhost user=lineage dbname=lineage sslmode=disable"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[ai]
//	model = "gpt-4o-mini"
//
//	[server]
//	addr = ":8080"
//
//	[session]
//	ttl = "720h"
//
// Every field has a LINEAGE_* environment override; see [Config.ApplyEnv].
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/lineage/pkg/errors"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

var (
	storageBackends = []string{BackendFile, BackendMemory, BackendMongo, BackendRedis, BackendPostgres}
	cacheBackends   = []string{BackendFile, BackendRedis, BackendNone}
	sessionBackends = []string{BackendFile, BackendRedis}
)

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	AI      AIConfig      `toml:"ai"`
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
}

// StorageConfig selects where people are persisted.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"` // file backend; empty for the XDG data dir
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	PostgresDSN   string `toml:"postgres_dsn"`
	Debug         bool   `toml:"debug"` // log SQL statements
}

// CacheConfig selects where extraction responses are cached.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// AIConfig configures the text extraction service.
type AIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool { return c.APIKey != "" }

// ServerConfig configures `lineage serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SessionConfig configures where login sessions are kept.
type SessionConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:       BackendFile,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "lineage",
			RedisAddr:     "localhost:6379",
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		AI: AIConfig{
			Model: "gpt-4o-mini",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Session: SessionConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       30 * 24 * time.Hour,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lineage/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lineage", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lineage", "config.toml"), nil
}

// Load reads configuration. An empty path uses [DefaultPath], and a missing
// default file is not an error; an explicit path must exist. A .env file in
// the working directory is loaded into the environment first, then
// environment overrides are applied and the result is validated.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // optional

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return cfg, err
		}
	} else if explicit || !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidFormat, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from LINEAGE_* variables. OPENAI_API_KEY and
// OPENAI_MODEL are honored when the LINEAGE_AI_* variants are unset.
func (c *Config) ApplyEnv() {
	setString(&c.Storage.Backend, "LINEAGE_STORAGE_BACKEND")
	setString(&c.Storage.Dir, "LINEAGE_STORAGE_DIR")
	setString(&c.Storage.MongoURI, "LINEAGE_MONGO_URI")
	setString(&c.Storage.MongoDatabase, "LINEAGE_MONGO_DATABASE")
	setString(&c.Storage.RedisAddr, "LINEAGE_REDIS_ADDR")
	setString(&c.Storage.RedisPassword, "LINEAGE_REDIS_PASSWORD")
	setInt(&c.Storage.RedisDB, "LINEAGE_REDIS_DB")
	setString(&c.Storage.PostgresDSN, "LINEAGE_POSTGRES_DSN")

	setString(&c.Cache.Backend, "LINEAGE_CACHE_BACKEND")
	setString(&c.Cache.Dir, "LINEAGE_CACHE_DIR")
	setString(&c.Cache.RedisAddr, "LINEAGE_CACHE_REDIS_ADDR")

	setString(&c.AI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.APIKey, "LINEAGE_AI_API_KEY")
	setString(&c.AI.Model, "OPENAI_MODEL")
	setString(&c.AI.Model, "LINEAGE_AI_MODEL")
	setString(&c.AI.BaseURL, "LINEAGE_AI_BASE_URL")

	setString(&c.Server.Addr, "LINEAGE_SERVER_ADDR")

	setString(&c.Session.Backend, "LINEAGE_SESSION_BACKEND")
	setString(&c.Session.Dir, "LINEAGE_SESSION_DIR")
	setString(&c.Session.RedisAddr, "LINEAGE_SESSION_REDIS_ADDR")
	if v := getEnv("LINEAGE_SESSION_TTL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.TTL = d
		}
	}
}

// Validate checks backend names and required connection settings.
func (c Config) Validate() error {
	if !slices.Contains(storageBackends, c.Storage.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "storage.backend %q: must be one of %s", c.Storage.Backend, strings.Join(storageBackends, ", "))
	}
	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q: must be one of %s", c.Cache.Backend, strings.Join(cacheBackends, ", "))
	}
	if !slices.Contains(sessionBackends, c.Session.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "session.backend %q: must be one of %s", c.Session.Backend, strings.Join(sessionBackends, ", "))
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" {
		return errors.New(errors.ErrCodeInvalidInput, "storage.postgres_dsn is required for the postgres backend")
	}
	if c.Session.TTL <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "session.ttl must be positive")
	}
	return nil
}

// Encode renders c as TOML. The API key is left out.
func (c Config) Encode() ([]byte, error) {
	c.AI.APIKey = ""
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes c to path, creating parent directories. Existing files
// are not overwritten.
func (c Config) WriteFile(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func setString(dst *string, key string) {
	*dst = getEnv(key, *dst)
}

func setInt(dst *int, key string) {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		*dst = n
	}
}
