// Package config loads the trendline configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/trendline/pkg/adapters/eino"
	"github.com/aretw0/trendline/pkg/adapters/langgraph"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/persistence/middleware"
	"github.com/aretw0/trendline/pkg/pipeline"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "trendline.yaml"

// Environment variables that override file values.
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvModel        = "TRENDLINE_MODEL"
	EnvModelType    = "TRENDLINE_MODEL_TYPE"
	EnvModelBaseURL = "TRENDLINE_MODEL_BASE_URL"
	EnvModelAPIKey  = "TRENDLINE_MODEL_API_KEY"
	EnvRedisAddr    = "TRENDLINE_REDIS_ADDR"
	EnvLangGraphURL = "TRENDLINE_LANGGRAPH_URL"
	EnvLogLevel     = "TRENDLINE_LOG_LEVEL"
	EnvStoreType    = "TRENDLINE_STORE"
	EnvServerAddr   = "TRENDLINE_ADDR"
	EnvEncryptKey   = "TRENDLINE_ENCRYPTION_KEY"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreLoam   = "loam"
)

var validate = validator.New()

// Config is the root of trendline.yaml.
type Config struct {
	Model     eino.ModelConfig `yaml:"model"`
	GitHub    GitHubConfig     `yaml:"github"`
	Pipeline  pipeline.Options `yaml:"pipeline"`
	Store     StoreConfig      `yaml:"store"`
	LangGraph LangGraphConfig  `yaml:"langgraph"`
	Server    ServerConfig     `yaml:"server"`
	Log       LogConfig        `yaml:"log"`
}

// GitHubConfig configures the repository search client.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	// RateLimit is the minimum interval between search calls.
	RateLimit time.Duration `yaml:"rate_limit" validate:"gte=0"`
}

// StoreConfig selects where reports are persisted.
type StoreConfig struct {
	Type  string      `yaml:"type" validate:"oneof=memory redis loam"`
	Path  string      `yaml:"path" validate:"required_if=Type loam"`
	Redis RedisConfig `yaml:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, reports are encrypted at rest.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys decrypt reports written before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys"`
	// Redact masks e-mail addresses and tokens before reports are saved.
	Redact         bool     `yaml:"redact"`
	RedactPatterns []string `yaml:"redact_patterns"`
}

// Middlewares builds the report store middlewares selected by the section.
func (s StoreConfig) Middlewares() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if s.Redact || len(s.RedactPatterns) > 0 {
		patterns := s.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultRedactionPatterns
		}
		redact, err := middleware.NewRedactionMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}
	if s.EncryptionKey != "" {
		active, err := middleware.ParseKey(s.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range s.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		encrypt, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, encrypt)
	}
	return mws, nil
}

// RedisConfig configures the redis store and run lock.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

// LangGraphConfig points at the LangGraph API server.
type LangGraphConfig struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Model: eino.ModelConfig{
			Type:  eino.ModelTypeOllama,
			Model: eino.DefaultOllamaModel,
		},
		GitHub: GitHubConfig{
			RateLimit: 6 * time.Second,
		},
		Pipeline: pipeline.DefaultOptions(),
		Store: StoreConfig{
			Type: StoreMemory,
			Path: ".trendline/reports",
		},
		LangGraph: LangGraphConfig{
			BaseURL: langgraph.DefaultBaseURL,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults, then applies environment overrides.
// A missing file is not an error: the defaults (plus environment) are used.
// JSON files are accepted too, since YAML is a superset of JSON.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvGitHubToken, &c.GitHub.Token)
	set(EnvModel, &c.Model.Model)
	set(EnvModelBaseURL, &c.Model.BaseURL)
	set(EnvModelAPIKey, &c.Model.APIKey)
	set(EnvLangGraphURL, &c.LangGraph.BaseURL)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvStoreType, &c.Store.Type)
	set(EnvServerAddr, &c.Server.Addr)
	set(EnvRedisAddr, &c.Store.Redis.Addr)
	set(EnvEncryptKey, &c.Store.EncryptionKey)

	if v, ok := lookup(EnvModelType); ok && v != "" {
		c.Model.Type = eino.ModelType(v)
	}
}

// Validate normalizes the model type and checks every section.
func (c *Config) Validate() error {
	modelType := eino.ParseModelType(string(c.Model.Type))
	if modelType == eino.ModelTypeUnknown {
		return fmt.Errorf("invalid config: unsupported model type %q", c.Model.Type)
	}
	c.Model.Type = modelType
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Store.Type = strings.ToLower(c.Store.Type)

	if err := validate.Struct(c.GitHub); err != nil {
		return fmt.Errorf("invalid config: github: %w", err)
	}
	if err := validate.Struct(c.Store); err != nil {
		return fmt.Errorf("invalid config: store: %w", err)
	}
	if c.Store.Type == StoreRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("invalid config: store: redis.addr is required for the redis store")
	}
	if _, err := c.Store.Middlewares(); err != nil {
		return fmt.Errorf("invalid config: store: %w", err)
	}
	if err := validate.Struct(c.LangGraph); err != nil {
		return fmt.Errorf("invalid config: langgraph: %w", err)
	}
	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("invalid config: log: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	return nil
}

// RunConfig renders the pipeline section as the configuration map consumed by steps.
func (c *Config) RunConfig() domain.Config {
	return c.Pipeline.Config()
}
