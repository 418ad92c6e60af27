// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public URL used for share deep links
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // file | sqlite | redis
	Dir     string `yaml:"dir"`     // data directory for file/sqlite backends
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SecurityConfig struct {
	EncryptionKey string        `yaml:"encryption_key"` // optional; 16/24/32 bytes
	SessionSecret string        `yaml:"session_secret"` // HMAC secret for session cookies
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type AuthConfig struct {
	AuthBaseURL string        `yaml:"auth_base_url"`
	UserBaseURL string        `yaml:"user_base_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	OpenAIKey  string `yaml:"openai_key"`
	OpenAIBase string `yaml:"openai_base"`
	GeminiKey  string `yaml:"gemini_key"`
	GeminiURL  string `yaml:"gemini_url"`
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
}

type ChatConfig struct {
	ReplyDelay    time.Duration `yaml:"reply_delay"`    // artificial latency of the simulated reply
	HistoryWindow int           `yaml:"history_window"` // messages handed to the reply adapter
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Auth     AuthConfig     `yaml:"auth"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data"
	}
	if cfg.Auth.Timeout <= 0 {
		cfg.Auth.Timeout = 10 * time.Second
	}
	if cfg.Security.SessionTTL <= 0 {
		cfg.Security.SessionTTL = 30 * time.Minute
	}
	if cfg.Chat.ReplyDelay < 0 {
		cfg.Chat.ReplyDelay = 0
	}
	if cfg.Chat.ReplyDelay == 0 && !dev {
		cfg.Chat.ReplyDelay = time.Second
	}
	if cfg.Chat.HistoryWindow <= 0 {
		cfg.Chat.HistoryWindow = 15
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}

	// Minimal validation
	switch strings.ToLower(cfg.Storage.Backend) {
	case "file", "sqlite":
	case "redis":
		if cfg.Redis.URL == "" {
			return nil, fmt.Errorf("redis.url is required for storage.backend=redis")
		}
	default:
		return nil, fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
