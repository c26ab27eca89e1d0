package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	GooglePlaces GooglePlacesConfig `yaml:"google_places" mapstructure:"google_places"`
	Reddit       RedditConfig       `yaml:"reddit" mapstructure:"reddit"`
	AI           AIConfig           `yaml:"ai" mapstructure:"ai"`
	Recommend    RecommendConfig    `yaml:"recommend" mapstructure:"recommend"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend. The pool settings only
// apply to the postgres driver.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int    `yaml:"min_conns" mapstructure:"min_conns"`
}

// GooglePlacesConfig holds Google Places API settings.
type GooglePlacesConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
}

// RedditConfig holds Reddit search settings.
type RedditConfig struct {
	BaseURL    string   `yaml:"base_url" mapstructure:"base_url"`
	UserAgent  string   `yaml:"user_agent" mapstructure:"user_agent"`
	Subreddits []string `yaml:"subreddits" mapstructure:"subreddits"`
	MaxPosts   int      `yaml:"max_posts" mapstructure:"max_posts"`
	RateLimit  float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AIConfig selects and configures the generative backend.
type AIConfig struct {
	// Backend is one of "custom", "anthropic", "openai". An unknown
	// value disables enrichment entirely.
	Backend   string          `yaml:"backend" mapstructure:"backend"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OpenAIConfig holds OpenAI-compatible chat completion settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// RecommendConfig tunes the recommendation pipeline.
type RecommendConfig struct {
	DefaultLimit        int `yaml:"default_limit" mapstructure:"default_limit"`
	ProviderTimeoutSecs int `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
	EnrichTimeoutSecs   int `yaml:"enrich_timeout_secs" mapstructure:"enrich_timeout_secs"`
	RetryAttempts       int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs      int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	// MaxDistanceKM bounds results around the request location when one
	// is supplied. Places without coordinates are never filtered.
	MaxDistanceKM float64 `yaml:"max_distance_km" mapstructure:"max_distance_km"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "placescout.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("google_places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google_places.max_results", 10)
	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.user_agent", "placescout/1.0")
	v.SetDefault("reddit.subreddits", []string{"food", "restaurants", "coffee", "bars", "nightlife", "activities"})
	v.SetDefault("reddit.max_posts", 20)
	v.SetDefault("reddit.rate_limit", 1.0)
	v.SetDefault("ai.backend", "custom")
	v.SetDefault("ai.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("ai.anthropic.max_tokens", 1024)
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("recommend.default_limit", 5)
	v.SetDefault("recommend.provider_timeout_secs", 15)
	v.SetDefault("recommend.enrich_timeout_secs", 30)
	v.SetDefault("recommend.retry_attempts", 2)
	v.SetDefault("recommend.retry_backoff_ms", 250)
	v.SetDefault("recommend.max_distance_km", 50.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
