package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "REVIEW_TRIAGE"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An explicit configFile replaces
// the search paths; envFile is loaded into the process environment first and
// may be absent.
func New(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/review-triage/")
		v.AddConfigPath("$HOME/.review-triage")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional provider variables are honoured next to the prefixed ones
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("notify.telegram.token", EnvPrefix+"_NOTIFY_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("cache.valkey.password", EnvPrefix+"_CACHE_VALKEY_PASSWORD", "VALKEY_PASSWORD")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.request_timeout", "60s")
	v.SetDefault("llm.max_content_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.top_p", 0.9)

	// Analysis defaults
	v.SetDefault("analysis.default_batch_size", 10)
	v.SetDefault("analysis.max_batch_size", 50)
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.rating_max", 5.0)
	v.SetDefault("analysis.upvote_cap", 1000.0)
	v.SetDefault("analysis.sentiment", true)

	// Per-task request defaults
	v.SetDefault("urgency.temperature", 0.11)
	v.SetDefault("urgency.max_tokens", 200)
	v.SetDefault("category.temperature", 0.1)
	v.SetDefault("category.max_tokens", 10)
	v.SetDefault("category.invalidate_on_new_batch", true)
	v.SetDefault("reply.temperature", 0.1)
	v.SetDefault("reply.max_tokens", 500)
	v.SetDefault("reply.style", "empathy")
	v.SetDefault("reply.lexicon_file", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "./data/category_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/review_triage")
	v.SetDefault("cache.valkey.address", "localhost:6379")
	v.SetDefault("cache.valkey.password", "")
	v.SetDefault("cache.valkey.key_prefix", "review-triage:categories:")

	// Notify defaults
	v.SetDefault("notify.type", "none")
	v.SetDefault("notify.smtp.address", "localhost")
	v.SetDefault("notify.smtp.port", 25)
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("notify.smtp.from", "review-triage@localhost")
	v.SetDefault("notify.smtp.to", []string{})
	v.SetDefault("notify.smtp.starttls", false)
	v.SetDefault("notify.smtp.timeout", "10s")
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", 0)

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.title", "Review triage report")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Set overrides a configuration value, used for command-line flags
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
