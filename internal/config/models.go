package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the provider-independent text generation settings
type LLMConfig struct {
	Provider       string
	RequestTimeout time.Duration
	MaxContentSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	ModelName string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string
	ModelID string
	TopP    float32
}

// AnalysisConfig bounds a triage run
type AnalysisConfig struct {
	DefaultBatchSize int
	MaxBatchSize     int
	TopN             int
	RatingMax        float64
	UpvoteCap        float64
	Sentiment        bool
}

// RequestConfig holds the sampling settings of one kind of model request
type RequestConfig struct {
	Temperature float32
	MaxTokens   int
}

// CategoryConfig represents the category request and memoization settings
type CategoryConfig struct {
	RequestConfig
	InvalidateOnNewBatch bool
}

// ReplyConfig represents the reply request settings
type ReplyConfig struct {
	RequestConfig
	Style       string
	LexiconFile string
}

// CacheConfig represents the category cache backend settings
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	ValkeyAddress    string
	ValkeyPassword   string
	ValkeyKeyPrefix  string
}

// SMTPConfig represents the mail relay used to deliver reply drafts
type SMTPConfig struct {
	Address  string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	StartTLS bool
	Timeout  time.Duration
}

// TelegramConfig represents the chat used to deliver reply drafts
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// NotifyConfig represents the reply delivery settings
type NotifyConfig struct {
	Type     string
	SMTP     SMTPConfig
	Telegram TelegramConfig
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.request_timeout")
	if err != nil {
		return LLMConfig{}, fmt.Errorf("invalid llm.request_timeout: %w", err)
	}
	return LLMConfig{
		Provider:       c.GetString("llm.provider"),
		RequestTimeout: timeout,
		MaxContentSize: c.GetInt("llm.max_content_size"),
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		BaseURL:   c.GetString("openai.base_url"),
		ModelName: c.GetString("openai.model_name"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
		TopP:    float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAnalysis returns the batch analysis configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		DefaultBatchSize: c.GetInt("analysis.default_batch_size"),
		MaxBatchSize:     c.GetInt("analysis.max_batch_size"),
		TopN:             c.GetInt("analysis.top_n"),
		RatingMax:        c.GetFloat64("analysis.rating_max"),
		UpvoteCap:        c.GetFloat64("analysis.upvote_cap"),
		Sentiment:        c.GetBool("analysis.sentiment"),
	}
}

// GetUrgency returns the urgency request configuration
func (c *Config) GetUrgency() RequestConfig {
	return c.request("urgency")
}

// GetCategory returns the category request configuration
func (c *Config) GetCategory() CategoryConfig {
	return CategoryConfig{
		RequestConfig:        c.request("category"),
		InvalidateOnNewBatch: c.GetBool("category.invalidate_on_new_batch"),
	}
}

// GetReply returns the reply request configuration
func (c *Config) GetReply() ReplyConfig {
	return ReplyConfig{
		RequestConfig: c.request("reply"),
		Style:         c.GetString("reply.style"),
		LexiconFile:   c.GetString("reply.lexicon_file"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache.ttl: %w", err)
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache.cleanup_frequency: %w", err)
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		ValkeyAddress:    c.GetString("cache.valkey.address"),
		ValkeyPassword:   c.GetString("cache.valkey.password"),
		ValkeyKeyPrefix:  c.GetString("cache.valkey.key_prefix"),
	}, nil
}

// GetNotify returns the reply delivery configuration
func (c *Config) GetNotify() (NotifyConfig, error) {
	timeout, err := c.GetDuration("notify.smtp.timeout")
	if err != nil {
		return NotifyConfig{}, fmt.Errorf("invalid notify.smtp.timeout: %w", err)
	}
	return NotifyConfig{
		Type: c.GetString("notify.type"),
		SMTP: SMTPConfig{
			Address:  c.GetString("notify.smtp.address"),
			Port:     c.GetInt("notify.smtp.port"),
			Username: c.GetString("notify.smtp.username"),
			Password: c.GetString("notify.smtp.password"),
			From:     c.GetString("notify.smtp.from"),
			To:       c.GetStringSlice("notify.smtp.to"),
			StartTLS: c.GetBool("notify.smtp.starttls"),
			Timeout:  timeout,
		},
		Telegram: TelegramConfig{
			Token:  c.GetString("notify.telegram.token"),
			ChatID: c.GetInt64("notify.telegram.chat_id"),
		},
	}, nil
}

func (c *Config) request(section string) RequestConfig {
	return RequestConfig{
		Temperature: float32(c.GetFloat64(section + ".temperature")),
		MaxTokens:   c.GetInt(section + ".max_tokens"),
	}
}
