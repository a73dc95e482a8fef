package config

import (
	"fmt"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
)

// ClassifierConfig represents the rule engine configuration
type ClassifierConfig struct {
	Mode              core.Mode
	IdentityLength    int
	ImportantContacts []string
	RecencyHints      []string
}

// DelegateConfig represents the delegated classification configuration
type DelegateConfig struct {
	Enabled        bool
	Provider       string
	URL            string
	Delay          time.Duration
	Timeout        time.Duration
	Keywords       []string
	MaxPreviewSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// StoreConfig represents the key-value store configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// ServerConfig represents the HTTP transport configuration
type ServerConfig struct {
	Enabled         bool
	ListenAddress   string
	ShutdownTimeout time.Duration
}

// BrowserConfig represents the browser page driver configuration
type BrowserConfig struct {
	Enabled      bool
	ControlURL   string
	Headless     bool
	StartURL     string
	PollInterval time.Duration
	Method       core.Method
	Debounce     time.Duration
}

// NotifyConfig represents the SMTP alert configuration
type NotifyConfig struct {
	Enabled     bool
	SMTPAddress string
	Username    string
	Password    string
	From        string
	To          []string
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Mode:              core.ParseMode(c.GetString("classifier.mode")),
		IdentityLength:    c.GetInt("classifier.identity_length"),
		ImportantContacts: c.GetStringSlice("classifier.important_contacts"),
		RecencyHints:      c.GetStringSlice("classifier.recency_hints"),
	}
}

// GetDelegate returns the delegated classification configuration
func (c *Config) GetDelegate() (DelegateConfig, error) {
	delay, err := c.GetDuration("delegate.delay")
	if err != nil {
		return DelegateConfig{}, fmt.Errorf("invalid delegate delay: %w", err)
	}
	timeout, err := c.GetDuration("delegate.timeout")
	if err != nil {
		return DelegateConfig{}, fmt.Errorf("invalid delegate timeout: %w", err)
	}
	return DelegateConfig{
		Enabled:        c.GetBool("delegate.enabled"),
		Provider:       c.GetString("delegate.provider"),
		URL:            c.GetString("delegate.url"),
		Delay:          delay,
		Timeout:        timeout,
		Keywords:       c.GetStringSlice("delegate.keywords"),
		MaxPreviewSize: c.GetInt("delegate.max_preview_size"),
	}, nil
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetServer returns the HTTP transport configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server shutdown timeout: %w", err)
	}
	return ServerConfig{
		Enabled:         c.GetBool("server.enabled"),
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: timeout,
	}, nil
}

// GetBrowser returns the browser page driver configuration
func (c *Config) GetBrowser() (BrowserConfig, error) {
	poll, err := c.GetDuration("browser.poll_interval")
	if err != nil {
		return BrowserConfig{}, fmt.Errorf("invalid browser poll interval: %w", err)
	}
	debounce, err := c.GetDuration("detector.debounce")
	if err != nil {
		return BrowserConfig{}, fmt.Errorf("invalid detector debounce: %w", err)
	}
	return BrowserConfig{
		Enabled:      c.GetBool("browser.enabled"),
		ControlURL:   c.GetString("browser.control_url"),
		Headless:     c.GetBool("browser.headless"),
		StartURL:     c.GetString("browser.start_url"),
		PollInterval: poll,
		Method:       core.ParseMethod(c.GetString("browser.method")),
		Debounce:     debounce,
	}, nil
}

// GetNotify returns the SMTP alert configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled:     c.GetBool("notify.enabled"),
		SMTPAddress: c.GetString("notify.smtp_address"),
		Username:    c.GetString("notify.username"),
		Password:    c.GetString("notify.password"),
		From:        c.GetString("notify.from"),
		To:          c.GetStringSlice("notify.to"),
	}
}
