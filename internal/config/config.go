package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/linkedin-prioritizer/")
	v.AddConfigPath("$HOME/.linkedin-prioritizer")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
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

// bindEnv maps PRIORITIZER_SECTION_KEY variables onto section.key
func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("PRIORITIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// NewEnvViper creates a new Viper instance with defaults and environment overrides
func NewEnvViper() *viper.Viper {
	v := NewEmptyViper()
	bindEnv(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier defaults
	v.SetDefault("classifier.mode", "multi")
	v.SetDefault("classifier.identity_length", 20)
	v.SetDefault("classifier.important_contacts", []string{})
	v.SetDefault("classifier.recency_hints", []string{"just now", "minute", "hour", "today"})

	// Delegated classification defaults
	v.SetDefault("delegate.enabled", true)
	v.SetDefault("delegate.provider", "endpoint")
	v.SetDefault("delegate.url", "http://localhost:3001/check-high-priority")
	v.SetDefault("delegate.delay", "5s")
	v.SetDefault("delegate.timeout", "30s")
	v.SetDefault("delegate.keywords", []string{"offer", "job", "urgent", "important"})
	v.SetDefault("delegate.max_preview_size", 2000)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 256)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 256)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 256)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.sqlite_path", "/data/prioritizer.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/prioritizer")

	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen_address", "127.0.0.1:3002")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Browser defaults
	v.SetDefault("browser.enabled", false)
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.start_url", "https://www.linkedin.com/messaging/")
	v.SetDefault("browser.poll_interval", "250ms")
	v.SetDefault("browser.method", "rule")

	// Change detector defaults
	v.SetDefault("detector.debounce", "500ms")

	// Notification defaults
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_address", "localhost:25")
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")
	v.SetDefault("notify.from", "prioritizer@localhost")
	v.SetDefault("notify.to", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Watch calls onChange whenever the config file is rewritten
func (c *Config) Watch(onChange func(fsnotify.Event)) {
	c.v.OnConfigChange(onChange)
	c.v.WatchConfig()
}

// ConfigFile returns the path of the loaded config file, if any
func (c *Config) ConfigFile() string {
	return c.v.ConfigFileUsed()
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
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
