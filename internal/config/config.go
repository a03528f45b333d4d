package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance from the standard search paths
func New() (*Config, error) {
	return load("")
}

// NewFromFile creates a configuration instance from an explicit file
func NewFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	// A missing .env file is fine outside development
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/llm-phish-detector/")
		v.AddConfigPath("$HOME/.llm-phish-detector")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("PHISH_DETECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
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

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")

	v.SetDefault("analysis.max_body_size", 8192)

	// Frontend defaults
	v.SetDefault("server.frontend", "http")
	v.SetDefault("server.listen_address", "127.0.0.1:8085")
	v.SetDefault("server.request_timeout", "90s")

	// SMTP intake defaults
	v.SetDefault("smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp.block_phishing", false)
	v.SetDefault("smtp.timeout", "60s")
	v.SetDefault("smtp.headers.status", "X-Phishing-Status")
	v.SetDefault("smtp.headers.risk", "X-Phishing-Risk")
	v.SetDefault("smtp.headers.score", "X-Phishing-Confidence")
	v.SetDefault("smtp.headers.reason", "X-Phishing-Reason")
	v.SetDefault("smtp.relay.enabled", true)
	v.SetDefault("smtp.relay.address", "127.0.0.1")
	v.SetDefault("smtp.relay.port", 10026)

	// OpenAI defaults
	v.SetDefault("openai.model_name", "gpt-3.5-turbo")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 0)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.top_p", 1.0)

	// Gemini defaults
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.3)
	v.SetDefault("bedrock.top_p", 0.9)

	// Credential store defaults
	v.SetDefault("credentials.type", "env")
	v.SetDefault("credentials.key_name", "openai_key")
	v.SetDefault("credentials.env_var", "OPENAI_API_KEY")
	v.SetDefault("credentials.static_key", "")
	v.SetDefault("credentials.env_file", "")
	v.SetDefault("credentials.sqlite_path", "/data/phish_secrets.db")

	// Document source defaults
	v.SetDefault("source.type", "file")
	v.SetDefault("source.file_path", "")
	v.SetDefault("source.document_url", "https://mail.google.com/mail/u/0/")
	v.SetDefault("browser.debug_url", "http://127.0.0.1:9222")
	v.SetDefault("browser.tab_match", "mail.google.com")
	v.SetDefault("browser.timeout", "15s")

	// Extractor defaults
	v.SetDefault("extractor.subject_selector", "h2[data-thread-perm-id]")
	v.SetDefault("extractor.sender_selector", ".gD")
	v.SetDefault("extractor.body_selector", ".a3s.aiL")

	// Trusted sender domains
	v.SetDefault("trust.domains", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/phish_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phish_detector?parseTime=true")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
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
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
