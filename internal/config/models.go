package config

import "time"

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	ModelName   string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the configuration of the result cache
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// CredentialsConfig selects where the API key lives
type CredentialsConfig struct {
	Type       string
	KeyName    string
	EnvVar     string
	EnvFile    string
	StaticKey  string
	SQLitePath string
}

// SourceConfig selects where the page agent reads documents from
type SourceConfig struct {
	Type           string
	FilePath       string
	DocumentURL    string
	DebugURL       string
	TabMatch       string
	BrowserTimeout time.Duration
}

// SMTPConfig represents the configuration of the SMTP intake
type SMTPConfig struct {
	ListenAddress string
	BlockPhishing bool
	Timeout       time.Duration
	StatusHeader  string
	RiskHeader    string
	ScoreHeader   string
	ReasonHeader  string
	RelayEnabled  bool
	RelayAddress  string
	RelayPort     int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
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

// GetCache returns the result cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetCredentials returns the credential store configuration
func (c *Config) GetCredentials() CredentialsConfig {
	return CredentialsConfig{
		Type:       c.GetString("credentials.type"),
		KeyName:    c.GetString("credentials.key_name"),
		EnvVar:     c.GetString("credentials.env_var"),
		EnvFile:    c.GetString("credentials.env_file"),
		StaticKey:  c.GetString("credentials.static_key"),
		SQLitePath: c.GetString("credentials.sqlite_path"),
	}
}

// GetSource returns the document source configuration
func (c *Config) GetSource() (SourceConfig, error) {
	timeout, err := c.GetDuration("browser.timeout")
	if err != nil {
		return SourceConfig{}, err
	}
	return SourceConfig{
		Type:           c.GetString("source.type"),
		FilePath:       c.GetString("source.file_path"),
		DocumentURL:    c.GetString("source.document_url"),
		DebugURL:       c.GetString("browser.debug_url"),
		TabMatch:       c.GetString("browser.tab_match"),
		BrowserTimeout: timeout,
	}, nil
}

// GetSMTP returns the SMTP intake configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("smtp.timeout")
	if err != nil {
		return SMTPConfig{}, err
	}
	return SMTPConfig{
		ListenAddress: c.GetString("smtp.listen_address"),
		BlockPhishing: c.GetBool("smtp.block_phishing"),
		Timeout:       timeout,
		StatusHeader:  c.GetString("smtp.headers.status"),
		RiskHeader:    c.GetString("smtp.headers.risk"),
		ScoreHeader:   c.GetString("smtp.headers.score"),
		ReasonHeader:  c.GetString("smtp.headers.reason"),
		RelayEnabled:  c.GetBool("smtp.relay.enabled"),
		RelayAddress:  c.GetString("smtp.relay.address"),
		RelayPort:     c.GetInt("smtp.relay.port"),
	}, nil
}
