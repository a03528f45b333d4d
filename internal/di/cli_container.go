package di

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phish-detector/internal/adapters/frontend"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/logging"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/render"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxBodySize int

	// Input flags
	File     string
	URL      string
	EML      string
	Browser  bool
	DebugURL string

	// Output flags
	Format  string
	Trust   string
	Verbose bool
	JSONLog bool

	ConfigFile string

	set map[string]bool
}

// ParseFlags parses command line arguments into a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("phish-detector", flag.ContinueOnError)

	fs.StringVar(&flags.Provider, "provider", "openai", "LLM provider (openai, gemini, bedrock)")
	fs.StringVar(&flags.Model, "model", "", "Model name or Bedrock model ID")
	fs.StringVar(&flags.APIKey, "api-key", "", "API key (defaults to the configured credential store)")
	fs.StringVar(&flags.BaseURL, "base-url", "", "Override the OpenAI API base URL")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 8192, "Maximum email body size sent to the model")

	fs.StringVar(&flags.File, "file", "", "Saved HTML of a Gmail message page")
	fs.StringVar(&flags.URL, "url", "https://mail.google.com/mail/u/0/", "Page URL reported for -file")
	fs.StringVar(&flags.EML, "eml", "", "Raw RFC 5322 message file, - for stdin")
	fs.BoolVar(&flags.Browser, "browser", false, "Read the open Gmail tab of a running Chrome")
	fs.StringVar(&flags.DebugURL, "debug-url", "http://127.0.0.1:9222", "Chrome remote debugging URL for -browser")

	fs.StringVar(&flags.Format, "format", "text", "Output format (text, html, json, yaml)")
	fs.StringVar(&flags.Trust, "trust", "", "Comma-separated list of trusted sender domains")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file; flags given explicitly still win")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { flags.set[f.Name] = true })

	inputs := 0
	for _, on := range []bool{flags.File != "", flags.EML != "", flags.Browser} {
		if on {
			inputs++
		}
	}
	if inputs != 1 {
		return nil, fmt.Errorf("exactly one of -file, -eml or -browser is required")
	}
	if _, err := render.ParseFormat(flags.Format); err != nil {
		return nil, err
	}
	return flags, nil
}

// IsSet reports whether the named flag was given on the command line
func (f *CLIFlags) IsSet(name string) bool {
	return f.set[name]
}

// OpenMessage opens the -eml input
func (f *CLIFlags) OpenMessage() (io.ReadCloser, error) {
	if f.EML == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(f.EML)
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return configFromFlags(flags, logger)
	}); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register CLI frontend
	if err := container.Provide(func(
		flags *CLIFlags,
		agent *messaging.Agent,
		ext *extractor.GmailExtractor,
		svc *core.AnalysisService,
		logger *zap.Logger,
	) (*frontend.CLIFrontend, error) {
		format, err := render.ParseFormat(flags.Format)
		if err != nil {
			return nil, err
		}
		return frontend.NewCLIFrontend(agent.Popup(), ext, svc, logger, os.Stdout, format, flags.Verbose), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// configFromFlags starts from the config file when one is given, or from the
// defaults with caching off, and lays explicit flags on top.
func configFromFlags(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		var err error
		cfg, err = config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		v := config.NewEmptyViper()
		v.Set("cache.enabled", false)
		cfg = config.NewFromViper(v)
	}
	v := cfg.GetViper()

	if flags.ConfigFile == "" || flags.IsSet("provider") {
		v.Set("llm.provider", flags.Provider)
	}
	if flags.Model != "" {
		switch flags.Provider {
		case "openai":
			v.Set("openai.model_name", flags.Model)
		case "gemini":
			v.Set("gemini.model_name", flags.Model)
		case "bedrock":
			v.Set("bedrock.model_id", flags.Model)
		}
	}
	if flags.BaseURL != "" {
		v.Set("openai.base_url", flags.BaseURL)
	}
	if flags.APIKey != "" {
		v.Set("credentials.type", "memory")
		v.Set("credentials.static_key", flags.APIKey)
	}
	if flags.ConfigFile == "" || flags.IsSet("max-body-size") {
		v.Set("analysis.max_body_size", flags.MaxBodySize)
	}
	if flags.Trust != "" {
		domains := strings.Split(flags.Trust, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("trust.domains", domains)
	}

	switch {
	case flags.Browser:
		v.Set("source.type", "browser")
		if flags.ConfigFile == "" || flags.IsSet("debug-url") {
			v.Set("browser.debug_url", flags.DebugURL)
		}
	default:
		v.Set("source.type", "file")
		v.Set("source.file_path", flags.File)
		v.Set("source.document_url", flags.URL)
	}

	return cfg, nil
}
