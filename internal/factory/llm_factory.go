package factory

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-phish-detector/internal/adapters/bedrock"
	"github.com/mikey/llm-phish-detector/internal/adapters/gemini"
	"github.com/mikey/llm-phish-detector/internal/adapters/openai"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	provider := f.cfg.GetLLM().Provider

	switch provider {
	case "openai":
		timeout, err := f.cfg.GetDuration("server.request_timeout")
		if err != nil {
			return nil, err
		}
		return openai.NewOpenAIClient(f.cfg.GetOpenAI(), &http.Client{Timeout: timeout}, f.logger), nil
	case "gemini":
		return gemini.NewGeminiClient(f.cfg.GetGemini(), f.logger), nil
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), bedrockCfg, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
