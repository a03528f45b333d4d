package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg config.GeminiConfig, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		modelName:   cfg.ModelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		logger:      logger,
	}
}

// Name returns the model used
func (c *GeminiClient) Name() string {
	return c.modelName
}

// RequiresAPIKey is always true for Gemini
func (c *GeminiClient) RequiresAPIKey() bool {
	return true
}

// Complete sends the prompt to Gemini and returns the concatenated text parts
func (c *GeminiClient) Complete(ctx context.Context, apiKey string, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", core.NewError(core.KindTransportFailure, err, "Failed to create Gemini client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			c.logger.Warn("Failed to close Gemini client", zap.Error(err))
		}
	}()

	model := client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", core.NewError(core.KindTransportFailure, err, "Gemini API request failed: %v", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", core.NewError(core.KindMalformedResponse, nil, "Invalid response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		} else {
			fmt.Fprintf(&b, "%v", part)
		}
	}
	return b.String(), nil
}
