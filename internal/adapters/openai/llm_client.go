package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	modelName   string
	baseURL     string
	maxTokens   int
	temperature float32
	topP        float32
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. httpClient may be nil.
func NewOpenAIClient(cfg config.OpenAIConfig, httpClient *http.Client, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		modelName:   cfg.ModelName,
		baseURL:     cfg.BaseURL,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Name returns the model used
func (c *OpenAIClient) Name() string {
	return c.modelName
}

// RequiresAPIKey is always true for OpenAI
func (c *OpenAIClient) RequiresAPIKey() bool {
	return true
}

func (c *OpenAIClient) client(apiKey string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		clientCfg.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		clientCfg.HTTPClient = c.httpClient
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Complete sends the prompt as a single user message and returns the reply text
func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	c.logger.Debug("Sending request to OpenAI API", zap.String("model", c.modelName))

	resp, err := c.client(apiKey).CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", core.NewError(core.KindMalformedResponse, nil, "Invalid response from OpenAI API")
	}

	c.logger.Debug("Received OpenAI response",
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// classifyError maps go-openai errors onto the analysis error taxonomy
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(err, apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(err, reqErr.HTTPStatusCode)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return core.NewError(core.KindMalformedResponse, err, "Invalid response from OpenAI API: %v", err)
	}

	return core.NewError(core.KindTransportFailure, err, "OpenAI API request failed: %v", err)
}

func statusError(err error, code int) error {
	return core.NewError(core.KindTransportFailure, err,
		"OpenAI API request failed: %d %s", code, http.StatusText(code))
}
