package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/llm-phish-detector/internal/adapters/credentials"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"github.com/mikey/llm-phish-detector/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const verdict = `{"isPhishing":true,"confidenceScore":91,"reasons":["Suspicious URL"],"riskLevel":"high","technicalDetails":{"suspiciousUrls":["evil.example"],"domainMismatch":true,"spoofingAttempt":false,"languageAnalysis":{"suspiciousPhrases":[],"urgencyDetected":true}}}`

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "gpt-3.5-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
	return string(body)
}

type captured struct {
	auth  string
	model string
	temp  float64
	role  string
}

func newUpstream(t *testing.T, status int, body string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			var req struct {
				Model       string  `json:"model"`
				Temperature float64 `json:"temperature"`
				Messages    []struct {
					Role string `json:"role"`
				} `json:"messages"`
			}
			_ = json.Unmarshal(raw, &req)
			got.model = req.Model
			got.temp = req.Temperature
			if len(req.Messages) > 0 {
				got.role = req.Messages[0].Role
			}
		}
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(config.OpenAIConfig{
		ModelName:   "gpt-3.5-turbo",
		BaseURL:     baseURL,
		Temperature: 0.3,
		TopP:        1,
	}, nil, zap.NewNop())
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("returns the first choice", func(t *testing.T) {
		var got captured
		srv := newUpstream(t, http.StatusOK, chatReply(verdict), &got)

		text, err := newTestClient(srv.URL+"/v1").Complete(context.Background(), "sk-test", "analyze this")
		require.NoError(t, err)

		assert.Equal(t, verdict, text)
		assert.Equal(t, "Bearer sk-test", got.auth)
		assert.Equal(t, "gpt-3.5-turbo", got.model)
		assert.InDelta(t, 0.3, got.temp, 0.0001)
		assert.Equal(t, "user", got.role)
	})

	t.Run("server error", func(t *testing.T) {
		srv := newUpstream(t, http.StatusInternalServerError,
			`{"error":{"message":"The server had an error","type":"server_error"}}`, nil)

		_, err := newTestClient(srv.URL+"/v1").Complete(context.Background(), "sk-test", "analyze this")
		require.Error(t, err)

		assert.Equal(t, core.KindTransportFailure, core.KindOf(err))
		assert.Equal(t, "OpenAI API request failed: 500 Internal Server Error", err.Error())
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := newUpstream(t, http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, nil)

		_, err := newTestClient(srv.URL+"/v1").Complete(context.Background(), "sk-bad", "analyze this")
		assert.Equal(t, "OpenAI API request failed: 401 Unauthorized", err.Error())
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newUpstream(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil)

		_, err := newTestClient(srv.URL+"/v1").Complete(context.Background(), "sk-test", "analyze this")
		assert.Equal(t, core.KindMalformedResponse, core.KindOf(err))
		assert.Equal(t, "Invalid response from OpenAI API", err.Error())
	})
}

const gmailPage = `<html><body>
<h2 data-thread-perm-id="thread-f:1">Action required</h2>
<span class="gD" email="security@evil.example" name="Security Team">Security Team</span>
<div class="a3s aiL"><p>Log in at https://evil.example/login within 24 hours.</p></div>
</body></html>`

func newPipeline(t *testing.T, upstream string, key string) *messaging.Popup {
	t.Helper()
	logger := zap.NewNop()
	tp := utils.NewTextProcessor(logger)

	svc := core.NewAnalysisService(
		newTestClient(upstream+"/v1"),
		credentials.NewMemoryStore(key),
		nil,
		logger,
		tp,
		whitelist.NewChecker(nil, logger),
		core.ServiceOptions{MaxBodySize: 8192},
	)

	agent := messaging.NewAgent(nil, extractor.NewGmailExtractor(extractor.Selectors{}, tp, logger), svc, logger)
	ctx, cancel := context.WithCancel(context.Background())
	agent.Start(ctx)
	t.Cleanup(func() {
		cancel()
		agent.Wait()
	})
	return agent.Popup()
}

func TestEndToEnd(t *testing.T) {
	doc := &core.Document{URL: "https://mail.google.com/mail/u/0/#inbox/1", HTML: gmailPage}

	t.Run("verdict reaches the popup", func(t *testing.T) {
		srv := newUpstream(t, http.StatusOK, chatReply("```json\n"+verdict+"\n```"), nil)
		popup := newPipeline(t, srv.URL, "sk-test")

		resp := popup.AnalyzeCurrentEmail(context.Background(), doc)

		require.NotNil(t, resp.Result)
		assert.Empty(t, resp.Error)
		assert.True(t, resp.Result.IsPhishing)
		assert.Equal(t, core.RiskHigh, resp.Result.RiskLevel)
		assert.Equal(t, []string{"evil.example"}, resp.Result.TechnicalDetails.SuspiciousURLs)
	})

	t.Run("upstream 500 becomes an unknown risk result", func(t *testing.T) {
		srv := newUpstream(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil)
		popup := newPipeline(t, srv.URL, "sk-test")

		resp := popup.AnalyzeCurrentEmail(context.Background(), doc)

		require.NotNil(t, resp.Result)
		assert.Equal(t, core.RiskUnknown, resp.Result.RiskLevel)
		assert.Equal(t, 0.0, resp.Result.ConfidenceScore)
		require.Len(t, resp.Result.Reasons, 1)
		assert.Contains(t, resp.Result.Reasons[0], "500 Internal Server Error")
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("missing key", func(t *testing.T) {
		srv := newUpstream(t, http.StatusOK, chatReply(verdict), nil)
		popup := newPipeline(t, srv.URL, "")

		resp := popup.AnalyzeCurrentEmail(context.Background(), doc)

		require.NotNil(t, resp.Result)
		assert.Contains(t, resp.Result.Reasons[0], "API key")
	})
}
