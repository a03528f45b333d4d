package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func phishingResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		IsPhishing:      true,
		ConfidenceScore: 92,
		Reasons:         []string{"Sender domain does not match the brand", "Urgent request to act"},
		RiskLevel:       core.RiskHigh,
		TechnicalDetails: core.TechnicalDetails{
			SuspiciousURLs:  []string{"paypa1-secure.example"},
			DomainMismatch:  true,
			SpoofingAttempt: false,
			LanguageAnalysis: core.LanguageAnalysis{
				SuspiciousPhrases: []string{"verify now", "account suspended"},
				UrgencyDetected:   true,
			},
		},
	}
}

func cleanResult() *core.AnalysisResult {
	return core.Normalize(core.Success{Result: &core.AnalysisResult{
		ConfidenceScore: 55,
		Reasons:         []string{"Nothing unusual"},
		RiskLevel:       "LOW",
	}})
}

func TestLabels(t *testing.T) {
	t.Run("risk levels", func(t *testing.T) {
		tests := []struct {
			level core.RiskLevel
			class string
			text  string
			emoji string
		}{
			{core.RiskHigh, "suspicious", "High Risk - Likely Phishing Attempt", "🚨"},
			{"Medium", "medium", "Medium Risk - Exercise Caution", "⚠️"},
			{"LOW", "safe", "Low Risk - Email Appears Safe", "✅"},
			{"critical", "suspicious", "Unknown Risk Level", "❓"},
			{"", "suspicious", "Unknown Risk Level", "❓"},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.class, RiskClass(tt.level), "class for %q", tt.level)
			assert.Equal(t, tt.text, RiskText(tt.level), "text for %q", tt.level)
			assert.Equal(t, tt.emoji, StatusEmoji(tt.level), "emoji for %q", tt.level)
		}
	})

	t.Run("reason emoji follows keyword order", func(t *testing.T) {
		assert.Equal(t, "🔗", ReasonEmoji("Suspicious URL with mismatched domain"))
		assert.Equal(t, "🌐", ReasonEmoji("Sender domain does not match"))
		assert.Equal(t, "👤", ReasonEmoji("Unknown sender"))
		assert.Equal(t, "🎭", ReasonEmoji("Possible SPOOFING of a brand"))
		assert.Equal(t, "⚡", ReasonEmoji("Urgent wording"))
		assert.Equal(t, "⚠️", ReasonEmoji("Generic greeting"))
	})

	t.Run("confidence colour thresholds", func(t *testing.T) {
		assert.Equal(t, "var(--success-color)", ConfidenceColor(80))
		assert.Equal(t, "var(--warning-color)", ConfidenceColor(79.9))
		assert.Equal(t, "var(--warning-color)", ConfidenceColor(60))
		assert.Equal(t, "var(--danger-color)", ConfidenceColor(59))
	})

	assert.Equal(t, "⚠️ Yes", YesNo(true))
	assert.Equal(t, "✅ No", YesNo(false))
	assert.Equal(t, "92%", Percent(92))
	assert.Equal(t, "87.5%", Percent(87.5))
}

func TestHTML(t *testing.T) {
	t.Run("phishing card", func(t *testing.T) {
		out, err := HTMLString(phishingResult())
		require.NoError(t, err)

		assert.Contains(t, out, `class="status suspicious"`)
		assert.Contains(t, out, "🚨 High Risk - Likely Phishing Attempt")
		assert.Contains(t, out, "🌐 Sender domain does not match the brand")
		assert.Contains(t, out, "⚡ Urgent request to act")
		assert.Contains(t, out, "Suspicious URLs")
		assert.Contains(t, out, "🔗 paypa1-secure.example")
		assert.Contains(t, out, "Domain Mismatch: ⚠️ Yes")
		assert.Contains(t, out, "Spoofing Attempt: ✅ No")
		assert.Contains(t, out, "Suspicious Phrases: verify now, account suspended")
		assert.Contains(t, out, "background-color: var(--success-color)")
		assert.Contains(t, out, "92%")
	})

	t.Run("empty sections are omitted", func(t *testing.T) {
		out, err := HTMLString(cleanResult())
		require.NoError(t, err)

		assert.Contains(t, out, `class="status safe"`)
		assert.NotContains(t, out, "Suspicious URLs")
		assert.NotContains(t, out, "Suspicious Phrases")
		assert.Contains(t, out, "var(--danger-color)")
	})

	t.Run("failed result renders the error card", func(t *testing.T) {
		out, err := HTMLString(core.FailureResult(core.ErrCredentialMissing()))
		require.NoError(t, err)

		assert.Contains(t, out, "❌ API key not found")
		assert.Contains(t, out, "Troubleshooting")
		for _, tip := range Troubleshooting {
			assert.Contains(t, out, tip)
		}
		assert.NotContains(t, out, "Technical Analysis")
	})

	t.Run("model text is escaped", func(t *testing.T) {
		r := phishingResult()
		r.Reasons = []string{`<script>alert("x")</script>`}

		out, err := HTMLString(r)
		require.NoError(t, err)
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	})
}

func TestAPIKeyFormHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, APIKeyFormHTML(&buf, "/api-key", "Please enter a valid API key"))

	out := buf.String()
	assert.Contains(t, out, `action="/api-key"`)
	assert.Contains(t, out, `name="api_key"`)
	assert.Contains(t, out, `id="save-key"`)
	assert.Contains(t, out, "Please enter a valid API key")

	buf.Reset()
	require.NoError(t, APIKeyFormHTML(&buf, "/api-key", ""))
	assert.NotContains(t, buf.String(), "status suspicious")
}

func TestText(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Text(&buf, phishingResult()))

		out := buf.String()
		assert.Contains(t, out, "=== Results ===")
		assert.Contains(t, out, "🚨 High Risk - Likely Phishing Attempt")
		assert.Contains(t, out, "Is phishing: true")
		assert.Contains(t, out, "Confidence: 92%")
		assert.Contains(t, out, "=== Suspicious URLs ===")
		assert.Contains(t, out, "Suspicious Phrases: verify now, account suspended")
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Text(&buf, core.FailureResult(core.ErrCredentialMissing())))

		out := buf.String()
		assert.Contains(t, out, "=== Error ===")
		assert.Contains(t, out, "=== Troubleshooting ===")
		assert.NotContains(t, out, "=== Results ===")
	})
}

func TestWrite(t *testing.T) {
	t.Run("json uses camelCase keys", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, phishingResult()))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, true, decoded["isPhishing"])
		assert.Equal(t, "high", decoded["riskLevel"])
		assert.NotContains(t, decoded, "error")

		td := decoded["technicalDetails"].(map[string]any)
		assert.Contains(t, td, "suspiciousUrls")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, phishingResult()))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "high", decoded["riskLevel"])
		assert.True(t, strings.Contains(buf.String(), "suspiciousUrls:"))
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatHTML, phishingResult()))
		assert.Contains(t, buf.String(), "<!DOCTYPE html>")
	})

	t.Run("format names", func(t *testing.T) {
		f, err := ParseFormat("JSON")
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, f)

		_, err = ParseFormat("xml")
		assert.Error(t, err)
	})
}
