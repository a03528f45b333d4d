package render

import (
	"strings"

	"github.com/mikey/llm-phish-detector/internal/core"
)

// RiskClass returns the CSS class of the status banner
func RiskClass(level core.RiskLevel) string {
	switch level.Normalized() {
	case core.RiskHigh:
		return "suspicious"
	case core.RiskMedium:
		return "medium"
	case core.RiskLow:
		return "safe"
	default:
		return "suspicious"
	}
}

// RiskText returns the headline for a risk level
func RiskText(level core.RiskLevel) string {
	switch level.Normalized() {
	case core.RiskHigh:
		return "High Risk - Likely Phishing Attempt"
	case core.RiskMedium:
		return "Medium Risk - Exercise Caution"
	case core.RiskLow:
		return "Low Risk - Email Appears Safe"
	default:
		return "Unknown Risk Level"
	}
}

// StatusEmoji returns the banner icon for a risk level
func StatusEmoji(level core.RiskLevel) string {
	switch level.Normalized() {
	case core.RiskHigh:
		return "🚨"
	case core.RiskMedium:
		return "⚠️"
	case core.RiskLow:
		return "✅"
	default:
		return "❓"
	}
}

// ReasonEmoji picks an icon by the first matching keyword of a reason
func ReasonEmoji(reason string) string {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "url"):
		return "🔗"
	case strings.Contains(r, "domain"):
		return "🌐"
	case strings.Contains(r, "sender"):
		return "👤"
	case strings.Contains(r, "spoof"):
		return "🎭"
	case strings.Contains(r, "urgent"):
		return "⚡"
	default:
		return "⚠️"
	}
}

// ConfidenceColor returns the CSS colour of the confidence bar
func ConfidenceColor(score float64) string {
	switch {
	case score >= 80:
		return "var(--success-color)"
	case score >= 60:
		return "var(--warning-color)"
	default:
		return "var(--danger-color)"
	}
}

// YesNo formats a technical flag
func YesNo(flag bool) string {
	if flag {
		return "⚠️ Yes"
	}
	return "✅ No"
}

// Troubleshooting is shown under every error message
var Troubleshooting = []string{
	"Make sure you have an email open in Gmail",
	"Check that your API key is valid",
	"Try refreshing the page",
	"Reopen the popup",
}
