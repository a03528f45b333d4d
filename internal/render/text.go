package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/llm-phish-detector/internal/core"
	"gopkg.in/yaml.v3"
)

// Format selects how a result is written
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatHTML, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Write renders result in the given format
func Write(w io.Writer, format Format, result *core.AnalysisResult) error {
	switch format {
	case FormatHTML:
		return HTML(w, result)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return Text(w, result)
	}
}

// Text writes a console report of result
func Text(w io.Writer, result *core.AnalysisResult) error {
	var b strings.Builder

	if result.Failed() {
		fmt.Fprintf(&b, "\n=== Error ===\n")
		fmt.Fprintf(&b, "❌ %s\n", result.Error)
		fmt.Fprintf(&b, "\n=== Troubleshooting ===\n")
		for _, tip := range Troubleshooting {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\n=== Results ===\n")
	fmt.Fprintf(&b, "%s %s\n", StatusEmoji(result.RiskLevel), RiskText(result.RiskLevel))
	fmt.Fprintf(&b, "Is phishing: %t\n", result.IsPhishing)
	fmt.Fprintf(&b, "Confidence: %s\n", Percent(result.ConfidenceScore))

	fmt.Fprintf(&b, "\n=== Analysis Results ===\n")
	for _, reason := range result.Reasons {
		fmt.Fprintf(&b, "%s %s\n", ReasonEmoji(reason), reason)
	}

	if urls := result.TechnicalDetails.SuspiciousURLs; len(urls) > 0 {
		fmt.Fprintf(&b, "\n=== Suspicious URLs ===\n")
		for _, u := range urls {
			fmt.Fprintf(&b, "🔗 %s\n", u)
		}
	}

	td := result.TechnicalDetails
	fmt.Fprintf(&b, "\n=== Technical Analysis ===\n")
	fmt.Fprintf(&b, "Domain Mismatch: %s\n", YesNo(td.DomainMismatch))
	fmt.Fprintf(&b, "Spoofing Attempt: %s\n", YesNo(td.SpoofingAttempt))
	fmt.Fprintf(&b, "Urgency Detected: %s\n", YesNo(td.LanguageAnalysis.UrgencyDetected))
	if phrases := td.LanguageAnalysis.SuspiciousPhrases; len(phrases) > 0 {
		fmt.Fprintf(&b, "Suspicious Phrases: %s\n", joinComma(phrases))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
