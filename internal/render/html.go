package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/mikey/llm-phish-detector/internal/core"
)

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Phishing Detector</title>
<style>
:root { --success-color: #2e7d32; --warning-color: #f9a825; --danger-color: #c62828; }
body { font-family: Verdana, sans-serif; width: 380px; margin: 12px; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 12px; }
.status { font-weight: bold; padding: 8px; border-radius: 6px; margin-bottom: 10px; }
.status.safe { background: #e8f5e9; } .status.medium { background: #fff8e1; } .status.suspicious { background: #ffebee; }
.section { margin-top: 10px; } .section-title { font-weight: bold; margin-bottom: 4px; }
.warning { margin: 2px 0; }
.progress-bar { background: #eee; height: 8px; border-radius: 4px; width: 100%; }
.progress { height: 8px; border-radius: 4px; }
</style>
</head>
<body>
<div id="content">{{end}}

{{define "foot"}}</div>
</body>
</html>{{end}}

{{define "result"}}{{template "head"}}
<div class="card">
  <div class="status {{riskClass .RiskLevel}}">
    {{statusEmoji .RiskLevel}} {{riskText .RiskLevel}}
  </div>
  <div class="section">
    <div class="section-title">Analysis Results</div>
    {{range .Reasons}}<div class="warning">{{reasonEmoji .}} {{.}}</div>
    {{end}}
  </div>
  {{with .TechnicalDetails.SuspiciousURLs}}<div class="section">
    <div class="section-title">Suspicious URLs</div>
    {{range .}}<div class="warning">🔗 {{.}}</div>
    {{end}}
  </div>{{end}}
  <div class="section technical-details">
    <div class="section-title">Technical Analysis</div>
    <div>Domain Mismatch: {{yesNo .TechnicalDetails.DomainMismatch}}</div>
    <div>Spoofing Attempt: {{yesNo .TechnicalDetails.SpoofingAttempt}}</div>
    <div>Urgency Detected: {{yesNo .TechnicalDetails.LanguageAnalysis.UrgencyDetected}}</div>
    {{with .TechnicalDetails.LanguageAnalysis.SuspiciousPhrases}}<div>Suspicious Phrases: {{join .}}</div>{{end}}
  </div>
  <div class="section">
    <div class="section-title">Security Level</div>
    <div class="confidence">
      <div class="progress-bar">
        <div class="progress" style="width: {{.ConfidenceScore}}%; background-color: {{confidenceColor .ConfidenceScore}}"></div>
      </div>
      <span>{{percent .ConfidenceScore}}</span>
    </div>
  </div>
</div>
{{template "foot"}}{{end}}

{{define "error"}}{{template "head"}}
<div class="card">
  <div class="status suspicious">❌ {{.Message}}</div>
  <div class="section troubleshooting">
    <div class="section-title">Troubleshooting</div>
    <ul>
    {{range .Tips}}<li>{{.}}</li>
    {{end}}</ul>
  </div>
</div>
{{template "foot"}}{{end}}

{{define "apikey"}}{{template "head"}}
<div class="card" id="api-key-section">
  <div class="section-title">Enter your API key</div>
  {{with .Notice}}<div class="status suspicious">{{.}}</div>{{end}}
  <form method="POST" action="{{.Action}}">
    <input type="password" id="api-key" name="api_key" placeholder="sk-...">
    <button type="submit" id="save-key">Save</button>
  </form>
</div>
{{template "foot"}}{{end}}
`

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"riskClass":   RiskClass,
	"riskText":    RiskText,
	"statusEmoji": StatusEmoji,
	"reasonEmoji": ReasonEmoji,
	"yesNo":       YesNo,
	"percent":     Percent,
	"join":        joinComma,
	"confidenceColor": func(score float64) template.CSS {
		return template.CSS(ConfidenceColor(score))
	},
}).Parse(pageTemplates))

type errorView struct {
	Message string
	Tips    []string
}

type apiKeyView struct {
	Action string
	Notice string
}

// Percent formats a confidence score the way the popup shows it
func Percent(score float64) string {
	return fmt.Sprintf("%g%%", score)
}

// HTML writes the popup card for a result. Failed results render as the error card.
func HTML(w io.Writer, result *core.AnalysisResult) error {
	if result.Failed() {
		return ErrorHTML(w, result.Error)
	}
	return pages.ExecuteTemplate(w, "result", result)
}

// ErrorHTML writes the error card with troubleshooting tips
func ErrorHTML(w io.Writer, message string) error {
	return pages.ExecuteTemplate(w, "error", errorView{Message: message, Tips: Troubleshooting})
}

// APIKeyFormHTML writes the API key form posting to action. notice is shown above
// the form when non-empty.
func APIKeyFormHTML(w io.Writer, action, notice string) error {
	return pages.ExecuteTemplate(w, "apikey", apiKeyView{Action: action, Notice: notice})
}

// HTMLString renders result to a string
func HTMLString(result *core.AnalysisResult) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}
