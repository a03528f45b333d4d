package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Outcome is the result of one external analysis call: either Success or Failure
type Outcome interface {
	outcome()
}

// Success carries a parsed model verdict. Missing lists the JSON paths that were
// absent from the answer and have been defaulted.
type Success struct {
	Result  *AnalysisResult
	Missing []string
}

// Failure carries the reason no verdict is available
type Failure struct {
	Kind    ErrorKind
	Message string
}

func (Success) outcome() {}
func (Failure) outcome() {}

const malformedMessage = "Could not parse the AI response. The response was not in valid JSON format."

type wireLanguage struct {
	SuspiciousPhrases []string `json:"suspiciousPhrases"`
	UrgencyDetected   *bool    `json:"urgencyDetected"`
}

type wireTechnical struct {
	SuspiciousURLs   []string      `json:"suspiciousUrls"`
	DomainMismatch   *bool         `json:"domainMismatch"`
	SpoofingAttempt  *bool         `json:"spoofingAttempt"`
	LanguageAnalysis *wireLanguage `json:"languageAnalysis"`
}

type wireAnalysis struct {
	IsPhishing       *bool          `json:"isPhishing"`
	ConfidenceScore  *float64       `json:"confidenceScore"`
	Reasons          []string       `json:"reasons"`
	RiskLevel        *string        `json:"riskLevel"`
	TechnicalDetails *wireTechnical `json:"technicalDetails"`
}

// extractJSONObject returns raw when it is valid JSON, otherwise the span between
// the first '{' and the last '}' if that span is valid JSON
func extractJSONObject(raw string) ([]byte, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if json.Valid(trimmed) {
		return trimmed, nil
	}

	start := bytes.IndexByte(trimmed, '{')
	end := bytes.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object found in response")
	}

	candidate := trimmed[start : end+1]
	if !json.Valid(candidate) {
		return nil, errors.New("embedded JSON object is invalid")
	}
	return candidate, nil
}

// ParseAnalysis parses the raw model answer into an Outcome. Every required field is
// checked; absent fields are defaulted and reported in Success.Missing.
func ParseAnalysis(raw string) Outcome {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return Failure{Kind: KindMalformedResponse, Message: malformedMessage}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return Failure{
			Kind:    KindUpstreamParseFailure,
			Message: "The AI response was valid JSON but not an analysis object.",
		}
	}

	var wire wireAnalysis
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Failure{
			Kind:    KindUpstreamParseFailure,
			Message: fmt.Sprintf("The AI response did not match the expected format: %v", err),
		}
	}

	return fromWire(&wire)
}

func fromWire(w *wireAnalysis) Success {
	var missing []string
	need := func(present bool, path string) bool {
		if !present {
			missing = append(missing, path)
		}
		return present
	}

	result := &AnalysisResult{
		Reasons:   []string{},
		RiskLevel: RiskUnknown,
		TechnicalDetails: TechnicalDetails{
			SuspiciousURLs: []string{},
			LanguageAnalysis: LanguageAnalysis{
				SuspiciousPhrases: []string{},
			},
		},
	}

	if need(w.IsPhishing != nil, "isPhishing") {
		result.IsPhishing = *w.IsPhishing
	}
	if need(w.ConfidenceScore != nil, "confidenceScore") {
		result.ConfidenceScore = *w.ConfidenceScore
	}
	if need(w.Reasons != nil, "reasons") {
		result.Reasons = w.Reasons
	}
	if need(w.RiskLevel != nil, "riskLevel") {
		result.RiskLevel = RiskLevel(*w.RiskLevel)
	}

	td := w.TechnicalDetails
	if !need(td != nil, "technicalDetails") {
		td = &wireTechnical{}
		missing = append(missing,
			"technicalDetails.suspiciousUrls",
			"technicalDetails.domainMismatch",
			"technicalDetails.spoofingAttempt",
			"technicalDetails.languageAnalysis",
		)
	} else {
		if need(td.SuspiciousURLs != nil, "technicalDetails.suspiciousUrls") {
			result.TechnicalDetails.SuspiciousURLs = td.SuspiciousURLs
		}
		if need(td.DomainMismatch != nil, "technicalDetails.domainMismatch") {
			result.TechnicalDetails.DomainMismatch = *td.DomainMismatch
		}
		if need(td.SpoofingAttempt != nil, "technicalDetails.spoofingAttempt") {
			result.TechnicalDetails.SpoofingAttempt = *td.SpoofingAttempt
		}
		need(td.LanguageAnalysis != nil, "technicalDetails.languageAnalysis")
	}

	if la := td.LanguageAnalysis; la != nil {
		if need(la.SuspiciousPhrases != nil, "technicalDetails.languageAnalysis.suspiciousPhrases") {
			result.TechnicalDetails.LanguageAnalysis.SuspiciousPhrases = la.SuspiciousPhrases
		}
		if need(la.UrgencyDetected != nil, "technicalDetails.languageAnalysis.urgencyDetected") {
			result.TechnicalDetails.LanguageAnalysis.UrgencyDetected = *la.UrgencyDetected
		}
	}

	return Success{Result: result, Missing: missing}
}

// Normalize maps any Outcome to a complete AnalysisResult. It never fails and never
// returns a result with nil slices.
func Normalize(o Outcome) *AnalysisResult {
	switch v := o.(type) {
	case Success:
		if v.Result == nil {
			return failureResult("The AI returned an empty analysis.")
		}
		result := *v.Result
		fillDefaults(&result)
		return &result
	case Failure:
		return failureResult(v.Message)
	default:
		return failureResult("unknown analysis outcome")
	}
}

// FailureResult builds the failure shaped result for err
func FailureResult(err error) *AnalysisResult {
	return Normalize(FailureFromError(err))
}

func failureResult(message string) *AnalysisResult {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown error"
	}
	return &AnalysisResult{
		Error:           message,
		IsPhishing:      false,
		ConfidenceScore: 0,
		Reasons:         []string{"Error analyzing email: " + message},
		RiskLevel:       RiskUnknown,
		TechnicalDetails: TechnicalDetails{
			SuspiciousURLs: []string{},
			LanguageAnalysis: LanguageAnalysis{
				SuspiciousPhrases: []string{},
			},
		},
	}
}

func fillDefaults(r *AnalysisResult) {
	if r.Reasons == nil {
		r.Reasons = []string{}
	}
	if r.RiskLevel == "" {
		r.RiskLevel = RiskUnknown
	}
	if r.TechnicalDetails.SuspiciousURLs == nil {
		r.TechnicalDetails.SuspiciousURLs = []string{}
	}
	if r.TechnicalDetails.LanguageAnalysis.SuspiciousPhrases == nil {
		r.TechnicalDetails.LanguageAnalysis.SuspiciousPhrases = []string{}
	}
}
