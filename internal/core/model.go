package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// RiskLevel is the verdict bucket reported by the model. Any value outside the
// known set is rendered as unknown.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// Normalized returns the lower-cased level, or RiskUnknown for unrecognized values
func (r RiskLevel) Normalized() RiskLevel {
	switch l := RiskLevel(strings.ToLower(strings.TrimSpace(string(r)))); l {
	case RiskLow, RiskMedium, RiskHigh:
		return l
	default:
		return RiskUnknown
	}
}

// Sender identifies who sent the message
type Sender struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Domain string `json:"domain"`
}

// EmailRecord is one scraped email message
type EmailRecord struct {
	Subject string   `json:"subject"`
	Sender  Sender   `json:"sender"`
	Body    string   `json:"body"`
	URLs    []string `json:"urls"`
}

// Usable reports whether the record has enough content to be analyzed
func (e *EmailRecord) Usable() bool {
	return e.Subject != "" || e.Body != ""
}

// Fingerprint returns a stable digest of the record, used as the cache key
func (e *EmailRecord) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{e.Sender.Email, e.Sender.Name, e.Subject, e.Body} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DomainOf returns the part of an address after the first '@', or "" when there is none
func DomainOf(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return domain
}

// LanguageAnalysis holds the wording signals reported by the model
type LanguageAnalysis struct {
	SuspiciousPhrases []string `json:"suspiciousPhrases" yaml:"suspiciousPhrases"`
	UrgencyDetected   bool     `json:"urgencyDetected" yaml:"urgencyDetected"`
}

// TechnicalDetails holds the structural signals reported by the model
type TechnicalDetails struct {
	SuspiciousURLs   []string         `json:"suspiciousUrls" yaml:"suspiciousUrls"`
	DomainMismatch   bool             `json:"domainMismatch" yaml:"domainMismatch"`
	SpoofingAttempt  bool             `json:"spoofingAttempt" yaml:"spoofingAttempt"`
	LanguageAnalysis LanguageAnalysis `json:"languageAnalysis" yaml:"languageAnalysis"`
}

// AnalysisResult is the fully populated verdict handed to the renderer
type AnalysisResult struct {
	IsPhishing       bool             `json:"isPhishing" yaml:"isPhishing"`
	ConfidenceScore  float64          `json:"confidenceScore" yaml:"confidenceScore"`
	Reasons          []string         `json:"reasons" yaml:"reasons"`
	RiskLevel        RiskLevel        `json:"riskLevel" yaml:"riskLevel"`
	TechnicalDetails TechnicalDetails `json:"technicalDetails" yaml:"technicalDetails"`
	Error            string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the result was produced on a failure path
func (r *AnalysisResult) Failed() bool {
	return r.Error != ""
}

// CacheEntry is a stored successful analysis
type CacheEntry struct {
	Fingerprint string
	SenderEmail string
	Result      *AnalysisResult
	AnalyzedAt  time.Time
	ExpiresAt   time.Time
}
