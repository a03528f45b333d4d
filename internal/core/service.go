package core

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/llm-phish-detector/internal/utils"
	"github.com/mikey/llm-phish-detector/internal/whitelist"
	"go.uber.org/zap"
)

// ServiceOptions holds the tunables of the analysis service
type ServiceOptions struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	MaxBodySize  int
}

// AnalysisService is the core service for phishing analysis
type AnalysisService struct {
	llmClient     LLMClient
	secrets       SecretProvider
	cache         CacheRepository
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	trust         *whitelist.Checker
	opts          ServiceOptions
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	llmClient LLMClient,
	secrets SecretProvider,
	cache CacheRepository,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	trust *whitelist.Checker,
	opts ServiceOptions,
) *AnalysisService {
	if cache == nil {
		opts.CacheEnabled = false
	}
	return &AnalysisService{
		llmClient:     llmClient,
		secrets:       secrets,
		cache:         cache,
		logger:        logger,
		textProcessor: textProcessor,
		trust:         trust,
		opts:          opts,
	}
}

// Analyze runs the full analysis of one email. It always returns a complete result;
// failures are reported through AnalysisResult.Error.
func (s *AnalysisService) Analyze(ctx context.Context, email *EmailRecord) *AnalysisResult {
	if s.trust != nil && s.trust.IsWhitelisted(email.Sender.Email) {
		s.logger.Info("Skipping analysis for trusted domain",
			zap.String("sender", email.Sender.Email),
			zap.String("action", "trust_bypass"))
		return trustedResult(email.Sender.Domain)
	}

	fingerprint := email.Fingerprint()
	if s.opts.CacheEnabled {
		if entry, err := s.cache.Get(ctx, fingerprint); err == nil && entry.Result != nil {
			s.logger.Debug("Cache hit for email", zap.String("fingerprint", fingerprint))
			return Normalize(Success{Result: entry.Result})
		}
	}

	apiKey, err := s.apiKey(ctx)
	if err != nil {
		s.logger.Warn("Cannot analyze email without credentials", zap.Error(err))
		return FailureResult(err)
	}

	body := s.textProcessor.ProcessText(email.Body, s.opts.MaxBodySize)
	prompt := BuildPrompt(email, body)

	s.logger.Debug("Sending analysis request",
		zap.String("model", s.llmClient.Name()),
		zap.Int("prompt_size", len(prompt)),
		zap.Int("url_count", len(email.URLs)))

	raw, err := s.llmClient.Complete(ctx, apiKey, prompt)
	if err != nil {
		s.logger.Error("Error analyzing email",
			zap.Error(err),
			zap.String("kind", string(KindOf(err))),
			zap.String("model", s.llmClient.Name()))
		return FailureResult(err)
	}

	outcome := ParseAnalysis(raw)
	switch v := outcome.(type) {
	case Failure:
		s.logger.Error("Error parsing model response",
			zap.String("kind", string(v.Kind)),
			zap.String("message", v.Message))
	case Success:
		if len(v.Missing) > 0 {
			s.logger.Warn("Model response was missing fields, defaults applied",
				zap.Strings("missing", v.Missing))
		}
	}

	result := Normalize(outcome)
	if s.opts.CacheEnabled && !result.Failed() {
		now := time.Now()
		entry := &CacheEntry{
			Fingerprint: fingerprint,
			SenderEmail: email.Sender.Email,
			Result:      result,
			AnalyzedAt:  now,
			ExpiresAt:   now.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.logger.Info("Analysis complete",
		zap.String("sender_domain", email.Sender.Domain),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Float64("confidence", result.ConfidenceScore))

	return result
}

func (s *AnalysisService) apiKey(ctx context.Context) (string, error) {
	if !s.llmClient.RequiresAPIKey() {
		return "", nil
	}
	if s.secrets == nil {
		return "", ErrCredentialMissing()
	}
	key, err := s.secrets.APIKey(ctx)
	if err != nil {
		return "", NewError(KindCredentialMissing, err, "Could not read API key: %v", err)
	}
	if key == "" {
		return "", ErrCredentialMissing()
	}
	return key, nil
}

func trustedResult(domain string) *AnalysisResult {
	return Normalize(Success{Result: &AnalysisResult{
		IsPhishing:      false,
		ConfidenceScore: 100,
		Reasons:         []string{fmt.Sprintf("Sender domain %s is on the trusted list", domain)},
		RiskLevel:       RiskLow,
	}})
}
