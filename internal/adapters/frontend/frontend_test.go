package frontend

import (
	"context"
	"sync"
	"testing"

	"github.com/mikey/llm-phish-detector/internal/adapters/source"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"go.uber.org/zap"
)

const inboxURL = "https://mail.google.com/mail/u/0/#inbox/FMfcgz"

const openEmailPage = `<html><body>
<h2 data-thread-perm-id="thread-f:42">Your mailbox is full</h2>
<span class="gD" email="admin@mai1box-help.example" name="Mail Admin">Mail Admin</span>
<div class="a3s aiL">Click https://mai1box-help.example/upgrade to keep receiving mail.</div>
</body></html>`

type stubAnalyzer struct {
	mu     sync.Mutex
	result *core.AnalysisResult
	seen   []*core.EmailRecord
}

func (s *stubAnalyzer) Analyze(ctx context.Context, email *core.EmailRecord) *core.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, email)
	return s.result
}

func (s *stubAnalyzer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func phishingVerdict() *core.AnalysisResult {
	return core.Normalize(core.Success{Result: &core.AnalysisResult{
		IsPhishing:      true,
		ConfidenceScore: 88,
		Reasons:         []string{"Lookalike sender domain"},
		RiskLevel:       core.RiskHigh,
		TechnicalDetails: core.TechnicalDetails{
			SuspiciousURLs: []string{"mai1box-help.example"},
			DomainMismatch: true,
		},
	}})
}

func cleanVerdict() *core.AnalysisResult {
	return core.Normalize(core.Success{Result: &core.AnalysisResult{
		ConfidenceScore: 95,
		Reasons:         []string{"Known sender"},
		RiskLevel:       core.RiskLow,
	}})
}

func testExtractor() *extractor.GmailExtractor {
	logger := zap.NewNop()
	return extractor.NewGmailExtractor(extractor.Selectors{}, utils.NewTextProcessor(logger), logger)
}

// startPopup runs an agent over src and returns its popup client
func startPopup(t *testing.T, src core.DocumentSource, analyzer messaging.Analyzer) *messaging.Popup {
	t.Helper()
	if src == nil {
		src = source.NewStaticSource(inboxURL, openEmailPage)
	}
	agent := messaging.NewAgent(src, testExtractor(), analyzer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	agent.Start(ctx)
	t.Cleanup(func() {
		cancel()
		agent.Wait()
	})
	return agent.Popup()
}
