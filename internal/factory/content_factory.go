package factory

import (
	"fmt"

	"github.com/mikey/llm-phish-detector/internal/adapters/source"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"github.com/mikey/llm-phish-detector/internal/whitelist"
	"go.uber.org/zap"
)

// ContentFactory creates the pieces that read and prepare email content
type ContentFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewContentFactory creates a new content factory
func NewContentFactory(cfg *config.Config, logger *zap.Logger) *ContentFactory {
	return &ContentFactory{cfg: cfg, logger: logger}
}

// CreateTextProcessor creates a new TextProcessor
func (f *ContentFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateExtractor creates the Gmail extractor with the configured selectors
func (f *ContentFactory) CreateExtractor(tp *utils.TextProcessor) *extractor.GmailExtractor {
	return extractor.NewGmailExtractor(extractor.Selectors{
		Subject: f.cfg.GetString("extractor.subject_selector"),
		Sender:  f.cfg.GetString("extractor.sender_selector"),
		Body:    f.cfg.GetString("extractor.body_selector"),
	}, tp, f.logger)
}

// CreateTrustChecker creates the trusted sender domain checker
func (f *ContentFactory) CreateTrustChecker() *whitelist.Checker {
	domains := f.cfg.GetStringSlice("trust.domains")
	if len(domains) > 0 {
		f.logger.Info("Loaded trusted domains", zap.Strings("domains", domains))
	}
	return whitelist.NewChecker(domains, f.logger)
}

// CreateDocumentSource creates the source the page agent reads from
func (f *ContentFactory) CreateDocumentSource() (core.DocumentSource, error) {
	srcCfg, err := f.cfg.GetSource()
	if err != nil {
		return nil, err
	}

	switch srcCfg.Type {
	case "file":
		return source.NewFileSource(srcCfg.FilePath, srcCfg.DocumentURL), nil
	case "browser":
		return source.NewBrowserSource(srcCfg.DebugURL, srcCfg.TabMatch, srcCfg.BrowserTimeout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported document source: %s", srcCfg.Type)
	}
}
