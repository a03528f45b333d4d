package factory

import (
	"fmt"

	"github.com/mikey/llm-phish-detector/internal/adapters/frontend"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"go.uber.org/zap"
)

// FrontendFactory creates the daemon frontend based on configuration
type FrontendFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	agent     *messaging.Agent
	service   *core.AnalysisService
	secrets   core.SecretProvider
	llmClient core.LLMClient
	extractor *extractor.GmailExtractor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	agent *messaging.Agent,
	service *core.AnalysisService,
	secrets core.SecretProvider,
	llmClient core.LLMClient,
	ext *extractor.GmailExtractor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:       cfg,
		logger:    logger,
		agent:     agent,
		service:   service,
		secrets:   secrets,
		llmClient: llmClient,
		extractor: ext,
	}
}

// CreateFrontend creates the configured frontend
func (f *FrontendFactory) CreateFrontend() (frontend.Frontend, error) {
	kind := f.cfg.GetString("server.frontend")

	switch kind {
	case "http":
		timeout, err := f.cfg.GetDuration("server.request_timeout")
		if err != nil {
			return nil, err
		}
		return frontend.NewHTTPServer(
			f.agent.Popup(),
			f.secrets,
			f.llmClient.RequiresAPIKey(),
			f.logger,
			f.cfg.GetString("server.listen_address"),
			timeout,
		), nil
	case "smtp":
		smtpCfg, err := f.cfg.GetSMTP()
		if err != nil {
			return nil, err
		}
		return frontend.NewSMTPIntake(f.service, f.extractor, f.logger, smtpCfg), nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", kind)
	}
}
