package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phish-detector/internal/adapters/frontend"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"github.com/mikey/llm-phish-detector/internal/factory"
	"github.com/mikey/llm-phish-detector/internal/logging"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"github.com/mikey/llm-phish-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (frontend.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers everything between the configuration and a frontend:
// the stores, the analysis service and the page agent
func provideCore(container *dig.Container) error {
	providers := []any{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewCredentialFactory,
		factory.NewContentFactory,

		func(f *factory.LLMFactory) (core.LLMClient, error) {
			return f.CreateLLMClient()
		},
		func(f *factory.CacheFactory) (core.CacheRepository, error) {
			return f.CreateCacheRepository()
		},
		func(f *factory.CacheFactory) (core.ServiceOptions, error) {
			return f.CreateServiceOptions()
		},
		func(f *factory.CredentialFactory) (core.SecretProvider, error) {
			return f.CreateSecretProvider()
		},
		func(f *factory.ContentFactory) *utils.TextProcessor {
			return f.CreateTextProcessor()
		},
		func(f *factory.ContentFactory, tp *utils.TextProcessor) *extractor.GmailExtractor {
			return f.CreateExtractor(tp)
		},
		func(f *factory.ContentFactory) *whitelist.Checker {
			return f.CreateTrustChecker()
		},
		func(f *factory.ContentFactory) (core.DocumentSource, error) {
			return f.CreateDocumentSource()
		},

		core.NewAnalysisService,

		func(src core.DocumentSource, ext *extractor.GmailExtractor, svc *core.AnalysisService, logger *zap.Logger) *messaging.Agent {
			return messaging.NewAgent(src, ext, svc, logger)
		},
	}

	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return err
		}
	}
	return nil
}
