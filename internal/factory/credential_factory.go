package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-phish-detector/internal/adapters/credentials"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"go.uber.org/zap"
)

// CredentialFactory creates the API key store
type CredentialFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCredentialFactory creates a new credential factory
func NewCredentialFactory(cfg *config.Config, logger *zap.Logger) *CredentialFactory {
	return &CredentialFactory{cfg: cfg, logger: logger}
}

// CreateSecretProvider creates the configured key store
func (f *CredentialFactory) CreateSecretProvider() (core.SecretProvider, error) {
	creds := f.cfg.GetCredentials()

	switch creds.Type {
	case "memory":
		return credentials.NewMemoryStore(creds.StaticKey), nil
	case "env":
		return credentials.NewEnvStore(creds.EnvVar, creds.EnvFile, f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(creds.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return credentials.NewSQLiteStore(creds.SQLitePath, creds.KeyName, f.logger)
	default:
		return nil, fmt.Errorf("unsupported credential store: %s", creds.Type)
	}
}
