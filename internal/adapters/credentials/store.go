package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned when an empty API key is stored
var ErrEmptyKey = errors.New("please enter a valid API key")

// MemoryStore keeps the API key for the lifetime of the process
type MemoryStore struct {
	mu  sync.RWMutex
	key string
}

// NewMemoryStore creates a store seeded with key, which may be empty
func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{key: strings.TrimSpace(key)}
}

// APIKey returns the stored key
func (s *MemoryStore) APIKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, nil
}

// SetAPIKey replaces the stored key
func (s *MemoryStore) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return nil
}

// EnvStore reads the API key from an environment variable. When envFile is set,
// SetAPIKey also persists the key into that dotenv file.
type EnvStore struct {
	mu      sync.Mutex
	envVar  string
	envFile string
	logger  *zap.Logger
}

// NewEnvStore creates an environment backed store
func NewEnvStore(envVar, envFile string, logger *zap.Logger) *EnvStore {
	return &EnvStore{envVar: envVar, envFile: envFile, logger: logger}
}

// APIKey returns the value of the configured variable
func (s *EnvStore) APIKey(ctx context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(s.envVar)), nil
}

// SetAPIKey sets the variable for this process and writes it to the dotenv file
func (s *EnvStore) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Setenv(s.envVar, key); err != nil {
		return fmt.Errorf("failed to set %s: %w", s.envVar, err)
	}
	if s.envFile == "" {
		return nil
	}

	values, err := godotenv.Read(s.envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", s.envFile, err)
		}
		values = map[string]string{}
	}
	values[s.envVar] = key
	if err := godotenv.Write(values, s.envFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.envFile, err)
	}

	s.logger.Info("Stored API key", zap.String("file", s.envFile), zap.String("variable", s.envVar))
	return nil
}
