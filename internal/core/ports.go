package core

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends the prompt and returns the raw text answer of the model.
	// apiKey may be empty for providers that authenticate by other means.
	Complete(ctx context.Context, apiKey string, prompt string) (string, error)

	// Name identifies the model used
	Name() string

	// RequiresAPIKey reports whether Complete needs a key from the SecretProvider
	RequiresAPIKey() bool
}

// SecretProvider owns the API key slot
type SecretProvider interface {
	// APIKey returns the stored key, or "" when none is set
	APIKey(ctx context.Context) (string, error)

	// SetAPIKey replaces the stored key
	SetAPIKey(ctx context.Context, key string) error
}

// CacheRepository defines the interface for caching analysis results
type CacheRepository interface {
	// Get retrieves a cached entry by record fingerprint
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, fingerprint string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Document is a loaded page as seen by the page agent
type Document struct {
	URL  string
	HTML string
}

// DocumentSource yields the document the user is currently looking at
type DocumentSource interface {
	Current(ctx context.Context) (*Document, error)
}

// Extractor turns a document into an EmailRecord
type Extractor interface {
	Extract(doc *Document) (*EmailRecord, error)
}
