package source

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/llm-phish-detector/internal/core"
)

// FileSource serves a saved page from disk. The file is reread on every call so
// a newer save is picked up without restarting.
type FileSource struct {
	path string
	url  string
}

// NewFileSource creates a source for the page saved at path, reported as url
func NewFileSource(path, url string) *FileSource {
	return &FileSource{path: path, url: url}
}

// Current returns the saved page
func (s *FileSource) Current(ctx context.Context) (*core.Document, error) {
	if s.path == "" {
		return nil, fmt.Errorf("no document file configured")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", s.path, err)
	}
	return &core.Document{URL: s.url, HTML: string(data)}, nil
}

// StaticSource always returns the same document
type StaticSource struct {
	doc core.Document
}

// NewStaticSource wraps an in-memory document
func NewStaticSource(url, html string) *StaticSource {
	return &StaticSource{doc: core.Document{URL: url, HTML: html}}
}

// Current returns a copy of the wrapped document
func (s *StaticSource) Current(ctx context.Context) (*core.Document, error) {
	doc := s.doc
	return &doc, nil
}
