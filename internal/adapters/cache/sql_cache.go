package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mikey/llm-phish-detector/internal/core"
	"go.uber.org/zap"
)

const cacheTable = "analysis_cache"

// sqlCache holds the queries shared by the SQLite and MySQL caches.
// Timestamps are stored as unix seconds so both dialects compare them the same way.
type sqlCache struct {
	db       *sql.DB
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSQLCache(db *sql.DB, logger *zap.Logger, schema []string, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create cache schema: %w", err)
		}
	}

	c := &sqlCache{
		db:     db,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go runCleanup(c, cleanupFreq, c.stopCh, logger)
	}
	return c, nil
}

// Get retrieves a cached entry by fingerprint
func (c *sqlCache) Get(ctx context.Context, fingerprint string) (*core.CacheEntry, error) {
	query, args, err := sq.Select("sender_email", "result", "analyzed_at", "expires_at").
		From(cacheTable).
		Where(sq.Eq{"fingerprint": fingerprint}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache query: %w", err)
	}

	var (
		sender     string
		payload    string
		analyzedAt int64
		expiresAt  int64
	)
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&sender, &payload, &analyzedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		c.logger.Error("Failed to query cache", zap.Error(err), zap.String("fingerprint", fingerprint))
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return nil, ErrExpired
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	return &core.CacheEntry{
		Fingerprint: fingerprint,
		SenderEmail: sender,
		Result:      &result,
		AnalyzedAt:  time.Unix(analyzedAt, 0),
		ExpiresAt:   time.Unix(expiresAt, 0),
	}, nil
}

// Set stores a cache entry, replacing any previous one
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	query, args, err := sq.Replace(cacheTable).
		Columns("fingerprint", "sender_email", "result", "analyzed_at", "expires_at").
		Values(entry.Fingerprint, entry.SenderEmail, string(payload), entry.AnalyzedAt.Unix(), entry.ExpiresAt.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache insert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, fingerprint string) error {
	query, args, err := sq.Delete(cacheTable).Where(sq.Eq{"fingerprint": fingerprint}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache delete: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	query, args, err := sq.Delete(cacheTable).Where(sq.LtOrEq{"expires_at": time.Now().Unix()}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache cleanup: %w", err)
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close cache database", zap.Error(err))
		}
	})
}
