package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	inner, err := newSQLCache(db, logger, []string{
		`CREATE TABLE IF NOT EXISTS analysis_cache (
			fingerprint CHAR(64) PRIMARY KEY,
			sender_email VARCHAR(320),
			result MEDIUMTEXT NOT NULL,
			analyzed_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_analysis_cache_expires_at (expires_at)
		)`,
	}, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &MySQLCache{sqlCache: inner}, nil
}
