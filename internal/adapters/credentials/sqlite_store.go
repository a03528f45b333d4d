package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const settingsTable = "settings"

// SQLiteStore keeps the API key in a single row of a key/value table
type SQLiteStore struct {
	db      *sql.DB
	keyName string
	logger  *zap.Logger
}

// NewSQLiteStore opens (and if needed creates) the settings database
func NewSQLiteStore(dbPath, keyName string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, keyName: keyName, logger: logger}, nil
}

// APIKey returns the stored key, or "" when the slot is empty
func (s *SQLiteStore) APIKey(ctx context.Context) (string, error) {
	query, args, err := sq.Select("value").From(settingsTable).Where(sq.Eq{"name": s.keyName}).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build settings query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.keyName, err)
	}
	return value, nil
}

// SetAPIKey replaces the stored key
func (s *SQLiteStore) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	query, args, err := sq.Replace(settingsTable).Columns("name", "value").Values(s.keyName, key).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build settings update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to store %s: %w", s.keyName, err)
	}

	s.logger.Info("Stored API key", zap.String("slot", s.keyName))
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
