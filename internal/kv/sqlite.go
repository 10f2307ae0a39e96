package kv

import (
	"context"
	"database/sql"
	"fmt"

	"testimonials/pkg/database"
)

type SQLite struct {
	DB *sql.DB
}

func OpenSQLite(cfg database.Config) (*SQLite, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ?
	`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
