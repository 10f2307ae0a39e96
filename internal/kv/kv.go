// Package kv holds the durable key-value media the review collection can
// live in. Every backend stores opaque string values; Set always replaces
// the whole value.
package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"testimonials/pkg/database"
	"testimonials/pkg/utils"
)

type KV interface {
	// Get reports ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg utils.StoreConfig) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "memory", "mem":
		return NewMemory(), nil
	case "file":
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Dir(database.DefaultConfig("").Path)
		}
		return NewFile(dir)
	case "sqlite", "":
		return OpenSQLite(database.DefaultConfig(cfg.Path))
	case "postgres", "pgx":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres store: dsn required")
		}
		return OpenPostgres(ctx, cfg.DSN)
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 store: bucket required")
		}
		return OpenS3(ctx, cfg.Region, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
