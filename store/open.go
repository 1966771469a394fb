package store

import (
	"context"
	"fmt"

	"github.com/abstract-tutoring/card-crafter/config"
)

// OpenBackend builds the backend named by cfg.Driver. The returned close func is never nil.
func OpenBackend(ctx context.Context, cfg config.StorageSection) (Backend, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryBackend(), noop, nil
	case config.DriverFile:
		b, err := NewFileBackend(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case config.DriverPostgres:
		b, err := NewPostgresBackend(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	case config.DriverS3:
		b, err := NewS3Backend(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
