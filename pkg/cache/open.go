package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string // file backend; empty means DefaultDir
	RedisURL string // redis backend
}

// Open returns the cache described by opts. An empty backend means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.RedisURL)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%q: %w", opts.Backend, ErrUnknownBackend)
}
