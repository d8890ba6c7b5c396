package cas

import (
	"context"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Provider opens the snapshot store selected by domain.CacheOptions.
type Provider struct {
	codec *Codec
}

var _ ports.SnapshotStoreProvider = (*Provider)(nil)

// NewProvider creates a Provider whose stores stamp entries with toolVersion.
func NewProvider(toolVersion string) *Provider {
	return &Provider{codec: NewCodec(toolVersion)}
}

// Open returns the store for the workspace at root.
func (p *Provider) Open(ctx context.Context, root string, opts domain.CacheOptions) (ports.SnapshotStore, error) {
	switch opts.Backend {
	case "", domain.CacheBackendFile:
		dir := opts.Dir
		if dir == "" {
			dir = domain.DefaultConfigurationCachePath(root)
		}
		return NewFileStore(dir, p.codec), nil

	case domain.CacheBackendSQLite:
		path := domain.DefaultConfigurationCacheDBPath(root)
		if opts.Dir != "" {
			path = filepath.Join(opts.Dir, domain.ConfigurationCacheDBName)
		}
		store, err := OpenSQLiteStore(ctx, path, p.codec)
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.CacheBackendRedis:
		if opts.DSN == "" {
			err := zerr.With(domain.ErrStoreCreateFailed, "backend", string(opts.Backend))
			return nil, zerr.With(err, "reason", "no DSN configured")
		}
		store, err := OpenRedisStore(ctx, opts.DSN, p.codec, opts.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, zerr.With(domain.ErrUnknownCacheBackend, "backend", string(opts.Backend))
	}
}
