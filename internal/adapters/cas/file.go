package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const entryExt = ".bin"

// FileStore keeps one file per fingerprint in a directory.
// Entries are published by renaming a fully written temporary file.
type FileStore struct {
	dir   string
	codec *Codec
}

var _ ports.SnapshotStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created on first save.
func NewFileStore(dir string, codec *Codec) *FileStore {
	return &FileStore{dir: filepath.Clean(dir), codec: codec}
}

func (s *FileStore) path(fp domain.Fingerprint) string {
	return filepath.Join(s.dir, fp.String()+entryExt)
}

// Load reads the entry for fp. Returns nil, nil if there is none.
func (s *FileStore) Load(ctx context.Context, fp domain.Fingerprint) (*domain.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fp.Validate(); err != nil {
		return nil, err
	}

	path := s.path(fp)
	//nolint:gosec // Path is derived from a validated hex fingerprint
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	entry, err := s.codec.Decode(fp, data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return entry, nil
}

// Save writes the entry for fp, replacing any previous one.
func (s *FileStore) Save(ctx context.Context, fp domain.Fingerprint, model *domain.BuildModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fp.Validate(); err != nil {
		return err
	}

	data, err := s.codec.Encode(fp, model)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, fp.String()+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.dir)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", tmpName)
	}

	path := s.path(fp)
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}

// Clear removes the cache directory.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.RemoveAll(s.dir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.dir)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
