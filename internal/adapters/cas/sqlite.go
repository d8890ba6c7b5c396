package cas

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS configuration_cache (
	fingerprint TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	entry       BLOB NOT NULL
)`

// SQLiteStore keeps entries in a single sqlite database.
type SQLiteStore struct {
	db    *sql.DB
	codec *Codec
}

var _ ports.SnapshotStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens or creates the database at path.
//
// The database runs in WAL mode so that a Load never blocks on a concurrent Save.
func OpenSQLiteStore(ctx context.Context, path string, codec *Codec) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", path)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			err = zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", path)
			return nil, zerr.With(err, "statement", stmt)
		}
	}

	return &SQLiteStore{db: db, codec: codec}, nil
}

// Load reads the entry for fp. Returns nil, nil if there is none.
func (s *SQLiteStore) Load(ctx context.Context, fp domain.Fingerprint) (*domain.CacheEntry, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT entry FROM configuration_cache WHERE fingerprint = ?", fp.String(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "fingerprint", fp.String())
	}
	return s.codec.Decode(fp, data)
}

// Save stores the entry for fp inside a transaction, replacing any previous one.
func (s *SQLiteStore) Save(ctx context.Context, fp domain.Fingerprint, model *domain.BuildModel) error {
	if err := fp.Validate(); err != nil {
		return err
	}

	data, err := s.codec.Encode(fp, model)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO configuration_cache (fingerprint, created_at, entry) VALUES (?, ?, ?)",
		fp.String(), s.codec.now().Unix(), data,
	); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "fingerprint", fp.String())
	}

	if err := tx.Commit(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "fingerprint", fp.String())
	}
	return nil
}

// Clear deletes every entry.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM configuration_cache"); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
