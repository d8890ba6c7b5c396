package cas_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func openSQLite(t *testing.T, path string) *cas.SQLiteStore {
	t.Helper()
	store, err := cas.OpenSQLiteStore(context.Background(), path, newCodec())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.KilnDirName, domain.ConfigurationCacheDBName)
	store := openSQLite(t, path)
	ctx := context.Background()
	model := sampleModel(t)

	entry, err := store.Load(ctx, fp1)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, store.Save(ctx, fp1, model))
	require.NoError(t, store.Close())

	reopened := openSQLite(t, path)
	entry, err = reopened.Load(ctx, fp1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "1.2.3", entry.ToolVersion)
	assertEquivalent(t, model, entry.Model)

	missing, err := reopened.Load(ctx, fp2)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "cache.db"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fp1, sampleModel(t)))
	replacement := sampleModel(t)
	replacement.Requested = []string{"lint"}
	require.NoError(t, store.Save(ctx, fp1, replacement))

	entry, err := store.Load(ctx, fp1)
	require.NoError(t, err)
	assert.Equal(t, []string{"lint"}, entry.Model.Requested)
}

func TestSQLiteStore_Clear(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "cache.db"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fp1, sampleModel(t)))
	require.NoError(t, store.Save(ctx, fp2, sampleModel(t)))
	require.NoError(t, store.Clear(ctx))

	for _, fp := range []domain.Fingerprint{fp1, fp2} {
		entry, err := store.Load(ctx, fp)
		require.NoError(t, err)
		assert.Nil(t, entry)
	}
}

func TestSQLiteStore_InvalidFingerprint(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "cache.db"))

	err := store.Save(context.Background(), "not-hex", sampleModel(t))
	assert.ErrorContains(t, err, domain.ErrInvalidFingerprint.Error())
}
