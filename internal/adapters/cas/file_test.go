package cas_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := cas.NewFileStore(filepath.Join(t.TempDir(), "cache"), newCodec())

	entry, err := store.Load(context.Background(), fp1)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), domain.KilnDirName, domain.ConfigurationCacheDirName)
	store := cas.NewFileStore(dir, newCodec())
	model := sampleModel(t)

	require.NoError(t, store.Save(context.Background(), fp1, model))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, fp1.String()+".bin", entries[0].Name())

	// A fresh store sees the entry written by another one.
	entry, err := cas.NewFileStore(dir, newCodec()).Load(context.Background(), fp1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assertEquivalent(t, model, entry.Model)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	store := cas.NewFileStore(t.TempDir(), newCodec())
	ctx := context.Background()

	first := sampleModel(t)
	require.NoError(t, store.Save(ctx, fp1, first))

	second := sampleModel(t)
	second.Requested = []string{":api:build"}
	require.NoError(t, store.Save(ctx, fp1, second))

	entry, err := store.Load(ctx, fp1)
	require.NoError(t, err)
	assert.Equal(t, []string{":api:build"}, entry.Model.Requested)
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	store := cas.NewFileStore(dir, newCodec())
	ctx := context.Background()

	fps := make([]domain.Fingerprint, 16)
	for i := range fps {
		fps[i] = domain.Fingerprint(fmt.Sprintf("%016x", i+1))
	}

	model := sampleModel(t)
	var wg sync.WaitGroup
	for _, fp := range fps {
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Save(ctx, fp, model))
			}()
		}
	}
	wg.Wait()

	for _, fp := range fps {
		entry, err := store.Load(ctx, fp)
		require.NoError(t, err, "fingerprint %s", fp)
		require.NotNil(t, entry)
		assert.Equal(t, fp, entry.Fingerprint)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(fps))
}

func TestFileStore_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fp1.String()+".bin"), []byte("garbage"), 0o600))

	entry, err := cas.NewFileStore(dir, newCodec()).Load(context.Background(), fp1)
	require.Error(t, err)
	assert.Nil(t, entry)
	assert.ErrorContains(t, err, domain.ErrCacheEntryCorrupt.Error())
}

func TestFileStore_InvalidFingerprint(t *testing.T) {
	dir := t.TempDir()
	store := cas.NewFileStore(dir, newCodec())
	ctx := context.Background()

	for _, fp := range []domain.Fingerprint{"", "../../etc/passwd"} {
		_, err := store.Load(ctx, fp)
		assert.ErrorContains(t, err, domain.ErrInvalidFingerprint.Error())
		assert.ErrorContains(t, store.Save(ctx, fp, sampleModel(t)), domain.ErrInvalidFingerprint.Error())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store := cas.NewFileStore(dir, newCodec())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fp1, sampleModel(t)))
	require.NoError(t, store.Clear(ctx))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	entry, err := store.Load(ctx, fp1)
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NoError(t, store.Close())
}
