package fs

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvKeyReader returns the environment variable names a settings file exposes to build scripts.
type EnvKeyReader func(settingsFile string) ([]string, error)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter hashes every input that can change the build model:
// the absolute workspace root, the settings file, every build script below
// the root, the requested tasks, project properties, declared environment
// variables, the cache format version and the kiln version.
type Fingerprinter struct {
	walker      *Walker
	envKeys     EnvKeyReader
	toolVersion string
}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter(walker *Walker, envKeys EnvKeyReader, toolVersion string) *Fingerprinter {
	return &Fingerprinter{
		walker:      walker,
		envKeys:     envKeys,
		toolVersion: toolVersion,
	}
}

// Fingerprint computes the fingerprint of inv.
func (f *Fingerprinter) Fingerprint(ctx context.Context, inv *domain.BuildInvocation) (domain.Fingerprint, error) {
	params := inv.Params
	if params.RootDir == "" {
		return "", zerr.With(domain.ErrFingerprintFailed, "reason", "workspace root unknown")
	}
	// Cached models hold absolute task directories, so the root is part of the key.
	root, err := filepath.Abs(params.RootDir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "root", params.RootDir)
	}
	settingsFile := params.SettingsFile
	if settingsFile == "" {
		settingsFile = filepath.Join(root, domain.SettingsFileName)
	}
	if settingsFile, err = filepath.Abs(settingsFile); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", params.SettingsFile)
	}

	h := xxhash.New()
	writeField(h, "format", strconv.Itoa(domain.CacheFormatVersion))
	writeField(h, "kiln", f.toolVersion)
	writeField(h, "root", filepath.ToSlash(root))

	if err := f.hashFile(h, root, settingsFile); err != nil {
		return "", err
	}

	scripts, err := f.buildScripts(ctx, root)
	if err != nil {
		return "", err
	}
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := f.hashFile(h, root, script); err != nil {
			return "", err
		}
	}

	writeList(h, "tasks", params.RequestedTasks)
	writeMap(h, "properties", params.Properties)

	keys, err := f.declaredEnvKeys(settingsFile)
	if err != nil {
		return "", err
	}
	env := make(map[string]string, len(keys))
	for _, k := range keys {
		// Unset and empty must differ.
		if v, ok := params.Environment[k]; ok {
			env[k] = "=" + v
		} else {
			env[k] = ""
		}
	}
	writeMap(h, "env", env)

	return domain.Fingerprint(fmt.Sprintf("%016x", h.Sum64())), nil
}

func (f *Fingerprinter) declaredEnvKeys(settingsFile string) ([]string, error) {
	if f.envKeys == nil {
		return nil, nil
	}
	keys, err := f.envKeys(settingsFile)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", settingsFile)
	}
	return keys, nil
}

// buildScripts returns the build scripts below root in lexical order.
func (f *Fingerprinter) buildScripts(ctx context.Context, root string) ([]string, error) {
	var scripts []string
	for path, err := range f.walker.WalkFiles(root, nil) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "root", root)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if domain.IsBuildScript(filepath.Base(path)) {
			scripts = append(scripts, path)
		}
	}
	slices.Sort(scripts)
	return scripts, nil
}

// hashFile writes the root relative path and the content hash of path.
func (f *Fingerprinter) hashFile(h *xxhash.Digest, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	writeField(h, "file", filepath.ToSlash(rel))

	file, err := os.Open(path) //nolint:gosec // Path is discovered below the workspace root
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	content := xxhash.New()
	if _, err := io.Copy(content, file); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}

	return binary.Write(h, binary.LittleEndian, content.Sum64())
}

func writeField(h *xxhash.Digest, key, value string) {
	_, _ = h.WriteString(key)
	_, _ = h.Write([]byte{'='})
	_, _ = h.WriteString(value)
	_, _ = h.Write([]byte{0})
}

func writeList(h *xxhash.Digest, section string, values []string) {
	_, _ = h.WriteString(section)
	_, _ = h.Write([]byte{0})
	for _, v := range values {
		_, _ = h.WriteString(v)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0}) // Section separator
}

func writeMap(h *xxhash.Digest, section string, m map[string]string) {
	_, _ = h.WriteString(section)
	_, _ = h.Write([]byte{0})
	for _, k := range slices.Sorted(maps.Keys(m)) {
		writeField(h, k, m[k])
	}
	_, _ = h.Write([]byte{0})
}
