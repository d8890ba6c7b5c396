package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.trai.ch/kiln/internal/adapters/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	// tmp/
	//   .git/config
	//   .jj/repo
	//   .kiln/configuration-cache/abc
	//   ignored/file
	//   src/main.go
	//   README.md
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "git config")
	writeFile(t, filepath.Join(tmpDir, ".jj", "repo"), "jj")
	writeFile(t, filepath.Join(tmpDir, ".kiln", "configuration-cache", "abc"), "entry")
	writeFile(t, filepath.Join(tmpDir, "ignored", "file"), "ignored content")
	writeFile(t, filepath.Join(tmpDir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# Readme")

	walker := fs.NewWalker()

	files := make(map[string]bool)
	for path, err := range walker.WalkFiles(tmpDir, []string{"ignored"}) {
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			t.Fatal(err)
		}
		files[filepath.ToSlash(rel)] = true
	}

	for _, skipped := range []string{".git/config", ".jj/repo", ".kiln/configuration-cache/abc", "ignored/file"} {
		if files[skipped] {
			t.Errorf("expected %s to be skipped", skipped)
		}
	}
	for _, found := range []string{"src/main.go", "README.md"} {
		if !files[found] {
			t.Errorf("expected %s to be found", found)
		}
	}
}

func TestWalker_WalkFiles_StopsEarly(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a"), "a")
	writeFile(t, filepath.Join(tmpDir, "b"), "b")

	count := 0
	for range fs.NewWalker().WalkFiles(tmpDir, nil) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected 1 file before break, got %d", count)
	}
}

func TestWalker_WalkFiles_MissingRoot(t *testing.T) {
	var gotErr error
	for _, err := range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "missing"), nil) {
		gotErr = err
	}
	if !errors.Is(gotErr, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", gotErr)
	}
}

func TestWalker_WalkFiles_FollowsSymlinkedDirs(t *testing.T) {
	// tmp/
	//   ws/src/main.go
	//   ws/shared -> ../external
	//   ws/loop -> .
	//   external/lib/kiln.yaml
	base := t.TempDir()
	root := filepath.Join(base, "ws")
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(base, "external", "lib", "kiln.yaml"), "tasks: {}\n")
	if err := os.Symlink(filepath.Join(base, "external"), filepath.Join(root, "shared")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Fatal(err)
	}

	var files []string
	for path, err := range fs.NewWalker().WalkFiles(root, nil) {
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, filepath.ToSlash(rel))
	}

	slices.Sort(files)
	want := []string{"shared/lib/kiln.yaml", "src/main.go"}
	if !slices.Equal(files, want) {
		t.Errorf("expected %v, got %v", want, files)
	}
}
