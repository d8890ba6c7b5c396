// Package fs provides file system adapters for walking the workspace and fingerprinting its configuration.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// skippedDirs are never descended into.
var skippedDirs = []string{".git", ".jj", domain.KilnDirName}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// errWalkStopped ends a walk when the consumer stops iterating.
var errWalkStopped = zerr.New("walk stopped")

// WalkFiles yields every file below root, skipping VCS metadata, the kiln
// directory and entries matching one of the ignore patterns.
// Symlinked directories are followed, each target at most once, and their
// files are yielded below the link path. Paths are prefixed with root.
// An I/O error is yielded once with an empty path and ends the walk.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		visited := make(map[string]struct{})
		dir := root
		if real, err := filepath.EvalSymlinks(root); err == nil {
			visited[real] = struct{}{}
			dir = real
		}
		err := w.walk(dir, root, ignores, visited, yield)
		if err != nil && !errors.Is(err, errWalkStopped) {
			yield("", err)
		}
	}
}

// walk walks the directory dir and yields its files below the logical path.
func (w *Walker) walk(
	dir, logical string,
	ignores []string,
	visited map[string]struct{},
	yield func(string, error) bool,
) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		if w.shouldSkip(d, ignores) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		logicalPath, err := rebase(dir, logical, path)
		if err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return w.walkLink(path, logicalPath, ignores, visited, yield)
			}
		}

		if d.IsDir() {
			return nil
		}

		if !yield(logicalPath, nil) {
			return errWalkStopped
		}
		return nil
	})
}

// walkLink descends into a symlinked directory unless its target was already walked.
func (w *Walker) walkLink(
	link, logical string,
	ignores []string,
	visited map[string]struct{},
	yield func(string, error) bool,
) error {
	real, err := filepath.EvalSymlinks(link)
	if err != nil {
		return err
	}
	if _, seen := visited[real]; seen {
		return nil
	}
	visited[real] = struct{}{}
	return w.walk(real, logical, ignores, visited, yield)
}

// rebase moves path from below dir to below logical.
func rebase(dir, logical, path string) (string, error) {
	if dir == logical {
		return path, nil
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", err
	}
	return filepath.Join(logical, rel), nil
}

func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() {
		for _, dir := range skippedDirs {
			if name == dir {
				return true
			}
		}
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
