package xlmunge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Discoverer enumerates candidate workbooks below a root directory.
type Discoverer struct {
	root string
	exts []string
}

// NewDiscoverer checks that root is a readable directory. exts are matched
// case-sensitively against the end of each file name, with or without a
// leading dot.
func NewDiscoverer(root string, exts []string) (*Discoverer, error) {
	if root == "" {
		return nil, &ConfigError{Field: "directory", Err: ErrMissingDirectory}
	}
	if len(exts) == 0 {
		return nil, &ConfigError{Field: "extensions", Err: ErrNoExtensions}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &ConfigError{Field: "directory", Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, &ConfigError{Field: "directory", Err: err}
	}
	if !fi.IsDir() {
		return nil, &ConfigError{Field: "directory", Err: fmt.Errorf("%w: %s", ErrNotDirectory, abs)}
	}
	// Listing one entry is enough to prove the directory is readable.
	dir, err := os.Open(abs)
	if err != nil {
		return nil, &ConfigError{Field: "directory", Err: err}
	}
	_, err = dir.ReadDir(1)
	dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Field: "directory", Err: err}
	}

	suffixes := make([]string, 0, len(exts))
	for _, ext := range exts {
		suffixes = append(suffixes, "."+strings.TrimPrefix(ext, "."))
	}
	return &Discoverer{root: abs, exts: suffixes}, nil
}

// Root returns the absolute directory being scanned.
func (d *Discoverer) Root() string {
	return d.root
}

// Match reports whether a file name carries one of the configured extensions.
func (d *Discoverer) Match(name string) bool {
	for _, suffix := range d.exts {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Files walks the tree lazily, yielding absolute paths of matching regular
// files in lexical walk order. Subtrees that cannot be read are yielded as
// errors and skipped. Every call starts a new walk.
func (d *Discoverer) Files() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if !yield(path, err) {
					return filepath.SkipAll
				}
				return nil
			}
			if entry.IsDir() || !d.Match(entry.Name()) {
				return nil
			}
			if !isRegular(path, entry) {
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// isRegular follows symlinks so linked workbooks are still candidates.
func isRegular(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
