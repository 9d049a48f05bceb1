// Package fs loads documents from disk, writes them back atomically and
// watches them for external changes.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// maxParallelReads bounds concurrent file reads in Load.
const maxParallelReads = 8

// File is a document read from disk.
type File struct {
	// Path is the absolute path.
	Path string
	// Name is the slash-separated path relative to the load root.
	Name    string
	Content string
}

// Load reads every regular file under root matching pattern (doublestar
// syntax, e.g. "docs/**/*.md"). Files are returned sorted by Name.
func Load(ctx context.Context, root, pattern string) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	names, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(names)

	files := make([]File, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(root, filepath.FromSlash(name))
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			files[i] = File{Path: path, Name: name, Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// LoadFile reads a single file. Name is the base name.
func LoadFile(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{Path: abs, Name: filepath.Base(abs), Content: string(data)}, nil
}
