// Package posts finds blog post Markdown files on disk.
//
// Posts live under a fixed directory tree (BlogDir, relative to the
// application root) and are addressed by their file stem: the post at
// public/files/blog/2023/hello-world.md has the slug "hello-world".
package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BlogDir is the location of post files relative to the application root.
const BlogDir = "public/files/blog"

const ext = ".md"

var (
	// ErrNotFound is returned when no file in the tree has the requested slug.
	ErrNotFound = errors.New("posts: not found")
	// ErrInvalidSlug is returned for slugs that could never name a post file.
	ErrInvalidSlug = errors.New("posts: invalid slug")
	// ErrUnreadable is returned when a located file cannot be read.
	ErrUnreadable = errors.New("posts: unreadable")
)

// Entry is a post file discovered in the tree.
type Entry struct {
	Slug string
	Path string
}

// Locator resolves slugs to post files under a root directory. It holds no
// mutable state and is safe for concurrent use.
type Locator struct {
	root string
}

// NewLocator returns a Locator rooted at dir. Relative paths are resolved
// against the working directory.
func NewLocator(dir string) *Locator {
	root := filepath.Clean(dir)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Locator{root: root}
}

// Root returns the absolute directory the Locator searches.
func (l *Locator) Root() string {
	return l.root
}

// Find walks the tree in lexical order and returns the absolute path of the
// first regular file named slug + ".md".
func (l *Locator) Find(ctx context.Context, slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	want := slug + ext

	var found string
	err := l.walk(ctx, func(path string, d fs.DirEntry) error {
		if d.Name() == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

// All returns every post file in the tree in traversal order.
func (l *Locator) All(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := l.walk(ctx, func(path string, d fs.DirEntry) error {
		if name := d.Name(); strings.HasSuffix(name, ext) && len(name) > len(ext) {
			entries = append(entries, Entry{
				Slug: strings.TrimSuffix(name, ext),
				Path: path,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// walk calls fn for each regular file under the root. A missing root is an
// empty tree; unreadable subdirectories are skipped.
func (l *Locator) walk(ctx context.Context, fn func(path string, d fs.DirEntry) error) error {
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, d)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("posts: walk %s: %w", l.root, err)
	}
	return nil
}

// Read returns the full contents of the post file at path.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return data, nil
}

// ValidSlug reports whether s can name a post file. Path separators, NUL
// bytes and dot segments are rejected so a slug only ever matches a file
// name.
func ValidSlug(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}
