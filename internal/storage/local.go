package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalBucket is a disk-backed Bucket used in development and tests. Objects
// live under root/<bucket>/<object>; PublicURL builds paths under baseURL,
// which the server exposes as a static file route.
type LocalBucket struct {
	name    string
	root    string
	baseURL string
}

// NewLocalBucket creates a disk-backed bucket rooted at dir/name.
func NewLocalBucket(name, dir, baseURL string) (*LocalBucket, error) {
	root := filepath.Join(dir, name)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory %s: %w", root, err)
	}
	return &LocalBucket{name: name, root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the bucket's directory on disk.
func (b *LocalBucket) Root() string {
	return b.root
}

// objectPath maps an object name onto the bucket directory, rejecting
// path traversal.
func (b *LocalBucket) objectPath(object string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(object))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object name %q", object)
	}
	return filepath.Join(b.root, clean), nil
}

func (b *LocalBucket) Upload(_ context.Context, object string, r io.Reader, _ string) error {
	path, err := b.objectPath(object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (b *LocalBucket) Download(_ context.Context, object string) ([]byte, error) {
	path, err := b.objectPath(object)
	if err != nil {
		return nil, err
	}
	// #nosec G304: path is validated against traversal in objectPath
	return os.ReadFile(path)
}

func (b *LocalBucket) List(_ context.Context, prefix string) ([]string, error) {
	var objects []string
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(b.root, path)
		if relErr != nil {
			return relErr
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			objects = append(objects, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

func (b *LocalBucket) Remove(_ context.Context, object string) error {
	path, err := b.objectPath(object)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *LocalBucket) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", b.baseURL, b.name, object)
}
