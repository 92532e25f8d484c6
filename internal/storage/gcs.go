package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSBucket implements Bucket on top of Google Cloud Storage. The public
// bucket is expected to carry an allUsers reader policy so PublicURL works
// without signing.
type GCSBucket struct {
	client *gcs.Client
	name   string
}

// NewGCSBucket wraps an existing GCS client and verifies the bucket is
// accessible before returning.
func NewGCSBucket(ctx context.Context, client *gcs.Client, name string) (*GCSBucket, error) {
	if client == nil {
		return nil, errors.New("gcs client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("bucket name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := client.Bucket(name).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("bucket %q not accessible: %w", name, err)
	}
	return &GCSBucket{client: client, name: name}, nil
}

func (b *GCSBucket) Upload(ctx context.Context, object string, r io.Reader, contentType string) error {
	w := b.client.Bucket(b.name).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s/%s: %w", b.name, object, err)
	}
	return w.Close()
}

func (b *GCSBucket) Download(ctx context.Context, object string) ([]byte, error) {
	r, err := b.client.Bucket(b.name).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s/%s: %w", b.name, object, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func (b *GCSBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var objects []string
	it := b.client.Bucket(b.name).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s*: %w", b.name, prefix, err)
		}
		objects = append(objects, attrs.Name)
	}
	return objects, nil
}

func (b *GCSBucket) Remove(ctx context.Context, object string) error {
	err := b.client.Bucket(b.name).Object(object).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (b *GCSBucket) PublicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.name, strings.TrimLeft(object, "/"))
}
