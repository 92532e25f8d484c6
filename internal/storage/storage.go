// Package storage provides object storage backends and the public image
// resolver for product images. Two buckets are in play: a private bucket
// holding owner-only uploads and a public bucket holding copies namespaced
// by owner ID that anyone may fetch.
package storage

import (
	"context"
	"io"
)

// Bucket is a minimal object store. Object names are slash-separated paths
// relative to the bucket root.
type Bucket interface {
	// Upload writes the object, overwriting any existing copy.
	Upload(ctx context.Context, object string, r io.Reader, contentType string) error
	// Download reads the full object contents.
	Download(ctx context.Context, object string) ([]byte, error)
	// List returns the object names under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Remove deletes the object. Removing a missing object is not an error.
	Remove(ctx context.Context, object string) error
	// PublicURL returns the URL at which the object can be fetched without
	// credentials, assuming the bucket is publicly readable.
	PublicURL(object string) string
}
