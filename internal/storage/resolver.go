package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// Resolver bridges the private upload bucket and the public profile bucket.
// Public copies are namespaced by owner: "<ownerID>/<filename>". All of its
// failure modes are degraded states, not errors: an unresolvable image stays
// unresolved and a failed cleanup is logged.
type Resolver struct {
	private Bucket
	public  Bucket
	logger  *slog.Logger
}

// NewResolver creates a Resolver over the private and public buckets.
func NewResolver(private, public Bucket, logger *slog.Logger) *Resolver {
	return &Resolver{private: private, public: public, logger: logger}
}

// publicObject builds the owner-namespaced object name for an image reference.
func publicObject(imageRef string, ownerID uint) string {
	return fmt.Sprintf("%d/%s", ownerID, path.Base(imageRef))
}

// IsAbsoluteURL reports whether the image reference is already a fetchable URL
// rather than a relative object name.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolvePublicURL resolves a product image reference to a publicly fetchable
// URL. Absolute URLs pass through unchanged. Relative references resolve to
// the public bucket copy when one exists for the owner; otherwise the input
// is returned as-is and the caller renders a possibly-broken image.
func (r *Resolver) ResolvePublicURL(ctx context.Context, imageRef string, ownerID uint) string {
	if imageRef == "" || IsAbsoluteURL(imageRef) {
		return imageRef
	}

	object := publicObject(imageRef, ownerID)
	listing, err := r.public.List(ctx, fmt.Sprintf("%d/", ownerID))
	if err != nil {
		r.logger.WarnContext(ctx, "public bucket listing failed, leaving image unresolved",
			slog.String("object", object),
			slog.String("error", err.Error()),
		)
		return imageRef
	}
	for _, name := range listing {
		if name == object {
			return r.public.PublicURL(object)
		}
	}
	return imageRef
}

// PublishAsset copies a private object into the public bucket under the
// owner's namespace, overwriting any existing copy. Idempotent; intended to
// run whenever a product with an image is created or edited.
func (r *Resolver) PublishAsset(ctx context.Context, imageRef string, ownerID uint) error {
	if imageRef == "" || IsAbsoluteURL(imageRef) {
		return nil
	}

	filename := path.Base(imageRef)
	data, err := r.private.Download(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to download private object %q: %w", filename, err)
	}

	object := publicObject(imageRef, ownerID)
	if err := r.public.Upload(ctx, object, bytes.NewReader(data), ""); err != nil {
		return fmt.Errorf("failed to publish object %q: %w", object, err)
	}
	return nil
}

// DeleteAsset removes both the private object and its public copy. Both
// removals are always attempted; failures are logged and the first error is
// returned for callers that want to record it. Callers must treat errors as
// non-fatal.
func (r *Resolver) DeleteAsset(ctx context.Context, imageRef string, ownerID uint) error {
	if imageRef == "" || IsAbsoluteURL(imageRef) {
		return nil
	}

	filename := path.Base(imageRef)
	object := publicObject(imageRef, ownerID)

	privateErr := r.private.Remove(ctx, filename)
	publicErr := r.public.Remove(ctx, object)

	if privateErr != nil {
		r.logger.WarnContext(ctx, "failed to remove private image",
			slog.String("object", filename), slog.String("error", privateErr.Error()))
	}
	if publicErr != nil {
		r.logger.WarnContext(ctx, "failed to remove public image",
			slog.String("object", object), slog.String("error", publicErr.Error()))
	}

	if privateErr != nil {
		return privateErr
	}
	return publicErr
}
