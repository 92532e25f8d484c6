package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBucket(t *testing.T) *LocalBucket {
	t.Helper()
	b, err := NewLocalBucket("product-images", t.TempDir(), "http://localhost:8460/media/")
	require.NoError(t, err)
	return b
}

func TestLocalBucketRoundTrip(t *testing.T) {
	t.Parallel()
	b := newBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "abc123.jpg", bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg"))

	data, err := b.Download(ctx, "abc123.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	// Overwrite is allowed.
	require.NoError(t, b.Upload(ctx, "abc123.jpg", bytes.NewReader([]byte("v2")), "image/jpeg"))
	data, err = b.Download(ctx, "abc123.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestLocalBucketList(t *testing.T) {
	t.Parallel()
	b := newBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "1/a.jpg", bytes.NewReader([]byte("a")), ""))
	require.NoError(t, b.Upload(ctx, "1/b.jpg", bytes.NewReader([]byte("b")), ""))
	require.NoError(t, b.Upload(ctx, "2/c.jpg", bytes.NewReader([]byte("c")), ""))

	objects, err := b.List(ctx, "1/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1/a.jpg", "1/b.jpg"}, objects)

	all, err := b.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalBucketRemove(t *testing.T) {
	t.Parallel()
	b := newBucket(t)
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "abc123.jpg", bytes.NewReader([]byte("x")), ""))
	require.NoError(t, b.Remove(ctx, "abc123.jpg"))
	_, err := b.Download(ctx, "abc123.jpg")
	assert.Error(t, err)

	// Removing a missing object is not an error.
	require.NoError(t, b.Remove(ctx, "abc123.jpg"))
}

func TestLocalBucketRejectsTraversal(t *testing.T) {
	t.Parallel()
	b := newBucket(t)
	ctx := context.Background()

	for _, object := range []string{"../escape.jpg", "..", "/etc/passwd", "."} {
		assert.Error(t, b.Upload(ctx, object, bytes.NewReader([]byte("x")), ""), object)
		_, err := b.Download(ctx, object)
		assert.Error(t, err, object)
	}
}

func TestLocalBucketPublicURL(t *testing.T) {
	t.Parallel()
	b := newBucket(t)
	assert.Equal(t, "http://localhost:8460/media/product-images/1/abc.jpg", b.PublicURL("1/abc.jpg"))
}
