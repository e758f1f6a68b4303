package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *MinioStore {
	t.Helper()
	store, err := NewMinioStore(Config{
		Endpoint:  "storage.example.com",
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "secret",
		Bucket:    "project-documents",
		Region:    "us-east-1",
		UseTLS:    true,
	})
	require.NoError(t, err)
	return store
}

func TestMinioStore_PresignedURL(t *testing.T) {
	store := testStore(t)

	raw, err := store.PresignedURL(context.Background(), "projects/p1/d1-claims.pdf", "claims.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Contains(t, u.Path, "projects/p1/d1-claims.pdf")
	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Equal(t, `attachment; filename=claims.pdf`, q.Get("response-content-disposition"))
}

func TestNewMinioStore_InvalidEndpoint(t *testing.T) {
	_, err := NewMinioStore(Config{Endpoint: "http://bad endpoint", Bucket: "b"})
	assert.Error(t, err)
}
