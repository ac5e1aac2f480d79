package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestObjects(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), "docs", secret)

	require.NoError(t, s.PutObject(ctx, "", "itinerary_INV-1_01052024", []byte("%PDF-1.4"), "application/pdf"))

	obj, err := s.GetObject(ctx, "docs", "itinerary_INV-1_01052024")
	require.NoError(t, err)
	assert.Equal(t, "docs", obj.Bucket)
	assert.Equal(t, "application/pdf", obj.MediaType)
	assert.Equal(t, "%PDF-1.4", string(obj.Body))
	assert.EqualValues(t, 8, obj.Size)

	_, err = s.GetObject(ctx, "other", "itinerary_INV-1_01052024")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, key := range []string{"", "..", "a/b", `a\b`, "x" + metaSuffix} {
		assert.ErrorIs(t, s.PutObject(ctx, "docs", key, nil, ""), ErrInvalidKey, "key %q", key)
	}

	assert.Equal(t, "custom", s.Bucket("custom"))
	assert.Equal(t, "docs", s.Bucket(""))
}

func TestSignedURLs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := New(afero.NewMemMapFs(), "docs", secret,
		WithPublicURL("https://api.example.com/"),
		WithTTL(10*time.Minute),
		WithClock(clock),
	)
	require.NoError(t, s.PutObject(ctx, "docs", "file", []byte("x"), "application/pdf"))

	uri, err := s.GetFileURI(ctx, "", "file")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "https://api.example.com/files/docs/file?token="))

	u, err := url.Parse(uri)
	require.NoError(t, err)
	token := u.Query().Get("token")

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, s.Verify(token, "docs", "file"))
	})

	t.Run("OtherObject", func(t *testing.T) {
		assert.ErrorIs(t, s.Verify(token, "docs", "other"), ErrInvalidSignature)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := New(afero.NewMemMapFs(), "docs", []byte("another"), WithClock(clock))
		assert.ErrorIs(t, other.Verify(token, "docs", "file"), ErrInvalidSignature)
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.ErrorIs(t, s.Verify("not-a-token", "docs", "file"), ErrInvalidSignature)
	})

	t.Run("Expired", func(t *testing.T) {
		later := New(afero.NewMemMapFs(), "docs", secret, WithClock(func() time.Time { return now.Add(11 * time.Minute) }))
		assert.ErrorIs(t, later.Verify(token, "docs", "file"), ErrExpired)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := s.GetFileURI(ctx, "docs", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
