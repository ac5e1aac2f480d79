package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func TestResolverFonts(t *testing.T) {
	r := NewResolver(Builtin())
	ctx := context.Background()

	for _, name := range []string{FontRegular, FontBold, FontMono} {
		data, err := r.Font(ctx, name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	_, err := r.Font(ctx, "cursive")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestResolverFontOverride(t *testing.T) {
	fs := Builtin()
	require.NoError(t, afero.WriteFile(fs, "fonts/brand.ttf", []byte("brand"), 0o644))
	r := NewResolver(fs, WithFont(FontBold, "fonts/brand.ttf"), WithFont(FontRegular, ""))
	ctx := context.Background()

	data, err := r.Font(ctx, FontBold)
	require.NoError(t, err)
	assert.Equal(t, "brand", string(data))

	data, err = r.Font(ctx, FontRegular)
	require.NoError(t, err)
	assert.NotEqual(t, "brand", string(data))
}

func TestResolverMissingFontFile(t *testing.T) {
	r := NewResolver(afero.NewMemMapFs())
	_, err := r.Font(context.Background(), FontRegular)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestResolverImages(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "images/logo.png", []byte("png"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "images/empty.png", nil, 0o644))
	r := NewResolver(fs)
	ctx := context.Background()

	data, err := r.Image(ctx, "images/logo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = r.Image(ctx, "images/missing.png")
	assert.ErrorIs(t, err, ErrMissing)

	_, err = r.Image(ctx, "images/empty.png")
	assert.ErrorIs(t, err, ErrMissing)

	_, err = r.Image(ctx, "")
	assert.ErrorIs(t, err, ErrUnnamed)
}

func TestResolverRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/logo.png" {
			w.Write([]byte("remote-png"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := resty.New()
	defer client.Close()
	r := NewResolver(afero.NewMemMapFs(), WithHTTPClient(client))
	ctx := context.Background()

	data, err := r.Image(ctx, srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote-png"), data)

	_, err = r.Image(ctx, srv.URL+"/nope.png")
	assert.ErrorIs(t, err, ErrMissing)

	offline := NewResolver(afero.NewMemMapFs())
	_, err = offline.Image(ctx, srv.URL+"/logo.png")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestOverlay(t *testing.T) {
	dir := t.TempDir()
	osFs := afero.NewOsFs()
	require.NoError(t, osFs.MkdirAll(dir+"/images", 0o755))
	require.NoError(t, afero.WriteFile(osFs, dir+"/images/sig.png", []byte("sig"), 0o644))

	r := NewResolver(Overlay(dir))
	ctx := context.Background()

	data, err := r.Image(ctx, "images/sig.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("sig"), data)

	_, err = r.Font(ctx, FontBold)
	assert.NoError(t, err, "builtin fonts remain visible under the overlay")
}
