// Package assets resolves fonts and images by logical name.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"resty.dev/v3"
)

// Logical font names understood by the document sections.
const (
	FontRegular = "regular"
	FontBold    = "bold"
	FontMono    = "mono"
)

var (
	ErrMissing = errors.New("asset not found")
	ErrUnnamed = errors.New("asset name is empty")
)

// Resolver maps logical names to asset paths and reads them. Paths are read
// from the resolver's filesystem unless they are http(s) URLs.
type Resolver struct {
	fs     afero.Fs
	client *resty.Client
	fonts  map[string]string
	logger *slog.Logger
}

type Option func(*Resolver)

// WithHTTPClient enables remote assets.
func WithHTTPClient(c *resty.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithFont maps a logical font name to path. An empty path keeps the
// default.
func WithFont(name, path string) Option {
	return func(r *Resolver) {
		if path != "" {
			r.fonts[name] = path
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(fs afero.Fs, opts ...Option) *Resolver {
	r := &Resolver{
		fs: fs,
		fonts: map[string]string{
			FontRegular: "fonts/regular.ttf",
			FontBold:    "fonts/bold.ttf",
			FontMono:    "fonts/mono.ttf",
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Builtin returns an in-memory filesystem holding the Go font family under
// the default font paths.
func Builtin() afero.Fs {
	fs := afero.NewMemMapFs()
	for path, data := range map[string][]byte{
		"fonts/regular.ttf": goregular.TTF,
		"fonts/bold.ttf":    gobold.TTF,
		"fonts/mono.ttf":    gomono.TTF,
	} {
		// MemMapFs writes cannot fail for fresh paths.
		_ = afero.WriteFile(fs, path, data, 0o644)
	}
	return fs
}

// Overlay layers dir on top of the builtin assets, so files in dir win.
// An empty dir yields the builtin assets alone.
func Overlay(dir string) afero.Fs {
	base := afero.NewReadOnlyFs(Builtin())
	if dir == "" {
		return base
	}
	return afero.NewCopyOnWriteFs(base, afero.NewBasePathFs(afero.NewOsFs(), dir))
}

func (r *Resolver) Font(ctx context.Context, name string) ([]byte, error) {
	path, ok := r.fonts[name]
	if !ok {
		return nil, fmt.Errorf("font %q: %w", name, ErrMissing)
	}
	data, err := r.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", name, err)
	}
	return data, nil
}

func (r *Resolver) Image(ctx context.Context, path string) ([]byte, error) {
	data, err := r.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", path, err)
	}
	return data, nil
}

// Read returns the bytes behind path.
func (r *Resolver) Read(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrUnnamed
	}
	if isRemote(path) {
		return r.fetch(ctx, path)
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMissing
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrMissing
	}
	return data, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("remote asset %s: %w", url, ErrMissing)
	}
	res, err := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode() == http.StatusNotFound {
		return nil, ErrMissing
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, res.StatusCode())
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	r.logger.Debug("fetched remote asset", "url", url, "bytes", len(data))
	return data, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
