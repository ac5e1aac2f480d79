// Package storage keeps generated documents as objects addressed by bucket
// and key, and issues expiring signed download URLs for them.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrInvalidKey       = errors.New("invalid object key")
	ErrInvalidSignature = errors.New("invalid download signature")
	ErrExpired          = errors.New("download link expired")
)

const metaSuffix = ".meta.json"

type Object struct {
	Bucket    string
	Key       string
	MediaType string
	Size      int64
	Body      []byte
}

type meta struct {
	MediaType string    `json:"media_type"`
	Size      int64     `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
}

type Store struct {
	fs            afero.Fs
	defaultBucket string
	publicURL     string
	secret        []byte
	ttl           time.Duration
	now           func() time.Time
}

type Option func(*Store)

// WithPublicURL sets the base that download URLs are built on.
func WithPublicURL(u string) Option {
	return func(s *Store) {
		s.publicURL = strings.TrimRight(u, "/")
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New stores objects on fs under <bucket>/<key>. defaultBucket is used when
// a caller passes no bucket.
func New(fs afero.Fs, defaultBucket string, secret []byte, opts ...Option) *Store {
	s := &Store{
		fs:            fs,
		defaultBucket: defaultBucket,
		secret:        secret,
		ttl:           15 * time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bucket resolves a bucket hint, falling back to the default bucket.
func (s *Store) Bucket(hint string) string {
	if hint != "" {
		return hint
	}
	return s.defaultBucket
}

func (s *Store) PutObject(ctx context.Context, bucket, key string, body []byte, mediaType string) error {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, body, 0o644); err != nil {
		return fmt.Errorf("write object %s/%s: %w", s.Bucket(bucket), key, err)
	}
	raw, err := json.Marshal(meta{MediaType: mediaType, Size: int64(len(body)), StoredAt: s.now().UTC()})
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, p+metaSuffix, raw, 0o644); err != nil {
		return fmt.Errorf("write object meta %s/%s: %w", s.Bucket(bucket), key, err)
	}
	return nil
}

func (s *Store) GetObject(ctx context.Context, bucket, key string) (*Object, error) {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", s.Bucket(bucket), key, err)
	}

	obj := &Object{Bucket: s.Bucket(bucket), Key: key, Body: body, Size: int64(len(body)), MediaType: "application/octet-stream"}
	if raw, err := afero.ReadFile(s.fs, p+metaSuffix); err == nil {
		var m meta
		if err := json.Unmarshal(raw, &m); err == nil && m.MediaType != "" {
			obj.MediaType = m.MediaType
		}
	}
	return obj, nil
}

// GetFileURI returns a download URL for an existing object. The URL carries
// a signed token that expires after the store's TTL.
func (s *Store) GetFileURI(ctx context.Context, bucket, key string) (string, error) {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ok, err := afero.Exists(s.fs, p); err != nil {
		return "", err
	} else if !ok {
		return "", ErrNotFound
	}

	bucket = s.Bucket(bucket)
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   bucket + "/" + key,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return fmt.Sprintf("%s/files/%s/%s?token=%s", s.publicURL, url.PathEscape(bucket), url.PathEscape(key), url.QueryEscape(token)), nil
}

// Verify checks that token was issued by GetFileURI for bucket and key and
// has not expired.
func (s *Store) Verify(token, bucket, key string) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpired
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if claims.Subject != s.Bucket(bucket)+"/"+key {
		return fmt.Errorf("%w: token issued for another object", ErrInvalidSignature)
	}
	return nil
}

func (s *Store) objectPath(bucket, key string) (string, error) {
	bucket = s.Bucket(bucket)
	for _, part := range []string{bucket, key} {
		if part == "" || strings.ContainsAny(part, `/\`) || part == "." || part == ".." || strings.HasSuffix(part, metaSuffix) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, part)
		}
	}
	return path.Join(bucket, key), nil
}
