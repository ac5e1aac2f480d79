// Package documents serves generation requests: it looks up the record,
// composes the PDF, stores it, indexes it and announces it.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/composer"
	"github.com/ztoursph/booking-api/internal/format"
	"github.com/ztoursph/booking-api/internal/metrics"
	"github.com/ztoursph/booking-api/internal/models"
	"github.com/ztoursph/booking-api/internal/notifier"
)

var ErrNoSections = errors.New("package has no sections")

// Records is the lookup surface the service needs.
type Records interface {
	BookingByID(ctx context.Context, id string) (booking.Record, error)
	FindPackageBySlug(ctx context.Context, slug string) (*models.Package, error)
	SaveDocument(ctx context.Context, d *models.Document) error
}

type Composer interface {
	GenerateItinerary(ctx context.Context, rec booking.Record, filename, bucket string) (*composer.Artifact, error)
	GenerateTourDetails(ctx context.Context, secs []composer.Section, filename, bucket string) (*composer.Artifact, error)
}

type ObjectStore interface {
	Bucket(hint string) string
	PutObject(ctx context.Context, bucket, key string, body []byte, mediaType string) error
	GetFileURI(ctx context.Context, bucket, key string) (string, error)
}

// Result describes a stored document.
type Result struct {
	Kind      string `json:"kind"`
	Reference string `json:"reference,omitempty"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	Pages     int    `json:"pages"`
	Size      int64  `json:"size"`
}

// BatchItem is the outcome for one booking of a batch.
type BatchItem struct {
	BookingID string  `json:"booking_id"`
	Result    *Result `json:"result,omitempty"`
	Err       error   `json:"-"`
}

type Service struct {
	records     Records
	composer    Composer
	store       ObjectStore
	notifier    notifier.Notifier
	metrics     *metrics.Metrics
	format      *format.Formatter
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Service)

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFormatter sets the formatter used for artifact name stamps.
func WithFormatter(f *format.Formatter) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithConcurrency bounds the generations a batch runs at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(records Records, c Composer, store ObjectStore, opts ...Option) *Service {
	s := &Service{
		records:     records,
		composer:    c,
		store:       store,
		format:      format.New(nil),
		concurrency: 4,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// ItineraryName is the artifact name of an itinerary generated at t.
func (s *Service) ItineraryName(reference string, t time.Time) string {
	return fmt.Sprintf("itinerary_%s_%s", reference, s.format.Stamp(t))
}

// TourDetailsName is the artifact name of a tour-details document generated
// at t: the title lowercased with whitespace removed.
func (s *Service) TourDetailsName(title string, t time.Time) string {
	compact := strings.Join(strings.Fields(strings.ToLower(title)), "")
	return fmt.Sprintf("pdf_%s_%s", compact, s.format.Stamp(t))
}

// GenerateItinerary builds and stores the itinerary of booking id. bucketHint
// falls back to the store's default bucket when empty.
func (s *Service) GenerateItinerary(ctx context.Context, id, bucketHint string) (res *Result, err error) {
	start := time.Now()
	pages := 0
	defer func() {
		s.observe(models.DocumentItinerary, start, pages, err)
	}()

	rec, err := s.records.BookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bucket := s.store.Bucket(bucketHint)
	art, err := s.composer.GenerateItinerary(ctx, rec, s.ItineraryName(rec.ReferenceNumber, s.now()), bucket)
	if err != nil {
		return nil, err
	}
	pages = len(art.Pages)

	res, err = s.persist(ctx, models.DocumentItinerary, art, &models.Document{BookingID: &id})
	if err != nil {
		return nil, err
	}
	res.Reference = rec.ReferenceNumber

	s.notify(notifier.Notice{
		Kind:      models.DocumentItinerary,
		Reference: rec.ReferenceNumber,
		Subject:   rec.LeadGuestName(),
		Pages:     res.Pages,
		Bytes:     int(res.Size),
		URL:       res.URL,
	})
	return res, nil
}

// GenerateTourDetails builds and stores the tour-details document of the
// package with slug.
func (s *Service) GenerateTourDetails(ctx context.Context, slug, bucketHint string) (res *Result, err error) {
	start := time.Now()
	pages := 0
	defer func() {
		s.observe(models.DocumentTourDetails, start, pages, err)
	}()

	pkg, err := s.records.FindPackageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(pkg.Sections) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSections, slug)
	}

	secs := make([]composer.Section, 0, len(pkg.Sections))
	for _, ps := range pkg.Sections {
		secs = append(secs, composer.Section{Title: ps.Title, HTMLContent: ps.HTMLContent})
	}

	bucket := s.store.Bucket(bucketHint)
	art, err := s.composer.GenerateTourDetails(ctx, secs, s.TourDetailsName(pkg.Title, s.now()), bucket)
	if err != nil {
		return nil, err
	}
	pages = len(art.Pages)

	return s.persist(ctx, models.DocumentTourDetails, art, &models.Document{PackageID: &pkg.ID})
}

// GenerateBatch generates the itineraries of ids concurrently. A failed
// booking is reported in its item and does not stop the others. Items keep
// the order of ids.
func (s *Service) GenerateBatch(ctx context.Context, ids []string, bucketHint string) ([]BatchItem, error) {
	items := make([]BatchItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		items[i].BookingID = id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			res, err := s.GenerateItinerary(gctx, id, bucketHint)
			if err != nil {
				s.logger.Warn("batch itinerary failed", "booking_id", id, "error", err)
			}
			items[i].Result, items[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

func (s *Service) persist(ctx context.Context, kind string, art *composer.Artifact, doc *models.Document) (*Result, error) {
	if err := s.store.PutObject(ctx, art.Bucket, art.Filename, art.Bytes, art.MediaType); err != nil {
		return nil, fmt.Errorf("store %s: %w", art.Filename, err)
	}

	doc.Kind = kind
	doc.Bucket = art.Bucket
	doc.Key = art.Filename
	doc.MediaType = art.MediaType
	doc.Size = int64(len(art.Bytes))
	doc.Pages = len(art.Pages)
	if err := s.records.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("index %s: %w", art.Filename, err)
	}

	url, err := s.store.GetFileURI(ctx, art.Bucket, art.Filename)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", art.Filename, err)
	}

	s.logger.Info("document stored",
		"kind", kind,
		"bucket", art.Bucket,
		"filename", art.Filename,
		"pages", doc.Pages,
		"bytes", doc.Size,
	)
	return &Result{
		Kind:   kind,
		Bucket: art.Bucket,
		Key:    art.Filename,
		URL:    url,
		Pages:  doc.Pages,
		Size:   doc.Size,
	}, nil
}

func (s *Service) notify(n notifier.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDocument(n); err != nil {
		s.logger.Warn("document notification failed", "reference", n.Reference, "error", err)
	}
}

func (s *Service) observe(kind string, start time.Time, pages int, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveGeneration(kind, start, pages, err)
}
