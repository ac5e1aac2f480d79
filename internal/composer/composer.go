// Package composer drives the document sections against one canvas per
// request and returns the finished PDF artifact.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/canvas"
	"github.com/ztoursph/booking-api/internal/format"
	"github.com/ztoursph/booking-api/internal/scancode"
	"github.com/ztoursph/booking-api/internal/sections"
	"github.com/ztoursph/booking-api/internal/stream"
)

// Page labels of the itinerary document.
const (
	PageSummary    = "summary"
	PageMasterlist = "masterlist"
	PageTerms      = "terms"
	pageTourPrefix = "tour:"
	pageSection    = "section:"
)

// TourPage is the label of the guest page of tour id.
func TourPage(id string) string {
	return pageTourPrefix + id
}

// SectionPage is the label of the pages of the i-th tour-details section.
func SectionPage(i int) string {
	return pageSection + strconv.Itoa(i)
}

// AssetSource resolves fonts by logical name and images by path.
type AssetSource interface {
	Font(ctx context.Context, name string) ([]byte, error)
	Image(ctx context.Context, path string) ([]byte, error)
}

// Images names the optional image assets. Empty paths are skipped.
type Images struct {
	Logo       string
	Signature  string
	Background string
}

// Artifact is a generated document. It is not modified after it is returned.
type Artifact struct {
	Bucket    string
	Filename  string
	Bytes     []byte
	MediaType string
	Pages     []canvas.Page
}

// Section is one titled HTML block of a tour-details document.
type Section struct {
	Title       string
	HTMLContent string
}

type Composer struct {
	assets    AssetSource
	encoder   scancode.Encoder
	verifyURL string
	layout    *sections.Layout
	images    Images
	wrap      uint
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Composer)

func WithLayout(l *sections.Layout) Option {
	return func(c *Composer) {
		c.layout = l
	}
}

func WithImages(img Images) Option {
	return func(c *Composer) {
		c.images = img
	}
}

// WithWrapWidth sets the character width HTML content is wrapped at before
// layout.
func WithWrapWidth(n uint) Option {
	return func(c *Composer) {
		c.wrap = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// New returns a Composer. verifyURL is the base of the booking lookup URL
// encoded into the itinerary's scan code.
func New(assets AssetSource, encoder scancode.Encoder, verifyURL string, opts ...Option) *Composer {
	c := &Composer{
		assets:    assets,
		encoder:   encoder,
		verifyURL: verifyURL,
		wrap:      120,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.layout == nil {
		c.layout = sections.DefaultLayout(format.New(nil))
	}
	return c
}

// GenerateItinerary composes the itinerary of rec. filename and bucket are
// carried into the artifact unchanged.
func (c *Composer) GenerateItinerary(ctx context.Context, rec booking.Record, filename, bucket string) (*Artifact, error) {
	ref := rec.ReferenceNumber
	if ref == "" {
		return nil, fail(filename, StageEncode, ErrInput, errors.New("booking has no reference number"))
	}

	payload, err := scancode.BookingURL(c.verifyURL, ref, rec.Email)
	if err != nil {
		return nil, fail(ref, StageEncode, ErrEncoding, err)
	}
	code, err := c.encoder.Encode(ctx, payload)
	if err != nil {
		return nil, fail(ref, StageEncode, ErrEncoding, err)
	}

	summary := booking.Aggregate(rec)
	if len(summary.Orphans) > 0 {
		c.logger.Warn("guests grouped under unbooked tours",
			"reference", ref,
			"orphans", len(summary.Orphans),
		)
	}
	if expected := rec.ToursSubtotal().Add(rec.Fees); !expected.Equal(rec.GrandTotal) {
		c.logger.Warn("grand total does not match tours plus fees",
			"reference", ref,
			"grand_total", rec.GrandTotal.String(),
			"expected", expected.String(),
		)
	}

	doc, imgs, err := c.begin(ctx, ref, PageSummary)
	if err != nil {
		return nil, err
	}

	l := c.layout
	steps := []struct {
		stage string
		run   func() error
	}{
		{StageMasthead, func() error {
			return sections.Masthead(doc, l, l.Offsets.Masthead, sections.MastheadData{
				InvoiceNumber: ref,
				Issued:        c.now(),
				Code:          code,
				Logo:          imgs.logo,
			})
		}},
		{StageContact, func() error {
			return sections.Contact(doc, l, l.Offsets.Contact)
		}},
		{StageSummary, func() error {
			if err := sections.GuestSummaryLabel(doc, l, l.Offsets.GuestLabel); err != nil {
				return err
			}
			return sections.GuestSummary(doc, l, l.Offsets.GuestSummary, sections.SummaryOf(rec, summary))
		}},
		{StageTours, func() error {
			end, err := sections.TourTable(doc, l, l.Offsets.Tours, rec, PageSummary)
			if err != nil {
				return err
			}
			if end > sections.FooterTop(l, l.Offsets.Footer) {
				return doc.AddPage(PageSummary)
			}
			return nil
		}},
		{StageFooter, func() error {
			return sections.Footer(doc, l, l.Offsets.Footer, imgs.signature)
		}},
		{StageMasterlist, func() error {
			if err := doc.AddPage(PageMasterlist); err != nil {
				return err
			}
			return sections.Masterlist(doc, l, summary.Masterlist, PageMasterlist)
		}},
		{StageTourGuests, func() error {
			for _, roster := range booking.Rosters(rec) {
				if len(roster.Guests) == 0 {
					c.logger.Debug("skipping tour without guests", "reference", ref, "tour", roster.Tour.ID)
					continue
				}
				label := TourPage(roster.Tour.ID)
				if err := doc.AddPage(label); err != nil {
					return err
				}
				if err := sections.TourGuests(doc, l, roster, label); err != nil {
					return fmt.Errorf("tour %s: %w", roster.Tour.ID, err)
				}
			}
			return nil
		}},
		{StageTerms, func() error {
			if err := doc.AddPage(PageTerms); err != nil {
				return err
			}
			return sections.Terms(doc, l, PageTerms)
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fail(ref, step.stage, ErrLayout, err)
		}
	}

	return c.finish(ref, doc, filename, bucket)
}

// GenerateTourDetails composes one titled block per section. The first
// section starts on the first page and every later section on a new page.
func (c *Composer) GenerateTourDetails(ctx context.Context, secs []Section, filename, bucket string) (*Artifact, error) {
	if len(secs) == 0 {
		return nil, fail(filename, StageSection, ErrInput, errors.New("no sections"))
	}

	bodies := make([]string, len(secs))
	for i, s := range secs {
		text, err := format.HTMLToText(s.HTMLContent, c.wrap)
		if err != nil {
			return nil, fail(filename, StageSection, ErrInput, fmt.Errorf("section %d: %w", i, err))
		}
		bodies[i] = text
	}

	doc, _, err := c.begin(ctx, filename, SectionPage(0))
	if err != nil {
		return nil, err
	}
	for i, s := range secs {
		label := SectionPage(i)
		if i > 0 {
			if err := doc.AddPage(label); err != nil {
				return nil, fail(filename, StageSection, ErrLayout, err)
			}
		}
		if err := sections.Detail(doc, c.layout, s.Title, bodies[i], label); err != nil {
			return nil, fail(filename, StageSection, ErrLayout, fmt.Errorf("section %d: %w", i, err))
		}
	}

	return c.finish(filename, doc, filename, bucket)
}

type loadedImages struct {
	logo      []byte
	signature []byte
}

// begin creates the canvas, registers fonts, paints the background and adds
// the first page. Every asset is resolved here so a missing one fails before
// any content is written.
func (c *Composer) begin(ctx context.Context, ref, firstPage string) (*canvas.Canvas, loadedImages, error) {
	var imgs loadedImages
	doc := canvas.New(c.layout.Profile)

	seen := make(map[string]bool)
	for _, name := range []string{c.layout.Fonts.Regular, c.layout.Fonts.Bold, c.layout.Fonts.Mono} {
		if seen[name] {
			continue
		}
		seen[name] = true
		ttf, err := c.assets.Font(ctx, name)
		if err != nil {
			return nil, imgs, fail(ref, StageInit, ErrAsset, err)
		}
		if err := doc.RegisterFont(name, ttf); err != nil {
			return nil, imgs, fail(ref, StageInit, ErrAsset, err)
		}
	}

	if c.images.Background != "" {
		bg, err := c.assets.Image(ctx, c.images.Background)
		if err != nil {
			return nil, imgs, fail(ref, StageInit, ErrAsset, err)
		}
		if err := doc.SetBackground(bg); err != nil {
			return nil, imgs, fail(ref, StageInit, ErrAsset, err)
		}
	}
	for _, img := range []struct {
		path string
		dst  *[]byte
	}{
		{c.images.Logo, &imgs.logo},
		{c.images.Signature, &imgs.signature},
	} {
		if img.path == "" {
			continue
		}
		data, err := c.assets.Image(ctx, img.path)
		if err != nil {
			return nil, imgs, fail(ref, StageInit, ErrAsset, err)
		}
		*img.dst = data
	}

	if err := doc.AddPage(firstPage); err != nil {
		return nil, imgs, fail(ref, StageInit, ErrLayout, err)
	}
	return doc, imgs, nil
}

func (c *Composer) finish(ref string, doc *canvas.Canvas, filename, bucket string) (*Artifact, error) {
	if err := doc.Finalize(); err != nil {
		return nil, fail(ref, StageFinalize, ErrLayout, err)
	}

	rc := doc.Stream()
	defer rc.Close()
	data, err := stream.Collect(rc)
	if err != nil {
		return nil, fail(ref, StageCollect, ErrStream, err)
	}

	pages := doc.Pages()
	c.logger.Info("document generated",
		"reference", ref,
		"filename", filename,
		"pages", len(pages),
		"bytes", len(data),
	)
	return &Artifact{
		Bucket:    bucket,
		Filename:  filename,
		Bytes:     data,
		MediaType: canvas.MediaType,
		Pages:     pages,
	}, nil
}
