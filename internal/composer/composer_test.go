package composer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztoursph/booking-api/internal/assets"
	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/canvas"
	"github.com/ztoursph/booking-api/internal/format"
	"github.com/ztoursph/booking-api/internal/scancode"
	"github.com/ztoursph/booking-api/internal/sections"
)

const verifyURL = "https://ztoursph.com/bookings/verify"

var errEncoder = errors.New("encoder down")

type failingEncoder struct{}

func (failingEncoder) Encode(context.Context, string) ([]byte, error) {
	return nil, errEncoder
}

type countingAssets struct {
	AssetSource
	calls int
}

func (a *countingAssets) Font(ctx context.Context, name string) ([]byte, error) {
	a.calls++
	return a.AssetSource.Font(ctx, name)
}

func (a *countingAssets) Image(ctx context.Context, path string) ([]byte, error) {
	a.calls++
	return a.AssetSource.Image(ctx, path)
}

func resolver(t *testing.T) *assets.Resolver {
	t.Helper()
	fs := assets.Builtin()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	for _, path := range []string{"images/logo.png", "images/signature.png", "images/background.png"} {
		require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
	}
	return assets.NewResolver(fs)
}

func newComposer(t *testing.T, src AssetSource, opts ...Option) *Composer {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	base := []Option{
		WithLayout(sections.DefaultLayout(format.New(loc))),
		WithImages(Images{Logo: "images/logo.png", Signature: "images/signature.png"}),
		WithClock(func() time.Time { return time.Date(2024, 1, 4, 20, 0, 0, 0, time.UTC) }),
	}
	return New(src, scancode.NewQREncoder(64), verifyURL, append(base, opts...)...)
}

func tour(id, title string, subtotal string) booking.BookedTour {
	return booking.BookedTour{
		ID:         id,
		Title:      title,
		Date:       time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC),
		PickupTime: "8:00 AM",
		Pax:        1,
		Subtotal:   decimal.RequireFromString(subtotal),
	}
}

func guest(id string, age int) booking.Guest {
	return booking.Guest{ID: id, FirstName: "Guest", LastName: id, Age: age, Nationality: "Filipino"}
}

func roundTripRecord() booking.Record {
	return booking.Record{
		ReferenceNumber: "INV-2024-001",
		FirstName:       "Maria",
		LastName:        "Cruz",
		Email:           "maria@example.com",
		BookingDate:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		GrandTotal:      decimal.RequireFromString("1050"),
		Fees:            decimal.RequireFromString("50"),
		BookedTours:     []booking.BookedTour{tour("tour-a", "El Nido Tour A", "1000")},
		Guests: []booking.TourGuests{{
			TourID: "tour-a",
			Guests: []booking.Guest{guest("kid", 5), guest("adult", 30)},
		}},
	}
}

func labels(pages []canvas.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Label
	}
	return out
}

func texts(p canvas.Page) []string {
	var out []string
	for _, b := range p.Blocks {
		if b.Kind == "text" {
			out = append(out, b.Text)
		}
	}
	return out
}

func TestGenerateItinerary(t *testing.T) {
	ctx := context.Background()

	t.Run("ZeroTours", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		rec := booking.Record{ReferenceNumber: "INV-1", Email: "a@example.com"}

		art, err := c.GenerateItinerary(ctx, rec, "Itinerary File.pdf", "")
		require.NoError(t, err)
		assert.Equal(t, []string{PageSummary, PageMasterlist, PageTerms}, labels(art.Pages))
		assert.Equal(t, "Itinerary File.pdf", art.Filename)
		assert.Equal(t, "application/pdf", art.MediaType)
		assert.Empty(t, art.Bucket)
		assert.True(t, bytes.HasPrefix(art.Bytes, []byte("%PDF-")))
	})

	t.Run("ToursInBookingOrder", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		rec := booking.Record{
			ReferenceNumber: "INV-2",
			BookedTours:     []booking.BookedTour{tour("a", "Tour A", "100"), tour("b", "Tour B", "200"), tour("c", "Tour C", "300")},
			Guests: []booking.TourGuests{
				{TourID: "c", Guests: []booking.Guest{guest("g3", 40)}},
				{TourID: "a", Guests: []booking.Guest{guest("g1", 20)}},
				{TourID: "b", Guests: []booking.Guest{guest("g2", 3), guest("g1", 20)}},
			},
		}

		art, err := c.GenerateItinerary(ctx, rec, "out", "docs")
		require.NoError(t, err)
		assert.Equal(t, []string{
			PageSummary, PageMasterlist, TourPage("a"), TourPage("b"), TourPage("c"), PageTerms,
		}, labels(art.Pages))
		assert.Equal(t, "docs", art.Bucket)

		tourB := texts(art.Pages[3])
		assert.Equal(t, "Tour B", tourB[0])
		assert.Contains(t, tourB, "Guest g2")
		assert.Contains(t, tourB, "Guest g1")
		assert.NotContains(t, tourB, "Guest g3")
	})

	t.Run("SkipsEmptyRoster", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		rec := booking.Record{
			ReferenceNumber: "INV-3",
			BookedTours:     []booking.BookedTour{tour("a", "Tour A", "100"), tour("b", "Tour B", "200")},
			Guests:          []booking.TourGuests{{TourID: "b", Guests: []booking.Guest{guest("g1", 20)}}},
		}

		art, err := c.GenerateItinerary(ctx, rec, "out", "")
		require.NoError(t, err)
		assert.Equal(t, []string{PageSummary, PageMasterlist, TourPage("b"), PageTerms}, labels(art.Pages))
	})

	t.Run("OrphanedGuests", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		rec := booking.Record{
			ReferenceNumber: "INV-4",
			BookedTours:     []booking.BookedTour{tour("a", "Tour A", "100")},
			Guests: []booking.TourGuests{
				{TourID: "a", Guests: []booking.Guest{guest("g1", 20)}},
				{TourID: "ghost", Guests: []booking.Guest{guest("g2", 4)}},
			},
		}

		art, err := c.GenerateItinerary(ctx, rec, "out", "")
		require.NoError(t, err)
		assert.Equal(t, []string{PageSummary, PageMasterlist, TourPage("a"), PageTerms}, labels(art.Pages))
		assert.Contains(t, texts(art.Pages[1]), "Guest g2")
	})

	t.Run("UnreconciledTotals", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		c := newComposer(t, resolver(t), WithLogger(logger))
		_, err := c.GenerateItinerary(ctx, roundTripRecord(), "out", "")
		require.NoError(t, err)
		assert.NotContains(t, logs.String(), "grand total does not match")

		rec := roundTripRecord()
		rec.GrandTotal = decimal.RequireFromString("999")
		_, err = c.GenerateItinerary(ctx, rec, "out", "")
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "grand total does not match")
		assert.Contains(t, logs.String(), "expected=1050")
	})

	t.Run("RoundTrip", func(t *testing.T) {
		rec := roundTripRecord()
		sum := booking.Aggregate(rec)
		assert.Len(t, sum.Masterlist, 2)
		assert.Equal(t, 1, sum.Kids)
		assert.Equal(t, 1, sum.Adults)

		c := newComposer(t, resolver(t))
		art, err := c.GenerateItinerary(ctx, rec, "itinerary_INV-2024-001_01052024", "")
		require.NoError(t, err)
		require.Equal(t, []string{PageSummary, PageMasterlist, TourPage("tour-a"), PageTerms}, labels(art.Pages))

		first := texts(art.Pages[0])
		assert.Contains(t, first, "Invoice Number: INV-2024-001")
		assert.Contains(t, first, "Date: Jan 05, 2024")
		for _, want := range []string{"El Nido Tour A", "P 1,000", "Convenience Fee", "P 50", "Grand Total", "P 1,050"} {
			assert.Contains(t, first, want)
		}
		assert.Contains(t, first, "Confirmation is due 5 days from the invoice date")

		var images int
		for _, b := range art.Pages[0].Blocks {
			if b.Kind == "image" {
				images++
			}
		}
		assert.Equal(t, 3, images)
	})

	t.Run("LongTourTablePushesFooter", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		rec := roundTripRecord()
		rec.BookedTours = nil
		for i := 0; i < 30; i++ {
			rec.BookedTours = append(rec.BookedTours, tour("tour-a", "El Nido Tour A", "1000"))
		}

		art, err := c.GenerateItinerary(ctx, rec, "out", "")
		require.NoError(t, err)
		got := labels(art.Pages)
		assert.Greater(t, len(got), 4)
		assert.Equal(t, PageSummary, got[0])
		assert.Equal(t, PageSummary, got[1])
	})

	t.Run("Background", func(t *testing.T) {
		c := newComposer(t, resolver(t), WithImages(Images{Background: "images/background.png"}))
		art, err := c.GenerateItinerary(ctx, roundTripRecord(), "out", "")
		require.NoError(t, err)
		for _, p := range art.Pages {
			require.NotEmpty(t, p.Blocks)
			assert.Equal(t, "background", p.Blocks[0].Kind)
		}
	})

	t.Run("MissingAsset", func(t *testing.T) {
		c := newComposer(t, resolver(t), WithImages(Images{Logo: "images/missing.png"}))
		art, err := c.GenerateItinerary(ctx, roundTripRecord(), "out", "")
		assert.Nil(t, art)
		assert.ErrorIs(t, err, ErrAsset)
		assert.ErrorIs(t, err, assets.ErrMissing)

		var gerr *GenerationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "INV-2024-001", gerr.Reference)
		assert.Equal(t, StageInit, gerr.Stage)
	})

	t.Run("EncoderFailure", func(t *testing.T) {
		src := &countingAssets{AssetSource: resolver(t)}
		loc, err := time.LoadLocation("Asia/Manila")
		require.NoError(t, err)
		c := New(src, failingEncoder{}, verifyURL, WithLayout(sections.DefaultLayout(format.New(loc))))

		art, err := c.GenerateItinerary(ctx, roundTripRecord(), "out", "")
		assert.Nil(t, art)
		assert.ErrorIs(t, err, ErrEncoding)
		assert.ErrorIs(t, err, errEncoder)
		assert.Zero(t, src.calls)

		var gerr *GenerationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, StageEncode, gerr.Stage)
	})

	t.Run("MissingReference", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		_, err := c.GenerateItinerary(ctx, booking.Record{}, "out", "")
		assert.ErrorIs(t, err, ErrInput)
	})

	t.Run("Independent", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		a, err := c.GenerateItinerary(ctx, roundTripRecord(), "a", "")
		require.NoError(t, err)
		b, err := c.GenerateItinerary(ctx, roundTripRecord(), "b", "")
		require.NoError(t, err)
		assert.Equal(t, labels(a.Pages), labels(b.Pages))
	})
}

func TestGenerateTourDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("SectionPerPage", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		art, err := c.GenerateTourDetails(ctx, []Section{
			{Title: "Tour A", HTMLContent: "<p>Big Lagoon</p><ul><li>Lunch</li><li>Snorkel</li></ul>"},
			{Title: "Inclusions", HTMLContent: "<p>Boat <b>and</b> guide</p>"},
		}, "Tour Details", "")
		require.NoError(t, err)

		assert.Equal(t, []string{SectionPage(0), SectionPage(1)}, labels(art.Pages))
		assert.Equal(t, []string{"Tour A", "Big Lagoon", "- Lunch", "- Snorkel"}, texts(art.Pages[0]))
		assert.Equal(t, []string{"Inclusions", "Boat and guide"}, texts(art.Pages[1]))
		assert.Equal(t, "Tour Details", art.Filename)
		assert.True(t, bytes.HasPrefix(art.Bytes, []byte("%PDF-")))
	})

	t.Run("NoSections", func(t *testing.T) {
		c := newComposer(t, resolver(t))
		_, err := c.GenerateTourDetails(ctx, nil, "empty", "")
		assert.ErrorIs(t, err, ErrInput)
	})
}
