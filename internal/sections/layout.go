// Package sections holds the positioned content blocks of the itinerary and
// tour-details documents. Every section writes into a caller-owned canvas at
// an offset from the layout's margins and shares nothing with other sections
// except the canvas itself.
package sections

import (
	"github.com/ztoursph/booking-api/internal/assets"
	"github.com/ztoursph/booking-api/internal/canvas"
	"github.com/ztoursph/booking-api/internal/format"
)

// Offset shifts a section away from its anchor.
type Offset struct {
	X, Y float64
}

type FontSizes struct {
	Small   float64
	Default float64
	Medium  float64
	Large   float64
}

type Fonts struct {
	Regular string
	Bold    string
	Mono    string
}

// Issuer is the contact block printed next to the masthead.
type Issuer struct {
	Address  string
	Email    string
	Whatsapp string
	Office   string
}

type Preparer struct {
	Name  string
	Title string
}

// Offsets places each itinerary section relative to the layout anchors.
type Offsets struct {
	Masthead     Offset
	Contact      Offset
	GuestLabel   Offset
	GuestSummary Offset
	Tours        Offset
	Footer       Offset
}

// Layout is the immutable configuration every section reads. It is shared
// by reference and never written after construction.
type Layout struct {
	Profile    canvas.Profile
	MarginX    float64
	MarginY    float64
	JustifyEnd float64
	AlignEnd   float64
	Sizes      FontSizes
	Fonts      Fonts
	Offsets    Offsets

	Issuer           Issuer
	Preparer         Preparer
	ConfirmationDays int
	Terms            string

	Format *format.Formatter
}

// DefaultLayout is the A7 itinerary layout.
func DefaultLayout(f *format.Formatter) *Layout {
	if f == nil {
		f = format.New(nil)
	}
	const marginX, marginY = 15, 20
	return &Layout{
		Profile:    canvas.A7,
		MarginX:    marginX,
		MarginY:    marginY,
		JustifyEnd: 160 + marginX,
		AlignEnd:   215 + marginY,
		Sizes:      FontSizes{Small: 2, Default: 3, Medium: 4, Large: 10},
		Fonts:      Fonts{Regular: assets.FontRegular, Bold: assets.FontBold, Mono: assets.FontMono},
		Offsets: Offsets{
			Masthead:     Offset{0, 0},
			Contact:      Offset{-40, 0},
			GuestLabel:   Offset{5, 20},
			GuestSummary: Offset{0, 30},
			Tours:        Offset{0, 75},
			Footer:       Offset{0, 30},
		},
		Issuer: Issuer{
			Address:  "RIZAL ST BRGY MALIGAYA EL NIDO, PALAWAN PHILIPPINES 5313",
			Email:    "ztoursph@gmail.com",
			Whatsapp: "+639664428625",
			Office:   "+639664428625",
		},
		Preparer:         Preparer{Name: "Jeo Invento", Title: "Operation Manager"},
		ConfirmationDays: 5,
		Terms:            DefaultTerms,
		Format:           f,
	}
}

// ContentWidth is the width between the left anchor and the right margin
// used by full-width blocks.
func (l *Layout) ContentWidth() float64 {
	return l.JustifyEnd - l.MarginX
}

func (l *Layout) regular(size float64) canvas.Style {
	return canvas.Style{Font: l.Fonts.Regular, Size: size}
}

func (l *Layout) bold(size float64) canvas.Style {
	return canvas.Style{Font: l.Fonts.Bold, Size: size}
}

func (l *Layout) heading() canvas.Style {
	return l.bold(l.Sizes.Medium + 2)
}

// DefaultTerms is the static body of the terms-and-conditions page.
const DefaultTerms = `Booking and confirmation
A booking is confirmed once the invoice is settled or the agreed down payment is received. Unconfirmed bookings may be released without notice after the confirmation due date.

Payment
Rates are quoted in Philippine Peso and include the services listed in this itinerary only. Environmental fees, entrance fees and personal expenses are not included unless stated.

Cancellation and changes
Cancellations made 7 days or more before the tour date are refundable less the convenience fee. Cancellations within 7 days of the tour date are not refundable. Date changes are subject to availability.

Weather and safety
Tours may be rerouted, rescheduled or cancelled when the Coast Guard or local authorities suspend sea travel. Guests are rebooked to the nearest available date or refunded in full when no date is available.

Pick up
Guests must be ready at the lobby of their accommodation at the pickup time shown. Guests who miss the pickup are considered no-shows.

Conduct
Guests are expected to follow the instructions of the tour guide and boat crew at all times. The operator is not liable for loss of personal belongings or injuries caused by disregard of safety instructions.`
