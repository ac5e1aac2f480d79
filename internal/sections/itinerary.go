package sections

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/canvas"
	"github.com/ztoursph/booking-api/internal/table"
)

// Masthead positions inside the masthead section.
const (
	mastheadInvoiceDY = 10
	mastheadDateDY    = 13
	mastheadImageDY   = -2
	mastheadLogoDX    = 60
	mastheadLogoSize  = 14
	mastheadCodeDX    = 78
	mastheadCodeSize  = 18
)

const contactWidth = 50

var contactLineDY = [4]float64{0, 7, 10.5, 14}

const (
	guestLabelCenter = 160 / 2
	guestLabelWidth  = 55
)

// Guest summary rows. Labels sit on the left anchor; values sit at the
// label's value offset.
const (
	summaryRowDY        = 5
	summaryValueWidth   = 80
	summaryRightDX      = -40
	summaryRightValueDX = 22
	summaryRightValueW  = 45
)

// Footer positions relative to the bottom anchor.
const (
	footerTermsWidth     = 70
	footerNoticeDY       = 6
	footerPreparerDX     = -30
	footerPreparedByDY   = -3
	footerNameDY         = 2
	footerTitleDY        = 6
	footerPreparerWidth  = 40
	footerSignatureDY    = -1
	footerSignatureH     = 8
	footerSignatureWidth = 40
)

// Tour table columns.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldTime        = "time"
	FieldSubtotal    = "subtotal"
)

type MastheadData struct {
	Title         string
	InvoiceNumber string
	Issued        time.Time
	Code          []byte
	Logo          []byte
}

// Masthead writes the document title, invoice number, issue date, logo and
// the scannable booking code.
func Masthead(c *canvas.Canvas, l *Layout, at Offset, d MastheadData) error {
	x, y := l.MarginX+at.X, l.MarginY+at.Y
	title := d.Title
	if title == "" {
		title = "Itinerary"
	}
	if _, err := c.Text(canvas.Style{Font: l.Fonts.Mono, Size: l.Sizes.Large}, x, y, 0, title, canvas.AlignLeft); err != nil {
		return err
	}
	if _, err := c.Text(l.regular(l.Sizes.Default), x, y+mastheadInvoiceDY, 0, "Invoice Number: "+d.InvoiceNumber, canvas.AlignLeft); err != nil {
		return err
	}
	if _, err := c.Text(l.regular(l.Sizes.Default), x, y+mastheadDateDY, 0, "Date: "+l.Format.Date(d.Issued), canvas.AlignLeft); err != nil {
		return err
	}
	if len(d.Logo) > 0 {
		if err := c.Image(d.Logo, x+mastheadLogoDX, y+mastheadImageDY, mastheadLogoSize, mastheadLogoSize); err != nil {
			return fmt.Errorf("logo: %w", err)
		}
	}
	if len(d.Code) > 0 {
		if err := c.Image(d.Code, x+mastheadCodeDX, y+mastheadImageDY, mastheadCodeSize, mastheadCodeSize); err != nil {
			return fmt.Errorf("scan code: %w", err)
		}
	}
	return nil
}

// Contact writes the issuer's address and contact numbers.
func Contact(c *canvas.Canvas, l *Layout, at Offset) error {
	x, y := l.JustifyEnd+at.X, l.MarginY+at.Y
	lines := [4]string{
		l.Issuer.Address,
		"Email: " + l.Issuer.Email,
		"Whatsapp: " + l.Issuer.Whatsapp,
		"Office number: " + l.Issuer.Office,
	}
	for i, text := range lines {
		if _, err := c.Text(l.regular(l.Sizes.Default), x, y+contactLineDY[i], contactWidth, text, canvas.AlignLeft); err != nil {
			return err
		}
	}
	return nil
}

// GuestSummaryLabel writes the centered "Guest Information" caption. The
// horizontal offset moves it left of the page center.
func GuestSummaryLabel(c *canvas.Canvas, l *Layout, at Offset) error {
	_, err := c.Text(l.heading(), guestLabelCenter-at.X, l.MarginY+at.Y, guestLabelWidth, "Guest Information", canvas.AlignCenter)
	return err
}

type GuestSummaryData struct {
	LeadGuest   string
	Quantity    int
	Adults      int
	Kids        int
	Nationality string
	Email       string
	Contact     string
	BookingDate time.Time
	Reference   string
	TourDate    time.Time
}

// SummaryOf derives the guest summary values of a booking.
func SummaryOf(r booking.Record, s booking.Summary) GuestSummaryData {
	d := GuestSummaryData{
		LeadGuest:   s.LeadGuestName,
		Quantity:    len(s.Masterlist),
		Adults:      s.Adults,
		Kids:        s.Kids,
		Nationality: nationalities(r, s.Masterlist),
		Email:       r.Email,
		Contact:     r.ContactNumbers(),
		BookingDate: r.BookingDate,
		Reference:   r.ReferenceNumber,
	}
	for _, t := range r.BookedTours {
		if d.TourDate.IsZero() || (!t.Date.IsZero() && t.Date.Before(d.TourDate)) {
			d.TourDate = t.Date
		}
	}
	return d
}

func nationalities(r booking.Record, guests []booking.Guest) string {
	var out []string
	seen := make(map[string]struct{})
	for _, g := range guests {
		n := strings.TrimSpace(g.Nationality)
		if n == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(n)]; ok {
			continue
		}
		seen[strings.ToLower(n)] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return r.Nationality
	}
	return strings.Join(out, "/")
}

type summaryField struct {
	label   string
	valueDX float64
	value   string
}

// GuestSummary writes the labelled booking values: lead guest, counts,
// nationality and contact details on the left, dates and reference on the
// right.
func GuestSummary(c *canvas.Canvas, l *Layout, at Offset, d GuestSummaryData) error {
	x, y := l.MarginX+at.X, l.MarginY+at.Y
	left := []summaryField{
		{"Lead Guest Name:", 36, d.LeadGuest},
		{"Quantity:", 19, strconv.Itoa(d.Quantity)},
		{"Adult:", 13, strconv.Itoa(d.Adults)},
		{"Minor/Kid:", 20, strconv.Itoa(d.Kids)},
		{"Nationality:", 23, orNA(d.Nationality)},
		{"Email:", 13, orNA(d.Email)},
		{"Contact Number:", 33, orNA(d.Contact)},
	}
	for i, f := range left {
		if err := field(c, l, x, y+float64(i)*summaryRowDY, f, summaryValueWidth); err != nil {
			return err
		}
	}

	rx := l.JustifyEnd + at.X + summaryRightDX
	right := []summaryField{
		{"Tour Date:", summaryRightValueDX, orNA(l.Format.Date(d.TourDate))},
		{"Booked:", summaryRightValueDX, orNA(l.Format.Date(d.BookingDate))},
		{"Reference:", summaryRightValueDX, orNA(d.Reference)},
	}
	for i, f := range right {
		if err := field(c, l, rx, y+float64(i)*summaryRowDY, f, summaryRightValueW); err != nil {
			return err
		}
	}
	return nil
}

func field(c *canvas.Canvas, l *Layout, x, y float64, f summaryField, width float64) error {
	if _, err := c.Text(l.bold(l.Sizes.Medium), x, y, 0, f.label, canvas.AlignLeft); err != nil {
		return err
	}
	_, err := c.Text(l.regular(l.Sizes.Medium), x+f.valueDX, y, width, f.value, canvas.AlignLeft)
	return err
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// TourColumns are the booked-tour table columns.
func TourColumns(l *Layout) []table.Column {
	return []table.Column{
		{Label: "Date", Field: FieldDate, Width: 30, Render: l.dateCell},
		{Label: "Description", Field: FieldDescription, Width: 80},
		{Label: "Time", Field: FieldTime, Width: 35},
		{Label: "Sub-Total", Field: FieldSubtotal, Width: 30, Align: canvas.AlignRight, Render: l.currencyCell},
	}
}

// TourRows lists one row per booked tour in booking order followed by the
// convenience fee row and the grand total row.
func TourRows(r booking.Record) []table.Row {
	rows := make([]table.Row, 0, len(r.BookedTours)+2)
	for _, t := range r.BookedTours {
		rows = append(rows, table.Row{
			FieldDate:        t.Date,
			FieldDescription: t.Title,
			FieldTime:        t.PickupTime,
			FieldSubtotal:    t.Subtotal,
		})
	}
	return append(rows,
		table.Row{FieldTime: "Convenience Fee", FieldSubtotal: r.Fees},
		table.Row{FieldTime: "Grand Total", FieldSubtotal: r.GrandTotal},
	)
}

// TourTable writes the booked-tour table and returns the y below it. Rows
// that do not fit continue on pages labelled label.
func TourTable(c *canvas.Canvas, l *Layout, at Offset, r booking.Record, label string) (float64, error) {
	return table.Render(c, TourColumns(l), TourRows(r), l.tableLayout(l.MarginX+at.X, l.MarginY+at.Y, label))
}

func (l *Layout) tableLayout(x, y float64, label string) table.Layout {
	return table.Layout{
		X:                   x,
		Y:                   y,
		PageBreakOnOverflow: true,
		PageLabel:           label,
		Header:              l.regular(l.Sizes.Medium),
		Row:                 l.regular(l.Sizes.Default),
		Padding:             1,
		HeaderFill:          &canvas.LightGray,
		RuleWidth:           0.2,
	}
}

func (l *Layout) dateCell(v any) string {
	if t, ok := v.(time.Time); ok {
		return l.Format.Date(t)
	}
	return table.Text(v)
}

func (l *Layout) currencyCell(v any) string {
	if d, ok := v.(decimal.Decimal); ok {
		return l.Format.Currency(d)
	}
	return table.Text(v)
}

// FooterTop is the highest y the footer writes to when placed at at.
func FooterTop(l *Layout, at Offset) float64 {
	return l.AlignEnd + at.Y + min(footerPreparedByDY, footerSignatureDY)
}

// Footer writes the confirmation notice and the preparer block near the
// page edge. The bottom guard is lifted while it writes and restored after.
func Footer(c *canvas.Canvas, l *Layout, at Offset, signature []byte) error {
	prev := c.SetBottomGuard(false)
	defer c.SetBottomGuard(prev)

	x, y := l.MarginX+at.X, l.AlignEnd+at.Y
	px := l.JustifyEnd + at.X + footerPreparerDX
	if _, err := c.Text(l.bold(l.Sizes.Medium), x, y, footerTermsWidth, "Term and Conditions:", canvas.AlignLeft); err != nil {
		return err
	}
	notice := fmt.Sprintf("Confirmation is due %d days from the invoice date", l.ConfirmationDays)
	if _, err := c.Text(l.regular(l.Sizes.Default), x, y+footerNoticeDY, footerTermsWidth, notice, canvas.AlignLeft); err != nil {
		return err
	}
	if _, err := c.Text(l.regular(l.Sizes.Default), px, y+footerPreparedByDY, footerTermsWidth, "Prepared by :", canvas.AlignLeft); err != nil {
		return err
	}
	if len(signature) > 0 {
		if err := c.Image(signature, px, y+footerSignatureDY, footerSignatureWidth, footerSignatureH); err != nil {
			return fmt.Errorf("signature: %w", err)
		}
	}
	if _, err := c.Text(l.bold(l.Sizes.Medium), px, y+footerNameDY, footerPreparerWidth, l.Preparer.Name, canvas.AlignCenter); err != nil {
		return err
	}
	_, err := c.Text(l.regular(l.Sizes.Default), px, y+footerTitleDY, footerPreparerWidth, l.Preparer.Title, canvas.AlignCenter)
	return err
}
