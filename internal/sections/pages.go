package sections

import (
	"strconv"
	"strings"

	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/canvas"
	"github.com/ztoursph/booking-api/internal/table"
)

// Gap between a page heading and the block below it.
const headingGap = 4

const (
	FieldNo          = "no"
	FieldName        = "name"
	FieldAge         = "age"
	FieldNationality = "nationality"
)

// GuestColumns are the roster table columns shared by the masterlist and
// per-tour pages.
func GuestColumns() []table.Column {
	return []table.Column{
		{Label: "#", Field: FieldNo, Width: 10, Align: canvas.AlignRight},
		{Label: "Name", Field: FieldName, Width: 85},
		{Label: "Age", Field: FieldAge, Width: 20, Align: canvas.AlignCenter},
		{Label: "Nationality", Field: FieldNationality, Width: 60},
	}
}

// GuestRows lists one row per guest in the given order.
func GuestRows(guests []booking.Guest) []table.Row {
	rows := make([]table.Row, len(guests))
	for i, g := range guests {
		rows[i] = table.Row{
			FieldNo:          strconv.Itoa(i + 1),
			FieldName:        g.FullName(),
			FieldAge:         strconv.Itoa(g.Age),
			FieldNationality: g.Nationality,
		}
	}
	return rows
}

// Masterlist writes the full guest roster on the current page. The caller
// starts the page; continuation pages are labelled label.
func Masterlist(c *canvas.Canvas, l *Layout, guests []booking.Guest, label string) error {
	return roster(c, l, "Masterlist", "", guests, label)
}

// TourGuests writes one booked tour's heading and guest roster.
func TourGuests(c *canvas.Canvas, l *Layout, r booking.TourRoster, label string) error {
	var sub []string
	if d := l.Format.Date(r.Tour.Date); d != "" {
		sub = append(sub, "Date: "+d)
	}
	if r.Tour.PickupTime != "" {
		sub = append(sub, "Pickup: "+r.Tour.PickupTime)
	}
	sub = append(sub, "Pax: "+strconv.Itoa(len(r.Guests)))
	return roster(c, l, r.Tour.Title, strings.Join(sub, "   "), r.Guests, label)
}

func roster(c *canvas.Canvas, l *Layout, title, sub string, guests []booking.Guest, label string) error {
	x := l.MarginX
	if err := Flow(c, l, l.heading(), l.MarginY, title, label); err != nil {
		return err
	}
	if sub != "" {
		if err := Flow(c, l, l.regular(l.Sizes.Default), c.Y(), sub, label); err != nil {
			return err
		}
	}
	tl := l.tableLayout(x, c.Y()+headingGap, label)
	_, err := table.Render(c, GuestColumns(), GuestRows(guests), tl)
	return err
}

// Terms writes the static terms-and-conditions page, flowing onto further
// pages labelled label when the text runs past the bottom margin.
func Terms(c *canvas.Canvas, l *Layout, label string) error {
	if err := Flow(c, l, l.heading(), l.MarginY, "Terms and Conditions", label); err != nil {
		return err
	}
	return Flow(c, l, l.regular(l.Sizes.Default), c.Y()+headingGap, l.Terms, label)
}

// Detail writes a titled block of plain text, as used by the tour-details
// document.
func Detail(c *canvas.Canvas, l *Layout, title, body, label string) error {
	if err := Flow(c, l, l.heading(), l.MarginY, title, label); err != nil {
		return err
	}
	return Flow(c, l, l.regular(l.Sizes.Medium), c.Y()+headingGap, body, label)
}

// Flow writes text line by line from y at the left anchor, starting a new
// page labelled label whenever the next line would cross the bottom margin.
func Flow(c *canvas.Canvas, l *Layout, st canvas.Style, y float64, text, label string) error {
	lines, err := c.Lines(st, l.ContentWidth(), text)
	if err != nil {
		return err
	}
	lh := st.LineHeight()
	for _, line := range lines {
		if y+lh > c.Bottom() {
			if err := c.AddPage(label); err != nil {
				return err
			}
			y = l.MarginY
		}
		if line != "" {
			if _, err := c.Text(st, l.MarginX, y, 0, line, canvas.AlignLeft); err != nil {
				return err
			}
		}
		y += lh
	}
	c.MoveTo(l.MarginX, y)
	return nil
}
