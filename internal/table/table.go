// Package table renders row grids onto a canvas, breaking onto new pages
// when rows run past the bottom margin.
package table

import (
	"errors"
	"fmt"

	"github.com/ztoursph/booking-api/internal/canvas"
)

var (
	ErrNoColumns  = errors.New("table: no columns")
	ErrRowTooTall = errors.New("table: row taller than a page")
)

// Renderer turns a cell value into display text.
type Renderer func(v any) string

// Column describes one table column. Field names the Row key the cell is
// read from.
type Column struct {
	Label  string
	Field  string
	Width  float64
	Align  canvas.Align
	Render Renderer
}

func (c Column) text(row Row) string {
	v := row[c.Field]
	if c.Render != nil {
		return c.Render(v)
	}
	return Text(v)
}

// Row maps column fields to raw cell values. Summary rows are ordinary rows
// with empty values in unused columns.
type Row map[string]any

// Layout positions a table and selects the header and row styles.
type Layout struct {
	X float64
	Y float64
	// FromCursor starts the table at the canvas cursor instead of Y.
	FromCursor bool
	// PageBreakOnOverflow starts a new page labelled PageLabel and repeats
	// the header when the next row would cross the bottom margin. Without it
	// an overflowing row fails with canvas.ErrOverflow.
	PageBreakOnOverflow bool
	PageLabel           string
	Header              canvas.Style
	Row                 canvas.Style
	Padding             float64
	// HeaderFill shades the header row when set.
	HeaderFill *canvas.Color
	RuleWidth  float64
}

// Text is the default renderer.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Width sums the column widths.
func Width(cols []Column) float64 {
	var w float64
	for _, c := range cols {
		w += c.Width
	}
	return w
}

// Render writes the header and rows and returns the y just below the last
// row, on whatever page the table ended.
func Render(c *canvas.Canvas, cols []Column, rows []Row, l Layout) (float64, error) {
	if len(cols) == 0 {
		return 0, ErrNoColumns
	}
	y := l.Y
	if l.FromCursor {
		y = c.Y()
	}

	header := make(Row, len(cols))
	labels := make([]Column, len(cols))
	for i, col := range cols {
		header[col.Field] = col.Label
		labels[i] = Column{Field: col.Field, Width: col.Width, Align: col.Align}
	}

	drawHeader := func() error {
		h, err := rowHeight(c, labels, header, l.Header, l.Padding)
		if err != nil {
			return err
		}
		if l.HeaderFill != nil {
			if err := c.Fill(l.X, y, Width(cols), h, *l.HeaderFill); err != nil {
				return err
			}
		}
		if err := drawRow(c, labels, header, l.Header, l.X, y, l.Padding); err != nil {
			return fmt.Errorf("header: %w", err)
		}
		y += h
		return c.Rule(l.X, y, l.X+Width(cols), y, l.RuleWidth)
	}

	if l.PageBreakOnOverflow && y > c.Top() {
		// The header never sits alone at the foot of a page.
		need, err := rowHeight(c, labels, header, l.Header, l.Padding)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 {
			first, err := rowHeight(c, cols, rows[0], l.Row, l.Padding)
			if err != nil {
				return 0, fmt.Errorf("row 0: %w", err)
			}
			need += first
		}
		if y+need > c.Bottom() {
			if err := c.AddPage(l.PageLabel); err != nil {
				return 0, err
			}
			y = c.Top()
		}
	}
	if err := drawHeader(); err != nil {
		return 0, err
	}
	for i, row := range rows {
		h, err := rowHeight(c, cols, row, l.Row, l.Padding)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		if l.PageBreakOnOverflow && y+h > c.Bottom() {
			if err := c.AddPage(l.PageLabel); err != nil {
				return 0, err
			}
			y = c.Top()
			if err := drawHeader(); err != nil {
				return 0, err
			}
			if y+h > c.Bottom() {
				return 0, fmt.Errorf("row %d: %w", i, ErrRowTooTall)
			}
		}
		if err := drawRow(c, cols, row, l.Row, l.X, y, l.Padding); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		y += h
		if err := c.Rule(l.X, y, l.X+Width(cols), y, l.RuleWidth); err != nil {
			return 0, err
		}
	}
	c.MoveTo(l.X, y)
	return y, nil
}

func rowHeight(c *canvas.Canvas, cols []Column, row Row, st canvas.Style, pad float64) (float64, error) {
	h := st.LineHeight()
	for _, col := range cols {
		mh, err := c.Measure(st, col.Width-2*pad, col.text(row))
		if err != nil {
			return 0, err
		}
		h = max(h, mh)
	}
	return h + 2*pad, nil
}

func drawRow(c *canvas.Canvas, cols []Column, row Row, st canvas.Style, x, y, pad float64) error {
	for _, col := range cols {
		if text := col.text(row); text != "" {
			if _, err := c.Text(st, x+pad, y+pad, col.Width-2*pad, text, col.Align); err != nil {
				return fmt.Errorf("column %q: %w", col.Field, err)
			}
		}
		x += col.Width
	}
	return nil
}
