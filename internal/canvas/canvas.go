// Package canvas is the page-oriented drawing surface the document composer
// writes into. A Canvas is owned by exactly one composition and is not safe
// for concurrent use.
package canvas

import (
	"errors"
	"fmt"
	"io"

	"github.com/signintech/gopdf"
)

const MediaType = "application/pdf"

var (
	ErrClosed       = errors.New("canvas: closed for writes")
	ErrNoPage       = errors.New("canvas: no page added")
	ErrNotFinalized = errors.New("canvas: not finalized")
	ErrOverflow     = errors.New("canvas: content crosses the bottom margin")
	ErrUnknownFont  = errors.New("canvas: font not registered")
)

// Profile is a page size and margin in points.
type Profile struct {
	Name   string
	Width  float64
	Height float64
	Margin float64
}

var (
	A7 = Profile{Name: "A7", Width: 209.76, Height: 297.64, Margin: 30}
	A4 = Profile{Name: "A4", Width: 595.28, Height: 841.89, Margin: 40}
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Color struct {
	R, G, B uint8
}

var (
	Black     = Color{}
	LightGray = Color{R: 230, G: 230, B: 230}
)

// Style selects a registered font, its size and the text color.
type Style struct {
	Font  string
	Size  float64
	Color Color
}

// LineHeight is the vertical advance of one line set in s.
func (s Style) LineHeight() float64 {
	return s.Size * 1.2
}

// Block is one positioned element written onto a page.
type Block struct {
	Kind string
	X, Y float64
	Text string
}

// Page records what was written onto one page, in write order.
type Page struct {
	Label  string
	Blocks []Block
}

type Canvas struct {
	pdf        *gopdf.GoPdf
	profile    Profile
	fonts      map[string]struct{}
	background gopdf.ImageHolder
	guard      bool
	x, y       float64
	pages      []Page
	closed     bool
}

func New(p Profile) *Canvas {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: p.Width, H: p.Height},
	})
	return &Canvas{
		pdf:     pdf,
		profile: p,
		fonts:   make(map[string]struct{}),
		guard:   true,
	}
}

func (c *Canvas) Profile() Profile {
	return c.profile
}

// RegisterFont makes a TrueType font available under name.
func (c *Canvas) RegisterFont(name string, ttf []byte) error {
	if err := c.writable(); err != nil {
		return err
	}
	if err := c.pdf.AddTTFFontData(name, ttf); err != nil {
		return fmt.Errorf("register font %q: %w", name, err)
	}
	c.fonts[name] = struct{}{}
	return nil
}

// SetBackground paints img across every page added afterwards.
func (c *Canvas) SetBackground(img []byte) error {
	if err := c.writable(); err != nil {
		return err
	}
	holder, err := imageHolder(img)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}
	c.background = holder
	return nil
}

// AddPage starts a new page labelled label and moves the cursor to the top
// left margin.
func (c *Canvas) AddPage(label string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.pdf.AddPage()
	c.pages = append(c.pages, Page{Label: label})
	if c.background != nil {
		if err := c.pdf.ImageByHolder(c.background, 0, 0, &gopdf.Rect{W: c.profile.Width, H: c.profile.Height}); err != nil {
			return fmt.Errorf("paint background: %w", err)
		}
		c.record("background", 0, 0, "")
	}
	c.x, c.y = c.profile.Margin, c.profile.Margin
	return nil
}

func (c *Canvas) PageCount() int {
	return len(c.pages)
}

// Pages returns a copy of the page outline.
func (c *Canvas) Pages() []Page {
	out := make([]Page, len(c.pages))
	for i, p := range c.pages {
		out[i] = Page{Label: p.Label, Blocks: append([]Block(nil), p.Blocks...)}
	}
	return out
}

func (c *Canvas) Top() float64 {
	return c.profile.Margin
}

func (c *Canvas) Left() float64 {
	return c.profile.Margin
}

// Bottom is the lowest y content may reach. With the bottom guard disabled it
// is the page edge.
func (c *Canvas) Bottom() float64 {
	if c.guard {
		return c.profile.Height - c.profile.Margin
	}
	return c.profile.Height
}

// SetBottomGuard toggles the bottom margin and returns the previous setting.
func (c *Canvas) SetBottomGuard(on bool) bool {
	prev := c.guard
	c.guard = on
	return prev
}

func (c *Canvas) X() float64 { return c.x }
func (c *Canvas) Y() float64 { return c.y }

func (c *Canvas) MoveTo(x, y float64) {
	c.x, c.y = x, y
}

// Text writes text at (x, y), wrapping at width when width is positive, and
// returns the height consumed. The cursor ends below the text. Text that
// would end below Bottom fails with ErrOverflow and nothing is written.
func (c *Canvas) Text(st Style, x, y, width float64, text string, align Align) (float64, error) {
	if err := c.drawable(); err != nil {
		return 0, err
	}
	lines, err := c.Lines(st, width, text)
	if err != nil {
		return 0, err
	}
	lh := st.LineHeight()
	height := float64(len(lines)) * lh
	if err := c.within(y + height); err != nil {
		return 0, err
	}
	c.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)

	for i, line := range lines {
		if line == "" {
			continue
		}
		w := width
		if w <= 0 {
			if w, err = c.pdf.MeasureTextWidth(line); err != nil {
				return 0, fmt.Errorf("measure %q: %w", line, err)
			}
		}
		c.pdf.SetXY(x, y+float64(i)*lh)
		opt := gopdf.CellOption{Align: cellAlign(align) | gopdf.Top}
		if err := c.pdf.CellWithOption(&gopdf.Rect{W: w, H: lh}, line, opt); err != nil {
			return 0, fmt.Errorf("write %q: %w", line, err)
		}
	}
	c.record("text", x, y, text)
	c.x, c.y = x, y+height
	return height, nil
}

// Measure returns the height text would take when written with Text.
func (c *Canvas) Measure(st Style, width float64, text string) (float64, error) {
	lines, err := c.Lines(st, width, text)
	if err != nil {
		return 0, err
	}
	return float64(len(lines)) * st.LineHeight(), nil
}

// Image draws img scaled into the w×h box at (x, y).
func (c *Canvas) Image(img []byte, x, y, w, h float64) error {
	if err := c.drawable(); err != nil {
		return err
	}
	if err := c.within(y + h); err != nil {
		return err
	}
	holder, err := imageHolder(img)
	if err != nil {
		return err
	}
	if err := c.pdf.ImageByHolder(holder, x, y, &gopdf.Rect{W: w, H: h}); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	c.record("image", x, y, "")
	return nil
}

// Rule strokes a line from (x1, y1) to (x2, y2).
func (c *Canvas) Rule(x1, y1, x2, y2, width float64) error {
	if err := c.drawable(); err != nil {
		return err
	}
	c.pdf.SetLineWidth(width)
	c.pdf.SetStrokeColor(0, 0, 0)
	c.pdf.Line(x1, y1, x2, y2)
	return nil
}

// Fill paints a solid rectangle with its upper left corner at (x, y).
func (c *Canvas) Fill(x, y, w, h float64, col Color) error {
	if err := c.drawable(); err != nil {
		return err
	}
	c.pdf.SetFillColor(col.R, col.G, col.B)
	c.pdf.RectFromUpperLeftWithStyle(x, y, w, h, "F")
	return nil
}

// Finalize closes the canvas for writes. It is the terminal state.
func (c *Canvas) Finalize() error {
	if len(c.pages) == 0 {
		return ErrNoPage
	}
	c.closed = true
	return nil
}

func (c *Canvas) Closed() bool {
	return c.closed
}

// WriteTo serializes the finalized document.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	if !c.closed {
		return 0, ErrNotFinalized
	}
	return c.pdf.WriteTo(w)
}

// Stream emits the finalized document through a pipe. Closing the returned
// reader early makes the writer stop with io.ErrClosedPipe.
func (c *Canvas) Stream() io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := c.WriteTo(pw)
		pw.CloseWithError(err)
	}()
	return pr
}

func (c *Canvas) writable() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Canvas) drawable() error {
	if err := c.writable(); err != nil {
		return err
	}
	if len(c.pages) == 0 {
		return ErrNoPage
	}
	return nil
}

func (c *Canvas) within(bottom float64) error {
	if bottom > c.Bottom() {
		return fmt.Errorf("%w: %.2f > %.2f", ErrOverflow, bottom, c.Bottom())
	}
	return nil
}

func (c *Canvas) record(kind string, x, y float64, text string) {
	p := &c.pages[len(c.pages)-1]
	p.Blocks = append(p.Blocks, Block{Kind: kind, X: x, Y: y, Text: text})
}

func cellAlign(a Align) int {
	switch a {
	case AlignCenter:
		return gopdf.Center
	case AlignRight:
		return gopdf.Right
	default:
		return gopdf.Left
	}
}
