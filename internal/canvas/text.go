package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/signintech/gopdf"
	_ "golang.org/x/image/webp"
)

// Lines splits text into the lines Text would draw. Explicit newlines always
// break; with a positive width words are wrapped on the font's glyph metrics
// and words wider than the column are broken between runes.
func (c *Canvas) Lines(st Style, width float64, text string) ([]string, error) {
	if err := c.useFont(st); err != nil {
		return nil, err
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if width <= 0 || para == "" {
			out = append(out, para)
			continue
		}
		lines, err := c.wrap(para, width)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func (c *Canvas) useFont(st Style) error {
	if _, ok := c.fonts[st.Font]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFont, st.Font)
	}
	if err := c.pdf.SetFont(st.Font, "", st.Size); err != nil {
		return fmt.Errorf("set font %q: %w", st.Font, err)
	}
	return nil
}

func (c *Canvas) wrap(para string, width float64) ([]string, error) {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(para) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		fits, err := c.fits(candidate, width)
		if err != nil {
			return nil, err
		}
		if fits {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		if ok, err := c.fits(word, width); err != nil {
			return nil, err
		} else if ok {
			line = word
			continue
		}
		pieces, err := c.breakWord(word, width)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines, nil
}

func (c *Canvas) breakWord(word string, width float64) ([]string, error) {
	var (
		pieces  []string
		current []rune
	)
	for _, r := range word {
		next := append(current, r)
		ok, err := c.fits(string(next), width)
		if err != nil {
			return nil, err
		}
		if !ok && len(current) > 0 {
			pieces = append(pieces, string(current))
			next = []rune{r}
		}
		current = next
	}
	return append(pieces, string(current)), nil
}

func (c *Canvas) fits(s string, width float64) (bool, error) {
	w, err := c.pdf.MeasureTextWidth(s)
	if err != nil {
		return false, fmt.Errorf("measure %q: %w", s, err)
	}
	return w <= width, nil
}

// imageHolder flattens any decodable image onto white and re-encodes it as
// JPEG so every source format reaches the PDF the same way.
func imageHolder(data []byte) (gopdf.ImageHolder, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	flat := image.NewRGBA(b)
	draw.Draw(flat, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("convert %s image to jpeg: %w", format, err)
	}
	holder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("image holder: %w", err)
	}
	return holder, nil
}
