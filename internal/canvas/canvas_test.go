package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

var body = Style{Font: "regular", Size: 4}

func newCanvas(t *testing.T) *Canvas {
	t.Helper()
	c := New(A7)
	require.NoError(t, c.RegisterFont("regular", goregular.TTF))
	return c
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.NRGBA{R: 200, A: 128})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCanvasLifecycle(t *testing.T) {
	c := newCanvas(t)

	_, err := c.Text(body, 10, 10, 0, "too early", AlignLeft)
	assert.ErrorIs(t, err, ErrNoPage)
	assert.ErrorIs(t, c.Finalize(), ErrNoPage)

	require.NoError(t, c.AddPage("first"))
	assert.Equal(t, A7.Margin, c.X())
	assert.Equal(t, A7.Margin, c.Y())

	h, err := c.Text(body, 15, 20, 0, "Itinerary", AlignLeft)
	require.NoError(t, err)
	assert.InDelta(t, body.LineHeight(), h, 0.001)
	assert.InDelta(t, 20+h, c.Y(), 0.001)

	require.NoError(t, c.AddPage("second"))
	require.NoError(t, c.Image(pngBytes(t), 10, 10, 20, 20))
	require.NoError(t, c.Rule(10, 40, 100, 40, 0.5))
	require.NoError(t, c.Fill(10, 50, 20, 5, LightGray))

	pages := c.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "first", pages[0].Label)
	require.Len(t, pages[0].Blocks, 1)
	assert.Equal(t, "Itinerary", pages[0].Blocks[0].Text)
	assert.Equal(t, "image", pages[1].Blocks[0].Kind)

	var early bytes.Buffer
	_, err = c.WriteTo(&early)
	assert.ErrorIs(t, err, ErrNotFinalized)

	require.NoError(t, c.Finalize())
	assert.True(t, c.Closed())
	assert.ErrorIs(t, c.AddPage("late"), ErrClosed)
	_, err = c.Text(body, 0, 0, 0, "late", AlignLeft)
	assert.ErrorIs(t, err, ErrClosed)

	var out bytes.Buffer
	n, err := c.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestCanvasStream(t *testing.T) {
	t.Run("Finalized", func(t *testing.T) {
		c := newCanvas(t)
		require.NoError(t, c.AddPage("only"))
		require.NoError(t, c.Finalize())

		rc := c.Stream()
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})

	t.Run("NotFinalized", func(t *testing.T) {
		c := newCanvas(t)
		require.NoError(t, c.AddPage("only"))

		rc := c.Stream()
		defer rc.Close()
		_, err := io.ReadAll(rc)
		assert.ErrorIs(t, err, ErrNotFinalized)
	})
}

func TestCanvasLines(t *testing.T) {
	c := newCanvas(t)
	require.NoError(t, c.AddPage("p"))

	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Supercalifragilisticexpialidocious"
	lines, err := c.Lines(body, 40, text)
	require.NoError(t, err)
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		ok, err := c.fits(line, 40)
		require.NoError(t, err)
		assert.True(t, ok, "line %q overflows", line)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), ""), strings.ReplaceAll(strings.Join(lines, ""), " ", ""))

	h, err := c.Measure(body, 40, text)
	require.NoError(t, err)
	assert.InDelta(t, float64(len(lines))*body.LineHeight(), h, 0.001)

	lines, err = c.Lines(body, 0, "a\n\nb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, lines)

	_, err = c.Lines(Style{Font: "missing", Size: 4}, 40, "x")
	assert.ErrorIs(t, err, ErrUnknownFont)
}

func TestCanvasBottomGuard(t *testing.T) {
	c := newCanvas(t)
	assert.InDelta(t, A7.Height-A7.Margin, c.Bottom(), 0.001)

	prev := c.SetBottomGuard(false)
	assert.True(t, prev)
	assert.InDelta(t, A7.Height, c.Bottom(), 0.001)

	c.SetBottomGuard(prev)
	assert.InDelta(t, A7.Height-A7.Margin, c.Bottom(), 0.001)

	require.NoError(t, c.AddPage("p"))
	_, err := c.Text(body, 15, c.Bottom()-1, 0, "footer", AlignLeft)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorIs(t, c.Image(pngBytes(t), 15, c.Bottom()-1, 10, 10), ErrOverflow)
	assert.Empty(t, c.Pages()[0].Blocks)

	c.SetBottomGuard(false)
	_, err = c.Text(body, 15, A7.Height-A7.Margin-1, 0, "footer", AlignLeft)
	require.NoError(t, err)
	c.SetBottomGuard(true)
}

func TestCanvasBackground(t *testing.T) {
	c := newCanvas(t)
	require.NoError(t, c.SetBackground(pngBytes(t)))
	require.NoError(t, c.AddPage("a"))
	require.NoError(t, c.AddPage("b"))

	for _, p := range c.Pages() {
		require.NotEmpty(t, p.Blocks)
		assert.Equal(t, "background", p.Blocks[0].Kind)
	}

	assert.Error(t, c.SetBackground([]byte("not an image")))
}
