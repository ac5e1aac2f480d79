package scancode

import (
	"bytes"
	"context"
	"image/png"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingURL(t *testing.T) {
	raw, err := BookingURL("https://ztoursph.com/booking/verify?src=pdf", "INV-2024-001", "guest+1@example.com")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "/booking/verify", u.Path)
	assert.Equal(t, "INV-2024-001", u.Query().Get("reference"))
	assert.Equal(t, "guest+1@example.com", u.Query().Get("email"))
	assert.Equal(t, "pdf", u.Query().Get("src"))

	_, err = BookingURL("/relative/path", "INV", "a@b.c")
	assert.Error(t, err)
}

func TestQREncoder(t *testing.T) {
	enc := NewQREncoder(128)

	data, err := enc.Encode(context.Background(), "https://ztoursph.com/booking/verify?reference=INV-1")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = enc.Encode(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}
