// Package scancode builds the booking lookup URL and encodes it as a QR image.
package scancode

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyPayload = errors.New("scancode: empty payload")

// Encoder turns a URL into raster image bytes.
type Encoder interface {
	Encode(ctx context.Context, payload string) ([]byte, error)
}

// QREncoder produces PNG QR codes.
type QREncoder struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func NewQREncoder(size int) *QREncoder {
	if size <= 0 {
		size = 256
	}
	return &QREncoder{Size: size, Level: qrcode.Medium}
}

func (e *QREncoder) Encode(_ context.Context, payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	png, err := qrcode.Encode(payload, e.Level, e.Size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// BookingURL embeds the reference number and email of a booking into base as
// query parameters. Existing query parameters on base are kept.
func BookingURL(base, reference, email string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse booking url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("booking url %q must be absolute", base)
	}
	q := u.Query()
	q.Set("reference", reference)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
