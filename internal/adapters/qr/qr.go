package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"

	"eventalbum/internal/domain"
)

const (
	// Width is the edge length of the rendered PNG in pixels.
	Width = 800
	// Margin is the quiet zone around the symbol, in modules.
	Margin = 2
)

var palette = color.Palette{color.White, color.Black}

type renderer struct {
	width  int
	margin int
	level  qrcode.RecoveryLevel
}

// NewRenderer returns a QRRenderer producing 800x800 black-on-white PNGs with a
// 2-module margin at recovery level Medium.
func NewRenderer() domain.QRRenderer {
	return &renderer{width: Width, margin: Margin, level: qrcode.Medium}
}

// Render encodes url as a QR code. The same input always yields the same bytes.
func (r *renderer) Render(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrEncodingFailed)
	}
	code, err := qrcode.New(url, r.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncodingFailed, err)
	}
	code.DisableBorder = true
	img := r.rasterize(code.Bitmap())

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncodingFailed, err)
	}
	return buf.Bytes(), nil
}

// rasterize maps each output pixel to a module, so the image is exactly r.width wide
// whatever the symbol version.
func (r *renderer) rasterize(bitmap [][]bool) *image.Paletted {
	size := len(bitmap)
	total := size + 2*r.margin
	img := image.NewPaletted(image.Rect(0, 0, r.width, r.width), palette)
	for py := 0; py < r.width; py++ {
		my := py*total/r.width - r.margin
		if my < 0 || my >= size {
			continue
		}
		row := bitmap[my]
		for px := 0; px < r.width; px++ {
			mx := px*total/r.width - r.margin
			if mx >= 0 && mx < size && row[mx] {
				img.SetColorIndex(px, py, 1)
			}
		}
	}
	return img
}
