package imagesource

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"dashhost/dashlink"
)

// Render converts fetched PNG bytes into the configured wire payload:
// either the PNG passed through untouched, or decoded, resampled to
// Width x Height and packed as RGB565.
type Render struct {
	Format    string // "png" (default) or "r565"
	Width     int
	Height    int
	SwapBytes bool
}

// Payload applies the conversion.
func (r Render) Payload(data []byte) ([]byte, error) {
	switch r.Format {
	case "", "png":
		return data, nil
	case "r565":
	default:
		return nil, fmt.Errorf("unknown image format %q", r.Format)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	if r.Width > 0 && r.Height > 0 {
		b := img.Bounds()
		if b.Dx() != r.Width || b.Dy() != r.Height {
			dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
			img = dst
		}
	}
	return dashlink.EncodeR565(img, r.SwapBytes)
}

// Rendered pairs a fetch source with a Render so the scheduler sees a
// single source that yields wire-ready bytes.
type Rendered struct {
	Source interface {
		Fetch() ([]byte, error)
	}
	Render Render
}

// Fetch fetches from the inner source and converts the result.
func (r *Rendered) Fetch() ([]byte, error) {
	data, err := r.Source.Fetch()
	if err != nil {
		return nil, err
	}
	return r.Render.Payload(data)
}

// Observe forwards telemetry samples to the inner source when it wants
// them.
func (r *Rendered) Observe(snap dashlink.Snapshot) {
	if o, ok := r.Source.(interface {
		Observe(dashlink.Snapshot)
	}); ok {
		o.Observe(snap)
	}
}
