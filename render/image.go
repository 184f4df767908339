// Package render implements easel.Renderer backends for the three payload
// kinds: raster images, SVG markup, and programmatic vector shape lists.
//
// Each backend splits into a pure rasterize step producing an image.Image and
// a thin wrapper uploading it to an ebiten texture, so the interesting code
// is testable without a graphics context.
package render

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/phanxgames/easel"
)

// ImageRenderer renders raster payloads (PNG, JPEG, BMP).
type ImageRenderer struct{}

func (ImageRenderer) Kind() easel.PayloadKind { return easel.PayloadLegacyImage }

// Render decodes and scales the payload to size, then uploads it.
func (ImageRenderer) Render(p easel.Payload, size easel.Dimensions) (easel.Rendered, error) {
	img, err := DecodeScaled(p.Data, size)
	if err != nil {
		return nil, err
	}
	return newRendered(img), nil
}

// DecodeScaled decodes raster bytes and scales the result to size. A zero
// size keeps the intrinsic dimensions.
func DecodeScaled(data []byte, size easel.Dimensions) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return src, nil
	}
	return scaleTo(src, size), nil
}

func scaleTo(src image.Image, size easel.Dimensions) *image.RGBA {
	w, h := int(size.Width), int(size.Height)
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		if rgba, ok := src.(*image.RGBA); ok {
			return rgba
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// rendered is the shared easel.Rendered implementation: a still image plus a
// lazily uploaded ebiten texture.
type rendered struct {
	still image.Image
	tex   *ebiten.Image
}

func newRendered(img image.Image) *rendered {
	return &rendered{still: img}
}

func (r *rendered) Image() *ebiten.Image {
	if r.tex == nil {
		r.tex = ebiten.NewImageFromImage(r.still)
	}
	return r.tex
}

func (r *rendered) Capture(size easel.Dimensions) (image.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return r.still, nil
	}
	return scaleTo(r.still, size), nil
}
