package render

import (
	"bytes"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/phanxgames/easel"
)

// MarkupRenderer rasterizes SVG payloads. Unlike the raster backend, a
// capture at a different size re-rasterizes from the markup, so exports stay
// sharp at any scale.
type MarkupRenderer struct{}

func (MarkupRenderer) Kind() easel.PayloadKind { return easel.PayloadMarkup }

func (MarkupRenderer) Render(p easel.Payload, size easel.Dimensions) (easel.Rendered, error) {
	img, err := RasterizeSVG(p.Data, size)
	if err != nil {
		return nil, err
	}
	return &markupRendered{rendered: rendered{still: img}, data: p.Data}, nil
}

// IntrinsicSize reports the markup's own dimensions from its viewBox.
func IntrinsicSize(data []byte) (easel.Dimensions, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return easel.Dimensions{}, fmt.Errorf("parse svg: %w", err)
	}
	return easel.Dimensions{Width: icon.ViewBox.W, Height: icon.ViewBox.H}, nil
}

// RasterizeSVG renders SVG markup into an RGBA image of the given size. A
// zero size uses the markup's viewBox dimensions.
func RasterizeSVG(data []byte, size easel.Dimensions) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		w, h = int(icon.ViewBox.W), int(icon.ViewBox.H)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize svg: no usable dimensions")
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}

type markupRendered struct {
	rendered
	data []byte
}

// Capture re-rasterizes at the requested size instead of scaling pixels.
func (m *markupRendered) Capture(size easel.Dimensions) (image.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return m.still, nil
	}
	return RasterizeSVG(m.data, size)
}
