package easel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom limits and sensitivity. A single wheel notch scales the viewport by
// 1 ± ZoomSensitivity, clamped to [MinScale, MaxScale].
const (
	MinScale        = 0.1
	MaxScale        = 4.0
	ZoomSensitivity = 0.1
)

// Viewport is the visible window onto canvas space: a screen-space pan
// offset and a scale factor. Screen and canvas coordinates relate by
//
//	screen = canvas*Scale + Pan
//
// so a larger Scale shows less canvas. Viewport is a value type; ZoomAt and
// PanBy return updated copies and never mutate the receiver.
type Viewport struct {
	Pan   Position
	Scale float64
}

// HomeViewport returns the default view: no pan, scale 1.
func HomeViewport() Viewport {
	return Viewport{Scale: 1}
}

// ToCanvas converts a screen-space point to canvas space.
func (v Viewport) ToCanvas(screen Position) Position {
	return Position{
		X: (screen.X - v.Pan.X) / v.Scale,
		Y: (screen.Y - v.Pan.Y) / v.Scale,
	}
}

// ToScreen converts a canvas-space point to screen space.
func (v Viewport) ToScreen(canvas Position) Position {
	return Position{
		X: canvas.X*v.Scale + v.Pan.X,
		Y: canvas.Y*v.Scale + v.Pan.Y,
	}
}

// ZoomAt returns the viewport after one zoom step anchored at the given
// screen point. dir > 0 zooms in, dir < 0 zooms out. The pan is recomputed
// so the canvas point under the anchor stays fixed:
//
//	newPan = screen - (screen-pan)/scale * newScale
//
// which makes ToCanvas(screen) invariant across the step. A step that would
// leave the scale unchanged (already at a clamp limit) returns v as-is.
func (v Viewport) ZoomAt(screen Position, dir int) Viewport {
	factor := 1 + ZoomSensitivity
	if dir < 0 {
		factor = 1 - ZoomSensitivity
	}
	newScale := clamp(v.Scale*factor, MinScale, MaxScale)
	if newScale == v.Scale {
		return v
	}
	return Viewport{
		Pan: Position{
			X: screen.X - (screen.X-v.Pan.X)/v.Scale*newScale,
			Y: screen.Y - (screen.Y-v.Pan.Y)/v.Scale*newScale,
		},
		Scale: newScale,
	}
}

// PanBy returns the viewport translated by a raw screen-space delta.
// The scale is unchanged; the delta is deliberately not divided by it, so
// scrolling moves the view by the same number of pixels at every zoom level.
func (v Viewport) PanBy(delta Position) Viewport {
	return Viewport{Pan: v.Pan.Add(delta), Scale: v.Scale}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// viewportTween animates pan and scale toward a target viewport.
type viewportTween struct {
	panX  *gween.Tween
	panY  *gween.Tween
	scale *gween.Tween
	done  bool
}

func newViewportTween(from, to Viewport, duration float32) *viewportTween {
	return &viewportTween{
		panX:  gween.New(float32(from.Pan.X), float32(to.Pan.X), duration, ease.OutQuad),
		panY:  gween.New(float32(from.Pan.Y), float32(to.Pan.Y), duration, ease.OutQuad),
		scale: gween.New(float32(from.Scale), float32(to.Scale), duration, ease.OutQuad),
	}
}

// update advances the tween by dt seconds and returns the interpolated
// viewport. done is set once all three components finish.
func (t *viewportTween) update(dt float32) Viewport {
	px, doneX := t.panX.Update(dt)
	py, doneY := t.panY.Update(dt)
	sc, doneS := t.scale.Update(dt)
	t.done = doneX && doneY && doneS
	return Viewport{
		Pan:   Position{X: float64(px), Y: float64(py)},
		Scale: clamp(float64(sc), MinScale, MaxScale),
	}
}
