package easel

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestToCanvasToScreenRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewport
	}{
		{"home", HomeViewport()},
		{"panned", Viewport{Pan: Position{X: 120, Y: -45}, Scale: 1}},
		{"zoomed", Viewport{Scale: 2.5}},
		{"panned+zoomed", Viewport{Pan: Position{X: -300.5, Y: 77}, Scale: 0.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Position{X: 123.4, Y: -56.7}
			back := tt.vp.ToScreen(tt.vp.ToCanvas(p))
			assertNear(t, "roundtrip X", back.X, p.X)
			assertNear(t, "roundtrip Y", back.Y, p.Y)
		})
	}
}

func TestToCanvasFormula(t *testing.T) {
	vp := Viewport{Pan: Position{X: 100, Y: 50}, Scale: 2}
	got := vp.ToCanvas(Position{X: 300, Y: 250})
	assertNear(t, "X", got.X, 100) // (300-100)/2
	assertNear(t, "Y", got.Y, 100) // (250-50)/2
}

// The canvas point under the zoom anchor must not move across a zoom step.
func TestZoomAtAnchorInvariance(t *testing.T) {
	viewports := []Viewport{
		HomeViewport(),
		{Pan: Position{X: 250, Y: -80}, Scale: 1.3},
		{Pan: Position{X: -42, Y: 999}, Scale: 0.2},
		{Pan: Position{X: 7, Y: 7}, Scale: 3.7},
	}
	anchors := []Position{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: -33, Y: 640.25}}

	for _, vp := range viewports {
		for _, anchor := range anchors {
			for _, dir := range []int{1, -1} {
				before := vp.ToCanvas(anchor)
				after := vp.ZoomAt(anchor, dir).ToCanvas(anchor)
				if math.Abs(before.X-after.X) > 1e-6 || math.Abs(before.Y-after.Y) > 1e-6 {
					t.Errorf("ZoomAt(%v, %d) on %+v moved anchor: %v -> %v",
						anchor, dir, vp, before, after)
				}
			}
		}
	}
}

func TestZoomAtExactPan(t *testing.T) {
	vp := Viewport{Pan: Position{X: 10, Y: 20}, Scale: 1}
	anchor := Position{X: 100, Y: 100}
	got := vp.ZoomAt(anchor, 1)
	assertNear(t, "scale", got.Scale, 1.1)
	// newPan = screen - (screen-pan)/scale*newScale
	assertNear(t, "pan X", got.Pan.X, 100-(100-10)*1.1)
	assertNear(t, "pan Y", got.Pan.Y, 100-(100-20)*1.1)
}

func TestZoomScaleBounds(t *testing.T) {
	vp := HomeViewport()
	anchor := Position{X: 400, Y: 300}
	for i := 0; i < 200; i++ {
		vp = vp.ZoomAt(anchor, 1)
		if vp.Scale > MaxScale {
			t.Fatalf("scale %v exceeded MaxScale after %d zoom-ins", vp.Scale, i+1)
		}
	}
	assertNear(t, "max scale", vp.Scale, MaxScale)

	vp = HomeViewport()
	for i := 0; i < 200; i++ {
		vp = vp.ZoomAt(anchor, -1)
		if vp.Scale < MinScale {
			t.Fatalf("scale %v dropped below MinScale after %d zoom-outs", vp.Scale, i+1)
		}
	}
	assertNear(t, "min scale", vp.Scale, MinScale)
}

func TestZoomAtClampedIsNoop(t *testing.T) {
	vp := Viewport{Pan: Position{X: 5, Y: 5}, Scale: MaxScale}
	got := vp.ZoomAt(Position{X: 50, Y: 50}, 1)
	if got != vp {
		t.Errorf("zoom-in at max scale changed viewport: %+v", got)
	}
}

func TestPanByKeepsScale(t *testing.T) {
	vp := Viewport{Pan: Position{X: 10, Y: 10}, Scale: 2}
	got := vp.PanBy(Position{X: -4, Y: 6})
	assertNear(t, "pan X", got.Pan.X, 6)
	assertNear(t, "pan Y", got.Pan.Y, 16)
	assertNear(t, "scale", got.Scale, 2)
}

func TestViewportValueSemantics(t *testing.T) {
	vp := HomeViewport()
	_ = vp.ZoomAt(Position{X: 10, Y: 10}, 1)
	_ = vp.PanBy(Position{X: 5, Y: 5})
	if vp != HomeViewport() {
		t.Errorf("operations mutated the receiver: %+v", vp)
	}
}

func TestViewportTweenReachesTarget(t *testing.T) {
	from := Viewport{Pan: Position{X: 100, Y: -50}, Scale: 2}
	tw := newViewportTween(from, HomeViewport(), 0.5)

	var got Viewport
	for i := 0; i < 120 && !tw.done; i++ {
		got = tw.update(1.0 / 60.0)
	}
	if !tw.done {
		t.Fatal("tween never finished")
	}
	// float32 interpolation, so a loose tolerance
	if math.Abs(got.Pan.X) > 1e-3 || math.Abs(got.Pan.Y) > 1e-3 || math.Abs(got.Scale-1) > 1e-3 {
		t.Errorf("tween ended at %+v, want home viewport", got)
	}
}
