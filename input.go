package easel

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// wheelStep converts one wheel notch into screen pixels for plain-scroll
// panning. The delta is deliberately not divided by the viewport scale.
const wheelStep = 40.0

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// shortcutBindings maps physical keys to controller shortcuts. Zoom
// shortcuts require Ctrl or Meta; editing keys fire bare.
var shortcutBindings = []struct {
	key      ebiten.Key
	out      Key
	modifier bool
}{
	{ebiten.KeyDelete, KeyDelete, false},
	{ebiten.KeyBackspace, KeyBackspace, false},
	{ebiten.KeyEscape, KeyEscape, false},
	{ebiten.KeyDigit0, KeyZoomReset, true},
	{ebiten.KeyEqual, KeyZoomIn, true},
	{ebiten.KeyMinus, KeyZoomOut, true},
}

// InputAdapter reads ebiten mouse and keyboard state once per frame and
// feeds it to a Controller as discrete events. Edge detection (press and
// release, key just-pressed) is done here so the controller stays a pure
// event-driven state machine.
type InputAdapter struct {
	ctrl     *Controller
	prevDown bool
	prevKeys []bool
}

// NewInputAdapter wires an adapter to a controller.
func NewInputAdapter(ctrl *Controller) *InputAdapter {
	return &InputAdapter{ctrl: ctrl, prevKeys: make([]bool, len(shortcutBindings))}
}

// Update polls input and dispatches events. Call once per ebiten Update.
func (a *InputAdapter) Update() {
	mods := readModifiers()

	mx, my := ebiten.CursorPosition()
	pos := Position{X: float64(mx), Y: float64(my)}

	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case down && !a.prevDown:
		a.ctrl.PointerDown(pos, mods)
	case down && a.prevDown:
		a.ctrl.PointerMove(pos)
	case !down && a.prevDown:
		a.ctrl.PointerUp(pos)
	}
	a.prevDown = down

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		a.ctrl.Wheel(pos, wx*wheelStep, wy*wheelStep, mods)
	}

	for i, b := range shortcutBindings {
		pressed := ebiten.IsKeyPressed(b.key)
		if pressed && !a.prevKeys[i] {
			if !b.modifier || mods&(ModCtrl|ModMeta) != 0 {
				a.ctrl.Key(b.out)
			}
		}
		a.prevKeys[i] = pressed
	}
}
