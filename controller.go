package easel

import "context"

// ControllerState is the interaction mode the pointer state machine is in.
// Selection is orthogonal: it persists across state transitions.
type ControllerState uint8

const (
	CtrlIdle            ControllerState = iota // no button held
	CtrlPanningCanvas                          // button down on empty canvas
	CtrlDraggingEntity                         // button down, moving the selected artifact
)

// SceneAccess is the write path to the current scene snapshot. The
// controller implements it; the pipeline and paste handler mutate the scene
// exclusively through it so every change lands in one place and is
// broadcast/persisted uniformly.
type SceneAccess interface {
	Scene() *Scene
	SetScene(*Scene)
}

// PersistenceBridge receives change notifications for debounced saving.
// Implementations must never block: both methods are called on the update
// goroutine in the middle of interaction handling.
type PersistenceBridge interface {
	SceneChanged(s *Scene)
	ViewportChanged(v Viewport)
}

type nopBridge struct{}

func (nopBridge) SceneChanged(*Scene)      {}
func (nopBridge) ViewportChanged(Viewport) {}

// Controller is the pointer/keyboard state machine for one page. It owns the
// page's viewport and the current scene snapshot, disambiguates canvas
// panning from artifact dragging, and writes every mutation through the
// scene model's operations.
//
// All methods must be called from the update goroutine.
type Controller struct {
	scene    *Scene
	viewport Viewport
	viewSize Dimensions

	state    ControllerState
	selected string

	// Pan gesture: viewport pan at pointer-down plus the down point, so the
	// raw screen delta from the down point maps directly onto the pan.
	panStart    Position
	panStartPan Position

	// Drag gesture: entity position and viewport scale captured at drag
	// start. The scale is deliberately frozen here — converting each move's
	// screen delta with the start scale keeps the drag stable even if
	// something changed the zoom mid-gesture.
	dragStart    Position
	dragStartPos Position
	dragScale    float64

	tween *viewportTween

	bridge  PersistenceBridge
	emitter Emitter
	log     Logger
}

// NewController returns a controller over an empty scene with the home
// viewport. Wire a bridge and emitter before use if persistence or event
// broadcast is wanted.
func NewController() *Controller {
	return &Controller{
		scene:    NewScene(),
		viewport: HomeViewport(),
		viewSize: Dimensions{Width: 1280, Height: 800},
		bridge:   nopBridge{},
		emitter:  nopEmitter{},
		log:      NopLogger,
	}
}

// SetBridge routes change notifications to a persistence bridge.
func (c *Controller) SetBridge(b PersistenceBridge) {
	if b == nil {
		b = nopBridge{}
	}
	c.bridge = b
}

// SetEmitter routes core events to an emitter.
func (c *Controller) SetEmitter(e Emitter) {
	if e == nil {
		e = nopEmitter{}
	}
	c.emitter = e
}

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger
	}
	c.log = l
}

// SetViewSize tells the controller how large the on-screen view is. Used as
// the anchor for keyboard zoom and focus scrolling.
func (c *Controller) SetViewSize(size Dimensions) {
	c.viewSize = size
}

// State returns the current interaction mode.
func (c *Controller) State() ControllerState { return c.state }

// Selected returns the selected artifact id, or "" when nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// Viewport returns the current viewport.
func (c *Controller) Viewport() Viewport { return c.viewport }

// Scene returns the current scene snapshot.
func (c *Controller) Scene() *Scene { return c.scene }

// SetScene replaces the scene snapshot, notifying the bridge and emitter.
// This is the single write path used by the controller itself, the pipeline,
// and the paste handler.
func (c *Controller) SetScene(s *Scene) {
	c.scene = s
	c.bridge.SceneChanged(s)
	c.emitter.Emit(context.Background(), EventSceneChanged, s)
}

// LoadPage installs a freshly loaded page's scene and viewport without
// triggering persistence, so loading never echoes back into a save and one
// page's viewport can never leak into another.
func (c *Controller) LoadPage(p *Page) {
	c.tween = nil
	c.state = CtrlIdle
	c.selected = ""
	c.scene = p.Scene
	c.viewport = p.Viewport
}

// PointerDown feeds a press at the given screen point. Hit testing runs
// first; only a press over empty canvas falls back to panning.
//
// Selection deliberately takes two steps from cold: the first press on an
// artifact only selects it. Once anything is selected, the next press on an
// artifact (the same one or a different one) re-selects it and starts a drag
// in the same gesture.
func (c *Controller) PointerDown(screen Position, mods KeyModifiers) {
	c.tween = nil

	hit := c.scene.HitTest(c.viewport.ToCanvas(screen))
	if hit == "" {
		c.selected = ""
		c.state = CtrlPanningCanvas
		c.panStart = screen
		c.panStartPan = c.viewport.Pan
		return
	}

	if c.selected == "" {
		c.selected = hit
		return
	}

	pos, ok := c.scene.EntityPosition(hit)
	if !ok {
		return
	}
	c.selected = hit
	c.state = CtrlDraggingEntity
	c.dragStart = screen
	c.dragStartPos = pos
	c.dragScale = c.viewport.Scale
}

// PointerMove feeds a move to the state machine. Panning applies the raw
// screen delta; dragging converts it to canvas units with the scale captured
// at drag start.
func (c *Controller) PointerMove(screen Position) {
	switch c.state {
	case CtrlPanningCanvas:
		delta := screen.Sub(c.panStart)
		c.viewport = Viewport{Pan: c.panStartPan.Add(delta), Scale: c.viewport.Scale}
	case CtrlDraggingEntity:
		delta := screen.Sub(c.dragStart)
		pos := Position{
			X: c.dragStartPos.X + delta.X/c.dragScale,
			Y: c.dragStartPos.Y + delta.Y/c.dragScale,
		}
		next, err := c.scene.MoveEntity(c.selected, pos)
		if err != nil {
			// Entity vanished mid-drag (e.g. concurrent delete): drop the gesture.
			c.log.Logf("drag: %v", err)
			c.state = CtrlIdle
			return
		}
		c.SetScene(next)
	}
}

// PointerUp ends the active gesture. A finished pan persists the viewport.
func (c *Controller) PointerUp(screen Position) {
	wasPanning := c.state == CtrlPanningCanvas
	c.state = CtrlIdle
	if wasPanning {
		c.bridge.ViewportChanged(c.viewport)
	}
}

// Wheel feeds a scroll event. With a zoom modifier held (Ctrl or Meta) the
// vertical component zooms at the cursor; otherwise the raw deltas pan, for
// direct-manipulation scroll feel at any zoom level.
func (c *Controller) Wheel(screen Position, dx, dy float64, mods KeyModifiers) {
	c.tween = nil
	if mods&(ModCtrl|ModMeta) != 0 {
		if dy == 0 {
			return // horizontal-only scroll carries no zoom direction
		}
		dir := 1
		if dy < 0 {
			dir = -1
		}
		c.viewport = c.viewport.ZoomAt(screen, dir)
	} else {
		c.viewport = c.viewport.PanBy(Position{X: dx, Y: dy})
	}
	c.bridge.ViewportChanged(c.viewport)
}

// Key feeds an editing shortcut.
func (c *Controller) Key(k Key) {
	switch k {
	case KeyDelete, KeyBackspace:
		if c.selected == "" {
			return
		}
		next, err := c.scene.RemoveEntity(c.selected)
		if err != nil {
			c.log.Logf("delete: %v", err)
			return
		}
		c.selected = ""
		c.state = CtrlIdle
		c.SetScene(next)
	case KeyEscape:
		c.selected = ""
	case KeyZoomReset:
		c.tween = nil
		c.viewport = HomeViewport()
		c.bridge.ViewportChanged(c.viewport)
	case KeyZoomIn:
		c.zoomAtCenter(1)
	case KeyZoomOut:
		c.zoomAtCenter(-1)
	}
}

func (c *Controller) zoomAtCenter(dir int) {
	c.tween = nil
	center := Position{X: c.viewSize.Width / 2, Y: c.viewSize.Height / 2}
	c.viewport = c.viewport.ZoomAt(center, dir)
	c.bridge.ViewportChanged(c.viewport)
}

// ResetViewportAnimated eases the viewport back to the home view over the
// given duration in seconds. Any pointer or wheel activity cancels it.
func (c *Controller) ResetViewportAnimated(duration float32) {
	c.tween = newViewportTween(c.viewport, HomeViewport(), duration)
}

// FocusOn scrolls the viewport (animated) so the given artifact is centered,
// keeping the current scale. No-op for unknown ids.
func (c *Controller) FocusOn(id string, duration float32) {
	bounds, ok := c.scene.EntityBounds(id)
	if !ok {
		return
	}
	center := Position{X: bounds.X + bounds.Width/2, Y: bounds.Y + bounds.Height/2}
	target := Viewport{
		Pan: Position{
			X: c.viewSize.Width/2 - center.X*c.viewport.Scale,
			Y: c.viewSize.Height/2 - center.Y*c.viewport.Scale,
		},
		Scale: c.viewport.Scale,
	}
	c.tween = newViewportTween(c.viewport, target, duration)
}

// Update advances viewport animation by dt seconds. Call once per frame.
// The viewport is persisted once when an animation completes.
func (c *Controller) Update(dt float32) {
	if c.tween == nil {
		return
	}
	c.viewport = c.tween.update(dt)
	if c.tween.done {
		c.tween = nil
		c.bridge.ViewportChanged(c.viewport)
	}
}
