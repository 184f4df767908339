package easel

// Position is a point in canvas (content) space.
type Position struct {
	X, Y float64
}

// Add returns p offset by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p minus d.
func (p Position) Sub(d Position) Position {
	return Position{X: p.X - d.X, Y: p.Y - d.Y}
}

// Dimensions is a width/height pair in canvas units.
type Dimensions struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in canvas space. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Default artifact dimensions, used when a pasted design carries no size of
// its own and as the horizontal offset fallback when placing iterations.
const (
	DefaultArtifactWidth  = 320.0
	DefaultArtifactHeight = 240.0

	// IterationMargin is the horizontal gap between a parent artifact and an
	// iteration appended to its right.
	IterationMargin = 40.0
)

// ProcessingState tracks where an artifact is in the iteration pipeline.
// Idle is both the initial and the terminal state; every run ends back at
// Idle whether it succeeded, failed, or was cancelled.
type ProcessingState uint8

const (
	StateIdle       ProcessingState = iota // no run in flight
	StateAnalyzing                         // waiting on the AI analysis call
	StateRecreating                        // rebuilding the variant from analysis
	StateRendering                         // producing renderable output
)

// String returns the lowercase state name.
func (s ProcessingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateRecreating:
		return "recreating"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// PayloadKind selects the renderer backend for a piece of content.
type PayloadKind uint8

const (
	PayloadLegacyImage PayloadKind = iota // raster image bytes (PNG/JPEG/BMP)
	PayloadMarkup                         // vector markup (SVG)
	PayloadVector                         // programmatic shape list (JSON)
)

// String returns the lowercase kind name.
func (k PayloadKind) String() string {
	switch k {
	case PayloadLegacyImage:
		return "image"
	case PayloadMarkup:
		return "markup"
	case PayloadVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Payload is an opaque handle to renderable content. Data holds inline
// content bytes; Ref optionally names the origin (URL or import path) for
// display and re-import purposes. The core never interprets either beyond
// routing by Kind.
type Payload struct {
	Kind PayloadKind
	Data []byte
	Ref  string
}

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key identifies the editing shortcuts the controller responds to. The
// mapping from physical keys to Key values lives in the input adapter.
type Key uint8

const (
	KeyDelete    Key = iota // remove the selected artifact
	KeyBackspace            // same as KeyDelete
	KeyEscape               // clear selection
	KeyZoomReset            // restore pan (0,0), scale 1
	KeyZoomIn               // zoom one increment at the view center
	KeyZoomOut              // zoom one increment out at the view center
)
