package easel

import "github.com/google/uuid"

// NewID returns a fresh entity id. UUIDs carry enough entropy that ids never
// collide within a page's lifetime.
func NewID() string {
	return uuid.New().String()
}

// Design is a top-level artifact placed on the canvas: a pasted image or an
// imported source. Its Iterations sequence is flattened — iterations of
// iterations live here too, with ParentID preserving the chain.
type Design struct {
	ID         string
	Source     Payload
	Position   Position
	Dimensions Dimensions // zero means unknown; renderers fall back to defaults
	Iterations []DesignIteration
	State      ProcessingState
}

// Size returns the design's dimensions, substituting the defaults when the
// pasted content carried no intrinsic size.
func (d *Design) Size() Dimensions {
	if d.Dimensions.Width == 0 && d.Dimensions.Height == 0 {
		return Dimensions{Width: DefaultArtifactWidth, Height: DefaultArtifactHeight}
	}
	return d.Dimensions
}

// DesignIteration is an AI-generated variant derived from a Design or from
// another iteration. ParentID is set at creation and never changes.
type DesignIteration struct {
	ID         string
	ParentID   string
	Position   Position
	Dimensions Dimensions
	Payload    Payload
	Analysis   AnalysisResult
	State      ProcessingState
}

// AnalysisResult holds the structured findings returned by the AI analysis
// step. The core stores and forwards it; only display code interprets it.
type AnalysisResult struct {
	Strengths        []string
	Weaknesses       []string
	ImprovementAreas []string
	Categories       []CategoryFindings
	Palette          []string // hex colors, e.g. "#1a2b3c"
	Fonts            []string
	Components       []string
}

// CategoryFindings groups issues and improvements under a named design
// category (typography, spacing, color, ...).
type CategoryFindings struct {
	Category     string
	Issues       []string
	Improvements []string
}

// Page is one canvas: a set of designs plus the viewport last used to look
// at them. Design order is insertion order, which keeps rendering stable.
type Page struct {
	ID       string
	Scene    *Scene
	Viewport Viewport
}

// NewPage returns an empty page with the home viewport.
func NewPage(id string) *Page {
	return &Page{ID: id, Scene: NewScene(), Viewport: HomeViewport()}
}
