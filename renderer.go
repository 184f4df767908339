package easel

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Rendered is live renderer output for one artifact. Capture produces a
// still image of the current output scaled to the given dimensions, for
// export and for feeding captures back into analysis.
type Rendered interface {
	Image() *ebiten.Image
	Capture(size Dimensions) (image.Image, error)
}

// Renderer is a per-payload-kind rendering capability. Backends live in the
// render subpackage; the core only routes payloads to whichever backend
// claims their kind.
type Renderer interface {
	Kind() PayloadKind
	Render(payload Payload, size Dimensions) (Rendered, error)
}

// RenderResult is delivered asynchronously once a render finishes — by then
// the entity is already committed to the scene, so a failure here swaps in
// an error placeholder without touching the scene model.
type RenderResult struct {
	EntityID string
	Output   Rendered
	Err      error
}

// RendererRegistry selects a Renderer by payload kind.
type RendererRegistry struct {
	backends map[PayloadKind]Renderer
}

// NewRendererRegistry returns an empty registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{backends: make(map[PayloadKind]Renderer)}
}

// Register adds a backend, replacing any previous one for the same kind.
func (r *RendererRegistry) Register(b Renderer) {
	r.backends[b.Kind()] = b
}

// For returns the backend for a payload kind.
func (r *RendererRegistry) For(kind PayloadKind) (Renderer, bool) {
	b, ok := r.backends[kind]
	return b, ok
}

// RenderAsync renders on a background goroutine and posts the result to the
// loop, where done runs on the update goroutine.
func (r *RendererRegistry) RenderAsync(loop *Loop, entityID string, p Payload, size Dimensions, done func(RenderResult)) {
	backend, ok := r.For(p.Kind)
	if !ok {
		loop.Post(func() {
			done(RenderResult{EntityID: entityID, Err: fmt.Errorf("no renderer for %s payloads", p.Kind)})
		})
		return
	}
	go func() {
		out, err := backend.Render(p, size)
		loop.Post(func() {
			done(RenderResult{EntityID: entityID, Output: out, Err: err})
		})
	}()
}
