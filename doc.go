// Package easel is an infinite design canvas with an AI iteration workflow,
// built for [Ebitengine].
//
// Easel provides the coordinate math, scene model, interaction state
// machine, and asynchronous pipeline behind a "paste a design, pan and zoom
// around it, ask for improved variants" editor. Rendering backends,
// persistence, and the AI analysis call are collaborators behind small
// interfaces; subpackages ship working implementations of each.
//
// # Core pieces
//
// [Viewport] is the pan/scale window onto canvas space. [Viewport.ZoomAt]
// keeps the canvas point under the cursor fixed across a zoom step, which is
// what makes wheel-zoom feel anchored.
//
// [Scene] is an immutable snapshot of the artifact tree: top-level [Design]
// entities and the [DesignIteration] variants generated from them. Every
// mutation returns a new snapshot, so concurrent readers (a save in flight,
// a pipeline run mid-analysis) are never invalidated.
//
// [Controller] is the pointer/keyboard state machine. Feed it events
// directly, or let [InputAdapter] poll ebiten each frame:
//
//	ctrl := easel.NewController()
//	input := easel.NewInputAdapter(ctrl)
//
//	func (g *Game) Update() error {
//		input.Update()
//		ctrl.Update(1.0 / float32(ebiten.TPS()))
//		loop.Drain()
//		return nil
//	}
//
// [Pipeline] drives the analyze → recreate → render sequence for one
// artifact at a time per id, with cooperative per-run cancellation. The AI
// call is an [AIService] the application supplies.
//
// # Subpackages
//
// The render subpackage implements [Renderer] backends for raster images,
// SVG markup, and programmatic vector payloads. The store subpackage is a
// SQLite-backed [PersistenceBridge] with debounced saves and scheduled
// checkpoints. The importer subpackage turns files dropped into a watched
// directory into designs. The palette subpackage extracts dominant colors
// from pasted images.
//
// See examples/studio for a complete wired application.
//
// [Ebitengine]: https://ebitengine.org
package easel
