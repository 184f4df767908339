package easel

import (
	"context"
	"fmt"
	"time"
)

// AIService is the external analysis collaborator. Analyze inspects a source
// payload (optionally steered by a free-text prompt) and returns structured
// findings plus the renderable payload of an improved variant. It is the
// pipeline's only network suspension point; a failed call fails the whole
// run — the core performs no retries.
type AIService interface {
	Analyze(ctx context.Context, source Payload, prompt string) (AnalysisResult, Payload, error)
}

// DefaultStageDelay paces the synthetic Recreating and Rendering stages so
// state changes are visible in the UI even when the AI call already returned
// the final payload. Set 0 in tests.
const DefaultStageDelay = 350 * time.Millisecond

// Pipeline orchestrates the analyze → recreate → render workflow. Each
// artifact id gets an independent run; at most one run per id is active at a
// time (a second request is rejected, not queued), while runs for different
// ids interleave freely.
//
// Iterate and Cancel must be called from the update goroutine. The AI call
// and stage pacing run on a background goroutine per run; every mutation is
// posted back through the loop.
type Pipeline struct {
	scene      SceneAccess
	loop       *Loop
	ai         AIService
	emitter    Emitter
	log        Logger
	stageDelay time.Duration

	runs map[string]*pipelineRun
}

// pipelineRun is the per-id run registry entry: the cancellation token plus
// a consumed flag. finished is touched only on the update goroutine, which
// is what makes the state reset idempotent — whichever of completion,
// failure, or cancellation gets there first wins, the rest are no-ops.
type pipelineRun struct {
	artifactID string
	ctx        context.Context
	cancel     context.CancelFunc
	finished   bool
}

// NewPipeline wires a pipeline to the scene write path, the event loop, and
// the AI collaborator.
func NewPipeline(scene SceneAccess, loop *Loop, ai AIService) *Pipeline {
	return &Pipeline{
		scene:      scene,
		loop:       loop,
		ai:         ai,
		emitter:    nopEmitter{},
		log:        NopLogger,
		stageDelay: DefaultStageDelay,
		runs:       make(map[string]*pipelineRun),
	}
}

// SetEmitter routes state broadcasts to an emitter.
func (p *Pipeline) SetEmitter(e Emitter) {
	if e == nil {
		e = nopEmitter{}
	}
	p.emitter = e
}

// SetLogger replaces the pipeline's logger.
func (p *Pipeline) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger
	}
	p.log = l
}

// SetStageDelay overrides the synthetic stage pacing.
func (p *Pipeline) SetStageDelay(d time.Duration) {
	p.stageDelay = d
}

// Active reports whether a run is in flight for the artifact.
func (p *Pipeline) Active(id string) bool {
	_, ok := p.runs[id]
	return ok
}

// Iterate starts a run for the given artifact. The source payload always
// comes from the artifact's owning design — iterations re-derive from the
// original source, never from a previous iteration's rendered output — while
// position and dimensions are the artifact's own, captured here at request
// time and never re-read (a drag during the run moves the artifact, not the
// slot the result lands in).
//
// Returns ErrNotFound for unknown ids and ErrRunActive when the artifact is
// already mid-run.
func (p *Pipeline) Iterate(id, prompt string) error {
	scene := p.scene.Scene()
	state, ok := scene.EntityState(id)
	if !ok {
		return fmt.Errorf("iterate %s: %w", id, ErrNotFound)
	}
	if state != StateIdle || p.runs[id] != nil {
		return fmt.Errorf("iterate %s: %w", id, ErrRunActive)
	}

	owner, _ := scene.OwningDesign(id)
	source := owner.Source

	bounds, _ := scene.EntityBounds(id)
	dims := Dimensions{Width: bounds.Width, Height: bounds.Height}
	pos := Position{X: bounds.X, Y: bounds.Y}

	ctx, cancel := context.WithCancel(context.Background())
	run := &pipelineRun{artifactID: id, ctx: ctx, cancel: cancel}
	p.runs[id] = run

	p.setState(id, StateAnalyzing)

	go p.execute(run, source, prompt, pos, dims)
	return nil
}

// Cancel aborts the artifact's active run, if any. The artifact is reset to
// idle immediately and exactly once; whatever the background goroutine does
// afterwards (including a successful AI response arriving late) is dropped.
// Cancellation is silent — it is not an error.
func (p *Pipeline) Cancel(id string) {
	run, ok := p.runs[id]
	if !ok {
		return
	}
	run.cancel()
	p.retire(run, true)
}

// CancelAll aborts every active run (page switch, shutdown).
func (p *Pipeline) CancelAll() {
	for id := range p.runs {
		p.Cancel(id)
	}
}

// execute is the background half of a run. It never touches the scene
// directly: each step posts a closure to the loop, and each closure checks
// the run token before doing anything.
func (p *Pipeline) execute(run *pipelineRun, source Payload, prompt string, pos Position, dims Dimensions) {
	analysis, payload, err := p.ai.Analyze(run.ctx, source, prompt)
	if run.ctx.Err() != nil {
		return // cancelled during the call; result must never be applied
	}
	if err != nil {
		p.loop.Post(func() { p.fail(run, err) })
		return
	}

	if !p.advance(run, StateRecreating) {
		return
	}
	if !p.advance(run, StateRendering) {
		return
	}

	it := DesignIteration{
		ID:       NewID(),
		ParentID: run.artifactID,
		Position: Position{
			X: pos.X + dims.Width + IterationMargin,
			Y: pos.Y,
		},
		Dimensions: dims,
		Payload:    payload,
		Analysis:   analysis,
		State:      StateIdle,
	}
	p.loop.Post(func() { p.complete(run, it) })
}

// advance posts a stage transition and then waits out the pacing delay.
// Returns false if the run was cancelled at either boundary.
func (p *Pipeline) advance(run *pipelineRun, state ProcessingState) bool {
	p.loop.Post(func() {
		if run.finished {
			return
		}
		p.setState(run.artifactID, state)
	})
	if p.stageDelay > 0 {
		select {
		case <-time.After(p.stageDelay):
		case <-run.ctx.Done():
			return false
		}
	}
	return run.ctx.Err() == nil
}

// setState writes an artifact's processing state and broadcasts it. Runs on
// the update goroutine.
func (p *Pipeline) setState(id string, state ProcessingState) {
	next, err := p.scene.Scene().SetProcessingState(id, state)
	if err != nil {
		p.log.Logf("pipeline: %v", err)
		return
	}
	p.scene.SetScene(next)
	p.emitter.Emit(context.Background(), EventStateChanged, StateChange{EntityID: id, State: state})
}

// complete appends the finished iteration and retires the run. If the
// iterated artifact vanished mid-run the append fails NotFound and the run
// retires with nothing applied.
func (p *Pipeline) complete(run *pipelineRun, it DesignIteration) {
	if run.finished {
		return
	}
	next, err := p.scene.Scene().AppendIteration(run.artifactID, it)
	if err != nil {
		p.fail(run, err)
		return
	}
	p.scene.SetScene(next)
	p.emitter.Emit(context.Background(), EventIterationAdded, it)
	p.retire(run, true)
}

// fail resets the artifact and surfaces the error. Runs on the update
// goroutine; a no-op for already-retired runs.
func (p *Pipeline) fail(run *pipelineRun, err error) {
	if run.finished {
		return
	}
	perr := &PipelineError{ArtifactID: run.artifactID, Err: err}
	p.log.Logf("%v", perr)
	p.emitter.Emit(context.Background(), EventPipelineError, perr)
	p.retire(run, true)
}

// retire marks the run consumed, optionally resetting the artifact to idle,
// and removes it from the registry. The finished flag guarantees the reset
// happens at most once per run.
func (p *Pipeline) retire(run *pipelineRun, resetState bool) {
	if run.finished {
		return
	}
	run.finished = true
	run.cancel()
	delete(p.runs, run.artifactID)

	if !resetState {
		return
	}
	if state, ok := p.scene.Scene().EntityState(run.artifactID); ok && state != StateIdle {
		p.setState(run.artifactID, StateIdle)
	}
}
