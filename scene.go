package easel

import "fmt"

// Scene is an immutable snapshot of one page's artifact tree. Every mutating
// operation returns a new snapshot and leaves the receiver untouched, so an
// in-flight reader (a pipeline run that captured the scene before a
// concurrent drag, a persistence save in progress) keeps a consistent view.
//
// Designs are stored in insertion order. Iterations are flattened into their
// owning design's Iterations sequence; ParentID preserves the chain for
// hierarchy reconstruction.
type Scene struct {
	designs []Design
}

// NewScene returns an empty scene snapshot.
func NewScene() *Scene {
	return &Scene{}
}

// Designs returns the designs in insertion order. The returned slice is the
// snapshot's backing storage and MUST NOT be mutated.
func (s *Scene) Designs() []Design {
	return s.designs
}

// Len returns the number of top-level designs.
func (s *Scene) Len() int {
	return len(s.designs)
}

// entityRef locates an entity inside a snapshot: designIdx addresses the
// owning design, iterIdx is -1 for the design itself.
type entityRef struct {
	designIdx int
	iterIdx   int
}

func (s *Scene) find(id string) (entityRef, bool) {
	for di := range s.designs {
		if s.designs[di].ID == id {
			return entityRef{designIdx: di, iterIdx: -1}, true
		}
		for ii := range s.designs[di].Iterations {
			if s.designs[di].Iterations[ii].ID == id {
				return entityRef{designIdx: di, iterIdx: ii}, true
			}
		}
	}
	return entityRef{}, false
}

// Contains reports whether any design or iteration has the given id.
func (s *Scene) Contains(id string) bool {
	_, ok := s.find(id)
	return ok
}

// Design returns the top-level design with the given id.
func (s *Scene) Design(id string) (Design, bool) {
	ref, ok := s.find(id)
	if !ok || ref.iterIdx >= 0 {
		return Design{}, false
	}
	return s.designs[ref.designIdx], true
}

// Iteration returns the iteration with the given id.
func (s *Scene) Iteration(id string) (DesignIteration, bool) {
	ref, ok := s.find(id)
	if !ok || ref.iterIdx < 0 {
		return DesignIteration{}, false
	}
	return s.designs[ref.designIdx].Iterations[ref.iterIdx], true
}

// OwningDesign returns the design that owns the entity with the given id:
// the design itself for a top-level id, or the design whose Iterations
// sequence contains the iteration. This is the nearest-Design-ancestor
// lookup the pipeline uses to resolve source payloads.
func (s *Scene) OwningDesign(id string) (Design, bool) {
	ref, ok := s.find(id)
	if !ok {
		return Design{}, false
	}
	return s.designs[ref.designIdx], true
}

// EntityPosition returns the canvas position of a design or iteration.
func (s *Scene) EntityPosition(id string) (Position, bool) {
	ref, ok := s.find(id)
	if !ok {
		return Position{}, false
	}
	if ref.iterIdx < 0 {
		return s.designs[ref.designIdx].Position, true
	}
	return s.designs[ref.designIdx].Iterations[ref.iterIdx].Position, true
}

// EntityBounds returns the canvas-space bounding rectangle of an entity,
// substituting default dimensions for artifacts without an intrinsic size.
// Hit testing runs against these bounds.
func (s *Scene) EntityBounds(id string) (Rect, bool) {
	ref, ok := s.find(id)
	if !ok {
		return Rect{}, false
	}
	if ref.iterIdx < 0 {
		d := &s.designs[ref.designIdx]
		size := d.Size()
		return Rect{X: d.Position.X, Y: d.Position.Y, Width: size.Width, Height: size.Height}, true
	}
	it := &s.designs[ref.designIdx].Iterations[ref.iterIdx]
	return iterBounds(it), true
}

func iterBounds(it *DesignIteration) Rect {
	w, h := it.Dimensions.Width, it.Dimensions.Height
	if w == 0 && h == 0 {
		w, h = DefaultArtifactWidth, DefaultArtifactHeight
	}
	return Rect{X: it.Position.X, Y: it.Position.Y, Width: w, Height: h}
}

// EntityState returns the processing state of a design or iteration.
func (s *Scene) EntityState(id string) (ProcessingState, bool) {
	ref, ok := s.find(id)
	if !ok {
		return StateIdle, false
	}
	if ref.iterIdx < 0 {
		return s.designs[ref.designIdx].State, true
	}
	return s.designs[ref.designIdx].Iterations[ref.iterIdx].State, true
}

// HitTest returns the id of the topmost entity whose bounds contain the
// canvas point, or "" if the point is over empty canvas. Later designs draw
// above earlier ones, and iterations draw above their owning design, so the
// search runs in reverse paint order.
func (s *Scene) HitTest(canvas Position) string {
	for di := len(s.designs) - 1; di >= 0; di-- {
		d := &s.designs[di]
		for ii := len(d.Iterations) - 1; ii >= 0; ii-- {
			it := &d.Iterations[ii]
			if iterBounds(it).Contains(canvas.X, canvas.Y) {
				return it.ID
			}
		}
		size := d.Size()
		if (Rect{X: d.Position.X, Y: d.Position.Y, Width: size.Width, Height: size.Height}).Contains(canvas.X, canvas.Y) {
			return d.ID
		}
	}
	return ""
}

// clone produces a shallow copy of the snapshot with a fresh designs slice.
// A design about to change must additionally get its own iterations backing
// array via cloneDesign.
func (s *Scene) clone() *Scene {
	out := &Scene{designs: make([]Design, len(s.designs))}
	copy(out.designs, s.designs)
	return out
}

func (s *Scene) cloneDesign(idx int) {
	iters := make([]DesignIteration, len(s.designs[idx].Iterations))
	copy(iters, s.designs[idx].Iterations)
	s.designs[idx].Iterations = iters
}

// AddDesign returns a snapshot with the design appended. An empty id is
// filled in with a fresh one; a colliding id is an error.
func (s *Scene) AddDesign(d Design) (*Scene, error) {
	if d.ID == "" {
		d.ID = NewID()
	}
	if s.Contains(d.ID) {
		return s, fmt.Errorf("add design %s: id already present", d.ID)
	}
	out := s.clone()
	out.designs = append(out.designs, d)
	return out, nil
}

// MoveEntity returns a snapshot with the design or iteration moved to the
// given canvas position. Returns ErrNotFound (and the receiver) when the id
// does not resolve.
func (s *Scene) MoveEntity(id string, pos Position) (*Scene, error) {
	ref, ok := s.find(id)
	if !ok {
		return s, fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	out := s.clone()
	if ref.iterIdx < 0 {
		out.designs[ref.designIdx].Position = pos
		return out, nil
	}
	out.cloneDesign(ref.designIdx)
	out.designs[ref.designIdx].Iterations[ref.iterIdx].Position = pos
	return out, nil
}

// AppendIteration returns a snapshot with the iteration appended to the
// design that owns parentID. parentID may name a top-level design or an
// existing iteration (chained iteration); either way the new entry lands in
// the owning design's flattened Iterations sequence with ParentID set to
// parentID. Returns ErrNotFound when parentID does not resolve, leaving the
// scene unchanged.
func (s *Scene) AppendIteration(parentID string, it DesignIteration) (*Scene, error) {
	ref, ok := s.find(parentID)
	if !ok {
		return s, fmt.Errorf("append iteration to %s: %w", parentID, ErrNotFound)
	}
	if it.ID == "" {
		it.ID = NewID()
	}
	if s.Contains(it.ID) {
		return s, fmt.Errorf("append iteration %s: id already present", it.ID)
	}
	it.ParentID = parentID
	out := s.clone()
	out.cloneDesign(ref.designIdx)
	out.designs[ref.designIdx].Iterations = append(out.designs[ref.designIdx].Iterations, it)
	return out, nil
}

// AttachIteration re-adds a stored iteration directly to the design with the
// given id, keeping the iteration's recorded ParentID as-is. Unlike
// AppendIteration it never resolves ParentID, so a chain whose parent was
// deleted after creation (RemoveEntity does not re-root children) still
// restores. parentID dangling is data, not an error, on this path.
func (s *Scene) AttachIteration(designID string, it DesignIteration) (*Scene, error) {
	ref, ok := s.find(designID)
	if !ok || ref.iterIdx >= 0 {
		return s, fmt.Errorf("attach iteration to %s: %w", designID, ErrNotFound)
	}
	if it.ID == "" {
		return s, fmt.Errorf("attach iteration to %s: missing iteration id", designID)
	}
	if s.Contains(it.ID) {
		return s, fmt.Errorf("attach iteration %s: id already present", it.ID)
	}
	out := s.clone()
	out.cloneDesign(ref.designIdx)
	out.designs[ref.designIdx].Iterations = append(out.designs[ref.designIdx].Iterations, it)
	return out, nil
}

// SetProcessingState returns a snapshot with the entity's processing state
// replaced. Returns ErrNotFound when the id does not resolve.
func (s *Scene) SetProcessingState(id string, state ProcessingState) (*Scene, error) {
	ref, ok := s.find(id)
	if !ok {
		return s, fmt.Errorf("set state of %s: %w", id, ErrNotFound)
	}
	out := s.clone()
	if ref.iterIdx < 0 {
		out.designs[ref.designIdx].State = state
		return out, nil
	}
	out.cloneDesign(ref.designIdx)
	out.designs[ref.designIdx].Iterations[ref.iterIdx].State = state
	return out, nil
}

// RemoveEntity returns a snapshot without the given design or iteration.
// Removing a design removes its iterations with it. Returns ErrNotFound
// when the id does not resolve.
func (s *Scene) RemoveEntity(id string) (*Scene, error) {
	ref, ok := s.find(id)
	if !ok {
		return s, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	out := s.clone()
	if ref.iterIdx < 0 {
		out.designs = append(out.designs[:ref.designIdx:ref.designIdx], out.designs[ref.designIdx+1:]...)
		return out, nil
	}
	out.cloneDesign(ref.designIdx)
	iters := out.designs[ref.designIdx].Iterations
	out.designs[ref.designIdx].Iterations = append(iters[:ref.iterIdx:ref.iterIdx], iters[ref.iterIdx+1:]...)
	return out, nil
}
