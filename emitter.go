package easel

import "context"

// Event names broadcast by the core. Payload types are noted per event.
const (
	EventSceneChanged   = "scene:changed"      // *Scene
	EventStateChanged   = "pipeline:state"     // StateChange
	EventIterationAdded = "pipeline:iteration" // DesignIteration
	EventPipelineError  = "pipeline:error"     // *PipelineError
)

// StateChange is the payload for EventStateChanged.
type StateChange struct {
	EntityID string
	State    ProcessingState
}

// Emitter broadcasts core events to whatever front end is attached. The
// controller and pipeline receive this interface instead of talking to a UI
// directly, which keeps them independently testable with a mock.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly Emitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions with the given event name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// nopEmitter drops everything. Used when no emitter is configured.
type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}
