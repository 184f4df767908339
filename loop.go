package easel

import "sync"

// Loop is the cooperative event loop that serializes every scene mutation.
// Pointer and keyboard handling run directly on the update goroutine;
// pipeline goroutines and other background work Post closures here and the
// update goroutine drains them once per frame. With all mutation funneled
// through one goroutine there is nothing to race on.
type Loop struct {
	mu    sync.Mutex
	queue []func()
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Post queues fn to run on the next Drain. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Drain runs every queued closure on the calling goroutine, in post order.
// Closures posted while draining run in the same pass.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

// Pending reports whether any closures are waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) > 0
}
