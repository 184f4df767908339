package store

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/phanxgames/easel"
)

// DefaultSaveInterval is the debounce window for persistence. Long enough to
// collapse a drag's worth of move events into one write, short enough that a
// crash loses very little.
const DefaultSaveInterval = 400 * time.Millisecond

// Bridge is the SQLite-backed easel.PersistenceBridge. Scene and viewport
// changes are recorded immediately and written after a debounce window;
// SwitchPage and Flush write pending state right away. Notification methods
// never block on the database.
type Bridge struct {
	db  *DB
	log easel.Logger

	mu       sync.Mutex
	pageID   string
	scene    *easel.Scene
	viewport easel.Viewport
	dirty    bool

	schedule func(func())
}

// NewBridge returns a bridge persisting to db under the given page id.
func NewBridge(db *DB, pageID string) *Bridge {
	return &Bridge{
		db:       db,
		log:      easel.NopLogger,
		pageID:   pageID,
		scene:    easel.NewScene(),
		viewport: easel.HomeViewport(),
		schedule: debounce.New(DefaultSaveInterval),
	}
}

// SetLogger replaces the bridge's logger.
func (b *Bridge) SetLogger(l easel.Logger) {
	if l == nil {
		l = easel.NopLogger
	}
	b.mu.Lock()
	b.log = l
	b.mu.Unlock()
}

// SetSaveInterval overrides the debounce window. Call before wiring the
// bridge into a controller.
func (b *Bridge) SetSaveInterval(d time.Duration) {
	b.mu.Lock()
	b.schedule = debounce.New(d)
	b.mu.Unlock()
}

// SceneChanged records the latest scene snapshot and schedules a save.
func (b *Bridge) SceneChanged(s *easel.Scene) {
	b.mu.Lock()
	b.scene = s
	b.dirty = true
	schedule := b.schedule
	b.mu.Unlock()
	schedule(b.flush)
}

// ViewportChanged records the latest viewport and schedules a save.
func (b *Bridge) ViewportChanged(v easel.Viewport) {
	b.mu.Lock()
	b.viewport = v
	b.dirty = true
	schedule := b.schedule
	b.mu.Unlock()
	schedule(b.flush)
}

// Flush writes pending state immediately. A no-op when nothing changed since
// the last save.
func (b *Bridge) Flush() {
	b.flush()
}

// SwitchPage flushes the current page and retargets the bridge at another,
// returning the loaded page for the controller to install. The outgoing
// page's viewport is written before the switch and never applied to the
// incoming one.
func (b *Bridge) SwitchPage(pageID string) (*easel.Page, error) {
	b.flush()

	p, err := b.db.LoadPage(pageID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.pageID = pageID
	b.scene = p.Scene
	b.viewport = p.Viewport
	b.dirty = false
	b.mu.Unlock()
	return p, nil
}

// flush writes the recorded state if dirty. On failure the state stays dirty
// so the next change (or Flush) retries the write.
func (b *Bridge) flush() {
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return
	}
	page := &easel.Page{ID: b.pageID, Scene: b.scene, Viewport: b.viewport}
	log := b.log
	b.mu.Unlock()

	if err := b.db.SavePage(page); err != nil {
		log.Logf("store: save page %s: %v", page.ID, err)
		return
	}

	b.mu.Lock()
	// a change recorded mid-save replaced the snapshot; keep it dirty
	if b.scene == page.Scene && b.viewport == page.Viewport {
		b.dirty = false
	}
	b.mu.Unlock()
}
