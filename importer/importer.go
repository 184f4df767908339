// Package importer turns files dropped into a watched directory into designs
// on the canvas. Raster files become image designs, SVG files become markup
// designs; everything else is ignored. Scene writes go through the event
// loop, so the watcher goroutine never touches the scene directly.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/easel"
)

// settleDelay lets a file finish writing before it is picked up. Drops and
// downloads fire several Write events; only the last one matters.
const settleDelay = 500 * time.Millisecond

// placementStep offsets successive imports so they don't stack.
const placementStep = 40.0

// Watcher imports supported files appearing in a directory.
type Watcher struct {
	scene easel.SceneAccess
	loop  *easel.Loop
	log   easel.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
	seen   map[string]bool
	placed int
}

// NewWatcher returns a watcher writing into the given scene through the loop.
func NewWatcher(scene easel.SceneAccess, loop *easel.Loop) *Watcher {
	return &Watcher{
		scene:  scene,
		loop:   loop,
		log:    easel.NopLogger,
		timers: make(map[string]*time.Timer),
		seen:   make(map[string]bool),
	}
}

// SetLogger replaces the watcher's logger.
func (w *Watcher) SetLogger(l easel.Logger) {
	if l == nil {
		l = easel.NopLogger
	}
	w.log = l
}

// Watch begins watching dir. Files already present are not imported; only
// new or rewritten files are.
func (w *Watcher) Watch(dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("importer: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("importer: watch %q: %w", dir, err)
	}
	w.watcher = fsw

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if PayloadKindFor(event.Name) == nil {
					continue
				}
				w.schedule(event.Name)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.Logf("importer: watch error: %v", err)
			}
		}
	}()
	return nil
}

// Stop halts the watcher. Pending settle timers are dropped.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()
}

// schedule (re)arms the settle timer for a path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		already := w.seen[path]
		w.seen[path] = true
		w.mu.Unlock()
		if already {
			return // rewrites of an imported file are not re-imported
		}
		if err := w.importFile(path); err != nil {
			w.log.Logf("importer: %q: %v", path, err)
		}
	})
	w.mu.Unlock()
}

// importFile reads the file and posts the design onto the scene.
func (w *Watcher) importFile(path string) error {
	d, err := DesignFromFile(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	offset := float64(w.placed) * placementStep
	w.placed++
	w.mu.Unlock()
	d.Position = easel.Position{X: offset, Y: offset}

	w.loop.Post(func() {
		next, err := w.scene.Scene().AddDesign(d)
		if err != nil {
			w.log.Logf("importer: add %q: %v", path, err)
			return
		}
		w.scene.SetScene(next)
		w.log.Logf("importer: added %s from %q", d.ID, filepath.Base(path))
	})
	return nil
}

// PayloadKindFor maps a file extension to its payload kind, or nil for
// unsupported files.
func PayloadKindFor(path string) *easel.PayloadKind {
	kind := func(k easel.PayloadKind) *easel.PayloadKind { return &k }
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return kind(easel.PayloadLegacyImage)
	case ".svg":
		return kind(easel.PayloadMarkup)
	}
	return nil
}

// DesignFromFile builds an unplaced design from a file on disk.
func DesignFromFile(path string) (easel.Design, error) {
	kind := PayloadKindFor(path)
	if kind == nil {
		return easel.Design{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return easel.Design{}, fmt.Errorf("read: %w", err)
	}
	return easel.Design{
		ID:     easel.NewID(),
		Source: easel.Payload{Kind: *kind, Data: data, Ref: filepath.Base(path)},
	}, nil
}
