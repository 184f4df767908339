package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/easel"
)

func TestPayloadKindFor(t *testing.T) {
	tests := []struct {
		path string
		want *easel.PayloadKind
	}{
		{"shot.png", kindPtr(easel.PayloadLegacyImage)},
		{"SHOT.PNG", kindPtr(easel.PayloadLegacyImage)},
		{"photo.jpeg", kindPtr(easel.PayloadLegacyImage)},
		{"scan.bmp", kindPtr(easel.PayloadLegacyImage)},
		{"icon.svg", kindPtr(easel.PayloadMarkup)},
		{"notes.txt", nil},
		{"archive.zip", nil},
		{"noext", nil},
	}
	for _, tt := range tests {
		got := PayloadKindFor(tt.path)
		switch {
		case got == nil && tt.want != nil:
			t.Errorf("PayloadKindFor(%q) = nil, want %v", tt.path, *tt.want)
		case got != nil && tt.want == nil:
			t.Errorf("PayloadKindFor(%q) = %v, want nil", tt.path, *got)
		case got != nil && tt.want != nil && *got != *tt.want:
			t.Errorf("PayloadKindFor(%q) = %v, want %v", tt.path, *got, *tt.want)
		}
	}
}

func kindPtr(k easel.PayloadKind) *easel.PayloadKind { return &k }

func TestDesignFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.svg")
	if err := os.WriteFile(path, []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := DesignFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Source.Kind != easel.PayloadMarkup {
		t.Errorf("kind = %v, want markup", d.Source.Kind)
	}
	if string(d.Source.Data) != "<svg/>" {
		t.Errorf("data = %q", d.Source.Data)
	}
	if d.Source.Ref != "icon.svg" {
		t.Errorf("ref = %q", d.Source.Ref)
	}
	if d.ID == "" {
		t.Error("id not assigned")
	}
}

func TestDesignFromFileUnsupported(t *testing.T) {
	if _, err := DesignFromFile("whatever.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestWatcherImportsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	ctrl := easel.NewController()
	loop := easel.NewLoop()
	w := NewWatcher(ctrl, loop)
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "drop.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		loop.Drain()
		if ctrl.Scene().Len() == 1 {
			d := ctrl.Scene().Designs()[0]
			if d.Source.Kind != easel.PayloadMarkup || d.Source.Ref != "drop.svg" {
				t.Fatalf("imported design = %+v", d)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("dropped file never imported")
}

func TestWatcherIgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	ctrl := easel.NewController()
	loop := easel.NewLoop()
	w := NewWatcher(ctrl, loop)
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(settleDelay + 200*time.Millisecond)
	loop.Drain()
	if ctrl.Scene().Len() != 0 {
		t.Error("unsupported file was imported")
	}
}

func TestWatcherImportsOnce(t *testing.T) {
	dir := t.TempDir()
	ctrl := easel.NewController()
	loop := easel.NewLoop()
	w := NewWatcher(ctrl, loop)
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		loop.Drain()
		if ctrl.Scene().Len() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if ctrl.Scene().Len() != 1 {
		t.Fatal("file never imported")
	}

	// rewrite: settle timer fires again but the path is already imported
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(settleDelay + 200*time.Millisecond)
	loop.Drain()
	if ctrl.Scene().Len() != 1 {
		t.Errorf("rewrite re-imported: %d designs", ctrl.Scene().Len())
	}
}

func TestWatchMissingDir(t *testing.T) {
	w := NewWatcher(easel.NewController(), easel.NewLoop())
	if err := w.Watch(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for a missing directory")
	}
}
