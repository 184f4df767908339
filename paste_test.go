package easel

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
)

func TestShareLinkParserRecognize(t *testing.T) {
	p := ShareLinkParser{}
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"file link", "https://www.figma.com/file/abc123/My-Design?node-id=1-2", true},
		{"design link", "https://figma.com/design/abc123?node-id=0-1", true},
		{"bare host", "https://figma.com/", true},
		{"other host", "https://example.com/file/abc?node-id=1", false},
		{"plain text", "hello world", false},
		{"not a url scheme", "ftp://figma.com/file/x", false},
		{"leading whitespace", "  https://figma.com/file/x?node-id=1  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsRecognizedLink(tt.text); got != tt.want {
				t.Errorf("IsRecognizedLink(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestShareLinkParserParse(t *testing.T) {
	p := ShareLinkParser{}

	ref, err := p.Parse("https://www.figma.com/file/abc123/My-Design?node-id=1-2")
	if err != nil {
		t.Fatal(err)
	}
	if ref.SourceKey != "abc123" || ref.NodeRef != "1-2" || !ref.Valid {
		t.Errorf("ref = %+v", ref)
	}

	ref, err = p.Parse("https://figma.com/design/k9/Another?node-id=7-7")
	if err != nil {
		t.Fatal(err)
	}
	if ref.SourceKey != "k9" {
		t.Errorf("SourceKey = %q, want k9", ref.SourceKey)
	}

	for _, text := range []string{
		"https://figma.com/file/abc123",            // no node-id
		"https://figma.com/?node-id=1-2",           // no file segment
		"https://figma.com/file/?node-id=1-2",      // empty key
	} {
		if _, err := p.Parse(text); !errors.Is(err, ErrInvalidLink) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidLink", text, err)
		}
	}
}

func TestShareLinkParserCustomHosts(t *testing.T) {
	p := ShareLinkParser{Hosts: []string{"design.internal"}}
	if !p.IsRecognizedLink("https://design.internal/file/x?node-id=1") {
		t.Error("custom host not recognized")
	}
	if p.IsRecognizedLink("https://figma.com/file/x?node-id=1") {
		t.Error("default hosts should be replaced, not extended")
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPasteImage(t *testing.T) {
	ctrl := NewController()
	h := NewPasteHandler(ctrl, nil, nil)

	d, err := h.PasteImage(pngBytes(t, 64, 48), Position{X: 10, Y: 20})
	if err != nil {
		t.Fatal(err)
	}
	if d.Source.Kind != PayloadLegacyImage {
		t.Errorf("kind = %v, want legacy image", d.Source.Kind)
	}
	if d.Dimensions != (Dimensions{Width: 64, Height: 48}) {
		t.Errorf("dimensions = %+v, want decoded 64x48", d.Dimensions)
	}
	if !ctrl.Scene().Contains(d.ID) {
		t.Error("pasted design missing from scene")
	}
	pos, _ := ctrl.Scene().EntityPosition(d.ID)
	if pos != (Position{X: 10, Y: 20}) {
		t.Errorf("position = %+v", pos)
	}
}

func TestPasteImageUndecodableKeepsDefaults(t *testing.T) {
	ctrl := NewController()
	h := NewPasteHandler(ctrl, nil, nil)

	d, err := h.PasteImage([]byte("not an image"), Position{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Dimensions != (Dimensions{}) {
		t.Errorf("dimensions = %+v, want zero (deferred to defaults)", d.Dimensions)
	}
	b, _ := ctrl.Scene().EntityBounds(d.ID)
	if b.Width != DefaultArtifactWidth {
		t.Errorf("rendered width = %v, want default", b.Width)
	}
}

func TestPasteTextInlineSVG(t *testing.T) {
	ctrl := NewController()
	h := NewPasteHandler(ctrl, nil, nil)

	handled, err := h.PasteText(context.Background(), `<svg width="10" height="10"></svg>`, Position{X: 5, Y: 5})
	if err != nil || !handled {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
	if ctrl.Scene().Len() != 1 {
		t.Fatal("markup design missing")
	}
	if ctrl.Scene().Designs()[0].Source.Kind != PayloadMarkup {
		t.Error("inline SVG should become a markup design")
	}
}

func TestPasteTextPlainTextIgnored(t *testing.T) {
	ctrl := NewController()
	h := NewPasteHandler(ctrl, ShareLinkParser{}, nil)

	handled, err := h.PasteText(context.Background(), "just some notes", Position{})
	if handled || err != nil {
		t.Errorf("handled=%v err=%v, want ignored without error", handled, err)
	}
	if ctrl.Scene().Len() != 0 {
		t.Error("plain text must not add a design")
	}
}

type stubImports struct {
	payload Payload
	dims    Dimensions
	err     error
	gotRef  LinkRef
}

func (s *stubImports) Fetch(_ context.Context, ref LinkRef) (Payload, Dimensions, error) {
	s.gotRef = ref
	return s.payload, s.dims, s.err
}

func TestPasteTextImportsLink(t *testing.T) {
	ctrl := NewController()
	imports := &stubImports{
		payload: Payload{Kind: PayloadVector, Ref: "fetched"},
		dims:    Dimensions{Width: 400, Height: 300},
	}
	h := NewPasteHandler(ctrl, ShareLinkParser{}, imports)

	handled, err := h.PasteText(context.Background(),
		"https://figma.com/file/abc123/Landing?node-id=4-2", Position{X: 0, Y: 0})
	if err != nil || !handled {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
	if imports.gotRef.SourceKey != "abc123" || imports.gotRef.NodeRef != "4-2" {
		t.Errorf("import called with %+v", imports.gotRef)
	}
	d := ctrl.Scene().Designs()[0]
	if d.Source.Ref != "fetched" || d.Dimensions.Width != 400 {
		t.Errorf("imported design = %+v", d)
	}
}

// A recognized but malformed link is reported and recovered: the scene stays
// untouched and further pastes work.
func TestPasteTextInvalidLinkRecovers(t *testing.T) {
	ctrl := NewController()
	h := NewPasteHandler(ctrl, ShareLinkParser{}, &stubImports{})

	handled, err := h.PasteText(context.Background(), "https://figma.com/file/abc123", Position{})
	if !handled {
		t.Error("recognized link should count as handled even when invalid")
	}
	if !errors.Is(err, ErrInvalidLink) {
		t.Errorf("err = %v, want ErrInvalidLink", err)
	}
	if ctrl.Scene().Len() != 0 {
		t.Error("invalid link must not add a design")
	}

	if _, err := h.PasteImage(pngBytes(t, 8, 8), Position{}); err != nil {
		t.Fatalf("paste after recovered error: %v", err)
	}
}

func TestPasteTextImportFailureLeavesScene(t *testing.T) {
	ctrl := NewController()
	imports := &stubImports{err: errors.New("upstream 502")}
	h := NewPasteHandler(ctrl, ShareLinkParser{}, imports)

	handled, err := h.PasteText(context.Background(),
		"https://figma.com/file/abc123?node-id=1-1", Position{})
	if !handled || err == nil {
		t.Fatalf("handled=%v err=%v, want handled with error", handled, err)
	}
	if ctrl.Scene().Len() != 0 {
		t.Error("failed import must not add a design")
	}
}
