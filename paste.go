package easel

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// LinkRef is the parsed form of a recognized share link. The core passes
// SourceKey and NodeRef to the import collaborator without interpreting them.
type LinkRef struct {
	SourceKey string
	NodeRef   string
	Valid     bool
}

// LinkParser decides whether pasted text is an import request. It is only a
// routing heuristic: recognized-but-incomplete links surface ErrInvalidLink,
// unrecognized text is simply not a link.
type LinkParser interface {
	IsRecognizedLink(text string) bool
	Parse(text string) (LinkRef, error)
}

// ImportService fetches the renderable payload behind a share link.
type ImportService interface {
	Fetch(ctx context.Context, ref LinkRef) (Payload, Dimensions, error)
}

// ShareLinkParser recognizes design-tool share URLs of the form
//
//	https://<host>/file/<sourceKey>?node-id=<nodeRef>
//
// (also /design/<sourceKey>). Hosts defaults to the usual suspects.
type ShareLinkParser struct {
	Hosts []string
}

var defaultLinkHosts = []string{"figma.com", "www.figma.com"}

func (p ShareLinkParser) hosts() []string {
	if len(p.Hosts) > 0 {
		return p.Hosts
	}
	return defaultLinkHosts
}

// IsRecognizedLink reports whether text is an http(s) URL on a known host.
func (p ShareLinkParser) IsRecognizedLink(text string) bool {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	for _, h := range p.hosts() {
		if u.Host == h {
			return true
		}
	}
	return false
}

// Parse extracts the source key and node ref. A recognized link missing
// either field returns ErrInvalidLink.
func (p ShareLinkParser) Parse(text string) (LinkRef, error) {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return LinkRef{}, fmt.Errorf("parse link: %w", ErrInvalidLink)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	var key string
	for i, s := range segs {
		if (s == "file" || s == "design") && i+1 < len(segs) {
			key = segs[i+1]
			break
		}
	}
	node := u.Query().Get("node-id")
	if key == "" || node == "" {
		return LinkRef{SourceKey: key, NodeRef: node}, fmt.Errorf("parse link %q: %w", text, ErrInvalidLink)
	}
	return LinkRef{SourceKey: key, NodeRef: node, Valid: true}, nil
}

// PasteHandler routes clipboard content onto the canvas: raster bytes become
// image designs, inline SVG becomes markup designs, and recognized share
// links go through the import collaborator. Must be called from the update
// goroutine.
type PasteHandler struct {
	scene   SceneAccess
	parser  LinkParser
	imports ImportService
	log     Logger
}

// NewPasteHandler wires a paste handler. parser and imports may be nil, in
// which case pasted links are treated as plain text and ignored.
func NewPasteHandler(scene SceneAccess, parser LinkParser, imports ImportService) *PasteHandler {
	return &PasteHandler{scene: scene, parser: parser, imports: imports, log: NopLogger}
}

// SetLogger replaces the handler's logger.
func (h *PasteHandler) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger
	}
	h.log = l
}

// PasteImage adds a design from raster clipboard bytes at the given canvas
// position. Dimensions are derived from the image header when decodable.
func (h *PasteHandler) PasteImage(data []byte, at Position) (Design, error) {
	d := Design{
		ID:       NewID(),
		Source:   Payload{Kind: PayloadLegacyImage, Data: data},
		Position: at,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		d.Dimensions = Dimensions{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	}
	next, err := h.scene.Scene().AddDesign(d)
	if err != nil {
		return Design{}, err
	}
	h.scene.SetScene(next)
	return d, nil
}

// PasteText routes pasted text. Inline SVG becomes a markup design; a
// recognized share link is fetched through the import collaborator; anything
// else is not a paste the canvas handles (handled=false, no error).
//
// ErrInvalidLink and import failures are logged and recovered: the scene is
// left untouched.
func (h *PasteHandler) PasteText(ctx context.Context, text string, at Position) (handled bool, err error) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "<svg") || strings.HasPrefix(trimmed, "<?xml") {
		d := Design{
			ID:       NewID(),
			Source:   Payload{Kind: PayloadMarkup, Data: []byte(trimmed)},
			Position: at,
		}
		next, err := h.scene.Scene().AddDesign(d)
		if err != nil {
			return false, err
		}
		h.scene.SetScene(next)
		return true, nil
	}

	if h.parser == nil || !h.parser.IsRecognizedLink(trimmed) {
		return false, nil
	}
	ref, err := h.parser.Parse(trimmed)
	if err != nil {
		h.log.Logf("paste: %v", err)
		return true, err
	}
	if h.imports == nil {
		return true, fmt.Errorf("paste link %s: no import service configured", ref.SourceKey)
	}
	payload, dims, err := h.imports.Fetch(ctx, ref)
	if err != nil {
		h.log.Logf("paste: import %s: %v", ref.SourceKey, err)
		return true, err
	}
	d := Design{ID: NewID(), Source: payload, Position: at, Dimensions: dims}
	next, err := h.scene.Scene().AddDesign(d)
	if err != nil {
		return true, err
	}
	h.scene.SetScene(next)
	return true, nil
}
