package page

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/tilesift/classify"
	"github.com/hazyhaar/tilesift/scan"
)

// markerCSS is injected once per document. Flag dims the tile with a
// transition; hidden removes its layout space. The delayed second phase in
// the visibility controller is what keeps the collapse from being
// instantaneous.
const markerCSS = `
.tilesift-flagged { opacity: 0.25; transition: opacity 0.3s ease; }
.tilesift-hidden  { display: none !important; }
`

// Config is the page collaborator configuration (derived from the
// deployment file).
type Config struct {
	IdentityParam string
	Contexts      []scan.Context
	Fields        Fields
}

// Rod adapts a live rod page to the scan.Page interface. Not safe for
// concurrent use; like the rest of the engine it runs on the loop goroutine.
type Rod struct {
	page   *rod.Page
	cfg    Config
	logger *slog.Logger

	// els maps handles to the most recently enumerated element for each
	// still-attached node, so the delayed hide can reach a tile after the
	// pass that flagged it finished.
	els  map[scan.Handle]elemRef
	gen  uint64
}

type elemRef struct {
	el  *rod.Element
	gen uint64
}

// elsPruneAge is how many enumerations an element survives in the handle
// map without being re-seen.
const elsPruneAge = 64

// NewRod wraps a rod page.
func NewRod(p *rod.Page, cfg Config, logger *slog.Logger) *Rod {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rod{
		page:   p,
		cfg:    cfg,
		logger: logger,
		els:    make(map[scan.Handle]elemRef),
	}
}

// InjectCSS installs the marker stylesheet. Call after load and after any
// document reset; installing twice is harmless.
func (r *Rod) InjectCSS(ctx context.Context) error {
	_, err := r.page.Context(ctx).Eval(`() => {
		if (document.getElementById('tilesift-style')) return;
		const s = document.createElement('style');
		s.id = 'tilesift-style';
		s.textContent = ` + "`" + markerCSS + "`" + `;
		document.documentElement.appendChild(s);
	}`)
	if err != nil {
		return fmt.Errorf("page: inject css: %w", err)
	}
	return nil
}

// Contexts returns the configured scan contexts.
func (r *Rod) Contexts(ctx context.Context) []scan.Context {
	return r.cfg.Contexts
}

// Candidates enumerates the context's candidate tiles as a set of handles.
// The handle is the CDP backend node ID, which is stable for the lifetime of
// the DOM node and survives the node being reused for a different item.
func (r *Rod) Candidates(ctx context.Context, sc scan.Context) ([]scan.Handle, error) {
	r.gen++

	scope := r.page.Context(ctx)
	sel := sc.Selector
	if sc.Root != "" {
		sel = sc.Root + " " + sc.Selector
	}

	els, err := scope.Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("page: elements %q: %w", sel, err)
	}

	seen := make(map[scan.Handle]bool, len(els))
	handles := make([]scan.Handle, 0, len(els))
	for _, el := range els {
		node, err := el.Describe(0, false)
		if err != nil {
			continue // node vanished mid-enumeration
		}
		h := scan.Handle(strconv.Itoa(int(node.BackendNodeID)))
		if seen[h] {
			continue
		}
		seen[h] = true
		handles = append(handles, h)
		r.els[h] = elemRef{el: el, gen: r.gen}
	}

	r.prune()
	return handles, nil
}

func (r *Rod) prune() {
	if len(r.els) < 2048 {
		return
	}
	for h, ref := range r.els {
		if ref.gen+elsPruneAge < r.gen {
			delete(r.els, h)
		}
	}
}

// Extract reads one tile's fields from its outer HTML.
func (r *Rod) Extract(ctx context.Context, h scan.Handle) (classify.Item, error) {
	ref, ok := r.els[h]
	if !ok {
		return classify.Item{}, fmt.Errorf("page: unknown handle %s", h)
	}
	outer, err := ref.el.HTML()
	if err != nil {
		return classify.Item{}, fmt.Errorf("page: tile html: %w", err)
	}
	raw := extractItem(outer, r.cfg.Fields, r.cfg.IdentityParam)
	return classify.BuildItem(raw.Title, raw.Channel, raw.Duration, raw.Identity), nil
}

// ActiveIdentity reads the identity parameter off the page's current URL,
// empty when the page is not on an item view.
func (r *Rod) ActiveIdentity(ctx context.Context) string {
	info, err := r.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return ""
	}
	return u.Query().Get(r.cfg.IdentityParam)
}

// SetFlagged toggles the reversible suppression marker on one tile.
func (r *Rod) SetFlagged(ctx context.Context, h scan.Handle, on bool) error {
	return r.toggleClass(ctx, h, "tilesift-flagged", on)
}

// SetHidden toggles the layout-removing marker on one tile.
func (r *Rod) SetHidden(ctx context.Context, h scan.Handle, on bool) error {
	return r.toggleClass(ctx, h, "tilesift-hidden", on)
}

func (r *Rod) toggleClass(ctx context.Context, h scan.Handle, class string, on bool) error {
	ref, ok := r.els[h]
	if !ok {
		return fmt.Errorf("page: unknown handle %s", h)
	}
	_, err := ref.el.Eval(`(cls, on) => this.classList.toggle(cls, on)`, class, on)
	if err != nil {
		return fmt.Errorf("page: toggle %s: %w", class, err)
	}
	return nil
}
