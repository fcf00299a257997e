package scan

import (
	"context"

	"github.com/hazyhaar/tilesift/classify"
)

// Handle identifies one candidate element for as long as the underlying DOM
// node is alive. Handles are opaque to the engine; the page collaborator
// chooses the encoding (the rod implementation uses the CDP backend node ID).
type Handle string

// Context describes one place on the page to look for candidates: a root, a
// candidate selector, and a name for diagnostics.
type Context struct {
	Name     string
	Root     string // root selector, empty = whole document
	Selector string

	// ReprocessAlways disables the processed-flag short circuit for this
	// context. Set it where the page is known to reuse nodes for different
	// items without any observable identity change.
	ReprocessAlways bool
}

// Page is the page-context collaborator: everything the engine needs from
// the live document. An empty Contexts result means "nothing to scan this
// pass", not an error. Extraction is best effort: missing fields come back
// empty, and an error means only "retry next pass".
type Page interface {
	// Contexts returns where to look this pass.
	Contexts(ctx context.Context) []Context

	// Candidates enumerates the live candidate elements for one context as
	// a set: overlapping selection strategies collapse to one handle each.
	Candidates(ctx context.Context, sc Context) ([]Handle, error)

	// Extract reads the item fields from one candidate.
	Extract(ctx context.Context, h Handle) (classify.Item, error)

	// ActiveIdentity returns the page's currently active item identity
	// (e.g. the watched video ID), empty when there is none. Used to detect
	// reused nodes that now represent different content.
	ActiveIdentity(ctx context.Context) string

	// SetFlagged applies or removes the reversible suppression marker.
	SetFlagged(ctx context.Context, h Handle, on bool) error

	// SetHidden applies or removes the layout-removing marker.
	SetHidden(ctx context.Context, h Handle, on bool) error
}
