package scan

import (
	"context"
	"errors"

	"github.com/hazyhaar/tilesift/classify"
)

// fakePage is an in-memory Page for engine tests.
type fakePage struct {
	contexts   []Context
	candidates map[string][]Handle // context name -> handles
	items      map[Handle]classify.Item
	broken     map[Handle]bool // Extract fails for these
	active     string

	flagged map[Handle]bool
	hidden  map[Handle]bool

	extracts int
	applies  int
}

func newFakePage() *fakePage {
	return &fakePage{
		candidates: make(map[string][]Handle),
		items:      make(map[Handle]classify.Item),
		broken:     make(map[Handle]bool),
		flagged:    make(map[Handle]bool),
		hidden:     make(map[Handle]bool),
	}
}

func (f *fakePage) Contexts(ctx context.Context) []Context { return f.contexts }

func (f *fakePage) Candidates(ctx context.Context, sc Context) ([]Handle, error) {
	return f.candidates[sc.Name], nil
}

func (f *fakePage) Extract(ctx context.Context, h Handle) (classify.Item, error) {
	f.extracts++
	if f.broken[h] {
		return classify.Item{}, errors.New("fake: extraction failed")
	}
	return f.items[h], nil
}

func (f *fakePage) ActiveIdentity(ctx context.Context) string { return f.active }

func (f *fakePage) SetFlagged(ctx context.Context, h Handle, on bool) error {
	f.applies++
	f.flagged[h] = on
	return nil
}

func (f *fakePage) SetHidden(ctx context.Context, h Handle, on bool) error {
	f.hidden[h] = on
	return nil
}
