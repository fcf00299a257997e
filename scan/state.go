package scan

// nodeState is the per-element processing record. It exists so that a node
// is reclassified at most once per distinct (element, identity) pair, while
// still catching reused nodes whose underlying item changed.
type nodeState struct {
	// epoch is the last scan pass that visited this node; equal to the
	// current epoch means "already handled this pass".
	epoch uint64

	// key is the cache key computed the last time this node was processed.
	key string

	// activeID is the page's active item identity at last processing time.
	// A different value on the next visit means the node may now represent
	// different content.
	activeID string

	// processed means a terminal visibility decision exists for this node's
	// current identity.
	processed bool
}

// Tracker is the side table mapping node handles to processing state. The
// DOM node itself cannot carry state here, so entries are created lazily on
// first visit and swept once the node has not been seen for a few passes.
type Tracker struct {
	nodes map[Handle]*nodeState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{nodes: make(map[Handle]*nodeState)}
}

// state returns the node's record, creating it on first visit.
func (t *Tracker) state(h Handle) *nodeState {
	st, ok := t.nodes[h]
	if !ok {
		st = &nodeState{}
		t.nodes[h] = st
	}
	return st
}

// InvalidateAll clears every node's processed flag and key, forcing a full
// recompute on the next pass. The decision cache is untouched; only the
// "already handled" markers go.
func (t *Tracker) InvalidateAll() {
	for _, st := range t.nodes {
		st.processed = false
		st.key = ""
	}
}

// Sweep drops records for nodes that no enumeration has touched for keep
// consecutive passes and returns their handles, so the visibility layer can
// forget them too. The host gives no detach notification, so absence from
// enumeration is the detach signal.
func (t *Tracker) Sweep(epoch, keep uint64) []Handle {
	var gone []Handle
	for h, st := range t.nodes {
		if st.epoch+keep < epoch {
			delete(t.nodes, h)
			gone = append(gone, h)
		}
	}
	return gone
}

// Len returns the number of tracked nodes.
func (t *Tracker) Len() int { return len(t.nodes) }
