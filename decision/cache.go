package decision

import (
	"container/list"
	"encoding/json"
	"time"
)

// MaxEntries bounds the cache. Insertion order doubles as recency order, so
// overflow evicts the least-recently-touched key.
const MaxEntries = 5000

// Cache maps a stable item key to its Decision, bounded at max entries with
// least-recently-touched eviction. Reads refresh recency, so a key that keeps
// being looked up survives arbitrarily many inserts.
//
// The cache is not safe for concurrent use; all access happens on the engine
// run loop.
type Cache struct {
	max int
	ll  *list.List // front = most recently touched
	m   map[string]*list.Element

	// onMutate, when set, is called after every Put. The owner uses it to
	// schedule a coalesced persist; the cache itself never does I/O.
	onMutate func()
}

type entry struct {
	key string
	d   Decision
}

// NewCache creates a cache bounded at max entries; max <= 0 means MaxEntries.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = MaxEntries
	}
	return &Cache{
		max: max,
		ll:  list.New(),
		m:   make(map[string]*list.Element),
	}
}

// OnMutate registers the persistence hook. Pass nil to disable.
func (c *Cache) OnMutate(fn func()) { c.onMutate = fn }

// Get returns the cached decision for key. A hit refreshes the entry's
// recency (access = touch).
func (c *Cache) Get(key string) (Decision, bool) {
	e, ok := c.m[key]
	if !ok {
		return Decision{}, false
	}
	c.ll.MoveToFront(e)
	return e.Value.(*entry).d, true
}

// Put stores d under key, overwriting unconditionally. When the insert
// pushes the cache over its bound, exactly the single least-recently-touched
// entry is evicted.
func (c *Cache) Put(key string, d Decision) {
	if e, ok := c.m[key]; ok {
		e.Value.(*entry).d = d
		c.ll.MoveToFront(e)
	} else {
		c.m[key] = c.ll.PushFront(&entry{key: key, d: d})
		if c.ll.Len() > c.max {
			oldest := c.ll.Back()
			c.ll.Remove(oldest)
			delete(c.m, oldest.Value.(*entry).key)
		}
	}
	if c.onMutate != nil {
		c.onMutate()
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return c.ll.Len() }

// persistedEntry is the on-disk shape of one cache entry. The pointer field
// lets the loader distinguish a missing/malformed match field from false.
type persistedEntry struct {
	Match *bool `json:"match"`
	TS    int64 `json:"ts"`
}

// Snapshot serialises the cache for persistence. Recency order is not
// persisted; a restored cache starts with load order as its recency order.
func (c *Cache) Snapshot() ([]byte, error) {
	out := make(map[string]persistedEntry, c.ll.Len())
	for e := c.ll.Back(); e != nil; e = e.Prev() {
		ent := e.Value.(*entry)
		match := ent.d.Match
		out[ent.key] = persistedEntry{Match: &match, TS: ent.d.At.UnixMilli()}
	}
	return json.Marshal(out)
}

// Load merges a persisted snapshot into the cache. Malformed entries (bad
// JSON value, missing or non-boolean match field) are dropped individually;
// the rest of the load succeeds. A nil or empty blob is a no-op.
func (c *Cache) Load(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0
	}
	loaded := 0
	for key, val := range raw {
		var pe persistedEntry
		if err := json.Unmarshal(val, &pe); err != nil || pe.Match == nil {
			continue
		}
		c.Put(key, Decision{Match: *pe.Match, At: time.UnixMilli(pe.TS)})
		loaded++
	}
	return loaded
}
