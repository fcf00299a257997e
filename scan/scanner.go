package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/tilesift/classify"
	"github.com/hazyhaar/tilesift/decision"
)

// sweepKeep is how many passes a node may go unenumerated before its state
// record is dropped.
const sweepKeep = 10

// Scanner walks the page's scan contexts, extracts each candidate once per
// pass, and turns cache hits or fresh classifications into visibility
// decisions. It runs synchronously to completion on the loop goroutine; the
// epoch dedupe in the tracker relies on no other pass interleaving.
type Scanner struct {
	page    Page
	cache   *decision.Cache
	vis     *Visibility
	tracker *Tracker

	matchers *classify.Matchers
	policy   classify.Policy
	debug    bool

	// Diagnostics, exposed through the status endpoint.
	counts    map[decision.Reason]int
	cacheHits int
	lastPass  time.Duration
	lastEpoch uint64

	logger *slog.Logger
}

// NewScanner wires a scanner. Matchers and policy start empty; call
// Configure before the first pass.
func NewScanner(page Page, cache *decision.Cache, vis *Visibility, tracker *Tracker, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		page:     page,
		cache:    cache,
		vis:      vis,
		tracker:  tracker,
		matchers: classify.Compile(nil, nil, nil, nil),
		policy:   classify.PolicyAssumeMatch,
		counts:   make(map[decision.Reason]int),
		logger:   logger,
	}
}

// Configure swaps in freshly compiled matchers and the current policy and
// debug flag. Called on startup and on every settings replacement.
func (s *Scanner) Configure(m *classify.Matchers, policy classify.Policy, debug bool) {
	s.matchers = m
	s.policy = policy
	s.debug = debug
}

// Run executes one scan pass for the given epoch.
func (s *Scanner) Run(ctx context.Context, epoch uint64) {
	start := time.Now()
	scanID := uuid.Must(uuid.NewV7()).String()
	active := s.page.ActiveIdentity(ctx)

	visited, classified := 0, 0
	for _, sc := range s.page.Contexts(ctx) {
		handles, err := s.page.Candidates(ctx, sc)
		if err != nil {
			s.logger.Warn("scan: enumerate failed", "scan_id", scanID, "context", sc.Name, "error", err)
			continue
		}
		for _, h := range handles {
			v, c := s.process(ctx, sc, h, epoch, active)
			visited += v
			classified += c
		}
	}

	for _, h := range s.tracker.Sweep(epoch, sweepKeep) {
		s.vis.Forget(h)
	}

	s.lastPass = time.Since(start)
	s.lastEpoch = epoch
	s.logger.Debug("scan: pass done",
		"scan_id", scanID,
		"epoch", epoch,
		"visited", visited,
		"classified", classified,
		"tracked", s.tracker.Len(),
		"took", s.lastPass)
}

// process handles one candidate. Returns (1,0) for a visit that stopped
// short of classification, (1,1) when a decision was applied.
func (s *Scanner) process(ctx context.Context, sc Context, h Handle, epoch uint64, active string) (int, int) {
	st := s.tracker.state(h)
	if st.epoch == epoch {
		return 0, 0 // overlapping enumeration already visited it this pass
	}
	st.epoch = epoch

	it, err := s.page.Extract(ctx, h)
	if err != nil || !it.Extractable() {
		// Text fields populate asynchronously; the next pass is the retry.
		return 1, 0
	}

	key := it.CacheKey()

	// Same node, new underlying item: the page's active identity moved on
	// since this node was last processed.
	if st.activeID != active {
		st.processed = false
		st.key = ""
		st.activeID = active
	}

	if st.processed && st.key == key && !sc.ReprocessAlways {
		return 1, 0
	}

	var d decision.Decision
	hit := false
	if key != "" {
		d, hit = s.cache.Get(key)
	}
	if hit {
		s.cacheHits++
	} else {
		d = s.matchers.Classify(it, s.policy)
		if key != "" {
			s.cache.Put(key, d)
		}
		s.counts[d.Reason]++
	}

	if err := s.vis.Apply(ctx, h, d.Match); err != nil {
		s.logger.Debug("scan: apply visibility failed", "handle", h, "error", err)
	}

	st.processed = true
	st.key = key

	if s.debug {
		s.logger.Debug("scan: decision",
			"context", sc.Name,
			"title", it.Title,
			"key", key,
			"match", d.Match,
			"reason", d.Reason,
			"cached", hit)
	}
	return 1, 1
}

// Stats is a snapshot of scanner diagnostics.
type Stats struct {
	Epoch     uint64                  `json:"epoch"`
	LastPass  time.Duration           `json:"last_pass"`
	Tracked   int                     `json:"tracked"`
	Flagged   int                     `json:"flagged"`
	CacheSize int                     `json:"cache_size"`
	CacheHits int                     `json:"cache_hits"`
	Reasons   map[decision.Reason]int `json:"reasons"`
}

// Stats returns current diagnostics. The reasons map is copied.
func (s *Scanner) Stats() Stats {
	reasons := make(map[decision.Reason]int, len(s.counts))
	for k, v := range s.counts {
		reasons[k] = v
	}
	return Stats{
		Epoch:     s.lastEpoch,
		LastPass:  s.lastPass,
		Tracked:   s.tracker.Len(),
		Flagged:   s.vis.FlaggedCount(),
		CacheSize: s.cache.Len(),
		CacheHits: s.cacheHits,
		Reasons:   reasons,
	}
}
