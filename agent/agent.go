// Package agent wires the whole of tilesift together: store, settings,
// decision cache, browser, page collaborator, scan engine, change watcher,
// and the control surface.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/tilesift/browser"
	"github.com/hazyhaar/tilesift/config"
	"github.com/hazyhaar/tilesift/control"
	"github.com/hazyhaar/tilesift/decision"
	"github.com/hazyhaar/tilesift/page"
	"github.com/hazyhaar/tilesift/scan"
	"github.com/hazyhaar/tilesift/store"
)

// persistQuiet is the coalescing window for decision-cache write-back:
// repeated cache mutations inside it collapse into one persisted snapshot.
const persistQuiet = time.Second

const timerPersist = "cache-persist"

// Agent is the tilesift process. Create with New, drive with Run.
type Agent struct {
	cfg    *config.File
	logger *slog.Logger

	st       *store.Store // nil when storage is unavailable
	cache    *decision.Cache
	settings config.Settings

	loop    *scan.Loop
	sched   *scan.Scheduler
	scanner *scan.Scanner
	vis     *scan.Visibility
	tracker *scan.Tracker
	pg      *page.Rod

	// runCtx is the lifetime context, captured for work that fires from
	// loop timers after Run's call frame.
	runCtx context.Context
}

// New creates an Agent from configuration.
func New(cfg *config.File, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{cfg: cfg, logger: logger}
}

// Run starts everything and blocks until ctx is cancelled. The browser is
// the only fatal dependency; storage trouble degrades to in-memory defaults.
func (a *Agent) Run(ctx context.Context) error {
	a.runCtx = ctx

	if st, err := store.Open(a.cfg.Store.Path); err != nil {
		a.logger.Warn("agent: store unavailable, running in-memory", "path", a.cfg.Store.Path, "error", err)
	} else {
		a.st = st
		defer st.Close()
	}

	a.settings = config.DecodeSettings(a.loadBlob(ctx, store.KeySettings))
	a.cache = decision.NewCache(0)
	if n := a.cache.Load(a.loadBlob(ctx, store.KeyDecisions)); n > 0 {
		a.logger.Info("agent: decision cache restored", "entries", n)
	}

	mgr := browser.NewManager(browser.Config{
		Remote:  a.cfg.Browser.Remote,
		Headful: a.cfg.Browser.Stealth == "headful",
		Logger:  a.logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	rodPage, err := mgr.OpenPage(ctx, a.cfg.Page.URL)
	if err != nil {
		return err
	}

	a.pg = page.NewRod(rodPage, pageConfig(a.cfg), a.logger)

	a.loop = scan.NewLoop(a.logger)
	a.tracker = scan.NewTracker()
	a.vis = scan.NewVisibility(a.pg, a.loop, scan.DefaultHideDelay, a.logger)
	a.scanner = scan.NewScanner(a.pg, a.cache, a.vis, a.tracker, a.logger)
	a.sched = scan.NewScheduler(a.loop, a.settings.Debounce(), a.tracker.InvalidateAll, func(epoch uint64) {
		a.scanner.Run(a.runCtx, epoch)
	}, a.logger)

	a.cache.OnMutate(func() {
		a.loop.Schedule(timerPersist, persistQuiet, a.persistCache)
	})

	if err := a.pg.InjectCSS(ctx); err != nil {
		a.logger.Warn("agent: css injection failed", "error", err)
	}
	if err := a.injectObserver(ctx, rodPage); err != nil {
		a.logger.Warn("agent: observer injection failed, scans only on external signals", "error", err)
	}

	if a.st != nil {
		go a.st.Watch(ctx, store.WatchOptions{
			Interval: 500 * time.Millisecond,
			Debounce: 200 * time.Millisecond,
			Logger:   a.logger,
		}, func(keys []string) {
			a.loop.Post(func() { a.onStoreChange(keys) })
		})
	}

	srv := control.NewServer(a.cfg.Control.Listen, a, a.logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("agent: control server failed", "listen", a.cfg.Control.Listen, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	a.logger.Info("agent: started",
		"url", a.cfg.Page.URL,
		"contexts", len(a.cfg.Page.Contexts),
		"control", a.cfg.Control.Listen)

	a.loop.Post(func() {
		a.applySettings(a.settings, false)
		a.sched.Kick()
	})
	a.loop.Run(ctx)

	// One last snapshot so the session's decisions survive the restart.
	a.persistCache()
	return nil
}

// applySettings makes s the live settings: recompile matchers, retune the
// debounce, re-apply the reveal override, and (on replacement) force a full
// rescan with element state reset. Loop goroutine only.
func (a *Agent) applySettings(s config.Settings, rescan bool) {
	a.settings = s
	a.scanner.Configure(s.Compile(), s.DefaultPolicy, s.Debug)
	a.sched.SetDebounce(s.Debounce())
	a.vis.SetReveal(a.runCtx, s.Reveal)
	if rescan {
		a.sched.Rescan()
	}
}

// onStoreChange reacts to watcher notifications. Loop goroutine only.
func (a *Agent) onStoreChange(keys []string) {
	for _, key := range keys {
		switch key {
		case store.KeySettings:
			s := config.DecodeSettings(a.loadBlob(a.runCtx, store.KeySettings))
			a.logger.Info("agent: settings replaced")
			a.applySettings(s, true)
		case store.KeyRescan:
			a.sched.Rescan()
		case store.KeyDecisions:
			// Our own write-back; nothing to do.
		}
	}
}

// persistCache snapshots the decision cache into the store. Failures are
// swallowed: the in-memory cache stays authoritative for the session.
func (a *Agent) persistCache() {
	if a.st == nil {
		return
	}
	data, err := a.cache.Snapshot()
	if err != nil {
		a.logger.Warn("agent: cache snapshot failed", "error", err)
		return
	}
	if err := a.st.Save(context.Background(), store.KeyDecisions, data); err != nil {
		a.logger.Warn("agent: cache persist failed", "error", err)
		return
	}
	a.logger.Debug("agent: cache persisted", "entries", a.cache.Len())
}

func (a *Agent) loadBlob(ctx context.Context, key string) []byte {
	if a.st == nil {
		return nil
	}
	data, err := a.st.Load(ctx, key)
	if err != nil {
		a.logger.Warn("agent: load failed", "key", key, "error", err)
		return nil
	}
	return data
}

func pageConfig(cfg *config.File) page.Config {
	contexts := make([]scan.Context, 0, len(cfg.Page.Contexts))
	for _, c := range cfg.Page.Contexts {
		contexts = append(contexts, scan.Context{
			Name:            c.Name,
			Root:            c.Root,
			Selector:        c.Selector,
			ReprocessAlways: c.ReprocessAlways,
		})
	}
	return page.Config{
		IdentityParam: cfg.Page.IdentityParam,
		Contexts:      contexts,
		Fields: page.Fields{
			Title:    cfg.Page.Fields.Title,
			Channel:  cfg.Page.Fields.Channel,
			Duration: cfg.Page.Fields.Duration,
			Link:     cfg.Page.Fields.Link,
		},
	}
}
