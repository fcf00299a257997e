package agent

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

//go:embed observer.js
var observerJS string

const bindingName = "__tilesift"

// injectObserver wires DOM change signals from the page into the scan
// scheduler: a binding for JS to call, the embedded MutationObserver script,
// and a load-event listener to re-arm everything after full navigations.
func (a *Agent) injectObserver(ctx context.Context, p *rod.Page) error {
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p); err != nil {
		a.logger.Warn("agent: add binding failed (may already exist)", "error", err)
	}

	go a.listenBinding(ctx, p)
	go a.listenLoad(ctx, p)

	if _, err := p.Context(ctx).Eval(observerJS); err != nil {
		return fmt.Errorf("agent: inject observer.js: %w", err)
	}
	return nil
}

// listenBinding receives the JS observer's signals via Runtime.bindingCalled.
func (a *Agent) listenBinding(ctx context.Context, p *rod.Page) {
	p.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		var sig struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal([]byte(e.Payload), &sig); err != nil {
			a.logger.Warn("agent: bad binding payload", "error", err)
			return
		}
		switch sig.Type {
		case "mutations":
			a.loop.Post(a.sched.Kick)
		case "navigate":
			a.logger.Info("agent: spa navigation", "url", sig.URL)
			a.loop.Post(func() { a.onNavigate(ctx, p) })
		}
	})()
}

// listenLoad re-arms the injected pieces after full page loads, which wipe
// both the stylesheet and the observer.
func (a *Agent) listenLoad(ctx context.Context, p *rod.Page) {
	p.Context(ctx).EachEvent(func(e *proto.PageLoadEventFired) {
		a.loop.Post(func() { a.onDocumentReady(ctx, p) })
	})()
}

// onNavigate handles an SPA navigation: the document survives, but the
// active item identity likely changed and recycled tiles now show different
// content. The scanner's identity check does the invalidation; we just make
// sure a pass happens. Loop goroutine only.
func (a *Agent) onNavigate(ctx context.Context, p *rod.Page) {
	if err := a.pg.InjectCSS(ctx); err != nil {
		a.logger.Debug("agent: css re-inject failed", "error", err)
	}
	a.sched.Kick()
}

// onDocumentReady handles a full load or document reset. Loop goroutine only.
func (a *Agent) onDocumentReady(ctx context.Context, p *rod.Page) {
	a.logger.Info("agent: document loaded, re-arming")
	if err := a.pg.InjectCSS(ctx); err != nil {
		a.logger.Debug("agent: css re-inject failed", "error", err)
	}
	if _, err := p.Context(ctx).Eval(observerJS); err != nil {
		a.logger.Warn("agent: observer re-inject failed", "error", err)
	}
	a.sched.Kick()
}
