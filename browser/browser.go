// Package browser manages the Chrome side: launch or attach via rod, open
// the watched page with stealth applied, and tear everything down.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the browser manager.
type Config struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via the rod launcher.
	Remote string

	// Headful disables headless mode for debugging the live page.
	Headful bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome connection.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a Manager. Call Start to launch or connect.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (m *Manager) Start(ctx context.Context) error {
	log := m.cfg.Logger

	wsURL := m.cfg.Remote
	if wsURL == "" {
		l := launcher.New().
			Headless(!m.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		m.lnch = l
		wsURL = u
		log.Info("browser: launched local chrome", "url", wsURL, "headful", m.cfg.Headful)
	} else {
		log.Info("browser: connecting to remote", "url", wsURL)
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return nil
}

// OpenPage opens a stealth tab, navigates to pageURL, and waits for load.
// A load timeout is logged, not fatal: the page may still be usable and the
// mutation observer picks up late content anyway.
func (m *Manager) OpenPage(ctx context.Context, pageURL string) (*rod.Page, error) {
	if m.browser == nil {
		return nil, fmt.Errorf("browser: not started")
	}

	page, err := stealth.Page(m.browser)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return page, nil
}

// Close disconnects from Chrome and kills a locally launched instance.
func (m *Manager) Close() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
	}
	return err
}
