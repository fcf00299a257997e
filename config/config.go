// Package config holds the two configuration layers of tilesift: the
// deployment file (where to run, what markup to look at) and the persisted
// user settings (what counts as music, how aggressively to hide).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the deployment configuration, loaded once at startup. Markup
// knowledge (selectors) lives here, not in code: when the page's structure
// shifts, the fix is a config change.
type File struct {
	Page    PageConfig    `yaml:"page"`
	Browser BrowserConfig `yaml:"browser"`
	Store   StoreConfig   `yaml:"store"`
	Control ControlConfig `yaml:"control"`
}

// PageConfig describes the page to watch and how to read its tiles.
type PageConfig struct {
	URL string `yaml:"url"`

	// IdentityParam is the URL query parameter carrying an item identity,
	// both on tile links and on the page's own address.
	IdentityParam string `yaml:"identity_param"`

	Contexts []ContextConfig `yaml:"contexts"`
	Fields   FieldSelectors  `yaml:"fields"`
}

// ContextConfig is one place on the page to enumerate candidate tiles.
type ContextConfig struct {
	Name     string `yaml:"name"`
	Root     string `yaml:"root"`
	Selector string `yaml:"selector"`

	// ReprocessAlways marks contexts whose nodes are reused for different
	// items without an observable identity change; tiles there are
	// reclassified on every pass.
	ReprocessAlways bool `yaml:"reprocess_always"`
}

// FieldSelectors locate the item fields inside one candidate tile.
type FieldSelectors struct {
	Title    string `yaml:"title"`
	Channel  string `yaml:"channel"`
	Duration string `yaml:"duration"`
	Link     string `yaml:"link"`
}

// BrowserConfig controls the Chrome side.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch.
	Remote string `yaml:"remote"`
	// Stealth: headless (default) or headful.
	Stealth string `yaml:"stealth"`
}

// StoreConfig locates the SQLite store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ControlConfig configures the local command endpoint.
type ControlConfig struct {
	Listen string `yaml:"listen"`
}

// LoadFile reads a YAML configuration file and applies defaults. An empty
// path yields pure defaults.
func LoadFile(path string) (*File, error) {
	cfg := &File{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *File) applyDefaults() {
	if c.Page.URL == "" {
		c.Page.URL = "https://www.youtube.com"
	}
	if c.Page.IdentityParam == "" {
		c.Page.IdentityParam = "v"
	}
	if len(c.Page.Contexts) == 0 {
		c.Page.Contexts = []ContextConfig{
			{Name: "related", Selector: "ytd-compact-video-renderer"},
			{Name: "grid", Selector: "ytd-rich-item-renderer"},
			// Endscreen tiles are recycled across videos with no identity
			// signal on the node itself.
			{Name: "endscreen", Selector: ".ytp-videowall-still", ReprocessAlways: true},
		}
	}
	if c.Page.Fields.Title == "" {
		c.Page.Fields.Title = "#video-title"
	}
	if c.Page.Fields.Channel == "" {
		c.Page.Fields.Channel = ".ytd-channel-name"
	}
	if c.Page.Fields.Duration == "" {
		c.Page.Fields.Duration = "span.ytd-thumbnail-overlay-time-status-renderer"
	}
	if c.Page.Fields.Link == "" {
		c.Page.Fields.Link = "a"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Store.Path == "" {
		c.Store.Path = "tilesift.db"
	}
	if c.Control.Listen == "" {
		c.Control.Listen = "127.0.0.1:7483"
	}
}
