package config

import (
	"encoding/json"
	"time"

	"github.com/hazyhaar/tilesift/classify"
)

// Settings is the persisted, user-tunable behaviour: the four keyword lists,
// the fallback policy, the reveal override, the scan debounce, and the debug
// flag. It is replaced wholesale on every change notification, never
// partially mutated.
type Settings struct {
	Strong   []string `json:"strong"`
	Moderate []string `json:"moderate"`
	Negative []string `json:"negative"`
	Channel  []string `json:"channel"`

	DefaultPolicy classify.Policy `json:"default_policy"`
	Reveal        bool            `json:"reveal"`
	DebounceMS    int             `json:"debounce_ms"`
	Debug         bool            `json:"debug"`
}

// DefaultSettings returns the built-in keyword lists and conservative
// defaults: unknown tiles stay visible.
func DefaultSettings() Settings {
	return Settings{
		Strong: []string{
			"official video", "official music video", "official audio",
			"music video", "lyric video", "lyrics", "visualizer",
			"full album", "live session", "remix", "cover", "feat", "ft",
		},
		Moderate: []string{
			"live", "acoustic", "session", "performance", "concert",
			"single", "album", "ep", "soundtrack", "ost", "instrumental",
			"unplugged", "mixtape",
		},
		Negative: []string{
			"podcast", "interview", "reaction", "review", "trailer",
			"gameplay", "walkthrough", "tutorial", "vlog", "news",
			"documentary", "highlights", "asmr", "unboxing",
		},
		Channel: []string{
			"vevo", "records", "music", "band", "orchestra", "label",
			"recordings", "official",
		},
		DefaultPolicy: classify.PolicyAssumeMatch,
		DebounceMS:    250,
	}
}

// DecodeSettings parses a persisted settings blob. A nil blob or a blob that
// fails to parse degrades to DefaultSettings; a parsed blob is normalised
// (unknown policy values fall back to assume-match).
func DecodeSettings(data []byte) Settings {
	if len(data) == 0 {
		return DefaultSettings()
	}
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings()
	}
	if s.DefaultPolicy != classify.PolicyAssumeNone {
		s.DefaultPolicy = classify.PolicyAssumeMatch
	}
	if s.DebounceMS <= 0 {
		s.DebounceMS = 250
	}
	return s
}

// Encode serialises the settings for persistence.
func (s Settings) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Debounce returns the scan debounce window.
func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Compile derives the matcher set. Pure: called on load and on every
// settings replacement, the result replaces the previous set wholesale.
func (s Settings) Compile() *classify.Matchers {
	return classify.Compile(s.Strong, s.Moderate, s.Negative, s.Channel)
}
