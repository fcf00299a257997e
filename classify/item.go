package classify

// Item is the record extracted from one candidate tile during a scan. It is
// ephemeral: rebuilt on every visit, never persisted.
type Item struct {
	Title        string
	Channel      string
	DurationText string

	// Seconds is the parsed duration; valid only when DurationKnown.
	Seconds       int
	DurationKnown bool

	// Identity is an opaque external ID extracted from the tile (e.g. a
	// video ID), empty when unknown.
	Identity string

	// NormTitle is Normalize(Title), computed once at build time.
	NormTitle string
}

// BuildItem derives an Item from the raw extracted fields, normalising the
// title and parsing the duration up front.
func BuildItem(title, channel, durationText, identity string) Item {
	it := Item{
		Title:        title,
		Channel:      channel,
		DurationText: durationText,
		Identity:     identity,
		NormTitle:    Normalize(title),
	}
	it.Seconds, it.DurationKnown = ParseDuration(durationText)
	return it
}

// CacheKey returns the stable identity used to remember a decision across
// scans and sessions: the external identity when known, else the normalised
// title. Empty means the item is not cacheable.
func (it Item) CacheKey() string {
	if it.Identity != "" {
		return "id:" + it.Identity
	}
	if it.NormTitle != "" {
		return "title:" + it.NormTitle
	}
	return ""
}

// Extractable reports whether enough was extracted to classify at all. Items
// with neither a title nor an identity are skipped and retried next pass.
func (it Item) Extractable() bool {
	return it.Title != "" || it.Identity != ""
}
