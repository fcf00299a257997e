// Package classify decides whether one extracted content tile is music.
//
// It is the pure half of the engine: text normalisation, duration parsing,
// keyword matcher compilation, and the ordered rule cascade. Nothing in this
// package touches the page, the store, or a clock beyond timestamping the
// produced decision.
package classify

import "strings"

// Normalize canonicalises free text for token matching: lower-case, every
// run of non-alphanumeric characters collapsed to a single space, trimmed.
// Empty or absent input yields the empty string.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range strings.ToLower(text) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// ContainsToken reports whether haystack contains token as a whole word.
// Both sides are padded with a single space before the substring test, so a
// multi-word token matches only as a contiguous phrase, never as independent
// words. Both inputs must already be normalised.
func ContainsToken(haystack, token string) bool {
	if token == "" || haystack == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+token+" ")
}
