package classify

// Policy is the fallback outcome applied when no explicit rule fires.
type Policy string

const (
	// PolicyAssumeMatch keeps unrecognised tiles visible. This is the
	// default: hiding requires an explicit signal or an explicit opt-in.
	PolicyAssumeMatch Policy = "assume-match"
	PolicyAssumeNone  Policy = "assume-no-match"
)

// Matchers holds the compiled keyword token sets. Derived data: recompiled
// from settings on every settings replacement, never mutated in place and
// never persisted.
type Matchers struct {
	strong   []string
	moderate []string
	negative []string
	channel  []string
}

// Compile normalises the four keyword lists into a Matchers value, dropping
// entries that normalise to nothing. Order within each list is preserved,
// though evaluation is order-insensitive (any hit fires the rule).
func Compile(strong, moderate, negative, channel []string) *Matchers {
	return &Matchers{
		strong:   normalizeList(strong),
		moderate: normalizeList(moderate),
		negative: normalizeList(negative),
		channel:  normalizeList(channel),
	}
}

func normalizeList(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// containsAny reports whether haystack contains any token of the set as a
// whole word or contiguous phrase.
func containsAny(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if ContainsToken(haystack, tok) {
			return true
		}
	}
	return false
}
