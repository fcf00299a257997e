package classify

import "strings"

// Duration bounds, in seconds.
const (
	// MinTrackSeconds..MaxTrackSeconds is the typical track length range.
	MinTrackSeconds = 90
	MaxTrackSeconds = 600

	// Outside ExtremeShortSeconds..ExtremeLongSeconds a duration vetoes an
	// otherwise-positive moderate keyword signal.
	ExtremeShortSeconds = 30
	ExtremeLongSeconds  = 1800
)

// ParseDuration converts a displayed duration string to seconds. The text is
// stripped down to digits and colons, split on colon, and read right to left:
// rightmost segment is seconds, the next minutes, the next hours, and any
// further segments keep multiplying by 60. Returns ok=false when the text
// contains no digit or any segment is non-numeric.
func ParseDuration(text string) (seconds int, ok bool) {
	hasDigit := false
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
			b.WriteRune(r)
		case r == ':':
			b.WriteRune(r)
		}
	}
	if !hasDigit {
		return 0, false
	}

	total := 0
	unit := 1
	segs := strings.Split(b.String(), ":")
	for i := len(segs) - 1; i >= 0; i-- {
		n, valid := atoi(segs[i])
		if !valid {
			return 0, false
		}
		total += n * unit
		unit *= 60
	}
	return total, true
}

// atoi is a minimal non-negative integer parse. Empty segments fail, which
// covers inputs like "1::30" or a leading/trailing colon.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// InTargetRange reports whether a known duration falls in the typical track
// length range. An unknown duration (known=false) is never in range.
func InTargetRange(seconds int, known bool) bool {
	return known && seconds >= MinTrackSeconds && seconds <= MaxTrackSeconds
}

// StronglyContradicts reports whether a known duration is extreme enough to
// veto a moderate keyword match. Unknown durations never contradict.
func StronglyContradicts(seconds int, known bool) bool {
	return known && (seconds < ExtremeShortSeconds || seconds > ExtremeLongSeconds)
}
