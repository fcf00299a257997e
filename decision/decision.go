// Package decision holds the classification verdict value type and the
// bounded, recency-tracked cache that remembers verdicts across scans and
// sessions.
package decision

import "time"

// Reason identifies which cascade rule produced a decision. Used for
// diagnostics only; behaviour never branches on it after the fact.
type Reason string

const (
	ReasonStrong           Reason = "strong"
	ReasonNegative         Reason = "non"
	ReasonModerate         Reason = "moderate"
	ReasonModerateDuration Reason = "moderate+duration"
	ReasonDurationChannel  Reason = "duration+channel"
	ReasonDefault          Reason = "default"
)

// Outcome is the payload of a rule hit: match or not, and why.
type Outcome struct {
	Match  bool
	Reason Reason
}

// Decision is an immutable classification verdict. Cache entries are whole
// replacements; a Decision is never partially updated after creation.
type Decision struct {
	Match  bool
	Reason Reason
	At     time.Time
}

// New stamps an outcome into a Decision.
func New(out Outcome) Decision {
	return Decision{Match: out.Match, Reason: out.Reason, At: time.Now()}
}
