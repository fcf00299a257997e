package classify

import (
	"github.com/hazyhaar/tilesift/decision"
)

// rule is one step of the cascade. It reports whether it fired and, if so,
// the outcome. Rules run in declaration order and the first hit wins; there
// is no scoring and no combination across rules.
type rule func(m *Matchers, text string, it Item) (out decision.Outcome, fired bool)

// cascade is the classification order contract:
//  1. strong keyword        -> match
//  2. negative keyword      -> no-match
//  3. moderate keyword      -> match, unless the duration is extreme
//  4. track-length duration on a known music channel -> match
//
// Anything below falls through to the configured default policy.
var cascade = []rule{
	ruleStrong,
	ruleNegative,
	ruleModerate,
	ruleDurationChannel,
}

func ruleStrong(m *Matchers, text string, _ Item) (decision.Outcome, bool) {
	if containsAny(text, m.strong) {
		return decision.Outcome{Match: true, Reason: decision.ReasonStrong}, true
	}
	return decision.Outcome{}, false
}

func ruleNegative(m *Matchers, text string, _ Item) (decision.Outcome, bool) {
	if containsAny(text, m.negative) {
		return decision.Outcome{Match: false, Reason: decision.ReasonNegative}, true
	}
	return decision.Outcome{}, false
}

func ruleModerate(m *Matchers, text string, it Item) (decision.Outcome, bool) {
	if !containsAny(text, m.moderate) {
		return decision.Outcome{}, false
	}
	if StronglyContradicts(it.Seconds, it.DurationKnown) {
		return decision.Outcome{Match: false, Reason: decision.ReasonModerateDuration}, true
	}
	return decision.Outcome{Match: true, Reason: decision.ReasonModerate}, true
}

func ruleDurationChannel(m *Matchers, _ string, it Item) (decision.Outcome, bool) {
	if InTargetRange(it.Seconds, it.DurationKnown) && containsAny(Normalize(it.Channel), m.channel) {
		return decision.Outcome{Match: true, Reason: decision.ReasonDurationChannel}, true
	}
	return decision.Outcome{}, false
}

// Classify runs the rule cascade over one item. It is pure apart from the
// decision timestamp: the same item, matchers, and policy always produce the
// same outcome.
func (m *Matchers) Classify(it Item, policy Policy) decision.Decision {
	text := it.NormTitle
	if ch := Normalize(it.Channel); ch != "" {
		text += " " + ch
	}

	for _, r := range cascade {
		if out, fired := r(m, text, it); fired {
			return decision.New(out)
		}
	}

	// No rule fired: never hide confidently. Only an explicit
	// assume-no-match policy suppresses here.
	return decision.New(decision.Outcome{
		Match:  policy != PolicyAssumeNone,
		Reason: decision.ReasonDefault,
	})
}
