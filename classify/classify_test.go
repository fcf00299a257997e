package classify

import (
	"testing"

	"github.com/hazyhaar/tilesift/decision"
)

func testMatchers() *Matchers {
	return Compile(
		[]string{"live session", "official video"},
		[]string{"live", "acoustic"},
		[]string{"live", "podcast"},
		[]string{"vevo", "records"},
	)
}

func TestClassify_StrongOutranksNegative(t *testing.T) {
	m := testMatchers()
	// "live" is configured both as a negative token and inside the strong
	// phrase; the strong rule runs first and wins.
	it := BuildItem("Live Session Highlights", "", "", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if !d.Match || d.Reason != decision.ReasonStrong {
		t.Fatalf("got (match=%v, reason=%s), want (true, %s)", d.Match, d.Reason, decision.ReasonStrong)
	}
}

func TestClassify_Negative(t *testing.T) {
	m := testMatchers()
	it := BuildItem("True Crime Podcast #42", "", "1:02:03", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if d.Match || d.Reason != decision.ReasonNegative {
		t.Fatalf("got (match=%v, reason=%s), want (false, %s)", d.Match, d.Reason, decision.ReasonNegative)
	}
}

func TestClassify_ModerateDurationVeto(t *testing.T) {
	m := Compile(nil, []string{"acoustic"}, nil, nil)
	// 90 minutes is past the extreme-long bound and vetoes the moderate hit.
	it := BuildItem("Acoustic evening", "", "1:30:00", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if d.Match || d.Reason != decision.ReasonModerateDuration {
		t.Fatalf("got (match=%v, reason=%s), want (false, %s)", d.Match, d.Reason, decision.ReasonModerateDuration)
	}
}

func TestClassify_ModerateWithSaneDuration(t *testing.T) {
	m := Compile(nil, []string{"acoustic"}, nil, nil)
	it := BuildItem("Acoustic evening", "", "4:00", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if !d.Match || d.Reason != decision.ReasonModerate {
		t.Fatalf("got (match=%v, reason=%s), want (true, %s)", d.Match, d.Reason, decision.ReasonModerate)
	}
}

func TestClassify_ModerateWithUnknownDuration(t *testing.T) {
	m := Compile(nil, []string{"acoustic"}, nil, nil)
	// Unknown duration never contradicts; the moderate hit stands.
	it := BuildItem("Acoustic evening", "", "", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if !d.Match || d.Reason != decision.ReasonModerate {
		t.Fatalf("got (match=%v, reason=%s), want (true, %s)", d.Match, d.Reason, decision.ReasonModerate)
	}
}

func TestClassify_DurationChannel(t *testing.T) {
	m := testMatchers()
	// No keyword fires; track-length duration plus a known music channel.
	it := BuildItem("Some upload", "ArtistVEVO", "4:00", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if d.Reason != decision.ReasonDurationChannel {
		t.Fatalf("reason: got %s, want %s", d.Reason, decision.ReasonDurationChannel)
	}
	if !d.Match {
		t.Fatal("expected a match")
	}
}

func TestClassify_DurationChannelNeedsBoth(t *testing.T) {
	m := testMatchers()

	// Right duration, wrong channel.
	d := m.Classify(BuildItem("Some upload", "Random Channel", "4:00", ""), PolicyAssumeNone)
	if d.Reason != decision.ReasonDefault {
		t.Errorf("wrong channel: got reason %s, want %s", d.Reason, decision.ReasonDefault)
	}

	// Right channel, wrong duration.
	d = m.Classify(BuildItem("Some upload", "ArtistVEVO", "45:00", ""), PolicyAssumeNone)
	if d.Reason != decision.ReasonDefault {
		t.Errorf("wrong duration: got reason %s, want %s", d.Reason, decision.ReasonDefault)
	}
}

func TestClassify_DefaultPolicy(t *testing.T) {
	m := testMatchers()
	it := BuildItem("Completely unrelated", "Somebody", "12:34", "")

	d := m.Classify(it, PolicyAssumeMatch)
	if !d.Match || d.Reason != decision.ReasonDefault {
		t.Errorf("assume-match: got (match=%v, reason=%s), want (true, %s)", d.Match, d.Reason, decision.ReasonDefault)
	}

	d = m.Classify(it, PolicyAssumeNone)
	if d.Match || d.Reason != decision.ReasonDefault {
		t.Errorf("assume-no-match: got (match=%v, reason=%s), want (false, %s)", d.Match, d.Reason, decision.ReasonDefault)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	m := testMatchers()
	it := BuildItem("Artist - Song (Official Video)", "ArtistVEVO", "3:45", "abc123")

	first := m.Classify(it, PolicyAssumeMatch)
	second := m.Classify(it, PolicyAssumeMatch)
	if first.Match != second.Match || first.Reason != second.Reason {
		t.Fatalf("not idempotent: first (%v, %s), second (%v, %s)",
			first.Match, first.Reason, second.Match, second.Reason)
	}
}

func TestClassify_ChannelTextJoinsCombined(t *testing.T) {
	m := Compile([]string{"official video"}, nil, nil, nil)
	// The strong token sits in the channel, not the title.
	it := BuildItem("Some Song", "Official Video Channel", "", "")

	d := m.Classify(it, PolicyAssumeNone)
	if !d.Match || d.Reason != decision.ReasonStrong {
		t.Fatalf("got (match=%v, reason=%s), want (true, %s)", d.Match, d.Reason, decision.ReasonStrong)
	}
}

func TestCacheKey(t *testing.T) {
	if got := BuildItem("My Title!", "", "", "xyz").CacheKey(); got != "id:xyz" {
		t.Errorf("identity key: got %q, want %q", got, "id:xyz")
	}
	if got := BuildItem("My Title!", "", "", "").CacheKey(); got != "title:my title" {
		t.Errorf("title key: got %q, want %q", got, "title:my title")
	}
	if got := BuildItem("!!!", "", "", "").CacheKey(); got != "" {
		t.Errorf("uncacheable item: got %q, want empty", got)
	}
}

func TestExtractable(t *testing.T) {
	if BuildItem("", "ch", "1:00", "").Extractable() {
		t.Error("no title, no identity: must not be extractable")
	}
	if !BuildItem("", "", "", "id1").Extractable() {
		t.Error("identity alone is enough")
	}
	if !BuildItem("t", "", "", "").Extractable() {
		t.Error("title alone is enough")
	}
}
