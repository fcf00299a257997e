package page

import (
	"strings"

	"golang.org/x/net/html"
)

// Simple CSS selector matching over parsed HTML. Supported forms:
//
//	tag          "span", "a"
//	.class       ".ytd-channel-name"
//	#id          "#video-title"
//	tag.class    "span.time-status"
//	tag#id       "a#thumbnail"
//	tag[attr]    "div[hidden]"
//	tag[attr=v]  "a[role=link]"
//
// and combinations separated by spaces (descendant combinator). This covers
// every selector a tile extraction config realistically needs without
// pulling in a full engine.

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

// firstMatch returns the first node under root matching the selector, in
// document order, or nil.
func firstMatch(root *html.Node, selector string) *html.Node {
	if m := querySelectorAll(root, selector, 1); len(m) > 0 {
		return m[0]
	}
	return nil
}

// querySelectorAll returns up to limit nodes matching a descendant-combined
// simple selector; limit <= 0 means all.
func querySelectorAll(root *html.Node, selector string, limit int) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(root, parts[0], limit)
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			next = append(next, matchSimple(parent, parts[i], limit)...)
		}
		matches = next
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func matchSimple(root *html.Node, sel string, limit int) []*html.Node {
	m := parseSimpleSelector(sel)
	var results []*html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && matchesSelector(n, m) {
			results = append(results, n)
			if limit > 0 && len(results) >= limit {
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return results
}

func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eq := strings.IndexByte(attrPart, '='); eq >= 0 {
			s.attrKey = attrPart[:eq]
			s.attrVal = strings.Trim(attrPart[eq+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
	}
	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}
	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}
	s.tag = sel
	return s
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	if s.attrKey != "" {
		val, present := "", false
		for _, a := range n.Attr {
			if a.Key == s.attrKey {
				val, present = a.Val, true
				break
			}
		}
		if !present {
			return false
		}
		if s.attrVal != "" && val != s.attrVal {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
