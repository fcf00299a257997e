// Package page implements the page-context collaborator over a live rod
// page: candidate enumeration, field extraction from tile markup, the
// visibility markers, and the active-identity probe.
package page

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Fields locates the item fields inside one tile's markup.
type Fields struct {
	Title    string
	Channel  string
	Duration string
	Link     string
}

// RawItem is the best-effort extraction result: empty strings where the
// markup did not cooperate, never an error.
type RawItem struct {
	Title    string
	Channel  string
	Duration string
	Identity string
}

// extractItem reads the item fields from a tile's outer HTML. The tile's
// text fields populate asynchronously after insertion, so any of them may
// be empty on a given pass.
func extractItem(tileHTML string, f Fields, identityParam string) RawItem {
	doc, err := html.Parse(strings.NewReader(tileHTML))
	if err != nil {
		return RawItem{}
	}

	var it RawItem
	if n := firstMatch(doc, f.Title); n != nil {
		it.Title = nodeText(n)
		if it.Title == "" {
			it.Title = strings.TrimSpace(attr(n, "title"))
		}
	}
	if n := firstMatch(doc, f.Channel); n != nil {
		it.Channel = nodeText(n)
	}
	if n := firstMatch(doc, f.Duration); n != nil {
		it.Duration = nodeText(n)
	}
	if n := firstMatch(doc, f.Link); n != nil {
		it.Identity = identityFromHref(attr(n, "href"), identityParam)
	}
	return it
}

// identityFromHref pulls the item identity out of a tile link. Relative
// hrefs are the common case.
func identityFromHref(href, param string) string {
	if href == "" || param == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(param)
}

// nodeText collects the node's text content with whitespace runs collapsed.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
