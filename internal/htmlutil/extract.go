// Package htmlutil holds small goquery helpers shared by the HTML
// extraction strategies.
package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ClosestText climbs from sel through at most maxDepth ancestors and
// returns the trimmed text of the first one whose text satisfies match.
// Returns "" when no ancestor qualifies.
func ClosestText(sel *goquery.Selection, maxDepth int, match func(string) bool) string {
	cur := sel.Parent()
	for i := 0; i < maxDepth && cur.Length() > 0; i++ {
		text := strings.TrimSpace(cur.Text())
		if match(text) {
			return text
		}
		cur = cur.Parent()
	}
	return ""
}

// Parse builds a goquery document from a buffered response body.
func Parse(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
