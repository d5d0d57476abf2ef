package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harvestlabs/modelharvest/internal/htmlutil"
	"github.com/harvestlabs/modelharvest/internal/record"
)

func init() {
	Register(&Anchors{})
}

// Anchors walks the model detail links on the page. Each anchor whose href
// points at a model page yields a candidate; the surrounding card (found by
// walking up the DOM) supplies context and pricing text.
type Anchors struct{}

func (a *Anchors) Name() string { return NameAnchors }

var modelHrefRe = regexp.MustCompile(`^/models/([^/?#]+)$`)

const (
	// maxAnchorCandidates bounds work on pages with huge link farms.
	maxAnchorCandidates = 100
	// maxParentWalk bounds the climb from an anchor to its card container.
	maxParentWalk = 5
)

func (a *Anchors) Extract(_ context.Context, src *Source) ([]record.ExtractionAttempt, []record.FailureRecord) {
	if src.Doc == nil {
		return nil, nil
	}

	var (
		attempts []record.ExtractionAttempt
		failures []record.FailureRecord
		seen     = make(map[string]bool)
	)

	src.Doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(attempts) >= maxAnchorCandidates {
			return false
		}

		href := s.AttrOr("href", "")
		m := modelHrefRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		id := strings.ReplaceAll(m[1], "--", "/")
		if seen[id] {
			return true
		}
		seen[id] = true

		name := strings.TrimSpace(s.Text())
		if name == "" || len(name) > 120 {
			failures = append(failures, record.NewFailure(NameAnchors, href, "anchor has no usable text"))
			return true
		}

		att := record.ExtractionAttempt{
			Strategy: NameAnchors,
			ID:       id,
			Name:     cleanName(name),
			Provider: providerFromID(id),
		}
		switch card := cardFor(s); {
		case card == "":
		case strings.Contains(card, "|"):
			parsed, err := ParseLine(card, NameAnchors)
			if err != nil {
				failures = append(failures, record.NewFailure(NameAnchors, card, err.Error()))
				break
			}
			mergeCard(&att, parsed)
		default:
			fillFromCard(&att, card)
		}
		attempts = append(attempts, att)
		return true
	})

	slog.Info("anchor extraction complete", "attempts", len(attempts), "failures", len(failures))
	return attempts, failures
}

// cardFor climbs from the anchor looking for the smallest ancestor whose
// text looks like a model card: it mentions tokens and carries either a
// price or the word "free".
func cardFor(s *goquery.Selection) string {
	return htmlutil.ClosestText(s, maxParentWalk, func(text string) bool {
		lower := strings.ToLower(text)
		return strings.Contains(lower, "tokens") && (strings.Contains(text, "$") || strings.Contains(lower, "free"))
	})
}

// mergeCard copies the detail fields ParseLine recovered from a delimited
// card line onto the anchor's attempt. The anchor text already named the
// model, so only details transfer; a "by <provider>" clause is more precise
// than the id slug and wins when present.
func mergeCard(att *record.ExtractionAttempt, parsed record.ExtractionAttempt) {
	if parsed.Provider != "" {
		att.Provider = parsed.Provider
	}
	att.ContextWindow = parsed.ContextWindow
	att.InputPrice = parsed.InputPrice
	att.OutputPrice = parsed.OutputPrice
	att.ImagePrice = parsed.ImagePrice
}

// fillFromCard scrapes context and pricing out of prose card text that is
// not pipe-delimited and so falls outside ParseLine's grammar.
func fillFromCard(att *record.ExtractionAttempt, card string) {
	if n := extractContextTokens(card); n > 0 {
		att.ContextWindow = strconv.Itoa(n)
	}
	lower := strings.ToLower(card)
	if strings.Contains(lower, "input") && strings.Contains(card, "$") {
		if p, ok := dollarAmount(card); ok {
			att.InputPrice = fmt.Sprintf("$%.2f/M tokens", p)
		}
	}
	if att.InputPrice == "" && att.OutputPrice == "" && strings.Contains(lower, "free") {
		att.InputPrice = "Free"
		att.OutputPrice = "Free"
	}
}
