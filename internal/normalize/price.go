// Package normalize holds the pure formatting functions that turn raw
// scraped or API values into the canonical display strings of the output
// contract. Every function here is idempotent and never fails; unparseable
// input passes through trimmed.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceKind selects the Free/empty behavior for zero-valued prices.
type PriceKind string

const (
	PriceInput  PriceKind = "input"
	PriceOutput PriceKind = "output"
	// PriceImage is never rendered as "Free": image pricing is either a
	// priced string or empty, matching the source site's own display.
	PriceImage PriceKind = "image"
)

// Price converts a raw per-token price into its canonical display string.
// Raw prices from the API are dollar amounts per single token and differ by
// orders of magnitude across providers, so the formatting tier scales to
// per-million, per-thousand, or per-token units.
func Price(raw string, kind PriceKind) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return freeOrEmpty(kind)
	}

	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 {
		return raw
	}

	switch {
	case p == 0:
		return freeOrEmpty(kind)
	case p < 0.001:
		return fmt.Sprintf("$%.2f/M tokens", p*1_000_000)
	case p < 1:
		return fmt.Sprintf("$%.2f/K tokens", p*1_000)
	default:
		return fmt.Sprintf("$%.2f/token", p)
	}
}

func freeOrEmpty(kind PriceKind) string {
	if kind == PriceImage {
		return ""
	}
	return "Free"
}
