package strategy

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harvestlabs/modelharvest/internal/record"
)

func init() {
	Register(&FreeText{capHint: DefaultFreeTextCap})
}

// FreeText is the last-resort strategy: it scans the page's visible text
// for model IDs of well-known providers. It recovers only identity fields,
// so its records score low; it exists to keep a layout change from turning
// the run into a total loss.
type FreeText struct {
	capHint int
}

func (f *FreeText) Name() string { return NameFreeText }

// DefaultFreeTextCap bounds how many IDs the scan keeps.
const DefaultFreeTextCap = 20

// SetFreeTextCap overrides the scan cap for subsequent runs.
func SetFreeTextCap(n int) {
	s, err := Get(NameFreeText)
	if err != nil {
		return
	}
	if ft, ok := s.(*FreeText); ok && n > 0 {
		ft.capHint = n
	}
}

// Only IDs under these provider slugs are trusted when found in loose text.
var modelIDRe = regexp.MustCompile(`\b(openai|anthropic|google|meta-llama|mistralai|qwen)/([a-z0-9][a-z0-9.:_-]*[a-z0-9])`)

func (f *FreeText) Extract(_ context.Context, src *Source) ([]record.ExtractionAttempt, []record.FailureRecord) {
	if src.Doc == nil {
		return nil, nil
	}

	limit := f.capHint
	if limit <= 0 {
		limit = DefaultFreeTextCap
	}

	text := src.Doc.Text()
	var (
		attempts []record.ExtractionAttempt
		seen     = make(map[string]bool)
	)
	for _, m := range modelIDRe.FindAllStringSubmatch(text, -1) {
		if len(attempts) >= limit {
			break
		}
		id := m[0]
		if seen[id] {
			continue
		}
		seen[id] = true

		attempts = append(attempts, record.ExtractionAttempt{
			Strategy: NameFreeText,
			ID:       id,
			Name:     nameFromSlug(m[2]),
			Provider: m[1],
		})
	}

	slog.Info("free-text extraction complete", "attempts", len(attempts))
	return attempts, nil
}

// nameFromSlug turns "gpt-4-turbo" into "Gpt 4 Turbo". Crude, but these
// records only survive when nothing better was extracted.
func nameFromSlug(slug string) string {
	words := strings.Join(strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ':' || r == '.'
	}), " ")
	return cases.Title(language.English).String(words)
}
