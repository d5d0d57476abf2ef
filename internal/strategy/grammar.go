package strategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/harvestlabs/modelharvest/internal/normalize"
	"github.com/harvestlabs/modelharvest/internal/record"
)

// The models page renders each entry as a delimited line of the informal
// grammar:
//
//	<name> [tokens] | by <provider> | <n>K context | $x/M input | $y/M output [| $z/K img]
//
// ParseLine implements it for the anchor-heuristic and free-text strategies.

// namePatterns are tried in order; the first match wins. Family-specific
// patterns go first so "Claude 3.5 Sonnet" is not swallowed by the generic
// keyword pattern's greedy tail.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(GPT-\d+(?:\.\d+)?(?:\s+(?:Turbo|Pro|Mini))?)`),
	regexp.MustCompile(`(Claude\s+\d+(?:\.\d+)?(?:\s+(?:Sonnet|Opus|Haiku))?)`),
	regexp.MustCompile(`(Gemini\s+\d+(?:\.\d+)?(?:\s+(?:Pro|Flash))?)`),
	regexp.MustCompile(`(Llama\s+\d+(?:\.\d+)?\s*[Bb]?)`),
	regexp.MustCompile(`(Mistral\s+\d+[Bb]?)`),
	regexp.MustCompile(`(Kimi\s+Dev\s+\d+[Bb]?)`),
	regexp.MustCompile(`(OpenAI\s+o\d+(?:\s+Pro)?)`),
	regexp.MustCompile(`([A-Z][a-zA-Z\s\d]*?(?:GPT|Claude|Llama|Mistral|Gemini|Mixtral|Qwen|Yi|Cohere|DeepSeek|Phi|Solar|Command|Kimi)[\w\s().-]*)`),
	regexp.MustCompile(`([A-Z][a-zA-Z\s\d]*?(?:Turbo|Ultra|Pro|Dev|Chat|Instruct)[\w\s().]*)`),
	regexp.MustCompile(`([A-Z][A-Za-z\s\d]+?\d+[Bb])`),
}

// nameKeywords validate a candidate name after pattern matching.
var nameKeywords = []string{
	"gpt", "claude", "llama", "mistral", "gemini", "mixtral", "qwen", "yi",
	"cohere", "deepseek", "phi", "solar", "command", "openai", "kimi",
	"turbo", "ultra", "pro", "dev", "chat", "instruct",
}

// providerAllowList holds display names matched verbatim in the first
// segment when no "by <provider>" clause is present.
var providerAllowList = []string{
	"OpenAI", "Google", "Anthropic", "Meta", "Microsoft", "Cohere",
	"Mistral AI", "Perplexity AI", "DeepSeek AI", "Alibaba", "01.AI",
	"Upstage", "Nexus Flow", "Moonshot",
}

var (
	byProviderRe  = regexp.MustCompile(`by\s+([A-Za-z\s&]+)`)
	contextRe     = regexp.MustCompile(`(?i)(\d+(?:,\d+)*(?:\.\d+)?\s*[KM]?)\s*context`)
	dollarRe      = regexp.MustCompile(`\$([\d.]+)`)
	parenFreeRe   = regexp.MustCompile(`(?i)\s*\(\s*free\s*\)`)
	parenSizeRe   = regexp.MustCompile(`\s*\(\d+[KM]?\)`)
	trailingNumRe = regexp.MustCompile(`\d+[Bb]?$`)
)

// ParseLine parses one delimited line into a raw attempt. Lines with fewer
// than three segments or no recognizable model name are rejected outright;
// a missing provider is non-fatal and leaves the field empty.
func ParseLine(line, strategyName string) (record.ExtractionAttempt, error) {
	att := record.ExtractionAttempt{Strategy: strategyName}

	segments := splitSegments(line)
	if len(segments) < 3 {
		return att, fmt.Errorf("expected at least 3 segments, got %d", len(segments))
	}

	name := extractName(line)
	if name == "" {
		return att, fmt.Errorf("no model name matched")
	}
	att.Name = name
	att.Provider = extractProvider(segments)

	for i, seg := range segments {
		lower := strings.ToLower(seg)
		switch {
		case strings.Contains(lower, "context"):
			if n := extractContextTokens(seg); n > 0 {
				att.ContextWindow = strconv.Itoa(n)
			}
		case strings.Contains(lower, "input") && strings.Contains(seg, "$"):
			if p, ok := dollarAmount(seg); ok {
				att.InputPrice = fmt.Sprintf("$%.2f/M tokens", p)
			}
		case strings.Contains(lower, "output") && strings.Contains(seg, "$"):
			if p, ok := dollarAmount(seg); ok {
				att.OutputPrice = fmt.Sprintf("$%.2f/M tokens", p)
			}
		case (strings.Contains(lower, "img") || strings.Contains(lower, "image")) && strings.Contains(seg, "$"):
			if p, ok := dollarAmount(seg); ok {
				att.ImagePrice = fmt.Sprintf("$%.2f/K images", p)
			}
		case strings.Contains(lower, "free") && i >= 2:
			// "free" in a pricing position fills the next unset price.
			if att.InputPrice == "" {
				att.InputPrice = "Free"
			} else if att.OutputPrice == "" {
				att.OutputPrice = "Free"
			}
		}
	}

	return att, nil
}

func splitSegments(line string) []string {
	parts := strings.Split(line, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func extractName(text string) string {
	for _, pat := range namePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := cleanName(m[1])
		if validName(name) {
			return name
		}
	}
	return ""
}

func cleanName(name string) string {
	name = parenFreeRe.ReplaceAllString(name, "")
	name = parenSizeRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

func validName(name string) bool {
	if len(name) <= 2 {
		return false
	}
	lower := strings.ToLower(name)
	for _, kw := range nameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return trailingNumRe.MatchString(name)
}

// extractProvider looks for a "by <provider>" clause in any segment, then
// falls back to allow-listed display names in the first segment. Failure is
// non-fatal; the caller leaves the field empty.
func extractProvider(segments []string) string {
	for _, seg := range segments {
		if m := byProviderRe.FindStringSubmatch(seg); m != nil {
			return strings.Join(strings.Fields(m[1]), " ")
		}
	}
	for _, name := range providerAllowList {
		if strings.Contains(segments[0], name) {
			return name
		}
	}
	return ""
}

func extractContextTokens(seg string) int {
	m := contextRe.FindStringSubmatch(seg)
	if m == nil {
		return 0
	}
	return normalize.TokenCount(m[1])
}

func dollarAmount(seg string) (float64, bool) {
	m := dollarRe.FindStringSubmatch(seg)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
