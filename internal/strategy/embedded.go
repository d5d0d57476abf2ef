package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harvestlabs/modelharvest/internal/record"
)

func init() {
	Register(&EmbeddedJSON{})
}

// EmbeddedJSON extracts models from structured-data blocks embedded in the
// page: hydration payloads like __NEXT_DATA__, application/json script
// tags, and any inline script that looks like it carries a model list. The
// payload shape is undocumented, so a bounded recursive search covers both
// the known nesting paths and whatever the site ships next.
type EmbeddedJSON struct{}

func (e *EmbeddedJSON) Name() string { return NameEmbeddedJSON }

// maxSearchDepth bounds the recursive walk through the payload.
const maxSearchDepth = 10

func (e *EmbeddedJSON) Extract(_ context.Context, src *Source) ([]record.ExtractionAttempt, []record.FailureRecord) {
	if src.Doc == nil {
		return nil, nil
	}

	var (
		attempts []record.ExtractionAttempt
		failures []record.FailureRecord
	)

	src.Doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if text == "" {
			return true
		}

		explicit := s.AttrOr("type", "") == "application/json" || s.AttrOr("id", "") == "__NEXT_DATA__"
		if !explicit && !(strings.Contains(text, "models") && strings.Contains(text, "{")) {
			return true
		}

		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			if explicit {
				failures = append(failures, record.NewFailure(NameEmbeddedJSON, text, "parsing script JSON: "+err.Error()))
			}
			return true
		}

		list := findModelList(payload, maxSearchDepth)
		if len(list) == 0 {
			return true
		}

		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			att, err := jsonAttempt(obj)
			if err != nil {
				failures = append(failures, record.NewFailure(NameEmbeddedJSON, jsonExcerpt(obj), err.Error()))
				continue
			}
			attempts = append(attempts, att)
		}
		// First script with a usable list wins.
		return len(attempts) == 0
	})

	slog.Info("embedded-json extraction complete", "attempts", len(attempts), "failures", len(failures))
	return attempts, failures
}

// findModelList checks the known nesting paths first, then falls back to a
// depth-bounded recursive search for any list under a "models" key.
func findModelList(payload any, depth int) []any {
	root, ok := payload.(map[string]any)
	if ok {
		for _, path := range [][]string{
			{"models"},
			{"data"},
			{"props", "pageProps", "models"},
			{"props", "pageProps", "data"},
		} {
			if list := listAtPath(root, path); isModelList(list) {
				return list
			}
		}
	}
	return searchForModels(payload, depth)
}

func listAtPath(m map[string]any, path []string) []any {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	list, _ := cur.([]any)
	return list
}

func searchForModels(v any, depth int) []any {
	if depth <= 0 {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		if list, ok := t["models"].([]any); ok && isModelList(list) {
			return list
		}
		for _, child := range t {
			if list := searchForModels(child, depth-1); list != nil {
				return list
			}
		}
	case []any:
		for _, child := range t {
			if list := searchForModels(child, depth-1); list != nil {
				return list
			}
		}
	}
	return nil
}

// isModelList requires at least one model-shaped element: an object
// carrying an id or name.
func isModelList(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			if _, ok := obj["id"]; ok {
				return true
			}
			if _, ok := obj["name"]; ok {
				return true
			}
		}
	}
	return false
}

func jsonAttempt(obj map[string]any) (record.ExtractionAttempt, error) {
	att := record.ExtractionAttempt{
		Strategy:    NameEmbeddedJSON,
		ID:          stringField(obj, "id"),
		Name:        stringField(obj, "name"),
		Description: stringField(obj, "description"),
	}
	if att.ID == "" && att.Name == "" {
		return att, errNoIdentity
	}
	att.Provider = stringField(obj, "provider")
	if att.Provider == "" {
		att.Provider = providerFromID(att.ID)
	}

	if raw, ok := obj["context_length"]; ok {
		att.ContextWindow = numberString(raw)
	}
	if pricing, ok := obj["pricing"].(map[string]any); ok {
		att.InputPrice = stringField(pricing, "prompt")
		att.OutputPrice = stringField(pricing, "completion")
		att.ImagePrice = stringField(pricing, "image")
	}
	return att, nil
}

var errNoIdentity = errors.New("object has neither id nor name")

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func numberString(v any) string {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return ""
		}
		return strconv.FormatInt(int64(t), 10)
	case string:
		return strings.TrimSpace(t)
	default:
		return ""
	}
}

func jsonExcerpt(obj map[string]any) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(b)
}
