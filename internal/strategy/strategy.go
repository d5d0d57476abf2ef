// Package strategy implements the ranked extraction strategies that turn a
// fetched source (API body and/or HTML document) into raw extraction
// attempts. Strategies never return errors: per-candidate problems become
// FailureRecords and extraction continues with the remaining candidates.
package strategy

import (
	"context"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/harvestlabs/modelharvest/internal/record"
)

// Strategy names, in pipeline priority order.
const (
	NameAPI          = "api"
	NameEmbeddedJSON = "embedded-json"
	NameAnchors      = "anchor-heuristic"
	NameFreeText     = "free-text"
	NameSample       = "sample"
)

// Source carries one buffered fetch of the upstream site. APIBody is the
// raw models-endpoint response (nil when the fetch failed); Doc is the
// parsed models page (nil when the fetch failed or web was not requested).
// Strategies only parse; fetching belongs to the pipeline.
type Source struct {
	APIBody []byte
	Doc     *goquery.Document
}

// Strategy extracts zero or more raw attempts from a source.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, src *Source) ([]record.ExtractionAttempt, []record.FailureRecord)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Strategy)
)

// Register adds a strategy to the global registry.
func Register(s Strategy) {
	mu.Lock()
	defer mu.Unlock()
	registry[s.Name()] = s
}

// Get returns a strategy by name.
func Get(name string) (Strategy, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	return s, nil
}

// WebChain returns the HTML strategies in priority order. When the web
// source runs standalone they execute in this order and stop at the first
// non-empty result.
func WebChain() []Strategy {
	return chain(NameEmbeddedJSON, NameAnchors, NameFreeText)
}

func chain(names ...string) []Strategy {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		if s, ok := registry[n]; ok {
			out = append(out, s)
		}
	}
	return out
}
