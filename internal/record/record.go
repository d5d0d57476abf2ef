package record

import (
	"time"
	"unicode/utf8"
)

// ModelRecord is the canonical unit of output. All fields are display-ready
// strings; price and context fields are normalized before a record is emitted.
type ModelRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	ProviderURL   string `json:"provider_url"`
	ModelURL      string `json:"model_url"`
	Description   string `json:"description"`
	ContextWindow string `json:"context_window"`
	InputPrice    string `json:"input_pricing"`
	OutputPrice   string `json:"output_pricing"`
	ImagePrice    string `json:"image_pricing"`

	// Completeness is derived, never persisted in the tabular output.
	Completeness float64 `json:"-"`
}

// Columns is the fixed CSV column order. Downstream dashboards depend on
// both the names and the ordering; do not reorder.
var Columns = []string{
	"id", "name", "provider", "provider_url", "model_url",
	"description", "context_window", "input_pricing",
	"output_pricing", "image_pricing",
}

// Row returns the record's values in Columns order.
func (m *ModelRecord) Row() []string {
	return []string{
		m.ID, m.Name, m.Provider, m.ProviderURL, m.ModelURL,
		m.Description, m.ContextWindow, m.InputPrice,
		m.OutputPrice, m.ImagePrice,
	}
}

// ExtractionAttempt is a raw, unvalidated record as produced by a single
// extraction strategy. Fields hold whatever the strategy found, unnormalized;
// any of them may be empty. Attempts are transient and never persisted.
type ExtractionAttempt struct {
	Strategy      string
	ID            string
	Name          string
	Provider      string
	ProviderURL   string
	ModelURL      string
	Description   string
	ContextWindow string
	InputPrice    string
	OutputPrice   string
	ImagePrice    string
}

// FailureRecord captures one non-fatal extraction or validation failure.
type FailureRecord struct {
	Strategy  string    `json:"strategy" yaml:"strategy"`
	Excerpt   string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Error     string    `json:"error" yaml:"error"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewFailure builds a FailureRecord, truncating the raw excerpt so failure
// logs stay readable when a strategy chokes on a large fragment.
func NewFailure(strategy, excerpt, errMsg string) FailureRecord {
	const maxExcerpt = 200
	if len(excerpt) > maxExcerpt {
		cut := maxExcerpt
		// Back up to a rune boundary so the excerpt stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}
	return FailureRecord{
		Strategy:  strategy,
		Excerpt:   excerpt,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	}
}

// StrategyStats counts attempts and successes for one strategy.
type StrategyStats struct {
	Attempts  int `json:"attempts" yaml:"attempts"`
	Successes int `json:"successes" yaml:"successes"`
	Records   int `json:"records" yaml:"records"`
}

// Stats aggregates per-strategy counters plus validation outcomes for a
// single pipeline run. Owned and mutated exclusively by the orchestrator.
type Stats struct {
	Strategies         map[string]*StrategyStats `json:"strategies" yaml:"strategies"`
	ValidationFailures int                       `json:"validation_failures" yaml:"validation_failures"`
	LowQuality         int                       `json:"low_quality" yaml:"low_quality"`
	TotalRecords       int                       `json:"total_records" yaml:"total_records"`
}

// NewStats returns an empty Stats with the strategy map initialized.
func NewStats() *Stats {
	return &Stats{Strategies: make(map[string]*StrategyStats)}
}

// Strategy returns the counter bucket for a strategy, creating it on first use.
func (s *Stats) Strategy(name string) *StrategyStats {
	st, ok := s.Strategies[name]
	if !ok {
		st = &StrategyStats{}
		s.Strategies[name] = st
	}
	return st
}
