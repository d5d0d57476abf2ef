// Package report assembles the per-run report document and renders the
// human-readable terminal summary.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harvestlabs/modelharvest/internal/record"
)

// MethodResult summarizes one source method's yield when the run extracts
// from more than one source.
type MethodResult struct {
	Method   string `yaml:"method" json:"method"`
	Records  int    `yaml:"records" json:"records"`
	Selected bool   `yaml:"selected" json:"selected"`
}

// Overlap describes how two methods' record sets relate, emitted only when
// more than one method produced records.
type Overlap struct {
	Shared        int      `yaml:"shared" json:"shared"`
	APIOnlySample []string `yaml:"api_only_sample,omitempty" json:"api_only_sample,omitempty"`
	WebOnlySample []string `yaml:"web_only_sample,omitempty" json:"web_only_sample,omitempty"`
}

// Document is the YAML run report persisted next to the data files.
type Document struct {
	RunID         string                 `yaml:"run_id"`
	GeneratedAt   time.Time              `yaml:"generated_at"`
	Method        string                 `yaml:"method"`
	TotalRecords  int                    `yaml:"total_records"`
	LowQuality    int                    `yaml:"low_quality"`
	LowQualityIDs []string               `yaml:"low_quality_ids,omitempty"`
	Duplicates    int                    `yaml:"duplicates"`
	Stats         *record.Stats          `yaml:"stats"`
	Comparison    []MethodResult         `yaml:"comparison,omitempty"`
	Overlap       *Overlap               `yaml:"overlap,omitempty"`
	Failures      []record.FailureRecord `yaml:"failures,omitempty"`
}

// NewOverlap compares the API and web record sets by model ID, sampling up
// to sampleCap IDs unique to each side.
func NewOverlap(apiRecords, webRecords []record.ModelRecord, sampleCap int) *Overlap {
	apiIDs := idSet(apiRecords)
	webIDs := idSet(webRecords)

	o := &Overlap{}
	for id := range apiIDs {
		if webIDs[id] {
			o.Shared++
		}
	}
	o.APIOnlySample = onlySample(apiRecords, webIDs, sampleCap)
	o.WebOnlySample = onlySample(webRecords, apiIDs, sampleCap)
	return o
}

func idSet(records []record.ModelRecord) map[string]bool {
	set := make(map[string]bool, len(records))
	for i := range records {
		set[records[i].ID] = true
	}
	return set
}

func onlySample(records []record.ModelRecord, other map[string]bool, limit int) []string {
	var out []string
	for i := range records {
		if len(out) >= limit {
			break
		}
		if !other[records[i].ID] {
			out = append(out, records[i].ID)
		}
	}
	return out
}

// printer renders counts with thousands separators for terminal output.
var printer = message.NewPrinter(language.English)

// RenderSummary formats the run outcome for the terminal.
func RenderSummary(doc *Document, records []record.ModelRecord) string {
	var b strings.Builder

	printer.Fprintf(&b, "Harvest complete: %d models via %s\n", doc.TotalRecords, doc.Method)

	if top := topProviders(records, 5); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, p := range top {
			parts = append(parts, printer.Sprintf("%s (%d)", p.name, p.count))
		}
		fmt.Fprintf(&b, "Top providers: %s\n", strings.Join(parts, ", "))
	}

	if len(records) > 0 {
		var withContext, withInput, withDesc, free int
		for i := range records {
			if records[i].ContextWindow != "" {
				withContext++
			}
			if records[i].InputPrice != "" {
				withInput++
			}
			if records[i].Description != "" {
				withDesc++
			}
			if records[i].InputPrice == "Free" {
				free++
			}
		}
		fmt.Fprintf(&b, "Coverage: %.1f%% context window, %.1f%% input pricing, %.1f%% descriptions\n",
			pct(withContext, len(records)), pct(withInput, len(records)), pct(withDesc, len(records)))
		printer.Fprintf(&b, "Free models: %d\n", free)
	}

	for _, mr := range doc.Comparison {
		marker := " "
		if mr.Selected {
			marker = "*"
		}
		printer.Fprintf(&b, "%s %s: %d records\n", marker, mr.Method, mr.Records)
	}

	if doc.LowQuality > 0 || len(doc.Failures) > 0 {
		printer.Fprintf(&b, "Low quality: %d, failures: %d\n", doc.LowQuality, len(doc.Failures))
	}

	return b.String()
}

type providerCount struct {
	name  string
	count int
}

func topProviders(records []record.ModelRecord, n int) []providerCount {
	counts := make(map[string]int)
	for i := range records {
		if p := records[i].Provider; p != "" {
			counts[p]++
		}
	}

	out := make([]providerCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, providerCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

func pct(part, total int) float64 {
	return 100 * float64(part) / float64(total)
}
