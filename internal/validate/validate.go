// Package validate turns raw extraction attempts into display-ready model
// records: it synthesizes derivable fields, normalizes prices and context
// windows, rejects records missing essential identity, and deduplicates the
// survivors.
package validate

import (
	"fmt"
	"strings"

	"github.com/harvestlabs/modelharvest/internal/normalize"
	"github.com/harvestlabs/modelharvest/internal/record"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Record is excluded from output
	SeverityWarning                 // Record is kept, issue is reported
)

// Issue represents a single validation problem with one record.
type Issue struct {
	Severity Severity
	Model    string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s — %s", sev, i.Model, i.Field, i.Message)
}

// Outcome holds the result of validating one batch of attempts.
type Outcome struct {
	Records    []record.ModelRecord
	Failures   []record.FailureRecord
	LowQuality int // records kept despite scoring below the threshold
	Duplicates int

	// LowQualityIDs names the kept-but-underpopulated records for the report.
	LowQualityIDs []string
}

// Validate processes attempts in order. Rejections become Failures rather
// than errors; a batch where everything is rejected is a valid outcome.
// When two attempts share (name, id) the first one wins, so callers must
// pass attempts in strategy priority order.
func Validate(attempts []record.ExtractionAttempt) *Outcome {
	out := &Outcome{}
	seen := make(map[[2]string]bool, len(attempts))

	for _, att := range attempts {
		m, err := buildRecord(att)
		if err != nil {
			out.Failures = append(out.Failures, record.NewFailure(att.Strategy, att.Name+" "+att.ID, err.Error()))
			continue
		}

		key := [2]string{m.Name, m.ID}
		if seen[key] {
			out.Duplicates++
			continue
		}
		seen[key] = true

		if m.Completeness < record.LowQualityThreshold {
			out.LowQuality++
			out.LowQualityIDs = append(out.LowQualityIDs, m.ID)
		}
		out.Records = append(out.Records, m)
	}

	return out
}

// buildRecord synthesizes, normalizes, and scores a single attempt.
func buildRecord(att record.ExtractionAttempt) (record.ModelRecord, error) {
	m := record.ModelRecord{
		ID:            strings.TrimSpace(att.ID),
		Name:          strings.TrimSpace(att.Name),
		Provider:      strings.TrimSpace(att.Provider),
		ProviderURL:   strings.TrimSpace(att.ProviderURL),
		ModelURL:      strings.TrimSpace(att.ModelURL),
		Description:   strings.TrimSpace(att.Description),
		ContextWindow: strings.TrimSpace(att.ContextWindow),
		InputPrice:    strings.TrimSpace(att.InputPrice),
		OutputPrice:   strings.TrimSpace(att.OutputPrice),
		ImagePrice:    strings.TrimSpace(att.ImagePrice),
	}

	if m.Name == "" && m.ID == "" {
		return m, fmt.Errorf("missing name and id")
	}

	// Synthesize what the strategies could not extract directly.
	if m.Provider == "" {
		if i := strings.Index(m.ID, "/"); i > 0 {
			m.Provider = m.ID[:i]
		}
	}
	if m.ModelURL == "" && m.ID != "" {
		m.ModelURL = normalize.ModelURL(m.ID)
	}
	if m.ProviderURL == "" && m.Provider != "" {
		m.ProviderURL = normalize.ProviderURL(m.Provider)
	}

	// An absent price stays absent and counts against completeness.
	// "Free" is reserved for explicit zero values reported by the source.
	if m.InputPrice != "" {
		m.InputPrice = normalize.Price(m.InputPrice, normalize.PriceInput)
	}
	if m.OutputPrice != "" {
		m.OutputPrice = normalize.Price(m.OutputPrice, normalize.PriceOutput)
	}
	if m.ImagePrice != "" {
		m.ImagePrice = normalize.Price(m.ImagePrice, normalize.PriceImage)
	}
	m.ContextWindow = normalize.Context(m.ContextWindow)

	if missing := m.MissingEssential(); len(missing) > 0 {
		return m, fmt.Errorf("missing essential fields: %s", strings.Join(missing, ", "))
	}

	m.Completeness = m.Score()
	return m, nil
}

// CheckRecord audits an already-built record, for re-validating persisted
// output. It never mutates; drift from canonical form is reported as issues.
func CheckRecord(m *record.ModelRecord) []Issue {
	var issues []Issue
	label := m.ID
	if label == "" {
		label = m.Name
	}

	for _, field := range m.MissingEssential() {
		issues = append(issues, Issue{SeverityError, label, field, "required field is empty"})
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"input_pricing", m.InputPrice, normalize.Price(m.InputPrice, normalize.PriceInput)},
		{"output_pricing", m.OutputPrice, normalize.Price(m.OutputPrice, normalize.PriceOutput)},
		{"image_pricing", m.ImagePrice, normalize.Price(m.ImagePrice, normalize.PriceImage)},
		{"context_window", m.ContextWindow, normalize.Context(m.ContextWindow)},
	}
	for _, c := range checks {
		if c.got != "" && c.got != c.want {
			issues = append(issues, Issue{SeverityWarning, label, c.field,
				fmt.Sprintf("value %q is not in canonical form (want %q)", c.got, c.want)})
		}
	}

	if score := m.Score(); score < record.LowQualityThreshold {
		issues = append(issues, Issue{SeverityWarning, label, "completeness",
			fmt.Sprintf("score %.2f below threshold %.2f", score, record.LowQualityThreshold)})
	}

	return issues
}

// HasErrors reports whether any issue is blocking.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FormatIssues renders issues for terminal display.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "Validation passed: no issues found."
	}

	var errors, warnings []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			errors = append(errors, i)
		} else {
			warnings = append(warnings, i)
		}
	}

	var b strings.Builder
	if len(errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errors))
		for _, e := range errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}
