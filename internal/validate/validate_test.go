package validate

import (
	"strings"
	"testing"

	"github.com/harvestlabs/modelharvest/internal/record"
)

func apiAttempt() record.ExtractionAttempt {
	return record.ExtractionAttempt{
		Strategy:      "api",
		ID:            "openai/gpt-4",
		Name:          "GPT-4",
		Description:   "OpenAI's flagship model.",
		ContextWindow: "8192",
		InputPrice:    "0.00003",
		OutputPrice:   "0.00006",
	}
}

func TestValidateNormalizesAndSynthesizes(t *testing.T) {
	out := Validate([]record.ExtractionAttempt{apiAttempt()})
	if len(out.Failures) != 0 {
		t.Fatalf("got %d failures, want 0: %+v", len(out.Failures), out.Failures)
	}
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}

	m := out.Records[0]
	if m.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", m.Provider, "openai")
	}
	if m.ModelURL != "https://openrouter.ai/models/openai--gpt-4" {
		t.Errorf("ModelURL = %q", m.ModelURL)
	}
	if m.ProviderURL != "https://openrouter.ai/providers/openai" {
		t.Errorf("ProviderURL = %q", m.ProviderURL)
	}
	if m.InputPrice != "$30.00/M tokens" {
		t.Errorf("InputPrice = %q, want %q", m.InputPrice, "$30.00/M tokens")
	}
	if m.OutputPrice != "$60.00/M tokens" {
		t.Errorf("OutputPrice = %q, want %q", m.OutputPrice, "$60.00/M tokens")
	}
	if m.ContextWindow != "8K tokens" {
		t.Errorf("ContextWindow = %q, want %q", m.ContextWindow, "8K tokens")
	}
	if m.Completeness == 0 {
		t.Error("Completeness not set")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name       string
		att        record.ExtractionAttempt
		wantReason string
	}{
		{
			name:       "both name and id empty",
			att:        record.ExtractionAttempt{Strategy: "anchor-heuristic", Description: "orphan card text"},
			wantReason: "missing name and id",
		},
		{
			name:       "name only",
			att:        record.ExtractionAttempt{Strategy: "free-text", Name: "Mystery Model"},
			wantReason: "missing essential fields: id, provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Validate([]record.ExtractionAttempt{tt.att})
			if len(out.Records) != 0 {
				t.Fatalf("got %d records, want 0", len(out.Records))
			}
			if len(out.Failures) != 1 {
				t.Fatalf("got %d failures, want 1", len(out.Failures))
			}
			f := out.Failures[0]
			if f.Strategy != tt.att.Strategy {
				t.Errorf("failure Strategy = %q, want %q", f.Strategy, tt.att.Strategy)
			}
			if !strings.Contains(f.Error, tt.wantReason) {
				t.Errorf("failure Error = %q, want substring %q", f.Error, tt.wantReason)
			}
		})
	}
}

func TestValidateDedupKeepsFirst(t *testing.T) {
	first := apiAttempt()
	second := apiAttempt()
	second.Strategy = "embedded-json"
	second.Description = "a different description from a later strategy"

	out := Validate([]record.ExtractionAttempt{first, second})
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	if out.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", out.Duplicates)
	}
	if got := out.Records[0].Description; got != first.Description {
		t.Errorf("kept Description = %q, want the first attempt's %q", got, first.Description)
	}
}

func TestValidateLowQualityKept(t *testing.T) {
	att := record.ExtractionAttempt{Strategy: "free-text", ID: "qwen/qwen-2.5-72b", Name: "Qwen 2.5 72B"}

	out := Validate([]record.ExtractionAttempt{att})
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	if out.LowQuality != 1 {
		t.Errorf("LowQuality = %d, want 1", out.LowQuality)
	}
	if score := out.Records[0].Completeness; score >= record.LowQualityThreshold {
		t.Errorf("Completeness = %.2f, want below %.2f", score, record.LowQualityThreshold)
	}
}

func TestValidateMissingPricesStayEmpty(t *testing.T) {
	// Only an explicit zero from the source means "Free"; a price the
	// strategy never saw must stay empty and count against completeness.
	free := record.ExtractionAttempt{Strategy: "api", ID: "meta-llama/llama-3.1-8b", Name: "Llama 3.1 8B", InputPrice: "0", OutputPrice: "0"}
	unpriced := record.ExtractionAttempt{Strategy: "free-text", ID: "qwen/qwen-2.5-72b", Name: "Qwen 2.5 72B"}

	out := Validate([]record.ExtractionAttempt{free, unpriced})
	if len(out.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(out.Records))
	}
	if got := out.Records[0]; got.InputPrice != "Free" || got.OutputPrice != "Free" {
		t.Errorf("explicit zero prices = (%q, %q), want (Free, Free)", got.InputPrice, got.OutputPrice)
	}
	if got := out.Records[1]; got.InputPrice != "" || got.OutputPrice != "" {
		t.Errorf("absent prices = (%q, %q), want empty", got.InputPrice, got.OutputPrice)
	}
	if out.Records[0].Completeness <= out.Records[1].Completeness {
		t.Errorf("Completeness %.2f should exceed unpriced record's %.2f",
			out.Records[0].Completeness, out.Records[1].Completeness)
	}
}

func TestCheckRecordRoundTrip(t *testing.T) {
	// A record produced by Validate must audit clean.
	out := Validate([]record.ExtractionAttempt{apiAttempt()})
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	if issues := CheckRecord(&out.Records[0]); len(issues) != 0 {
		t.Errorf("CheckRecord on fresh record = %v, want none", issues)
	}
}

func TestCheckRecordDrift(t *testing.T) {
	m := record.ModelRecord{
		ID:         "openai/gpt-4",
		Name:       "GPT-4",
		Provider:   "openai",
		InputPrice: "0.00003", // raw, never normalized
	}

	issues := CheckRecord(&m)
	if HasErrors(issues) {
		t.Errorf("unexpected blocking issues: %v", issues)
	}

	var found bool
	for _, i := range issues {
		if i.Field == "input_pricing" && i.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("missing canonical-form warning for input_pricing, got %v", issues)
	}
}

func TestCheckRecordMissingEssential(t *testing.T) {
	m := record.ModelRecord{Name: "Nameless Provider Model"}
	issues := CheckRecord(&m)
	if !HasErrors(issues) {
		t.Fatalf("want blocking issues, got %v", issues)
	}
}

func TestFormatIssues(t *testing.T) {
	if got := FormatIssues(nil); !strings.Contains(got, "no issues") {
		t.Errorf("FormatIssues(nil) = %q", got)
	}

	issues := []Issue{
		{SeverityError, "openai/gpt-4", "id", "required field is empty"},
		{SeverityWarning, "openai/gpt-4", "completeness", "score 0.40 below threshold 0.60"},
	}
	got := FormatIssues(issues)
	if !strings.Contains(got, "Errors (1):") || !strings.Contains(got, "Warnings (1):") {
		t.Errorf("FormatIssues = %q", got)
	}
}
