package strategy

import (
	"context"

	"github.com/harvestlabs/modelharvest/internal/record"
)

func init() {
	Register(&Sample{})
}

// Sample returns a small static catalog. It never runs by default: the
// pipeline invokes it only when sample fallback is enabled and every real
// strategy came back empty, so downstream consumers still get a usable
// file to exercise.
type Sample struct{}

func (s *Sample) Name() string { return NameSample }

var sampleModels = []record.ExtractionAttempt{
	{
		Strategy:      NameSample,
		ID:            "openai/gpt-4-turbo",
		Name:          "GPT-4 Turbo",
		Provider:      "openai",
		Description:   "OpenAI's flagship model with a 128K context window.",
		ContextWindow: "128000",
		InputPrice:    "0.00001",
		OutputPrice:   "0.00003",
	},
	{
		Strategy:      NameSample,
		ID:            "anthropic/claude-3.5-sonnet",
		Name:          "Claude 3.5 Sonnet",
		Provider:      "anthropic",
		Description:   "Anthropic's balanced model for complex reasoning tasks.",
		ContextWindow: "200000",
		InputPrice:    "0.000003",
		OutputPrice:   "0.000015",
	},
	{
		Strategy:      NameSample,
		ID:            "google/gemini-pro-1.5",
		Name:          "Gemini Pro 1.5",
		Provider:      "google",
		Description:   "Google's multimodal model with a very large context window.",
		ContextWindow: "2000000",
		InputPrice:    "0.00000125",
		OutputPrice:   "0.000005",
	},
	{
		Strategy:      NameSample,
		ID:            "meta-llama/llama-3.1-70b-instruct",
		Name:          "Llama 3.1 70B Instruct",
		Provider:      "meta-llama",
		Description:   "Meta's open-weight instruction-tuned model.",
		ContextWindow: "131072",
		InputPrice:    "0",
		OutputPrice:   "0",
	},
	{
		Strategy:      NameSample,
		ID:            "mistralai/mistral-large",
		Name:          "Mistral Large",
		Provider:      "mistralai",
		Description:   "Mistral AI's top-tier reasoning model.",
		ContextWindow: "128000",
		InputPrice:    "0.000002",
		OutputPrice:   "0.000006",
	},
}

func (s *Sample) Extract(_ context.Context, _ *Source) ([]record.ExtractionAttempt, []record.FailureRecord) {
	out := make([]record.ExtractionAttempt, len(sampleModels))
	copy(out, sampleModels)
	return out, nil
}
