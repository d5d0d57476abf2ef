package normalize

import "testing"

func TestModelURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"openai/gpt-4", "https://openrouter.ai/models/openai--gpt-4"},
		{"no-separator", "https://openrouter.ai/models/no-separator"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := ModelURL(tt.id); got != tt.want {
			t.Errorf("ModelURL(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestProviderURL(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"OpenAI", "https://openrouter.ai/providers/openai"},
		{"Mistral AI", "https://openrouter.ai/providers/mistral-ai"},
		{"01.AI", "https://openrouter.ai/providers/01-ai"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ProviderURL(tt.provider); got != tt.want {
			t.Errorf("ProviderURL(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSlugIdempotent(t *testing.T) {
	for _, s := range []string{"Mistral AI", "01.AI", "DeepSeek  AI", "nexus-flow"} {
		once := Slug(s)
		if twice := Slug(once); once != twice {
			t.Errorf("Slug not idempotent on %q: %q -> %q", s, once, twice)
		}
	}
}
