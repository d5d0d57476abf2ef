package strategy

import (
	"context"
	"strings"
	"testing"
)

func TestAnchorsExtract(t *testing.T) {
	html := `<html><body>
<div class="card">
  <a href="/models/openai--gpt-4">GPT-4</a>
  <span>128K context | $10/M input tokens | $30/M output tokens</span>
</div>
<div class="card">
  <a href="/models/meta-llama--llama-3.1-8b-instruct">Llama 3.1 8B Instruct</a>
  <span>131K context tokens, free</span>
</div>
<a href="/providers/openai">OpenAI</a>
<a href="/models/openai--gpt-4">GPT-4 (duplicate link)</a>
</body></html>`

	an, err := Get(NameAnchors)
	if err != nil {
		t.Fatalf("Get(%q): %v", NameAnchors, err)
	}

	attempts, failures := an.Extract(context.Background(), &Source{Doc: docFromHTML(t, html)})
	if len(failures) != 0 {
		t.Fatalf("got %d failures, want 0: %+v", len(failures), failures)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}

	gpt := attempts[0]
	if gpt.ID != "openai/gpt-4" {
		t.Errorf("ID = %q, want %q", gpt.ID, "openai/gpt-4")
	}
	if gpt.Name != "GPT-4" {
		t.Errorf("Name = %q, want %q", gpt.Name, "GPT-4")
	}
	if gpt.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", gpt.Provider, "openai")
	}
	if gpt.ContextWindow != "128000" {
		t.Errorf("ContextWindow = %q, want %q", gpt.ContextWindow, "128000")
	}
	if gpt.InputPrice != "$10.00/M tokens" {
		t.Errorf("InputPrice = %q, want %q", gpt.InputPrice, "$10.00/M tokens")
	}
	if gpt.OutputPrice != "$30.00/M tokens" {
		t.Errorf("OutputPrice = %q, want %q", gpt.OutputPrice, "$30.00/M tokens")
	}

	llama := attempts[1]
	if llama.ID != "meta-llama/llama-3.1-8b-instruct" {
		t.Errorf("ID = %q, want %q", llama.ID, "meta-llama/llama-3.1-8b-instruct")
	}
	if llama.ContextWindow != "131000" {
		t.Errorf("ContextWindow = %q, want %q", llama.ContextWindow, "131000")
	}
	if llama.InputPrice != "Free" || llama.OutputPrice != "Free" {
		t.Errorf("prices = (%q, %q), want (Free, Free)", llama.InputPrice, llama.OutputPrice)
	}
}

func TestAnchorsCardGrammar(t *testing.T) {
	// Delimited card lines go through ParseLine: a "by" clause beats the id
	// slug for provider, and a malformed line is logged, not silently eaten.
	html := `<html><body>
<div class="card">
  <a href="/models/openai--gpt-4">GPT-4</a>
  <span>tokens | by OpenAI | 8K context | $30/M input | free</span>
</div>
<div class="card">
  <a href="/models/mistralai--mistral-7b">Mistral 7B</a>
  <span>tokens | free</span>
</div>
</body></html>`

	an, _ := Get(NameAnchors)
	attempts, failures := an.Extract(context.Background(), &Source{Doc: docFromHTML(t, html)})
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}

	gpt := attempts[0]
	if gpt.Provider != "OpenAI" {
		t.Errorf("Provider = %q, want the by-clause's %q", gpt.Provider, "OpenAI")
	}
	if gpt.ContextWindow != "8000" {
		t.Errorf("ContextWindow = %q, want %q", gpt.ContextWindow, "8000")
	}
	if gpt.InputPrice != "$30.00/M tokens" {
		t.Errorf("InputPrice = %q, want %q", gpt.InputPrice, "$30.00/M tokens")
	}
	if gpt.OutputPrice != "Free" {
		t.Errorf("OutputPrice = %q, want %q", gpt.OutputPrice, "Free")
	}

	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1: %+v", len(failures), failures)
	}
	if !strings.Contains(failures[0].Error, "3 segments") {
		t.Errorf("failure Error = %q, want a segment-count rejection", failures[0].Error)
	}

	// The malformed card never fills details, but the anchor identity survives.
	mistral := attempts[1]
	if mistral.Provider != "mistralai" {
		t.Errorf("Provider = %q, want %q", mistral.Provider, "mistralai")
	}
	if mistral.InputPrice != "" || mistral.ContextWindow != "" {
		t.Errorf("detail fields = (%q, %q), want empty", mistral.InputPrice, mistral.ContextWindow)
	}
}

func TestAnchorsNoCardContext(t *testing.T) {
	// An anchor with no qualifying ancestor still yields identity fields.
	html := `<html><body><nav><a href="/models/qwen--qwen-2.5-72b">Qwen 2.5 72B</a></nav></body></html>`

	an, _ := Get(NameAnchors)
	attempts, _ := an.Extract(context.Background(), &Source{Doc: docFromHTML(t, html)})
	if len(attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(attempts))
	}
	att := attempts[0]
	if att.ID != "qwen/qwen-2.5-72b" {
		t.Errorf("ID = %q, want %q", att.ID, "qwen/qwen-2.5-72b")
	}
	if att.ContextWindow != "" || att.InputPrice != "" {
		t.Errorf("detail fields = (%q, %q), want empty", att.ContextWindow, att.InputPrice)
	}
}

func TestAnchorsNoDoc(t *testing.T) {
	an, _ := Get(NameAnchors)
	attempts, failures := an.Extract(context.Background(), &Source{})
	if attempts != nil || failures != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", attempts, failures)
	}
}
