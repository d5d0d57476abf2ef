package strategy

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestFreeTextExtract(t *testing.T) {
	html := `<html><body>
<p>Popular right now: openai/gpt-4-turbo and anthropic/claude-3.5-sonnet.</p>
<p>Also openai/gpt-4-turbo again, plus unknown-vendor/mystery-model.</p>
</body></html>`

	ft, err := Get(NameFreeText)
	if err != nil {
		t.Fatalf("Get(%q): %v", NameFreeText, err)
	}

	attempts, failures := ft.Extract(context.Background(), &Source{Doc: docFromHTML(t, html)})
	if len(failures) != 0 {
		t.Fatalf("got %d failures, want 0", len(failures))
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2: %+v", len(attempts), attempts)
	}

	gpt := attempts[0]
	if gpt.ID != "openai/gpt-4-turbo" {
		t.Errorf("ID = %q, want %q", gpt.ID, "openai/gpt-4-turbo")
	}
	if gpt.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", gpt.Provider, "openai")
	}
	if gpt.Name != "Gpt 4 Turbo" {
		t.Errorf("Name = %q, want %q", gpt.Name, "Gpt 4 Turbo")
	}

	claude := attempts[1]
	if claude.ID != "anthropic/claude-3.5-sonnet" {
		t.Errorf("ID = %q, want %q", claude.ID, "anthropic/claude-3.5-sonnet")
	}
	if claude.Name != "Claude 3 5 Sonnet" {
		t.Errorf("Name = %q, want %q", claude.Name, "Claude 3 5 Sonnet")
	}
}

func TestFreeTextCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><p>")
	for i := 0; i < 2*DefaultFreeTextCap; i++ {
		fmt.Fprintf(&sb, "openai/model-%d ", i)
	}
	sb.WriteString("</p></body></html>")

	ft, _ := Get(NameFreeText)
	attempts, _ := ft.Extract(context.Background(), &Source{Doc: docFromHTML(t, sb.String())})
	if len(attempts) != DefaultFreeTextCap {
		t.Errorf("got %d attempts, want %d", len(attempts), DefaultFreeTextCap)
	}
}

func TestFreeTextNoDoc(t *testing.T) {
	ft, _ := Get(NameFreeText)
	attempts, failures := ft.Extract(context.Background(), &Source{})
	if attempts != nil || failures != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", attempts, failures)
	}
}

func TestWebChainOrder(t *testing.T) {
	chain := WebChain()
	want := []string{NameEmbeddedJSON, NameAnchors, NameFreeText}
	if len(chain) != len(want) {
		t.Fatalf("got %d strategies, want %d", len(chain), len(want))
	}
	for i, s := range chain {
		if s.Name() != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, s.Name(), want[i])
		}
	}
}
