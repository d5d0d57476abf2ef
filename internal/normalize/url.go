package normalize

import "strings"

const (
	modelURLBase    = "https://openrouter.ai/models/"
	providerURLBase = "https://openrouter.ai/providers/"
)

// ModelURL synthesizes the canonical model page URL from a model ID.
// The site encodes the provider/model path separator as a double hyphen.
func ModelURL(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return modelURLBase + strings.ReplaceAll(id, "/", "--")
}

// ProviderURL synthesizes the canonical provider page URL from a provider
// display name: lowercase, whitespace and punctuation collapsed to hyphens.
func ProviderURL(provider string) string {
	slug := Slug(provider)
	if slug == "" {
		return ""
	}
	return providerURLBase + slug
}

// Slug lowercases a display name and collapses runs of anything that is not
// a letter or digit into single hyphens. Idempotent.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}
