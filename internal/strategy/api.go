package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/harvestlabs/modelharvest/internal/record"
)

func init() {
	Register(&API{})
}

// API maps the structured models-listing endpoint directly to attempts.
// This is the most reliable strategy: the endpoint is stable while the
// HTML page changes layout without notice.
type API struct{}

func (a *API) Name() string { return NameAPI }

// modelsResponse mirrors the endpoint shape. A missing "data" key yields an
// empty list, not an error.
type modelsResponse struct {
	Data []apiModel `json:"data"`
}

type apiModel struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ContextLength int64      `json:"context_length"`
	Pricing       apiPricing `json:"pricing"`
}

type apiPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Image      string `json:"image"`
}

func (a *API) Extract(_ context.Context, src *Source) ([]record.ExtractionAttempt, []record.FailureRecord) {
	if len(src.APIBody) == 0 {
		return nil, nil
	}

	var resp modelsResponse
	if err := json.Unmarshal(src.APIBody, &resp); err != nil {
		return nil, []record.FailureRecord{
			record.NewFailure(NameAPI, string(src.APIBody), "parsing models response: "+err.Error()),
		}
	}

	var (
		attempts []record.ExtractionAttempt
		failures []record.FailureRecord
	)
	for _, m := range resp.Data {
		if m.ID == "" && m.Name == "" {
			failures = append(failures, record.NewFailure(NameAPI, m.Description, "entry has neither id nor name"))
			continue
		}
		attempts = append(attempts, apiAttempt(m))
	}

	slog.Info("api extraction complete", "entries", len(resp.Data), "attempts", len(attempts))
	return attempts, failures
}

func apiAttempt(m apiModel) record.ExtractionAttempt {
	att := record.ExtractionAttempt{
		Strategy:    NameAPI,
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Provider:    providerFromID(m.ID),
		InputPrice:  m.Pricing.Prompt,
		OutputPrice: m.Pricing.Completion,
		ImagePrice:  m.Pricing.Image,
	}
	if m.ContextLength > 0 {
		att.ContextWindow = strconv.FormatInt(m.ContextLength, 10)
	}
	return att
}

// providerFromID derives the provider slug as the prefix of the model ID.
func providerFromID(id string) string {
	if i := strings.Index(id, "/"); i > 0 {
		return id[:i]
	}
	return ""
}
