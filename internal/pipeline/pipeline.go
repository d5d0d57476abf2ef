// Package pipeline orchestrates a harvest run: fetch the configured
// sources once, hand them to the extraction strategies in priority order,
// validate the survivors, pick the best batch, and persist the artifacts.
//
// A run is always a success from the caller's perspective unless
// infrastructure fails (output dir, file writes). Upstream being down or a
// page layout change yields an empty batch with failure records, not an
// error.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harvestlabs/modelharvest/internal/cache"
	"github.com/harvestlabs/modelharvest/internal/config"
	"github.com/harvestlabs/modelharvest/internal/htmlutil"
	"github.com/harvestlabs/modelharvest/internal/httpclient"
	"github.com/harvestlabs/modelharvest/internal/record"
	"github.com/harvestlabs/modelharvest/internal/report"
	"github.com/harvestlabs/modelharvest/internal/sink"
	"github.com/harvestlabs/modelharvest/internal/strategy"
	"github.com/harvestlabs/modelharvest/internal/validate"
)

// State tracks run progression, for logs and tests.
type State int

const (
	StateIdle State = iota
	StateRunningAPI
	StateRunningWeb
	StateValidating
	StateReporting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunningAPI:
		return "running-api"
	case StateRunningWeb:
		return "running-web"
	case StateValidating:
		return "validating"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result holds everything a run produced.
type Result struct {
	RunID         string
	Method        string // the method whose records were selected
	Records       []record.ModelRecord
	LowQuality    int
	LowQualityIDs []string
	Duplicates    int
	Failures      []record.FailureRecord
	Stats         *record.Stats
	Comparison    []report.MethodResult
	Overlap       *report.Overlap

	// Paths of the written artifacts.
	CSVPath      string
	JSONPath     string
	ReportPath   string
	SnapshotPath string
}

// Pipeline runs the harvest workflow.
type Pipeline struct {
	cfg    *config.Config
	client *httpclient.Client
	state  State
}

// New builds a Pipeline with cache and rate limiting from config.
func New(cfg *config.Config) (*Pipeline, error) {
	ttl, err := cfg.CacheTTLDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid cache_ttl: %w", err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	opts := []httpclient.Option{
		httpclient.WithTimeout(timeout),
		httpclient.WithRateLimit(cfg.RateLimit),
	}
	if cfg.NoCache {
		opts = append(opts, httpclient.WithNoCache())
	} else {
		fc, err := cache.New(cfg.CacheDir, ttl)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		opts = append(opts, httpclient.WithCache(fc))
	}

	strategy.SetFreeTextCap(cfg.FreeTextCap)

	return &Pipeline{cfg: cfg, client: httpclient.New(opts...)}, nil
}

// State returns the pipeline's current phase.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State) {
	p.state = s
	slog.Debug("pipeline state", "state", s.String())
}

// candidate is one source method's raw yield before validation.
type candidate struct {
	method   string
	strategy string
	attempts []record.ExtractionAttempt
	failures []record.FailureRecord
}

// Run executes the full harvest and writes all artifacts.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	stats := record.NewStats()
	slog.Info("harvest starting", "run_id", runID, "method", p.cfg.Method)

	var (
		candidates []candidate
		fetchFails []record.FailureRecord
		rawHTML    []byte
	)

	if p.cfg.Method == config.MethodAPI || p.cfg.Method == config.MethodBoth {
		p.setState(StateRunningAPI)
		cand, fails := p.runAPI(ctx, stats)
		if cand != nil {
			candidates = append(candidates, *cand)
		}
		fetchFails = append(fetchFails, fails...)
	}

	if p.cfg.Method == config.MethodWeb || p.cfg.Method == config.MethodBoth {
		p.setState(StateRunningWeb)
		cand, fails, html := p.runWeb(ctx, stats)
		if cand != nil {
			candidates = append(candidates, *cand)
		}
		fetchFails = append(fetchFails, fails...)
		rawHTML = html
	}

	p.setState(StateValidating)
	result := p.selectBest(candidates, stats)
	result.RunID = runID
	result.Stats = stats
	result.Failures = append(result.Failures, fetchFails...)

	if len(result.Records) == 0 && p.cfg.SampleFallback {
		slog.Warn("all strategies yielded nothing, using sample fallback")
		p.runSample(ctx, result, stats)
	}

	stats.TotalRecords = len(result.Records)
	stats.LowQuality = result.LowQuality

	p.setState(StateReporting)
	if err := p.persist(result, rawHTML); err != nil {
		return nil, err
	}

	p.setState(StateDone)
	slog.Info("harvest finished",
		"run_id", runID,
		"records", len(result.Records),
		"low_quality", result.LowQuality,
		"failures", len(result.Failures))
	return result, nil
}

// runAPI fetches the models endpoint and runs the API strategy over it.
// A fetch failure produces a failure record and no candidate.
func (p *Pipeline) runAPI(ctx context.Context, stats *record.Stats) (*candidate, []record.FailureRecord) {
	resp, err := p.client.Get(ctx, p.cfg.APIURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		slog.Warn("api fetch failed", "url", p.cfg.APIURL, "error", err)
		return nil, []record.FailureRecord{
			record.NewFailure(strategy.NameAPI, p.cfg.APIURL, "fetching models endpoint: "+err.Error()),
		}
	}
	slog.Info("api fetched", "bytes", len(resp.Body), "from_cache", resp.FromCache)

	s, err := strategy.Get(strategy.NameAPI)
	if err != nil {
		return nil, []record.FailureRecord{record.NewFailure(strategy.NameAPI, "", err.Error())}
	}

	attempts, failures := s.Extract(ctx, &strategy.Source{APIBody: resp.Body})
	stats.Strategy(strategy.NameAPI).Attempts += len(attempts)
	return &candidate{
		method:   config.MethodAPI,
		strategy: strategy.NameAPI,
		attempts: attempts,
		failures: failures,
	}, nil
}

// runWeb fetches the models page and walks the HTML strategy chain,
// stopping at the first strategy that yields attempts.
func (p *Pipeline) runWeb(ctx context.Context, stats *record.Stats) (*candidate, []record.FailureRecord, []byte) {
	resp, err := p.client.Get(ctx, p.cfg.ModelsURL, nil)
	if err != nil {
		slog.Warn("web fetch failed", "url", p.cfg.ModelsURL, "error", err)
		fail := record.NewFailure("web", p.cfg.ModelsURL, "fetching models page: "+err.Error())
		return nil, []record.FailureRecord{fail}, nil
	}
	slog.Info("models page fetched", "bytes", len(resp.Body), "from_cache", resp.FromCache)

	doc, err := htmlutil.Parse(resp.Body)
	if err != nil {
		fail := record.NewFailure("web", p.cfg.ModelsURL, "parsing models page: "+err.Error())
		return nil, []record.FailureRecord{fail}, resp.Body
	}

	src := &strategy.Source{Doc: doc}
	var chainFails []record.FailureRecord
	for _, s := range strategy.WebChain() {
		attempts, failures := s.Extract(ctx, src)
		chainFails = append(chainFails, failures...)
		stats.Strategy(s.Name()).Attempts += len(attempts)
		if len(attempts) == 0 {
			slog.Debug("strategy yielded nothing, falling through", "strategy", s.Name())
			continue
		}
		return &candidate{
			method:   config.MethodWeb,
			strategy: s.Name(),
			attempts: attempts,
			failures: chainFails,
		}, nil, resp.Body
	}

	// Whole chain came up empty; surface its failures anyway.
	return nil, chainFails, resp.Body
}

// overlapSampleCap bounds the per-side ID samples in the overlap report.
const overlapSampleCap = 5

// selectBest validates every candidate and keeps the one with the most
// records. On a tie the earlier candidate wins, and the API always runs
// first, so structured data beats scraping at equal yield.
func (p *Pipeline) selectBest(candidates []candidate, stats *record.Stats) *Result {
	result := &Result{Method: p.cfg.Method}
	byMethod := make(map[string][]record.ModelRecord, len(candidates))

	var best *validate.Outcome
	for _, cand := range candidates {
		out := validate.Validate(cand.attempts)
		stats.Strategy(cand.strategy).Successes += len(out.Records)
		stats.ValidationFailures += len(out.Failures)
		byMethod[cand.method] = out.Records
		result.Failures = append(result.Failures, cand.failures...)
		result.Failures = append(result.Failures, out.Failures...)

		result.Comparison = append(result.Comparison, report.MethodResult{
			Method:  cand.method,
			Records: len(out.Records),
		})

		if best == nil || len(out.Records) > len(best.Records) {
			best = out
			result.Method = cand.method
			for i := range result.Comparison {
				result.Comparison[i].Selected = false
			}
			result.Comparison[len(result.Comparison)-1].Selected = true
		}
	}

	if best != nil {
		result.Records = best.Records
		result.LowQuality = best.LowQuality
		result.LowQualityIDs = best.LowQualityIDs
		result.Duplicates = best.Duplicates
		for _, cand := range candidates {
			if cand.method == result.Method {
				stats.Strategy(cand.strategy).Records = len(best.Records)
			}
		}
	}

	apiRecords, hasAPI := byMethod[config.MethodAPI]
	webRecords, hasWeb := byMethod[config.MethodWeb]
	if hasAPI && hasWeb && len(apiRecords) > 0 && len(webRecords) > 0 {
		result.Overlap = report.NewOverlap(apiRecords, webRecords, overlapSampleCap)
	}
	return result
}

// runSample validates the static sample batch into the result.
func (p *Pipeline) runSample(ctx context.Context, result *Result, stats *record.Stats) {
	s, err := strategy.Get(strategy.NameSample)
	if err != nil {
		return
	}
	attempts, _ := s.Extract(ctx, &strategy.Source{})
	out := validate.Validate(attempts)

	st := stats.Strategy(strategy.NameSample)
	st.Attempts = len(attempts)
	st.Successes = len(out.Records)
	st.Records = len(out.Records)
	stats.ValidationFailures += len(out.Failures)

	result.Method = strategy.NameSample
	result.Records = out.Records
	result.LowQuality = out.LowQuality
	result.LowQualityIDs = out.LowQualityIDs
	result.Failures = append(result.Failures, out.Failures...)
	result.Comparison = append(result.Comparison, report.MethodResult{
		Method:   strategy.NameSample,
		Records:  len(out.Records),
		Selected: true,
	})
}

// persist writes the CSV, JSON, YAML report, and optional HTML snapshot.
func (p *Pipeline) persist(result *Result, rawHTML []byte) error {
	w, err := sink.NewWriter(p.cfg.OutputDir)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	result.CSVPath, err = w.WriteCSV(p.cfg.CSVName, result.Records)
	if err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	result.JSONPath, err = w.WriteJSON(p.cfg.JSONName, sink.Metadata{
		GeneratedAt:  now,
		SourceMethod: result.Method,
		RunID:        result.RunID,
	}, result.Records)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}

	doc := &report.Document{
		RunID:         result.RunID,
		GeneratedAt:   now,
		Method:        result.Method,
		TotalRecords:  len(result.Records),
		LowQuality:    result.LowQuality,
		LowQualityIDs: result.LowQualityIDs,
		Duplicates:    result.Duplicates,
		Stats:         result.Stats,
		Comparison:    result.Comparison,
		Overlap:       result.Overlap,
		Failures:      result.Failures,
	}
	result.ReportPath, err = w.WriteYAML(p.cfg.ReportName, doc)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if p.cfg.SnapshotHTML && len(rawHTML) > 0 {
		result.SnapshotPath, err = w.WriteSnapshot("snapshot.html", rawHTML)
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	return nil
}

// ExtractOne runs a single named strategy against freshly fetched sources
// and returns its raw attempts, skipping validation and persistence. Used
// by the extract subcommand for debugging a strategy in isolation.
func (p *Pipeline) ExtractOne(ctx context.Context, name string) ([]record.ExtractionAttempt, []record.FailureRecord, error) {
	s, err := strategy.Get(name)
	if err != nil {
		return nil, nil, err
	}

	src := &strategy.Source{}
	switch name {
	case strategy.NameAPI:
		resp, err := p.client.Get(ctx, p.cfg.APIURL, map[string]string{"Accept": "application/json"})
		if err != nil {
			return nil, nil, fmt.Errorf("fetching models endpoint: %w", err)
		}
		src.APIBody = resp.Body
	case strategy.NameSample:
		// No fetch needed.
	default:
		resp, err := p.client.Get(ctx, p.cfg.ModelsURL, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching models page: %w", err)
		}
		doc, err := htmlutil.Parse(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing models page: %w", err)
		}
		src.Doc = doc
	}

	attempts, failures := s.Extract(ctx, src)
	return attempts, failures, nil
}
