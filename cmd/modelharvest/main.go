package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harvestlabs/modelharvest/internal/config"
	"github.com/harvestlabs/modelharvest/internal/pipeline"
	"github.com/harvestlabs/modelharvest/internal/report"
	"github.com/harvestlabs/modelharvest/internal/sink"
	"github.com/harvestlabs/modelharvest/internal/validate"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelharvest",
		Short: "LLM model catalog harvester",
		Long:  "Extracts model metadata from OpenRouter's API and models page, reconciles the results, and writes CSV/JSON exports plus a run report.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		runCmd(),
		extractCmd(),
		validateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Full pipeline: fetch → extract → validate → write",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			doc := &report.Document{
				RunID:        result.RunID,
				Method:       result.Method,
				TotalRecords: len(result.Records),
				LowQuality:   result.LowQuality,
				Comparison:   result.Comparison,
				Overlap:      result.Overlap,
				Failures:     result.Failures,
			}
			fmt.Print(report.RenderSummary(doc, result.Records))
			fmt.Printf("Output: %s\n", result.CSVPath)
			return nil
		},
	}

	cmd.Flags().String("method", "", "extraction method: api, web, or both")
	cmd.Flags().String("output-dir", "", "directory for run artifacts")
	cmd.Flags().Bool("no-cache", false, "bypass the HTTP cache")
	cmd.Flags().Bool("snapshot", false, "save the raw fetched HTML")
	cmd.Flags().Bool("sample-fallback", false, "emit sample records when every strategy fails")

	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run a single strategy and print its raw attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			name, _ := cmd.Flags().GetString("strategy")

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			attempts, failures, err := p.ExtractOne(cmd.Context(), name)
			if err != nil {
				return err
			}

			for _, a := range attempts {
				fmt.Printf("%-45s %-30s %-15s %s\n", a.ID, a.Name, a.Provider, a.ContextWindow)
			}
			fmt.Printf("\nTotal: %d attempts, %d failures\n", len(attempts), len(failures))
			for _, f := range failures {
				fmt.Printf("  [%s] %s\n", f.Strategy, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().String("strategy", "", "strategy name (api, embedded-json, anchor-heuristic, free-text, sample)")
	_ = cmd.MarkFlagRequired("strategy")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit a previously written JSON export (CI check)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = filepath.Join(cfg.OutputDir, cfg.JSONName)
			}

			meta, records, err := sink.ReadJSON(path)
			if err != nil {
				return err
			}

			var issues []validate.Issue
			for i := range records {
				issues = append(issues, validate.CheckRecord(&records[i])...)
			}

			fmt.Printf("Run %s (%s): %d records\n", meta.RunID, meta.SourceMethod, len(records))
			fmt.Println(validate.FormatIssues(issues))

			if validate.HasErrors(issues) {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON export to audit (default: from config)")

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// applyRunFlags lets run flags override the loaded config. Flag values get
// the same validation config.Load applied, since they bypass it.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	if v, _ := cmd.Flags().GetString("method"); v != "" {
		switch v {
		case config.MethodAPI, config.MethodWeb, config.MethodBoth:
		default:
			return fmt.Errorf("invalid method %q: want api, web, or both", v)
		}
		cfg.Method = v
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := cmd.Flags().GetBool("no-cache"); v {
		cfg.NoCache = true
	}
	if v, _ := cmd.Flags().GetBool("snapshot"); v {
		cfg.SnapshotHTML = true
	}
	if v, _ := cmd.Flags().GetBool("sample-fallback"); v {
		cfg.SampleFallback = true
	}
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
