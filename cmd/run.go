package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	runKeywords    []string
	runMaxResults  int
	runSkipScholar bool
	runOutputName  string
	runFormats     []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead-generation pipeline",
	Long:  "Fetches candidates from every configured source, merges and scores them, exports the ranked sheet, and records the run in history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if runMaxResults > 0 {
			cfg.Sources.MaxResults = runMaxResults
		}
		keywords := cfg.Keywords.Research
		if len(runKeywords) > 0 {
			keywords = runKeywords
		}
		formats := cfg.Export.Formats
		if len(runFormats) > 0 {
			formats = runFormats
		}

		p, exporter, err := buildPipeline(cfg, runSkipScholar)
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, keywords)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		result, err := p.Run(ctx, keywords)
		if err != nil {
			summary := &model.RunSummary{Error: err.Error()}
			if finishErr := st.FinishRun(ctx, run.ID, model.RunStatusFailed, summary); finishErr != nil {
				zap.L().Warn("failed to record failed run", zap.Error(finishErr))
			}
			return eris.Wrap(err, "pipeline run")
		}

		status := model.RunStatusComplete
		if len(result.Leads) == 0 {
			// No source produced a usable record; still a recorded outcome.
			status = model.RunStatusEmpty
		}

		if len(result.Leads) > 0 {
			baseName := runOutputName
			if baseName == "" {
				baseName = "leads_" + time.Now().Format("20060102_150405")
			}
			outputs, exportErr := exporter.Export(result.Leads, baseName, formats)
			result.Summary.Outputs = outputs
			if exportErr != nil {
				return eris.Wrap(exportErr, "export leads")
			}
			if err := st.SaveLeads(ctx, run.ID, result.Leads); err != nil {
				return eris.Wrap(err, "save leads")
			}
		}

		if err := st.FinishRun(ctx, run.ID, status, &result.Summary); err != nil {
			return eris.Wrap(err, "finish run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", run.ID),
			zap.String("status", string(status)),
			zap.Int("leads", result.Summary.Leads),
			zap.Int("high_quality", result.Summary.HighQuality),
			zap.Strings("outputs", result.Summary.Outputs),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runKeywords, "keywords", nil, "research keywords (default from config)")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "max records per source (default from config)")
	runCmd.Flags().BoolVar(&runSkipScholar, "skip-scholar", false, "skip the Google Scholar scraper")
	runCmd.Flags().StringVar(&runOutputName, "output-name", "", "base name for export files (default leads_<timestamp>)")
	runCmd.Flags().StringSliceVar(&runFormats, "format", nil, "export formats: csv, xlsx, json (default from config)")
	rootCmd.AddCommand(runCmd)
}
