// Package pipeline orchestrates one lead-generation run: fan out to the
// source adapters, normalize and merge their records, score, rank, and hand
// the result to export and storage.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/dedupe"
	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/rank"
	"github.com/sells-group/leadgen-cli/internal/score"
	"github.com/sells-group/leadgen-cli/internal/source"
)

// highQualityThreshold marks the score band reported as high quality.
const highQualityThreshold = 70.0

// Pipeline runs the full collect-merge-score-rank sequence.
type Pipeline struct {
	cfg     *config.Config
	sources []source.Source
	merger  *dedupe.Merger
	engine  *score.Engine
}

// New wires a pipeline from its stages. The source slice order is the
// concurrent fan-out order and has no semantic effect.
func New(cfg *config.Config, sources []source.Source, engine *score.Engine) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		sources: sources,
		merger:  dedupe.NewMerger(cfg.Sources.Priority),
		engine:  engine,
	}
}

// Result is the in-memory outcome of one run.
type Result struct {
	Leads   []model.Lead
	Summary model.RunSummary
}

// Run executes one lead-generation run for the keywords. A source failure
// degrades the run; only zero usable records across every source or a dead
// context fails it.
func (p *Pipeline) Run(ctx context.Context, keywords []string) (*Result, error) {
	start := time.Now()
	log := zap.L().With(zap.Strings("keywords", keywords))
	log.Info("pipeline: starting run", zap.Int("sources", len(p.sources)))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.Pipeline.TimeoutSecs)*time.Second)
	defer cancel()

	type sourceOutcome struct {
		records []model.RawRecord
		report  model.SourceReport
	}
	outcomes := make([]sourceOutcome, len(p.sources))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(p.sources))
	for i, src := range p.sources {
		g.Go(func() error {
			records, err := src.Fetch(gCtx, keywords, p.cfg.Sources.MaxResults)
			report := model.SourceReport{
				Source:  src.ID(),
				Records: len(records),
			}
			switch {
			case err == nil:
				report.Status = model.SourceStatusSuccess
			case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
				// Records buffered when the deadline hit may be incomplete;
				// they are discarded, not kept as a partial result.
				records = nil
				report.Records = 0
				report.Status = model.SourceStatusFailed
				report.Error = err.Error()
				log.Warn("pipeline: source timed out",
					zap.String("source", string(src.ID())),
					zap.Error(err),
				)
			case len(records) > 0:
				report.Status = model.SourceStatusPartial
				report.Error = err.Error()
				log.Warn("pipeline: source degraded",
					zap.String("source", string(src.ID())),
					zap.Int("records", len(records)),
					zap.Error(err),
				)
			default:
				report.Status = model.SourceStatusFailed
				report.Error = err.Error()
				log.Warn("pipeline: source failed",
					zap.String("source", string(src.ID())),
					zap.Error(err),
				)
			}
			outcomes[i] = sourceOutcome{records: records, report: report}
			// Source errors never abort the run.
			return nil
		})
	}
	_ = g.Wait()

	summary := model.RunSummary{}
	var candidates []model.CandidateLead
	for i, out := range outcomes {
		summary.Reports = append(summary.Reports, out.report)
		summary.RawRecords += len(out.records)
		for _, raw := range out.records {
			cand, ok := normalize.Normalize(raw, p.sources[i].ID(), p.cfg)
			if !ok {
				summary.Dropped++
				continue
			}
			candidates = append(candidates, cand)
		}
	}

	if err := ctx.Err(); err != nil && len(candidates) == 0 {
		return nil, eris.Wrap(err, "pipeline: run cancelled")
	}

	leads := p.merger.Merge(candidates)
	summary.Merged = len(candidates) - len(leads)

	for i := range leads {
		leads[i].Email = email.Generate(leads[i].Name, leads[i].Company, leads[i].Email)
	}
	p.engine.ScoreAll(leads)
	leads = rank.Rank(leads)

	summary.Leads = len(leads)
	var total float64
	for _, l := range leads {
		total += l.ProbabilityScore
		if l.ProbabilityScore >= highQualityThreshold {
			summary.HighQuality++
		}
	}
	if len(leads) > 0 {
		summary.AvgScore = total / float64(len(leads))
	}
	summary.DurationMS = time.Since(start).Milliseconds()

	log.Info("pipeline: run complete",
		zap.Int("raw_records", summary.RawRecords),
		zap.Int("leads", summary.Leads),
		zap.Int("merged", summary.Merged),
		zap.Int("dropped", summary.Dropped),
		zap.Float64("avg_score", summary.AvgScore),
		zap.Int64("duration_ms", summary.DurationMS),
	)

	return &Result{Leads: leads, Summary: summary}, nil
}
