package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/score"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// buildSources assembles the adapter set. The scholar adapter scrapes a page
// that blocks bots aggressively, so it is opt-out.
func buildSources(cfg *config.Config, skipScholar bool) []source.Source {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Sources.UserAgent,
		Timeout:      time.Duration(cfg.Sources.RequestTimeoutSecs) * time.Second,
		RequestDelay: time.Duration(cfg.Sources.RequestDelayMS) * time.Millisecond,
	})

	sources := []source.Source{
		source.NewPubMed(f, cfg.Sources.ContactEmail),
		source.NewEuropePMC(f),
		source.NewNIHReporter(f),
		source.NewClinicalTrials(f),
	}
	if !skipScholar && !cfg.Pipeline.SkipScholar {
		sources = append(sources, source.NewScholar(f))
	}
	return sources
}

// buildEngine loads the scoring profile, applying the optional YAML override
// on top of the configured defaults.
func buildEngine(cfg *config.Config) (*score.Engine, error) {
	profile := score.DefaultProfile(cfg)
	if cfg.Scoring.ProfilePath != "" {
		p, err := score.LoadProfile(cfg.Scoring.ProfilePath, profile)
		if err != nil {
			return nil, err
		}
		profile = p
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return score.NewEngine(profile), nil
}

func buildPipeline(cfg *config.Config, skipScholar bool) (*pipeline.Pipeline, *pipeline.Exporter, error) {
	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	p := pipeline.New(cfg, buildSources(cfg, skipScholar), engine)
	return p, pipeline.NewExporter(engine, cfg.Export.Dir), nil
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
