// Package store persists run history and ranked leads. Two backends share
// one schema shape: SQLite for local CLI use and Postgres for the hosted
// server.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for lead-generation runs.
type Store interface {
	CreateRun(ctx context.Context, keywords []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	// FinishRun records the terminal status and summary in one write.
	FinishRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// SaveLeads replaces the ranked lead set for a run.
	SaveLeads(ctx context.Context, runID string, leads []model.Lead) error
	GetLeads(ctx context.Context, runID string) ([]model.Lead, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store named by the configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
