package ports

import (
	"context"

	"decorana/domain/core"
	"decorana/domain/ordination"
)

// RunRepository persists completed ordination runs.
type RunRepository interface {
	// Save stores a completed run.
	Save(ctx context.Context, run *ordination.Run) error

	// GetByID retrieves a stored run, core.ErrNotFound when absent.
	GetByID(ctx context.Context, id core.RunID) (*ordination.Run, error)

	// List returns the most recent run summaries, newest first.
	List(ctx context.Context, limit int) ([]ordination.RunSummary, error)
}
