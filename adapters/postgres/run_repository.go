package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"decorana/domain/core"
	"decorana/domain/ordination"
	"decorana/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements the RunRepository interface on PostgreSQL
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new ordination run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Save inserts a completed run into the database
func (r *runRepository) Save(ctx context.Context, run *ordination.Run) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `INSERT INTO ordination_runs (
		id, created_at, analysis, sites, species, axes, config, result
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	summary := run.Summarize()
	_, err = r.db.ExecContext(ctx, query,
		run.ID.String(), run.CreatedAt, string(run.Config.Analysis),
		summary.Sites, summary.Species, summary.Axes,
		configJSON, resultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save ordination run: %w", err)
	}
	return nil
}

// GetByID retrieves a stored run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*ordination.Run, error) {
	query := `SELECT id, created_at, config, result FROM ordination_runs WHERE id = $1`

	var row struct {
		ID        string `db:"id"`
		CreatedAt sql.NullTime
		Config    []byte `db:"config"`
		Result    []byte `db:"result"`
	}
	err := r.db.QueryRowxContext(ctx, query, id.String()).
		Scan(&row.ID, &row.CreatedAt, &row.Config, &row.Result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("ordination run", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ordination run: %w", err)
	}

	run := &ordination.Run{ID: core.RunID(row.ID)}
	if row.CreatedAt.Valid {
		run.CreatedAt = row.CreatedAt.Time
	}
	if err := json.Unmarshal(row.Config, &run.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := json.Unmarshal(row.Result, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return run, nil
}

// List returns the newest run summaries
func (r *runRepository) List(ctx context.Context, limit int) ([]ordination.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, created_at, analysis, sites, species, axes
		FROM ordination_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ordination runs: %w", err)
	}
	defer rows.Close()

	var out []ordination.RunSummary
	for rows.Next() {
		var (
			s        ordination.RunSummary
			id       string
			analysis string
		)
		if err := rows.Scan(&id, &s.CreatedAt, &analysis, &s.Sites, &s.Species, &s.Axes); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		s.ID = core.RunID(id)
		s.Analysis = ordination.AnalysisType(analysis)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Schema returns the DDL for the run store, owned by cmd/migrate.
func Schema() string {
	return `CREATE TABLE IF NOT EXISTS ordination_runs (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	analysis   TEXT NOT NULL,
	sites      INTEGER NOT NULL,
	species    INTEGER NOT NULL,
	axes       INTEGER NOT NULL,
	config     JSONB NOT NULL,
	result     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ordination_runs_created_at ON ordination_runs (created_at DESC);`
}
