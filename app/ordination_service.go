package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"decorana/adapters/plot"
	"decorana/adapters/report"
	"decorana/adapters/stats/engine"
	"decorana/domain/core"
	"decorana/domain/ordination"
	"decorana/ports"

	"golang.org/x/sync/errgroup"
)

// OrdinationService runs ordinations end to end: engine invocation,
// optional biplot and report artifacts, optional persistence. The
// repository may be nil, in which case Persist requests fail fast.
type OrdinationService struct {
	repo ports.RunRepository
}

// NewOrdinationService creates the service; repo may be nil for
// store-less deployments (CLI one-shots).
func NewOrdinationService(repo ports.RunRepository) *OrdinationService {
	return &OrdinationService{repo: repo}
}

// RunRequest describes one ordination invocation.
type RunRequest struct {
	Matrix *ordination.AbundanceMatrix
	Labels ordination.Labels
	Config ordination.Config

	// PlotPath and ReportPath, when non-empty, trigger artifact
	// generation after a successful run.
	PlotPath   string
	ReportPath string

	// Persist stores the run in the repository.
	Persist bool
}

// Execute runs the ordination and produces the requested artifacts.
// Artifacts are independent of each other and are rendered concurrently.
func (s *OrdinationService) Execute(ctx context.Context, req RunRequest) (*ordination.Run, error) {
	if req.Persist && s.repo == nil {
		return nil, fmt.Errorf("persistence requested but no run repository is configured")
	}

	eng := engine.New(req.Config)
	res, err := eng.Run(ctx, req.Matrix)
	if err != nil {
		return nil, err
	}

	run := ordination.NewRun(eng.Config(), res)
	run.FillLabels(req.Labels)

	g, gctx := errgroup.WithContext(ctx)
	if req.PlotPath != "" {
		g.Go(func() error {
			opts := plot.DefaultOptions()
			opts.SiteLabels = true
			opts.Title = fmt.Sprintf("DCA run %s", run.ID)
			if err := plot.Biplot(run.Result, opts, req.PlotPath); err != nil {
				return fmt.Errorf("biplot: %w", err)
			}
			log.Printf("[Ordination] Wrote biplot to %s", req.PlotPath)
			return nil
		})
	}
	if req.ReportPath != "" {
		g.Go(func() error {
			md, err := report.Markdown(run.ID, run.Config, run.Result)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}
			if err := os.WriteFile(req.ReportPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("report: %w", err)
			}
			log.Printf("[Ordination] Wrote report to %s", req.ReportPath)
			return nil
		})
	}
	if req.Persist {
		g.Go(func() error {
			if err := s.repo.Save(gctx, run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return run, nil
}

// Get loads a stored run.
func (s *OrdinationService) Get(ctx context.Context, id string) (*ordination.Run, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no run repository is configured")
	}
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, runID)
}

// List returns recent stored run summaries.
func (s *OrdinationService) List(ctx context.Context, limit int) ([]ordination.RunSummary, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no run repository is configured")
	}
	return s.repo.List(ctx, limit)
}
