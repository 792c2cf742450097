package app

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"decorana/domain/core"
	"decorana/domain/ordination"

	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory RunRepository for service tests.
type memoryRepo struct {
	mu   sync.Mutex
	runs map[core.RunID]*ordination.Run
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{runs: make(map[core.RunID]*ordination.Run)}
}

func (r *memoryRepo) Save(_ context.Context, run *ordination.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id core.RunID) (*ordination.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, core.NewNotFoundError("ordination run", id.String())
	}
	return run, nil
}

func (r *memoryRepo) List(_ context.Context, limit int) ([]ordination.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ordination.RunSummary, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run.Summarize())
	}
	return out, nil
}

func testMatrix(t *testing.T) *ordination.AbundanceMatrix {
	t.Helper()
	const nSites, nSpecies = 10, 8
	values := make([][]float64, nSites)
	for i := 0; i < nSites; i++ {
		values[i] = make([]float64, nSpecies)
		for j := 0; j < nSpecies; j++ {
			optimum := float64(j) * 9.0 / 7.0
			d := (float64(i) - optimum) / 1.5
			values[i][j] = 10 * math.Exp(-0.5*d*d)
		}
	}
	m, err := ordination.NewAbundanceMatrix(values)
	require.NoError(t, err)
	return m
}

func TestExecute_ProducesArtifactsAndPersists(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewOrdinationService(repo)
	dir := t.TempDir()

	run, err := svc.Execute(context.Background(), RunRequest{
		Matrix:     testMatrix(t),
		Config:     ordination.DefaultConfig(),
		PlotPath:   filepath.Join(dir, "biplot.png"),
		ReportPath: filepath.Join(dir, "report.md"),
		Persist:    true,
	})
	require.NoError(t, err)
	require.False(t, core.ID(run.ID).IsEmpty())

	// Missing labels are generated positionally.
	require.Len(t, run.Result.Labels.Sites, 10)
	require.Equal(t, "site1", run.Result.Labels.Sites[0])
	require.Len(t, run.Result.Labels.Species, 8)

	for _, name := range []string{"biplot.png", "report.md"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		require.Greater(t, info.Size(), int64(0), name)
	}

	stored, err := svc.Get(context.Background(), run.ID.String())
	require.NoError(t, err)
	require.Equal(t, run.ID, stored.ID)

	list, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestExecute_PersistWithoutRepoFails(t *testing.T) {
	svc := NewOrdinationService(nil)

	_, err := svc.Execute(context.Background(), RunRequest{
		Matrix:  testMatrix(t),
		Config:  ordination.DefaultConfig(),
		Persist: true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no run repository")
}

func TestExecute_PropagatesEngineErrors(t *testing.T) {
	svc := NewOrdinationService(nil)
	cfg := ordination.DefaultConfig()
	cfg.Segments = 5 // out of range

	_, err := svc.Execute(context.Background(), RunRequest{
		Matrix: testMatrix(t),
		Config: cfg,
	})
	require.Error(t, err)
	require.True(t, core.IsConfigError(err))
}
