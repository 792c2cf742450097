package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"decorana/app"
	"decorana/domain/core"
	"decorana/domain/ordination"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu   sync.Mutex
	runs map[core.RunID]*ordination.Run
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

func (r *memoryRepo) List(_ context.Context, _ int) ([]ordination.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ordination.RunSummary, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run.Summarize())
	}
	return out, nil
}

func newTestApp() *App {
	repo := &memoryRepo{runs: make(map[core.RunID]*ordination.Run)}
	return NewApp(app.NewOrdinationService(repo))
}

func gradientBody(t *testing.T, persist bool) []byte {
	t.Helper()
	matrix := make([][]float64, 10)
	for i := range matrix {
		matrix[i] = make([]float64, 8)
		for j := range matrix[i] {
			optimum := float64(j) * 9.0 / 7.0
			d := (float64(i) - optimum) / 1.5
			matrix[i][j] = 10 * math.Exp(-0.5*d*d)
		}
	}
	body, err := json.Marshal(ordinationRequest{
		Matrix:  matrix,
		Config:  ordination.DefaultConfig(),
		Persist: persist,
	})
	require.NoError(t, err)
	return body
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestApp().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrdination(t *testing.T) {
	a := newTestApp()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ordinations", bytes.NewReader(gradientBody(t, false)))
	a.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var run ordination.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.NotEmpty(t, run.ID)
	require.Equal(t, 4, run.Result.Axes())
	require.Len(t, run.Result.SiteScores, 10)
	require.Len(t, run.Result.SpeciesScores, 8)
}

func TestCreateOrdination_PersistAndFetch(t *testing.T) {
	a := newTestApp()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ordinations", bytes.NewReader(gradientBody(t, true)))
	a.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var run ordination.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/ordinations/"+run.ID.String(), nil)
	a.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/ordinations", nil)
	a.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []ordination.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestCreateOrdination_DegenerateMatrix(t *testing.T) {
	body, err := json.Marshal(ordinationRequest{
		Matrix: [][]float64{{1, 2}, {0, 0}},
		Config: ordination.DefaultConfig(),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ordinations", bytes.NewReader(body))
	newTestApp().Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "degenerate")
}

func TestCreateOrdination_InvalidConfig(t *testing.T) {
	cfg := ordination.DefaultConfig()
	cfg.Segments = 99
	body, err := json.Marshal(ordinationRequest{
		Matrix: [][]float64{{1, 2}, {2, 1}, {1, 1}},
		Config: cfg,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ordinations", bytes.NewReader(body))
	newTestApp().Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrdination_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ordinations/does-not-exist", nil)
	newTestApp().Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
