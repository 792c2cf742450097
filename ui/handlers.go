package ui

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"decorana/app"
	"decorana/domain/core"
	"decorana/domain/ordination"
)

// ordinationRequest is the JSON body of POST /api/v1/ordinations.
type ordinationRequest struct {
	Matrix        [][]float64       `json:"matrix"`
	SiteLabels    []string          `json:"site_labels,omitempty"`
	SpeciesLabels []string          `json:"species_labels,omitempty"`
	Config        ordination.Config `json:"config"`
	Persist       bool              `json:"persist,omitempty"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleCreateOrdination(w http.ResponseWriter, r *http.Request) {
	var req ordinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	matrix, err := ordination.NewAbundanceMatrix(req.Matrix)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	run, err := a.service.Execute(r.Context(), app.RunRequest{
		Matrix: matrix,
		Labels: ordination.Labels{
			Sites:   req.SiteLabels,
			Species: req.SpeciesLabels,
		},
		Config:  req.Config,
		Persist: req.Persist,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (a *App) handleGetOrdination(w http.ResponseWriter, r *http.Request) {
	run, err := a.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (a *App) handleListOrdinations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	summaries, err := a.service.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if summaries == nil {
		summaries = []ordination.RunSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses:
// bad configuration and degenerate matrices are client errors,
// non-convergence is unprocessable, missing runs are 404.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsConfigError(err), core.IsDegenerateInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case core.IsConvergenceError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, err.Error())
	default:
		log.Printf("[API] Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
