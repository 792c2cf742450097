package ordination

import (
	"fmt"
	"time"

	"decorana/domain/core"
)

// Run is one completed ordination: configuration, scores and identity,
// the unit of persistence and of API responses.
type Run struct {
	ID        core.RunID `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Config    Config     `json:"config"`
	Result    *Result    `json:"result"`
}

// NewRun wraps a fresh result with identity and timestamp.
func NewRun(cfg Config, res *Result) *Run {
	return &Run{
		ID:        core.NewRunID(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Result:    res,
	}
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID        core.RunID   `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Analysis  AnalysisType `json:"analysis"`
	Sites     int          `json:"sites"`
	Species   int          `json:"species"`
	Axes      int          `json:"axes"`
}

// Summarize builds the listing view of a run.
func (r *Run) Summarize() RunSummary {
	return RunSummary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Analysis:  r.Config.Analysis,
		Sites:     len(r.Result.SiteScores),
		Species:   len(r.Result.SpeciesScores),
		Axes:      r.Result.Axes(),
	}
}

// FillLabels completes missing positional labels with generated names so
// downstream consumers can rely on labels being present and sized to the
// score matrices.
func (r *Run) FillLabels(labels Labels) {
	if len(labels.Sites) == 0 {
		labels.Sites = generatedLabels("site", len(r.Result.SiteScores))
	}
	if len(labels.Species) == 0 {
		labels.Species = generatedLabels("species", len(r.Result.SpeciesScores))
	}
	r.Result.Labels = labels
}

func generatedLabels(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}
