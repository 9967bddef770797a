package domain

import "time"

// Report is the externally observable outcome of a completed run.
type Report struct {
	RunID        string    `json:"run_id"`
	Query        string    `json:"query"`
	Content      string    `json:"content"`
	Repositories []Item    `json:"repositories"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReport builds a report from the final state of a run.
func NewReport(runID string, final State, createdAt time.Time) *Report {
	return &Report{
		RunID:        runID,
		Query:        final.Query,
		Content:      final.FinalReport,
		Repositories: cloneItems(final.Processed),
		CreatedAt:    createdAt.UTC(),
	}
}
