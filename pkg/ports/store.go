package ports

import (
	"context"

	"github.com/aretw0/trendline/pkg/domain"
)

// ReportStore defines the interface for persisting completed run reports.
type ReportStore interface {
	// Save persists the report under its RunID.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves the report for a given run ID.
	// Returns domain.ErrReportNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Report, error)

	// Delete removes the report for a given run ID.
	// Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the run IDs of stored reports.
	List(ctx context.Context) ([]string, error)
}
