package ports

import (
	"context"

	"github.com/aretw0/trendline/pkg/domain"
)

// SearchRequest describes a single repository search.
type SearchRequest struct {
	Query   string // Search qualifier, e.g. "created:>2026-01-01"
	Sort    string
	Order   string
	PerPage int
}

// RepositorySource fetches raw candidate records.
// Candidates are returned unvalidated; required-field checks belong to the caller.
type RepositorySource interface {
	Search(ctx context.Context, req SearchRequest) ([]domain.Candidate, error)
}

// RepositorySourceFunc adapts a function to the RepositorySource interface.
type RepositorySourceFunc func(ctx context.Context, req SearchRequest) ([]domain.Candidate, error)

// Search calls f(ctx, req).
func (f RepositorySourceFunc) Search(ctx context.Context, req SearchRequest) ([]domain.Candidate, error) {
	return f(ctx, req)
}
