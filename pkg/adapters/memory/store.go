// Package memory provides in-process implementations of the persistence ports.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
)

var _ ports.ReportStore = (*Store)(nil)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save persists a copy of the report.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("report must have a run id")
	}

	copied := copyReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.RunID] = copied
	return nil
}

// Load returns a copy so callers cannot mutate stored reports.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return copyReport(report), nil
}

// Delete removes a report. Deleting an unknown run is not an error.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyReport(r *domain.Report) *domain.Report {
	ret := *r
	ret.Repositories = append([]domain.Item(nil), r.Repositories...)
	return &ret
}
