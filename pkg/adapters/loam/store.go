// Package loam archives reports as markdown documents with YAML frontmatter.
package loam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
)

const ext = ".md"

var _ ports.ReportStore = (*Store)(nil)

// Store implements ports.ReportStore on top of a Loam repository.
// Each report is one "<run id>.md" file; the body is the report markdown.
type Store struct {
	root  string
	repo  core.Repository
	typed *loam.TypedRepository[ReportMetadata]
}

// New initializes (or opens) a Loam repository at path.
// Versioning is disabled unless opts enable it.
func New(path string, opts ...loam.Option) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive path: %w", err)
	}
	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repository: %w", err)
	}
	return NewFromRepository(absPath, repo), nil
}

// NewFromRepository wraps an initialized repository rooted at root.
func NewFromRepository(root string, repo core.Repository) *Store {
	return &Store{
		root:  root,
		repo:  repo,
		typed: loam.NewTypedRepository[ReportMetadata](repo),
	}
}

// Save writes the report document, replacing any previous version.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("report must have a run id")
	}

	repos := make([]map[string]any, 0, len(report.Repositories))
	for _, item := range report.Repositories {
		repos = append(repos, map[string]any{
			"id":               item.ID,
			"full_name":        item.FullName,
			"html_url":         item.HTMLURL,
			"description":      item.Description,
			"stargazers_count": item.Stars,
			"forks_count":      item.Forks,
			"language":         item.Language,
		})
	}

	err := s.repo.Save(ctx, core.Document{
		ID:      report.RunID + ext,
		Content: report.Content,
		Metadata: core.Metadata{
			"run_id":       report.RunID,
			"query":        report.Query,
			"created_at":   report.CreatedAt.UTC().Format(time.RFC3339Nano),
			"repositories": repos,
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", report.RunID, err)
	}
	return nil
}

// Load reads the report archived for runID.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Report, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return nil, domain.ErrReportNotFound
	}
	if _, err := os.Stat(filepath.Join(s.root, runID+ext)); err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to stat report: %w", err)
	}

	doc, err := s.typed.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", runID, err)
	}
	meta := doc.Data

	createdAt, err := time.Parse(time.RFC3339Nano, meta.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for %s: %w", runID, err)
	}

	if meta.RunID == "" {
		meta.RunID = runID
	}
	return &domain.Report{
		RunID:        meta.RunID,
		Query:        meta.Query,
		Content:      strings.TrimSpace(doc.Content),
		Repositories: meta.Repositories,
		CreatedAt:    createdAt,
	}, nil
}

// Delete removes the archived document for runID.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.root, runID+ext)); os.IsNotExist(err) {
		return nil
	}
	if err := s.typed.Delete(ctx, runID+ext); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", runID, err)
	}
	return nil
}

// List returns the run IDs of archived reports in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.RunID
		if id == "" {
			id = strings.TrimSuffix(filepath.ToSlash(doc.ID), ext)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
