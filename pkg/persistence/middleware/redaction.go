package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultRedactionPatterns match e-mail addresses and GitHub tokens.
var DefaultRedactionPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\bgh[pousr]_[A-Za-z0-9]{36,}\b`,
	`\bgithub_pat_[A-Za-z0-9_]{22,}\b`,
}

type redactionMiddleware struct {
	next     ports.ReportStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks text matching the patterns
// in the query, the content and the repository descriptions of saved reports.
// Model output can echo anything found in repository metadata.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, report *domain.Report) error {
	// Copy so the caller's report is not modified.
	cloned := *report
	cloned.Query = m.mask(report.Query)
	cloned.Content = m.mask(report.Content)
	cloned.Repositories = make([]domain.Item, len(report.Repositories))
	for i, item := range report.Repositories {
		item.Description = m.mask(item.Description)
		cloned.Repositories[i] = item
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, runID string) (*domain.Report, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
