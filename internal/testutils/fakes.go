package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
)

// Candidate returns a well-formed search result for the repository "owner/name".
func Candidate(fullName string) domain.Candidate {
	return domain.Candidate{
		"id":               float64(len(fullName)),
		"full_name":        fullName,
		"html_url":         "https://github.com/" + fullName,
		"description":      "about " + fullName,
		"stargazers_count": float64(100),
		"forks_count":      float64(10),
		"language":         "Go",
	}
}

// StaticSource answers every search with the same candidates.
func StaticSource(fullNames ...string) ports.RepositorySource {
	cands := make([]domain.Candidate, 0, len(fullNames))
	for _, n := range fullNames {
		cands = append(cands, Candidate(n))
	}
	return ports.RepositorySourceFunc(func(ctx context.Context, req ports.SearchRequest) ([]domain.Candidate, error) {
		return cands, nil
	})
}

// ScriptedModel is a deterministic Inferencer: analyses are numbered, summaries are fixed.
// Safe for concurrent use.
type ScriptedModel struct {
	Summary string
	Err     error

	mu    sync.Mutex
	calls int
}

// Infer implements ports.Inferencer.
func (m *ScriptedModel) Infer(ctx context.Context, instruction, input string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.calls++
	if strings.HasPrefix(input, "Create a comprehensive summary") {
		if m.Summary != "" {
			return m.Summary, nil
		}
		return "SUMMARY", nil
	}
	return fmt.Sprintf("analysis-%d", m.calls), nil
}

// Calls returns how many successful inferences were made.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
