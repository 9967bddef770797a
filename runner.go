package trendline

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/pipeline"
)

// ContentRenderer transforms the report before it is written.
// This allows for terminal rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner drives a summarize run for a terminal frontend: progress lines while the
// pipeline executes, then the rendered report.
type Runner struct {
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	mu sync.Mutex
}

// NewRunner creates a Runner writing to stdout.
func NewRunner() *Runner {
	return &Runner{Output: os.Stdout}
}

func (r *Runner) out() io.Writer {
	if r.Output == nil {
		return os.Stdout
	}
	return r.Output
}

func (r *Runner) printf(format string, args ...any) {
	if r.Headless {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out(), format, args...)
}

// ProgressHooks prints one line per pipeline milestone.
// Register them on the engine with WithLifecycleHooks.
func (r *Runner) ProgressHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			switch e.Step {
			case pipeline.StepFetch:
				r.printf("Fetching trending repositories...\n")
			case pipeline.StepFinalize:
				r.printf("Creating final summary...\n")
			}
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				return
			}
			switch e.Step {
			case pipeline.StepFetch:
				for i, item := range e.State.Items {
					r.printf("%d. Found %s\n", i+1, item.FullName)
				}
			case pipeline.StepAnalyze:
				if n := len(e.State.Processed); n > 0 && slices.Contains(e.Changed, "processed") {
					r.printf("Analyzed %d/%d: %s\n", n, len(e.State.Items), e.State.Processed[n-1].FullName)
				}
			}
		},
	}
}

// Run summarizes query with engine and writes the (rendered) report.
func (r *Runner) Run(ctx context.Context, engine *Engine, query string) (*domain.Report, error) {
	report, err := engine.Summarize(ctx, query)
	if err != nil {
		return nil, err
	}

	content := report.Content
	if r.Renderer != nil {
		rendered, err := r.Renderer(content)
		if err != nil {
			return nil, fmt.Errorf("failed to render report: %w", err)
		}
		content = rendered
	}

	if _, err := fmt.Fprintln(r.out(), content); err != nil {
		return nil, err
	}
	return report, nil
}
