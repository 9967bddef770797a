package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/dsl"
	"github.com/aretw0/trendline/pkg/ports"
)

// Step names, as exposed by introspection.
const (
	StepFetch    = "fetch_repositories"
	StepAnalyze  = "analyze_repository"
	StepFinalize = "finalize_summary"
)

// Routes selectable by Decide.
const (
	RouteAnalyzeAgain domain.Route = "analyze_again"
	RouteFinalize     domain.Route = "finalize"
)

// Collaborator names used in domain.CollaboratorError.
const (
	CollaboratorSource    = "repository_source"
	CollaboratorInference = "inference"
)

// ErrInvariantViolated is returned by CheckInvariants.
var ErrInvariantViolated = errors.New("state invariant violated")

// Pipeline holds the collaborators of the trending workflow and exposes its steps.
type Pipeline struct {
	source ports.RepositorySource
	model  ports.Inferencer
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source used to compute the search window.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates the pipeline with its two collaborators.
func New(source ports.RepositorySource, model ports.Inferencer, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: source,
		model:  model,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Graph returns the step graph: fetch -> analyze (self-loop) -> finalize -> END.
func (p *Pipeline) Graph() (domain.Graph, error) {
	b := dsl.New().Entry(StepFetch)

	b.Add(StepFetch, p.Fetch).
		Describe("Fetch recently created repositories and keep the first valid ones").
		Go(StepAnalyze)

	b.Add(StepAnalyze, p.Analyze).
		Describe("Analyze the repository under the cursor").
		Branch(Decide, map[domain.Route]string{
			RouteAnalyzeAgain: StepAnalyze,
			RouteFinalize:     StepFinalize,
		})

	b.Add(StepFinalize, p.Finalize).
		Describe("Summarize all analyses into the final report").
		Go(domain.End)

	return b.Build()
}

// Fetch searches candidates once and keeps the first N valid ones.
func (p *Pipeline) Fetch(ctx context.Context, state domain.State, cfg domain.Config) (domain.Update, error) {
	opts, err := DecodeOptions(cfg)
	if err != nil {
		return domain.Update{}, err
	}

	req := ports.SearchRequest{
		Query:   "created:>" + opts.createdAfter(p.now()),
		Sort:    opts.Sort,
		Order:   opts.Order,
		PerPage: opts.PerPage,
	}
	p.logger.Debug("fetching repositories", "q", req.Query, "per_page", req.PerPage)

	candidates, err := p.source.Search(ctx, req)
	if err != nil {
		return domain.Update{}, &domain.CollaboratorError{Collaborator: CollaboratorSource, Err: err}
	}

	items, rejected := SelectItems(candidates, opts.ItemCount)
	for _, r := range rejected {
		p.logger.Debug("candidate skipped", "err", r)
	}
	if len(items) < opts.ItemCount {
		return domain.Update{}, &domain.InsufficientDataError{Found: len(items), Required: opts.ItemCount}
	}

	for i, item := range items {
		p.logger.Info("repository selected", "position", i+1, "repository", item.FullName)
	}

	return domain.Update{
		Query:           domain.Some(state.Query),
		Items:           domain.Some(items),
		Cursor:          domain.Some(0),
		Processed:       domain.Some([]domain.Item{}),
		AccumulatedText: domain.Some(""),
		Signal:          domain.Some(domain.SignalContinue),
	}, nil
}

// Analyze processes the item under the cursor.
// When every item has been processed it only raises the finalize signal.
func (p *Pipeline) Analyze(ctx context.Context, state domain.State, cfg domain.Config) (domain.Update, error) {
	if state.Cursor >= len(state.Items) {
		p.logger.Debug("all repositories analyzed")
		return domain.Update{Signal: domain.Some(domain.SignalFinalize)}, nil
	}

	opts, err := DecodeOptions(cfg)
	if err != nil {
		return domain.Update{}, err
	}

	item := state.Items[state.Cursor]
	p.logger.Info("analyzing repository", "index", state.Cursor+1, "total", len(state.Items), "repository", item.FullName)

	description, err := DescribeItem(item)
	if err != nil {
		return domain.Update{}, err
	}

	analysis, err := p.model.Infer(ctx, opts.AnalyzerInstructions, AnalysisInput(description))
	if err != nil {
		return domain.Update{}, &domain.CollaboratorError{Collaborator: CollaboratorInference, Err: err}
	}

	text := analysis
	if state.AccumulatedText != "" {
		text = state.AccumulatedText + "\n\n" + analysis
	}

	next := state.Cursor + 1
	signal := domain.SignalContinue
	if next >= len(state.Items) {
		signal = domain.SignalFinalize
	}

	return domain.Update{
		Cursor:          domain.Some(next),
		Processed:       domain.Some([]domain.Item{item}),
		AccumulatedText: domain.Some(text),
		Signal:          domain.Some(signal),
	}, nil
}

// Finalize summarizes the accumulated analyses and formats the report.
func (p *Pipeline) Finalize(ctx context.Context, state domain.State, cfg domain.Config) (domain.Update, error) {
	opts, err := DecodeOptions(cfg)
	if err != nil {
		return domain.Update{}, err
	}

	p.logger.Info("finalizing summary", "analyzed", len(state.Processed))

	summary, err := p.model.Infer(ctx, opts.SummarizerInstructions, SummaryInput(state.AccumulatedText))
	if err != nil {
		return domain.Update{}, &domain.CollaboratorError{Collaborator: CollaboratorInference, Err: err}
	}

	return domain.Update{
		FinalReport: domain.Some(FormatReport(summary, state.Processed)),
	}, nil
}

// Decide maps the control signal to the successor route of the analysis step.
func Decide(state domain.State) domain.Route {
	if state.Signal == domain.SignalFinalize {
		return RouteFinalize
	}
	return RouteAnalyzeAgain
}

// CheckInvariants validates the structural invariants of the merged state.
func CheckInvariants(step string, s domain.State) error {
	switch {
	case s.Cursor < 0 || s.Cursor > len(s.Items):
		return fmt.Errorf("%w after %s: cursor %d out of range [0, %d]", ErrInvariantViolated, step, s.Cursor, len(s.Items))
	case len(s.Processed) != s.Cursor:
		return fmt.Errorf("%w after %s: %d processed items for cursor %d", ErrInvariantViolated, step, len(s.Processed), s.Cursor)
	case (s.Signal == domain.SignalFinalize) != (s.Cursor >= len(s.Items)):
		return fmt.Errorf("%w after %s: signal %q inconsistent with cursor %d of %d", ErrInvariantViolated, step, s.Signal, s.Cursor, len(s.Items))
	}
	return nil
}
