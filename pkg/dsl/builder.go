package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/trendline/pkg/domain"
)

// Builder manages the graph construction.
// Steps keep their registration order so that introspection output is stable.
type Builder struct {
	entry  string
	order  []string
	steps  map[string]*StepBuilder
	policy domain.MergePolicy
	errs   []error
}

// New creates a new graph builder using the default merge policy.
func New() *Builder {
	return &Builder{
		steps:  make(map[string]*StepBuilder),
		policy: domain.DefaultMergePolicy(),
	}
}

// Entry selects the step wired to the START marker.
func (b *Builder) Entry(name string) *Builder {
	b.entry = name
	return b
}

// Policy overrides the merge policy of the graph.
func (b *Builder) Policy(p domain.MergePolicy) *Builder {
	b.policy = p
	return b
}

// Add registers a step in the graph.
// If the step already exists, its function is replaced and the existing builder returned.
func (b *Builder) Add(name string, fn domain.StepFunc) *StepBuilder {
	if sb, ok := b.steps[name]; ok {
		sb.step.Run = fn
		return sb
	}
	if name == domain.Start || name == domain.End {
		b.errs = append(b.errs, fmt.Errorf("step name %q is reserved", name))
	}
	sb := &StepBuilder{step: domain.Step{Name: name, Run: fn}}
	b.steps[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Build assembles the graph definition.
// Structural validation (dangling targets, missing edges) is left to the engine compiler.
func (b *Builder) Build() (domain.Graph, error) {
	if len(b.errs) > 0 {
		return domain.Graph{}, fmt.Errorf("failed to build graph: %w", errors.Join(b.errs...))
	}

	g := domain.Graph{
		Entry:  b.entry,
		Policy: b.policy,
		Steps:  make([]domain.Step, 0, len(b.order)),
	}
	for _, name := range b.order {
		sb := b.steps[name]
		if sb.step.Run == nil {
			return domain.Graph{}, fmt.Errorf("failed to build graph: step %q has no function", name)
		}
		g.Steps = append(g.Steps, sb.step)
		g.Edges = append(g.Edges, sb.edges...)
	}
	return g, nil
}

// StepBuilder provides a fluent API for configuring a step and its outgoing edge.
type StepBuilder struct {
	step  domain.Step
	edges []domain.Edge
}

// Describe sets a human readable description used by introspection.
func (s *StepBuilder) Describe(text string) *StepBuilder {
	s.step.Description = text
	return s
}

// Go adds an unconditional edge to the target step (or domain.End).
func (s *StepBuilder) Go(target string) *StepBuilder {
	s.edges = append(s.edges, domain.Edge{From: s.step.Name, To: target})
	return s
}

// Branch adds a routed edge. The decider result is looked up in routes.
func (s *StepBuilder) Branch(decide domain.Decider, routes map[domain.Route]string) *StepBuilder {
	table := make(map[domain.Route]string, len(routes))
	for r, target := range routes {
		table[r] = target
	}
	s.edges = append(s.edges, domain.Edge{From: s.step.Name, Decide: decide, Routes: table})
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}
