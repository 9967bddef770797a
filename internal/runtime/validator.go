package runtime

import (
	"fmt"

	"github.com/aretw0/trendline/pkg/domain"
)

// register indexes steps and edges, rejecting duplicates and reserved names.
func (e *Engine) register(g domain.Graph) error {
	if err := g.Policy.Validate(); err != nil {
		return err
	}

	for _, s := range g.Steps {
		switch {
		case s.Name == "":
			return &domain.ConfigurationError{Reason: "step with empty name"}
		case s.Name == domain.Start || s.Name == domain.End:
			return &domain.ConfigurationError{Step: s.Name, Reason: "reserved name cannot be registered as a step"}
		case s.Run == nil:
			return &domain.ConfigurationError{Step: s.Name, Reason: "step has no function"}
		}
		if _, dup := e.steps[s.Name]; dup {
			return &domain.ConfigurationError{Step: s.Name, Reason: "step registered twice"}
		}
		e.steps[s.Name] = s
		e.order = append(e.order, s.Name)
	}

	for _, edge := range g.Edges {
		if _, ok := e.steps[edge.From]; !ok {
			return &domain.ConfigurationError{Step: edge.From, Reason: "edge source is not a registered step"}
		}
		if _, dup := e.edges[edge.From]; dup {
			return &domain.ConfigurationError{Step: edge.From, Reason: "step has more than one outgoing edge"}
		}
		e.edges[edge.From] = edge
	}
	return nil
}

// validate checks that every reference resolves and that END is reachable.
// Unreachable steps are only reported as warnings.
func (e *Engine) validate() error {
	if e.entry == "" {
		return &domain.ConfigurationError{Reason: "no entry step wired to START"}
	}
	if _, ok := e.steps[e.entry]; !ok {
		return &domain.ConfigurationError{Step: e.entry, Reason: "entry step is not registered"}
	}

	for _, name := range e.order {
		edge, ok := e.edges[name]
		if !ok {
			return &domain.ConfigurationError{Step: name, Reason: "step has no outgoing edge"}
		}
		if edge.Conditional() && len(edge.Routes) == 0 {
			return &domain.ConfigurationError{Step: name, Reason: "conditional edge declares no routes"}
		}
		if !edge.Conditional() && edge.To == "" {
			return &domain.ConfigurationError{Step: name, Reason: "edge has no target"}
		}
		for _, target := range targets(edge) {
			if target == domain.End {
				continue
			}
			if _, ok := e.steps[target]; !ok {
				return &domain.ConfigurationError{Step: name, Reason: fmt.Sprintf("edge target '%s' is not a registered step", target)}
			}
		}
	}

	visited, reachesEnd := e.crawl()
	if !reachesEnd {
		return &domain.ConfigurationError{Step: e.entry, Reason: "no path from entry reaches END"}
	}
	for _, name := range e.order {
		if !visited[name] {
			e.logger.Warn("step is unreachable from entry", "step", name, "entry", e.entry)
		}
	}
	return nil
}

// crawl walks the graph breadth-first from the entry step.
func (e *Engine) crawl() (map[string]bool, bool) {
	visited := make(map[string]bool, len(e.order))
	reachesEnd := false
	queue := []string{e.entry}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range targets(e.edges[current]) {
			if target == domain.End {
				reachesEnd = true
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return visited, reachesEnd
}

func targets(edge domain.Edge) []string {
	if !edge.Conditional() {
		return []string{edge.To}
	}
	out := make([]string, 0, len(edge.Routes))
	for _, t := range edge.Routes {
		out = append(out, t)
	}
	return out
}
