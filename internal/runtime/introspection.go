package runtime

import (
	"slices"

	"github.com/aretw0/trendline/pkg/domain"
)

// Describe returns the static structure of the compiled graph, in registration order.
// Routed transitions are sorted by route name.
func (e *Engine) Describe() []domain.StepNode {
	nodes := make([]domain.StepNode, 0, len(e.order))
	for _, name := range e.order {
		step := e.steps[name]
		edge := e.edges[name]

		node := domain.StepNode{
			ID:          name,
			Description: step.Description,
			Entry:       name == e.entry,
		}
		if edge.Conditional() {
			routes := make([]domain.Route, 0, len(edge.Routes))
			for r := range edge.Routes {
				routes = append(routes, r)
			}
			slices.Sort(routes)
			for _, r := range routes {
				node.Transitions = append(node.Transitions, domain.Transition{To: edge.Routes[r], Route: r})
			}
		} else {
			node.Transitions = []domain.Transition{{To: edge.To}}
		}
		nodes = append(nodes, node)
	}
	return nodes
}
