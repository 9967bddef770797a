package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/trendline/internal/presentation/graph"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func pipelineNodes() []domain.StepNode {
	return []domain.StepNode{
		{ID: "fetch", Entry: true, Transitions: []domain.Transition{{To: "analyze"}}},
		{ID: "analyze", Description: `Analyze "one"`, Transitions: []domain.Transition{
			{To: "analyze", Route: "analyze_again"},
			{To: "finalize", Route: "finalize"},
		}},
		{ID: "finalize", Transitions: []domain.Transition{{To: domain.End}}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []domain.StepNode
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:  "Markers And Edges",
			nodes: pipelineNodes(),
			contains: []string{
				"graph TD\n",
				`START(("START"))`,
				"START --> fetch",
				"fetch --> analyze",
				`analyze -- "analyze_again" --> analyze`,
				`analyze -- "finalize" --> finalize`,
				"finalize --> END",
				`END(("END"))`,
				`analyze["analyze<br/><small>Analyze 'one'</small>"]`,
			},
			excludes: []string{"__end__", "classDef"},
		},
		{
			name:  "Sanitized IDs",
			nodes: []domain.StepNode{{ID: "a-b/c.d", Entry: true, Transitions: []domain.Transition{{To: domain.End}}}},
			contains: []string{
				`a_b_c_d["a-b/c.d"]`,
			},
		},
		{
			name:    "Overlay",
			nodes:   pipelineNodes(),
			overlay: &graph.Overlay{Visited: []string{"fetch", "analyze", "analyze"}, Current: "finalize"},
			contains: []string{
				"classDef visited",
				"class fetch visited;",
				"class finalize current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.nodes, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
			if tt.overlay != nil {
				assert.Equal(t, 1, strings.Count(out, "class analyze visited;"), "visited steps are deduplicated")
			}
		})
	}
}
