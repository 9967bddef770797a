package runtime_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/trendline/internal/runtime"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nop(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
	return domain.Update{}, nil
}

func steps(names ...string) []domain.Step {
	out := make([]domain.Step, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Step{Name: n, Run: nop})
	}
	return out
}

func always(r domain.Route) domain.Decider {
	return func(domain.State) domain.Route { return r }
}

func TestCompile_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		graph domain.Graph
		want  string
	}{
		{
			name:  "No Entry",
			graph: domain.Graph{Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: domain.End}}},
			want:  "no entry step",
		},
		{
			name:  "Unregistered Entry",
			graph: domain.Graph{Entry: "ghost", Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: domain.End}}},
			want:  "entry step is not registered",
		},
		{
			name:  "Dangling Target",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: "b"}}},
			want:  "edge target 'b' is not a registered step",
		},
		{
			name: "Dangling Route Target",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{
				From: "a", Decide: always("x"), Routes: map[domain.Route]string{"x": domain.End, "y": "ghost"},
			}}},
			want: "edge target 'ghost'",
		},
		{
			name:  "Unknown Source",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: domain.End}, {From: "ghost", To: "a"}}},
			want:  "edge source is not a registered step",
		},
		{
			name:  "Missing Outgoing Edge",
			graph: domain.Graph{Entry: "a", Steps: steps("a", "b"), Edges: []domain.Edge{{From: "a", To: domain.End}}},
			want:  "step has no outgoing edge",
		},
		{
			name:  "Two Outgoing Edges",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: domain.End}, {From: "a", To: "a"}}},
			want:  "more than one outgoing edge",
		},
		{
			name:  "No Path To End",
			graph: domain.Graph{Entry: "a", Steps: steps("a", "b"), Edges: []domain.Edge{{From: "a", To: "a"}, {From: "b", To: domain.End}}},
			want:  "no path from entry reaches END",
		},
		{
			name:  "Duplicate Step",
			graph: domain.Graph{Entry: "a", Steps: steps("a", "a"), Edges: []domain.Edge{{From: "a", To: domain.End}}},
			want:  "registered twice",
		},
		{
			name:  "Reserved Name",
			graph: domain.Graph{Entry: domain.End, Steps: steps(domain.End)},
			want:  "reserved name",
		},
		{
			name: "Empty Routes",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{
				From: "a", Decide: always("x"),
			}}},
			want: "declares no routes",
		},
		{
			name: "Invalid Policy",
			graph: domain.Graph{Entry: "a", Steps: steps("a"), Edges: []domain.Edge{{From: "a", To: domain.End}},
				Policy: domain.MergePolicy{Signal: domain.MergeAppend}},
			want: "signal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := runtime.Compile(tt.graph)
			assert.Nil(t, eng)

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompile_UnreachableStepIsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	g := domain.Graph{
		Entry: "a",
		Steps: steps("a", "orphan"),
		Edges: []domain.Edge{{From: "a", To: domain.End}, {From: "orphan", To: domain.End}},
	}

	eng, err := runtime.Compile(g, runtime.WithLogger(logger))
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Contains(t, buf.String(), "step=orphan")
}

func TestCompile_SelfLoopWithExit(t *testing.T) {
	g := domain.Graph{
		Entry: "a",
		Steps: steps("a"),
		Edges: []domain.Edge{{
			From: "a", Decide: always("stop"),
			Routes: map[domain.Route]string{"loop": "a", "stop": domain.End},
		}},
	}

	eng, err := runtime.Compile(g)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), domain.NewState(""), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuery, final.Query)
}
