package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/trendline/internal/runtime"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	routeAgain domain.Route = "again"
	routeDone  domain.Route = "done"
)

// loopGraph wires load -> work (self-loop while items remain) -> finish -> END.
func loopGraph(t *testing.T, n int, finish domain.StepFunc) domain.Graph {
	t.Helper()

	load := func(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
		items := make([]domain.Item, n)
		for i := range items {
			items[i] = domain.Item{FullName: fmt.Sprintf("owner/repo-%d", i), HTMLURL: "https://example.com"}
		}
		return domain.Update{
			Items:     domain.Some(items),
			Cursor:    domain.Some(0),
			Processed: domain.Some([]domain.Item{}),
			Signal:    domain.Some(domain.SignalContinue),
		}, nil
	}

	work := func(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
		if s.Cursor >= len(s.Items) {
			return domain.Update{Signal: domain.Some(domain.SignalFinalize)}, nil
		}
		next := s.Cursor + 1
		signal := domain.SignalContinue
		if next >= len(s.Items) {
			signal = domain.SignalFinalize
		}
		return domain.Update{
			Cursor:          domain.Some(next),
			Processed:       domain.Some([]domain.Item{s.Items[s.Cursor]}),
			AccumulatedText: domain.Some(s.AccumulatedText + s.Items[s.Cursor].FullName + ";"),
			Signal:          domain.Some(signal),
		}, nil
	}

	if finish == nil {
		finish = func(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
			return domain.Update{FinalReport: domain.Some("report:" + s.AccumulatedText)}, nil
		}
	}

	decide := func(s domain.State) domain.Route {
		if s.Signal == domain.SignalFinalize {
			return routeDone
		}
		return routeAgain
	}

	b := dsl.New().Entry("load")
	b.Add("load", load).Go("work")
	b.Add("work", work).Branch(decide, map[domain.Route]string{
		routeAgain: "work",
		routeDone:  "finish",
	})
	b.Add("finish", finish).Go(domain.End)

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestEngine_Run_Loop(t *testing.T) {
	tests := []struct {
		name       string
		items      int
		wantVisits int
	}{
		{"Three Items", 3, 3},
		{"One Item", 1, 1},
		{"No Items", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visits int
			hooks := domain.LifecycleHooks{
				OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
					if e.Step == "work" {
						visits++
					}
				},
			}

			eng, err := runtime.Compile(loopGraph(t, tt.items, nil), runtime.WithLifecycleHooks(hooks))
			require.NoError(t, err)

			final, err := eng.Run(context.Background(), domain.NewState(""), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantVisits, visits)
			assert.Equal(t, tt.items, final.Cursor)
			assert.Len(t, final.Processed, tt.items)
			assert.Equal(t, domain.SignalFinalize, final.Signal)
			assert.Equal(t, "report:"+final.AccumulatedText, final.FinalReport)
			for i, it := range final.Processed {
				assert.Equal(t, final.Items[i].FullName, it.FullName, "processing order")
			}
		})
	}
}

func TestEngine_Run_DoesNotMutateInput(t *testing.T) {
	eng, err := runtime.Compile(loopGraph(t, 2, nil))
	require.NoError(t, err)

	initial := domain.NewState("seed")
	cfg := domain.Config{"k": "v"}
	_, err = eng.Run(context.Background(), initial, cfg)
	require.NoError(t, err)

	assert.Equal(t, domain.NewState("seed"), initial)
	assert.Equal(t, domain.Config{"k": "v"}, cfg)
}

func TestEngine_Run_StepFailureDiscardsState(t *testing.T) {
	boom := errors.New("inference offline")
	finish := func(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
		return domain.Update{}, boom
	}

	var runErr error
	eng, err := runtime.Compile(loopGraph(t, 2, finish), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) { runErr = e.Err },
	}))
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), domain.NewState(""), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "finish", stepErr.Step)
	assert.Equal(t, 1, stepErr.Iteration)
	assert.Equal(t, domain.State{}, final)
	assert.Equal(t, err, runErr)
}

func TestEngine_Run_UndeclaredRoute(t *testing.T) {
	noop := func(ctx context.Context, s domain.State, cfg domain.Config) (domain.Update, error) {
		return domain.Update{}, nil
	}
	b := dsl.New().Entry("a")
	b.Add("a", noop).Branch(func(domain.State) domain.Route { return "nowhere" }, map[domain.Route]string{
		"end": domain.End,
	})
	g, err := b.Build()
	require.NoError(t, err)

	eng, err := runtime.Compile(g)
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), domain.NewState(""), nil)
	var routingErr *domain.RoutingError
	require.ErrorAs(t, err, &routingErr)
	assert.Equal(t, domain.Route("nowhere"), routingErr.Route)
	assert.Equal(t, []domain.Route{"end"}, routingErr.Declared)
}

func TestEngine_Run_CancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var entered []string
	eng, err := runtime.Compile(loopGraph(t, 3, nil), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) { entered = append(entered, e.Step) },
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			if e.Step == "load" {
				cancel()
			}
		},
	}))
	require.NoError(t, err)

	_, err = eng.Run(ctx, domain.NewState(""), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"load"}, entered)
}

func TestEngine_Run_MaxSteps(t *testing.T) {
	eng, err := runtime.Compile(loopGraph(t, 10, nil), runtime.WithMaxSteps(4))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), domain.NewState(""), nil)
	assert.ErrorIs(t, err, runtime.ErrStepLimitExceeded)
}

func TestEngine_Run_Invariant(t *testing.T) {
	violation := errors.New("cursor too far")
	eng, err := runtime.Compile(loopGraph(t, 3, nil), runtime.WithInvariant(func(step string, s domain.State) error {
		if s.Cursor > 1 {
			return violation
		}
		return nil
	}))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), domain.NewState(""), nil)
	assert.ErrorIs(t, err, violation)

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "work", stepErr.Step)
	assert.Equal(t, 2, stepErr.Iteration)
}

func TestEngine_Run_Concurrent(t *testing.T) {
	eng, err := runtime.Compile(loopGraph(t, 3, nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]domain.State, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := domain.WithRunID(context.Background(), fmt.Sprintf("run-%d", i))
			results[i], errs[i] = eng.Run(ctx, domain.NewState(""), nil)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Len(t, results[i].Processed, 3)
	}
}

func TestEngine_Describe(t *testing.T) {
	eng, err := runtime.Compile(loopGraph(t, 1, nil))
	require.NoError(t, err)

	nodes := eng.Describe()
	require.Len(t, nodes, 3)
	assert.Equal(t, "load", nodes[0].ID)
	assert.True(t, nodes[0].Entry)
	assert.Equal(t, []domain.Transition{{To: "work"}}, nodes[0].Transitions)
	assert.Equal(t, []domain.Transition{
		{To: "work", Route: routeAgain},
		{To: "finish", Route: routeDone},
	}, nodes[1].Transitions)
	assert.Equal(t, domain.End, nodes[2].Transitions[0].To)
	assert.Equal(t, "load", eng.Entry())
}
