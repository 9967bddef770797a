package trendline_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/trendline"
	"github.com/aretw0/trendline/internal/testutils"
	"github.com/aretw0/trendline/pkg/adapters/memory"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, opts ...trendline.Option) (*trendline.Engine, *testutils.ScriptedModel) {
	t.Helper()
	model := &testutils.ScriptedModel{}
	base := []trendline.Option{
		trendline.WithSource(testutils.StaticSource("a/A", "b/B", "c/C", "d/D")),
		trendline.WithInferencer(model),
		trendline.WithClock(func() time.Time { return fixedNow }),
	}
	eng, err := trendline.New(append(base, opts...)...)
	require.NoError(t, err)
	return eng, model
}

func TestFacade_Summarize(t *testing.T) {
	store := memory.NewStore()
	eng, model := newEngine(t,
		trendline.WithStore(store),
		trendline.WithIDGenerator(func() string { return "run-1" }),
	)

	report, err := eng.Summarize(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, domain.DefaultQuery, report.Query)
	assert.Equal(t, fixedNow, report.CreatedAt)
	assert.True(t, strings.HasPrefix(report.Content, "## Trending GitHub Repositories Summary\n\nSUMMARY\n\n### Repositories:\n"))
	assert.Len(t, report.Repositories, 3)
	assert.Equal(t, 4, model.Calls(), "three analyses and one summary")

	ids, err := eng.Reports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)

	loaded, err := eng.Report(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.Content, loaded.Content)

	require.NoError(t, eng.DeleteReport(context.Background(), "run-1"))
	_, err = eng.Report(context.Background(), "run-1")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestFacade_ConfigLayers(t *testing.T) {
	eng, _ := newEngine(t, trendline.WithConfig(domain.Config{pipeline.KeyItemCount: 2}))

	final, err := eng.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Len(t, final.Processed, 2)

	final, err = eng.Run(context.Background(), "q", domain.Config{pipeline.KeyItemCount: 1})
	require.NoError(t, err)
	assert.Len(t, final.Processed, 1)

	report, err := eng.SummarizeWith(context.Background(), "q", domain.Config{pipeline.KeyItemCount: 4})
	require.NoError(t, err)
	assert.Len(t, report.Repositories, 4)
}

func TestFacade_RunIDFromContext(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := domain.WithRunID(context.Background(), "given")

	report, err := eng.Summarize(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "given", report.RunID)
}

func TestFacade_Errors(t *testing.T) {
	t.Run("Missing Collaborators", func(t *testing.T) {
		_, err := trendline.New()
		assert.Error(t, err)
		_, err = trendline.New(trendline.WithSource(testutils.StaticSource()))
		assert.Error(t, err)
	})

	t.Run("Invalid Base Config", func(t *testing.T) {
		_, err := trendline.New(
			trendline.WithSource(testutils.StaticSource()),
			trendline.WithInferencer(&testutils.ScriptedModel{}),
			trendline.WithConfig(domain.Config{pipeline.KeyItemCount: 0}),
		)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("Insufficient Data Saves Nothing", func(t *testing.T) {
		store := memory.NewStore()
		eng, err := trendline.New(
			trendline.WithSource(testutils.StaticSource("a/A")),
			trendline.WithInferencer(&testutils.ScriptedModel{}),
			trendline.WithStore(store),
		)
		require.NoError(t, err)

		_, err = eng.Summarize(context.Background(), "")
		var insufficient *domain.InsufficientDataError
		require.ErrorAs(t, err, &insufficient)

		ids, _ := store.List(context.Background())
		assert.Empty(t, ids)
	})

	t.Run("Inference Failure", func(t *testing.T) {
		model := &testutils.ScriptedModel{Err: errors.New("offline")}
		eng, err := trendline.New(
			trendline.WithSource(testutils.StaticSource("a/A", "b/B", "c/C")),
			trendline.WithInferencer(model),
		)
		require.NoError(t, err)

		_, err = eng.Summarize(context.Background(), "")
		var collab *domain.CollaboratorError
		require.ErrorAs(t, err, &collab)
		assert.Equal(t, pipeline.CollaboratorInference, collab.Collaborator)
	})
}

func TestFacade_LockSerializesSameQuery(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0
	hooks := domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			mu.Lock()
			defer mu.Unlock()
			active++
			peak = max(peak, active)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			mu.Lock()
			defer mu.Unlock()
			active--
		},
	}
	eng, _ := newEngine(t,
		trendline.WithLocker(memory.NewLocker(), time.Minute),
		trendline.WithLifecycleHooks(hooks),
	)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Summarize(context.Background(), "same")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)
}

func TestFacade_Describe(t *testing.T) {
	eng, _ := newEngine(t)
	nodes := eng.Describe()
	require.Len(t, nodes, 3)
	assert.Equal(t, pipeline.StepFetch, nodes[0].ID)
	assert.True(t, nodes[0].Entry)
}

func TestRunner(t *testing.T) {
	var out bytes.Buffer
	runner := &trendline.Runner{
		Output:   &out,
		Renderer: func(s string) (string, error) { return strings.ToUpper(s), nil },
	}
	eng, _ := newEngine(t, trendline.WithLifecycleHooks(runner.ProgressHooks()))

	_, err := runner.Run(context.Background(), eng, "")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Fetching trending repositories...\n1. Found a/A\n2. Found b/B\n3. Found c/C\n")
	assert.Contains(t, text, "Analyzed 3/3: c/C\n")
	assert.Contains(t, text, "Creating final summary...\n")
	assert.Contains(t, text, "## TRENDING GITHUB REPOSITORIES SUMMARY")

	out.Reset()
	runner.Headless = true
	runner.Renderer = nil
	_, err = runner.Run(context.Background(), eng, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "## Trending"), "headless prints only the report")
}
