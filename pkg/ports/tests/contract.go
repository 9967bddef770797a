// Package tests provides reusable contract suites for port implementations.
package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ports.ReportStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	newReport := func(id string) *domain.Report {
		return &domain.Report{
			RunID:   id,
			Query:   domain.DefaultQuery,
			Content: "## Trending GitHub Repositories Summary\n\nbody",
			Repositories: []domain.Item{
				{FullName: "octo/one", HTMLURL: "https://github.com/octo/one", Stars: 10},
			},
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(runID)
		require.NoError(t, store.Save(ctx, report), "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.RunID, loaded.RunID)
		assert.Equal(t, report.Query, loaded.Query)
		assert.Equal(t, report.Content, loaded.Content)
		require.Len(t, loaded.Repositories, 1)
		assert.Equal(t, "octo/one", loaded.Repositories[0].FullName)
		assert.Equal(t, "https://github.com/octo/one", loaded.Repositories[0].HTMLURL)
		assert.True(t, report.CreatedAt.Equal(loaded.CreatedAt), "created_at should survive persistence")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		report := newReport(runID)
		report.Content = "updated"
		require.NoError(t, store.Save(ctx, report))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "updated", loaded.Content)
	})

	t.Run("Delete", func(t *testing.T) {
		id := runID + "-deleted"
		require.NoError(t, store.Save(ctx, newReport(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, id)
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "ghost-"+runID), "Delete should be idempotent")
	})

	t.Run("List", func(t *testing.T) {
		for i := 1; i <= 2; i++ {
			require.NoError(t, store.Save(ctx, newReport(fmt.Sprintf("%s-%d", runID, i))))
		}

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, runID+"-1")
		assert.Contains(t, ids, runID+"-2")
	})

	t.Run("Reject Empty ID", func(t *testing.T) {
		err := store.Save(ctx, &domain.Report{})
		assert.Error(t, err)
	})
}
