package pipeline_test

import (
	"testing"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts, err := pipeline.DecodeOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, pipeline.DefaultOptions(), opts)
		assert.Equal(t, 3, opts.ItemCount)
		assert.Equal(t, pipeline.AnalyzerInstructions, opts.AnalyzerInstructions)
	})

	t.Run("Overrides", func(t *testing.T) {
		opts, err := pipeline.DecodeOptions(domain.Config{
			"item_count":              "2",
			"lookback":                "48h",
			"summarizer_instructions": "be brief",
			"unrelated":               true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, opts.ItemCount)
		assert.Equal(t, 48*time.Hour, opts.Lookback)
		assert.Equal(t, "be brief", opts.SummarizerInstructions)
		assert.Equal(t, pipeline.AnalyzerInstructions, opts.AnalyzerInstructions)
	})

	t.Run("Round Trip", func(t *testing.T) {
		in := pipeline.DefaultOptions()
		in.Since = "2026-02-01"
		out, err := pipeline.DecodeOptions(in.Config())
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := []domain.Config{
			{"item_count": 0},
			{"item_count": 20},
			{"since": "yesterday"},
			{"lookback": "forever"},
		}
		for _, cfg := range tests {
			_, err := pipeline.DecodeOptions(cfg)
			assert.Error(t, err, "config %v", cfg)
		}
	})
}

func TestDecodeCandidate(t *testing.T) {
	item, err := pipeline.DecodeCandidate(domain.Candidate{
		"id":               float64(42),
		"full_name":        "octo/cat",
		"html_url":         "https://github.com/octo/cat",
		"description":      nil,
		"stargazers_count": float64(1200),
		"language":         nil,
		"owner":            map[string]any{"login": "octo"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, 1200, item.Stars)
	assert.Empty(t, item.Description)

	_, err = pipeline.DecodeCandidate(domain.Candidate{"html_url": "https://x.y"})
	assert.ErrorContains(t, err, "full_name")

	_, err = pipeline.DecodeCandidate(domain.Candidate{"full_name": "", "html_url": "https://x.y"})
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	desc, err := pipeline.DescribeItem(domain.Item{FullName: "o/r", HTMLURL: "https://github.com/o/r", Stars: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"o/r","description":"No description available","stars":5,"forks":0,"language":"Not specified","url":"https://github.com/o/r"}`, desc)

	assert.Equal(t, "## Trending GitHub Repositories Summary\n\nS\n\n### Repositories:\n", pipeline.FormatReport("S", nil))
}
