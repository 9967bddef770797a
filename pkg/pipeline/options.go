package pipeline

import (
	"fmt"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Run configuration keys understood by the pipeline steps.
const (
	KeyItemCount              = "item_count"
	KeyPerPage                = "per_page"
	KeySort                   = "sort"
	KeyOrder                  = "order"
	KeyLookback               = "lookback"
	KeySince                  = "since"
	KeyAnalyzerInstructions   = "analyzer_instructions"
	KeySummarizerInstructions = "summarizer_instructions"
)

// Options is the typed view of the run configuration.
type Options struct {
	// ItemCount is the number of valid repositories required (N).
	ItemCount int `mapstructure:"item_count" yaml:"item_count"`
	// PerPage is the number of candidates requested from the source; it exceeds ItemCount to absorb invalid records.
	PerPage int    `mapstructure:"per_page" yaml:"per_page"`
	Sort    string `mapstructure:"sort" yaml:"sort"`
	Order   string `mapstructure:"order" yaml:"order"`
	// Lookback selects repositories created after now-Lookback.
	Lookback time.Duration `mapstructure:"lookback" yaml:"lookback"`
	// Since, when set (YYYY-MM-DD), takes precedence over Lookback.
	Since string `mapstructure:"since" yaml:"since"`

	AnalyzerInstructions   string `mapstructure:"analyzer_instructions" yaml:"analyzer_instructions"`
	SummarizerInstructions string `mapstructure:"summarizer_instructions" yaml:"summarizer_instructions"`
}

// DefaultOptions mirrors the behavior of the trending assistant: 3 items out of 10 candidates
// created during the last week, most starred first.
func DefaultOptions() Options {
	return Options{
		ItemCount:              3,
		PerPage:                10,
		Sort:                   "stars",
		Order:                  "desc",
		Lookback:               7 * 24 * time.Hour,
		AnalyzerInstructions:   AnalyzerInstructions,
		SummarizerInstructions: SummarizerInstructions,
	}
}

// DecodeOptions overlays the run configuration on top of the defaults.
// Durations may be given as Go duration strings ("168h").
func DecodeOptions(cfg domain.Config) (Options, error) {
	opts := DefaultOptions()
	if len(cfg) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(cfg)); err != nil {
		return Options{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the option bounds.
func (o Options) Validate() error {
	if o.ItemCount < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", domain.ErrInvalidConfig, KeyItemCount, o.ItemCount)
	}
	if o.PerPage < o.ItemCount {
		return fmt.Errorf("%w: %s (%d) must not be lower than %s (%d)", domain.ErrInvalidConfig, KeyPerPage, o.PerPage, KeyItemCount, o.ItemCount)
	}
	if o.Since != "" {
		if _, err := time.Parse(time.DateOnly, o.Since); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD: %v", domain.ErrInvalidConfig, KeySince, err)
		}
	}
	return nil
}

// Config renders the options back into a run configuration map.
func (o Options) Config() domain.Config {
	cfg := domain.Config{
		KeyItemCount:              o.ItemCount,
		KeyPerPage:                o.PerPage,
		KeySort:                   o.Sort,
		KeyOrder:                  o.Order,
		KeyLookback:               o.Lookback.String(),
		KeyAnalyzerInstructions:   o.AnalyzerInstructions,
		KeySummarizerInstructions: o.SummarizerInstructions,
	}
	if o.Since != "" {
		cfg[KeySince] = o.Since
	}
	return cfg
}

// createdAfter returns the lower bound of the creation-date search qualifier.
func (o Options) createdAfter(now time.Time) string {
	if o.Since != "" {
		return o.Since
	}
	return now.Add(-o.Lookback).Format(time.DateOnly)
}
