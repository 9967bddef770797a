package pipeline

import (
	"fmt"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// requiredKeys must be present in a raw candidate for it to be considered at all.
var requiredKeys = []string{"full_name", "html_url"}

var itemValidate = validator.New()

// DecodeCandidate turns a raw candidate into an Item.
// It fails when a required key is absent, when a value has the wrong shape,
// or when the decoded item is not well formed (empty name, malformed link).
func DecodeCandidate(c domain.Candidate) (domain.Item, error) {
	for _, key := range requiredKeys {
		if _, ok := c[key]; !ok {
			return domain.Item{}, fmt.Errorf("candidate is missing required field %q", key)
		}
	}

	var item domain.Item
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &item,
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to create candidate decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(c)); err != nil {
		return domain.Item{}, fmt.Errorf("failed to decode candidate: %w", err)
	}

	if err := itemValidate.Struct(item); err != nil {
		return domain.Item{}, fmt.Errorf("invalid candidate %q: %w", item.FullName, err)
	}
	return item, nil
}

// SelectItems keeps the first n valid candidates, in source order.
// The rejected candidates are reported so that callers can log them.
func SelectItems(candidates []domain.Candidate, n int) (items []domain.Item, rejected []error) {
	for _, c := range candidates {
		if len(items) >= n {
			break
		}
		item, err := DecodeCandidate(c)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		items = append(items, item)
	}
	return items, rejected
}
