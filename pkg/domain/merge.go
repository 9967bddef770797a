package domain

import "fmt"

// MergeRule defines how a field of an Update is folded into the State.
type MergeRule int

const (
	// MergeReplace overwrites the current value with the update (default).
	MergeReplace MergeRule = iota
	// MergeAppend accumulates: slices are appended, strings concatenated, integers added.
	MergeAppend
	// MergeFirstWrite keeps the current value unless it is still the zero value.
	MergeFirstWrite
)

func (r MergeRule) String() string {
	switch r {
	case MergeReplace:
		return "replace"
	case MergeAppend:
		return "append"
	case MergeFirstWrite:
		return "first_write"
	}
	return fmt.Sprintf("MergeRule(%d)", int(r))
}

// MergePolicy holds one rule per State field.
type MergePolicy struct {
	Query           MergeRule
	Items           MergeRule
	Cursor          MergeRule
	Processed       MergeRule
	AccumulatedText MergeRule
	FinalReport     MergeRule
	Signal          MergeRule
}

// DefaultMergePolicy returns the policy of the trending pipeline:
// the seed query is written once, processed items accumulate, everything else is replaced.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{
		Query:     MergeFirstWrite,
		Processed: MergeAppend,
	}
}

// Validate checks that every rule is known and applicable to its field.
func (p MergePolicy) Validate() error {
	rules := []struct {
		field string
		rule  MergeRule
	}{
		{"query", p.Query},
		{"items", p.Items},
		{"cursor", p.Cursor},
		{"processed", p.Processed},
		{"accumulated_text", p.AccumulatedText},
		{"final_report", p.FinalReport},
		{"signal", p.Signal},
	}
	for _, r := range rules {
		if r.rule < MergeReplace || r.rule > MergeFirstWrite {
			return &ConfigurationError{Reason: fmt.Sprintf("unknown merge rule %v for field %q", r.rule, r.field)}
		}
	}
	if p.Signal == MergeAppend {
		return &ConfigurationError{Reason: "merge rule append is not applicable to field \"signal\""}
	}
	return nil
}

// Apply folds the update into the state and returns the merged state.
// The input state is left untouched and the result shares no slices with either argument.
func (p MergePolicy) Apply(s State, u Update) State {
	next := s.Clone()
	next.Query = mergeString(p.Query, s.Query, u.Query)
	next.Items = mergeItems(p.Items, next.Items, u.Items)
	next.Cursor = mergeInt(p.Cursor, s.Cursor, u.Cursor)
	next.Processed = mergeItems(p.Processed, next.Processed, u.Processed)
	next.AccumulatedText = mergeString(p.AccumulatedText, s.AccumulatedText, u.AccumulatedText)
	next.FinalReport = mergeString(p.FinalReport, s.FinalReport, u.FinalReport)
	next.Signal = mergeSignal(p.Signal, s.Signal, u.Signal)
	return next
}

func mergeString(rule MergeRule, cur string, f Field[string]) string {
	if !f.Set {
		return cur
	}
	switch rule {
	case MergeAppend:
		return cur + f.Value
	case MergeFirstWrite:
		if cur != "" {
			return cur
		}
	}
	return f.Value
}

func mergeInt(rule MergeRule, cur int, f Field[int]) int {
	if !f.Set {
		return cur
	}
	switch rule {
	case MergeAppend:
		return cur + f.Value
	case MergeFirstWrite:
		if cur != 0 {
			return cur
		}
	}
	return f.Value
}

func mergeItems(rule MergeRule, cur []Item, f Field[[]Item]) []Item {
	if !f.Set {
		return cur
	}
	switch rule {
	case MergeAppend:
		out := make([]Item, 0, len(cur)+len(f.Value))
		out = append(out, cur...)
		return append(out, f.Value...)
	case MergeFirstWrite:
		if len(cur) > 0 {
			return cur
		}
	}
	if f.Value == nil {
		return []Item{}
	}
	return cloneItems(f.Value)
}

func mergeSignal(rule MergeRule, cur ControlSignal, f Field[ControlSignal]) ControlSignal {
	if !f.Set {
		return cur
	}
	if rule == MergeFirstWrite && cur != "" {
		return cur
	}
	return f.Value
}
