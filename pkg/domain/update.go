package domain

// Field is an optional value carried by an Update.
// Only fields with Set == true take part in a merge.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some marks a value as present in an Update.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Update is the partial result of a step.
// Fields left unset keep the current state value.
type Update struct {
	Query           Field[string]
	Items           Field[[]Item]
	Cursor          Field[int]
	Processed       Field[[]Item]
	AccumulatedText Field[string]
	FinalReport     Field[string]
	Signal          Field[ControlSignal]
}

// Fields returns the names of the fields present in the update, in declaration order.
func (u Update) Fields() []string {
	var names []string
	if u.Query.Set {
		names = append(names, "query")
	}
	if u.Items.Set {
		names = append(names, "items")
	}
	if u.Cursor.Set {
		names = append(names, "cursor")
	}
	if u.Processed.Set {
		names = append(names, "processed")
	}
	if u.AccumulatedText.Set {
		names = append(names, "accumulated_text")
	}
	if u.FinalReport.Set {
		names = append(names, "final_report")
	}
	if u.Signal.Set {
		names = append(names, "signal")
	}
	return names
}

// IsEmpty reports whether the update carries no field at all.
func (u Update) IsEmpty() bool {
	return len(u.Fields()) == 0
}
