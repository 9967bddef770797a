package domain

// DefaultQuery is the seed query used when the caller does not provide one.
const DefaultQuery = "top-3-trending-repos"

// ControlSignal drives the routing decision after the analysis step.
type ControlSignal string

const (
	SignalContinue ControlSignal = "continue" // More items are waiting for analysis
	SignalFinalize ControlSignal = "finalize" // Every item was analyzed
)

// Candidate is a raw record returned by the resource-fetch collaborator.
// It is kept untyped so that required-field presence can be checked before decoding.
type Candidate map[string]any

// Item describes one external resource (a GitHub repository) carried through the pipeline.
// Only the analysis and finalize steps interpret its fields.
type Item struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	FullName    string `json:"full_name" yaml:"name" mapstructure:"full_name" validate:"required"`
	HTMLURL     string `json:"html_url" yaml:"url" mapstructure:"html_url" validate:"required,url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Stars       int    `json:"stargazers_count" yaml:"stars,omitempty" mapstructure:"stargazers_count"`
	Forks       int    `json:"forks_count" yaml:"forks,omitempty" mapstructure:"forks_count"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
}

// Identifier returns the stable identifier of the item (owner/name).
func (i Item) Identifier() string {
	return i.FullName
}

// State represents the snapshot of a run.
// It is owned by the engine; steps receive a copy and answer with an Update.
type State struct {
	// Query identifies the request that seeded the run.
	Query string `json:"query"`

	// Items is the fetched batch. It is written once by the fetch step.
	Items []Item `json:"items"`

	// Cursor is the index of the next unprocessed item.
	Cursor int `json:"cursor"`

	// Processed holds the analyzed items in processing order.
	Processed []Item `json:"processed"`

	// AccumulatedText is the running concatenation of per-item analyses.
	AccumulatedText string `json:"accumulated_text"`

	// FinalReport is set by the finalize step only.
	FinalReport string `json:"final_report,omitempty"`

	// Signal tells the decision function whether to loop or finalize.
	Signal ControlSignal `json:"signal"`
}

// NewState creates a clean state seeded with the given query.
func NewState(query string) State {
	if query == "" {
		query = DefaultQuery
	}
	return State{
		Query:     query,
		Items:     []Item{},
		Processed: []Item{},
		Signal:    SignalContinue,
	}
}

// Clone returns a copy of the state that shares no slices with the original.
func (s State) Clone() State {
	next := s
	next.Items = cloneItems(s.Items)
	next.Processed = cloneItems(s.Processed)
	return next
}

// Remaining returns how many items still wait for analysis.
func (s State) Remaining() int {
	if s.Cursor >= len(s.Items) {
		return 0
	}
	return len(s.Items) - s.Cursor
}

func cloneItems(src []Item) []Item {
	if src == nil {
		return nil
	}
	dst := make([]Item, len(src))
	copy(dst, src)
	return dst
}
