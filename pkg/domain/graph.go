package domain

import "context"

// Reserved step names marking the boundaries of a graph.
const (
	// Start is the virtual source of the edge selecting the entry step.
	Start = "__start__"
	// End is the terminal marker. Reaching it halts execution.
	End = "__end__"
)

// Route is the value returned by a Decider to select a successor.
type Route string

// StepFunc is a unit of work. It reads a snapshot of the state plus the run
// configuration and returns a partial update.
type StepFunc func(ctx context.Context, state State, cfg Config) (Update, error)

// Decider inspects the post-merge state and selects one of the declared routes.
// It must be side-effect free.
type Decider func(state State) Route

// Step is a named step registration.
type Step struct {
	Name        string
	Description string
	Run         StepFunc
}

// Edge links a step to its successor.
// An edge is either unconditional (To) or routed (Decide + Routes).
type Edge struct {
	From string
	To   string

	Decide Decider
	Routes map[Route]string
}

// Conditional reports whether the edge delegates to a Decider.
func (e Edge) Conditional() bool {
	return e.Decide != nil
}

// Graph is the declarative definition compiled by the engine.
type Graph struct {
	Entry  string
	Steps  []Step
	Edges  []Edge
	Policy MergePolicy
}

// StepNode is the static description of a compiled step, used for introspection.
type StepNode struct {
	ID          string       `json:"id"`
	Description string       `json:"description,omitempty"`
	Entry       bool         `json:"entry,omitempty"`
	Transitions []Transition `json:"transitions"`
}

// Transition describes one outgoing link of a StepNode.
// Route is empty for unconditional transitions.
type Transition struct {
	To    string `json:"to"`
	Route Route  `json:"route,omitempty"`
}
