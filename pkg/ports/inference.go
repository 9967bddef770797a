package ports

import "context"

// Inferencer produces text from an instruction (system prompt) and an input (user message).
type Inferencer interface {
	Infer(ctx context.Context, instruction, input string) (string, error)
}

// InferencerFunc adapts a function to the Inferencer interface.
type InferencerFunc func(ctx context.Context, instruction, input string) (string, error)

// Infer calls f(ctx, instruction, input).
func (f InferencerFunc) Infer(ctx context.Context, instruction, input string) (string, error) {
	return f(ctx, instruction, input)
}
