package eino

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/trendline/pkg/ports"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrEmptyResponse is returned when the model answers without content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Inferencer adapts an eino chat model to ports.Inferencer.
type Inferencer struct {
	model  model.BaseChatModel
	logger *slog.Logger
}

var _ ports.Inferencer = (*Inferencer)(nil)

// Option configures the Inferencer.
type Option func(*Inferencer)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inferencer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New wraps a chat model.
func New(m model.BaseChatModel, opts ...Option) *Inferencer {
	i := &Inferencer{
		model:  m,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewFromConfig builds the chat model of the configured provider and wraps it.
func NewFromConfig(ctx context.Context, cfg ModelConfig, opts ...Option) (*Inferencer, error) {
	m, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s chat model: %w", cfg.Type, err)
	}
	return New(m, opts...), nil
}

// Infer sends the instruction as system message and the input as user message.
func (i *Inferencer) Infer(ctx context.Context, instruction, input string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(instruction),
		schema.UserMessage(input),
	}

	start := time.Now()
	resp, err := i.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", ErrEmptyResponse
	}

	i.logger.Debug("inference completed", "duration", time.Since(start), "chars", len(resp.Content))
	return resp.Content, nil
}
