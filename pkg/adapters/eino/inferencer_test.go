package eino_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/trendline/pkg/adapters/eino"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	got   []*schema.Message
	reply *schema.Message
	err   error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestInferencer_Infer(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("a fine repository", nil)}
	inf := eino.New(fake)

	out, err := inf.Infer(context.Background(), "be a writer", "Analyze this repository: {}")
	require.NoError(t, err)
	assert.Equal(t, "a fine repository", out)

	require.Len(t, fake.got, 2)
	assert.Equal(t, schema.System, fake.got[0].Role)
	assert.Equal(t, "be a writer", fake.got[0].Content)
	assert.Equal(t, schema.User, fake.got[1].Role)
	assert.Equal(t, "Analyze this repository: {}", fake.got[1].Content)
}

func TestInferencer_Errors(t *testing.T) {
	_, err := eino.New(&fakeChatModel{err: errors.New("connection refused")}).Infer(context.Background(), "i", "x")
	assert.ErrorContains(t, err, "connection refused")

	_, err = eino.New(&fakeChatModel{reply: schema.AssistantMessage("", nil)}).Infer(context.Background(), "i", "x")
	assert.ErrorIs(t, err, eino.ErrEmptyResponse)
}

func TestParseModelType(t *testing.T) {
	tests := map[string]eino.ModelType{
		"":          eino.ModelTypeOllama,
		"Ollama":    eino.ModelTypeOllama,
		"gpt":       eino.ModelTypeOpenAI,
		"anthropic": eino.ModelTypeClaude,
		"qwen":      eino.ModelTypeDashScope,
		"doubao":    eino.ModelTypeARK,
		"deepseek":  eino.ModelTypeDeepSeek,
		"mystery":   eino.ModelTypeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, eino.ParseModelType(in), "input %q", in)
	}
}

func TestNewChatModel(t *testing.T) {
	m, err := eino.NewChatModel(context.Background(), eino.ModelConfig{Type: eino.ModelTypeOllama})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = eino.NewChatModel(context.Background(), eino.ModelConfig{Type: eino.ModelTypeUnknown})
	assert.ErrorContains(t, err, "unsupported model type")
}
