package factory

import (
	"context"
	"testing"

	"lazy-tourist-be/pkg/llm/huggingface"
	"lazy-tourist-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(context.Background(), Settings{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(context.Background(), Settings{Provider: "HuggingFace", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider(context.Background(), Settings{Provider: "gemini"})
	assert.Error(t, err, "gemini without a key is rejected")

	_, err = NewLLMProvider(context.Background(), Settings{Provider: "openai"})
	assert.EqualError(t, err, "unsupported LLM provider: openai")
}
