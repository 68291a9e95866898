package factory

import (
	"context"
	"fmt"
	"strings"

	"lazy-tourist-be/pkg/llm"
	"lazy-tourist-be/pkg/llm/gemini"
	"lazy-tourist-be/pkg/llm/huggingface"
	"lazy-tourist-be/pkg/llm/ollama"
)

// Settings selects and configures an oracle backend.
type Settings struct {
	Provider           string
	Model              string
	OllamaBaseURL      string
	HuggingFaceBaseURL string
	HuggingFaceAPIKey  string
	GeminiAPIKey       string
}

func NewLLMProvider(ctx context.Context, s Settings) (llm.LLMProvider, error) {
	switch strings.ToLower(s.Provider) {
	case "ollama", "":
		baseURL := s.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "huggingface", "hf":
		return huggingface.NewHuggingFaceProvider(s.HuggingFaceAPIKey, s.HuggingFaceBaseURL, s.Model), nil
	case "gemini":
		return gemini.NewGeminiProvider(ctx, s.GeminiAPIKey, s.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
