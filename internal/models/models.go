// Package models provides the LLM backends behind the parser and responder.
package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/config"
)

const (
	xaiBaseURL        = "https://api.x.ai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// New returns the model.LLM for the configured provider.
func New(ctx context.Context, cfg config.Config) (model.LLM, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIModel(cfg.LLMModel, cfg.OpenAIAPIKey)
	case config.ProviderGrok:
		return NewGrokModel(cfg.LLMModel, cfg.XAIAPIKey)
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(cfg.LLMModel, cfg.OpenRouterAPIKey)
	case config.ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
		llm, err := gemini.NewModel(ctx, cfg.LLMModel, &genai.ClientConfig{
			APIKey:  cfg.GoogleAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini model: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// NewOpenAIModel targets api.openai.com.
func NewOpenAIModel(modelName, apiKey string) (model.LLM, error) {
	return compat(newCompatModel(modelName, modelName, apiKey, "", "openai-go"))
}

// NewGrokModel targets x.ai through its OpenAI-compatible endpoint.
func NewGrokModel(modelName, apiKey string) (model.LLM, error) {
	return compat(newCompatModel(modelName, modelName, apiKey, xaiBaseURL, "grok-go"))
}

// NewOpenRouterModel targets OpenRouter. Name() carries an "openrouter/" prefix;
// requests use the bare model id.
func NewOpenRouterModel(modelName, apiKey string) (model.LLM, error) {
	return compat(newCompatModel("openrouter/"+modelName, modelName, apiKey, openRouterBaseURL, "openrouter-go"))
}

func compat(m *compatModel, err error) (model.LLM, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}
