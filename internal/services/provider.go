package services

import (
	"context"
	"fmt"

	"alfredoptarigan/mock-interviewer/internal/config"
)

// NewModelGateway builds the gateway selected by LLM_PROVIDER.
func NewModelGateway(ctx context.Context, cfg config.LLMConfig) (ModelGateway, error) {
	switch cfg.Provider {
	case "openrouter", "":
		if cfg.OpenRouter.APIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY must be set for the openrouter provider")
		}
		return NewOpenRouterGateway(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.Timeout), nil
	case "gemini":
		return NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "mock":
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewPromptBuilderFromConfig uses PROMPTS_FILE when set.
func NewPromptBuilderFromConfig(cfg config.LLMConfig) (*PromptBuilder, error) {
	if cfg.PromptsFile == "" {
		return NewPromptBuilder(), nil
	}
	return LoadPromptBuilder(cfg.PromptsFile)
}
