package ai

import (
	"context"
	"fmt"

	"careermatch/internal/config"
	"careermatch/internal/errors"
)

// Service handles model calls for a single pipeline stage. It owns prompt
// resolution: file-loaded prompts win over inline config prompts, which win
// over the built-in defaults.
type Service struct {
	Provider  TextGenerator // Exported for access from server package
	config    *config.OperationAIConfig
	operation string
	logger    *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider TextGenerator
	var err error

	// Debug logging for service initialization
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:  provider,
		config:    cfg,
		operation: operationType,
		logger:    logger,
	}, nil
}

// ResolvePrompts returns the system prompt and user prompt template for this
// service's operation. Precedence: prompt files, inline config, defaults.
func (s *Service) ResolvePrompts() (systemPrompt, userTemplate string) {
	loaded := config.GetPromptsForOperation(s.operation)

	switch s.operation {
	case OpFitAnalysis:
		systemPrompt = firstNonEmpty(
			loaded.SystemPrompts.FitAnalysis,
			s.config.CustomPrompts.SystemPrompts.FitAnalysis,
			DefaultSystemPrompts.FitAnalysis)
		userTemplate = firstNonEmpty(
			loaded.UserPrompts.FitAnalysis,
			s.config.CustomPrompts.UserPrompts.FitAnalysis,
			DefaultUserPrompts.FitAnalysis)
	case OpSuggestions:
		systemPrompt = firstNonEmpty(
			loaded.SystemPrompts.Suggestions,
			s.config.CustomPrompts.SystemPrompts.Suggestions,
			DefaultSystemPrompts.Suggestions)
		userTemplate = firstNonEmpty(
			loaded.UserPrompts.Suggestions,
			s.config.CustomPrompts.UserPrompts.Suggestions,
			DefaultUserPrompts.Suggestions)
	}

	if s.config.UseSystemPrompts != nil && !*s.config.UseSystemPrompts {
		systemPrompt = ""
	}

	return systemPrompt, userTemplate
}

// Generate resolves this operation's prompts, fills the user template with
// the given variables, and invokes the underlying provider.
func (s *Service) Generate(ctx context.Context, vars map[string]string) (string, *TokenUsage, error) {
	systemPrompt, userTemplate := s.ResolvePrompts()
	userPrompt := FormatPrompt(userTemplate, vars)
	return s.Provider.Invoke(ctx, systemPrompt, userPrompt)
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases the underlying provider's resources.
func (s *Service) Close() error {
	return s.Provider.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
