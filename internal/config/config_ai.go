package config

// applyOperationDefaults applies global defaults to stage-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetFitConfig returns the AI configuration for the fit-analysis stage with
// fallback to global config
func (c *Config) GetFitConfig() OperationAIConfig {
	config := c.AI.Fit

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply fit-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.FitAnalysis == "" {
		config.CustomPrompts.SystemPrompts.FitAnalysis = c.AI.CustomPrompts.SystemPrompts.FitAnalysis
	}
	if config.CustomPrompts.UserPrompts.FitAnalysis == "" {
		config.CustomPrompts.UserPrompts.FitAnalysis = c.AI.CustomPrompts.UserPrompts.FitAnalysis
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.FitAnalysisFile == "" {
		config.CustomPrompts.SystemPrompts.FitAnalysisFile = c.AI.CustomPrompts.SystemPrompts.FitAnalysisFile
	}
	if config.CustomPrompts.UserPrompts.FitAnalysisFile == "" {
		config.CustomPrompts.UserPrompts.FitAnalysisFile = c.AI.CustomPrompts.UserPrompts.FitAnalysisFile
	}

	return config
}

// GetSuggestConfig returns the AI configuration for the suggestion stage with
// fallback to global config
func (c *Config) GetSuggestConfig() OperationAIConfig {
	config := c.AI.Suggest

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply suggestion-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.Suggestions == "" {
		config.CustomPrompts.SystemPrompts.Suggestions = c.AI.CustomPrompts.SystemPrompts.Suggestions
	}
	if config.CustomPrompts.UserPrompts.Suggestions == "" {
		config.CustomPrompts.UserPrompts.Suggestions = c.AI.CustomPrompts.UserPrompts.Suggestions
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.SuggestionsFile == "" {
		config.CustomPrompts.SystemPrompts.SuggestionsFile = c.AI.CustomPrompts.SystemPrompts.SuggestionsFile
	}
	if config.CustomPrompts.UserPrompts.SuggestionsFile == "" {
		config.CustomPrompts.UserPrompts.SuggestionsFile = c.AI.CustomPrompts.UserPrompts.SuggestionsFile
	}

	return config
}
