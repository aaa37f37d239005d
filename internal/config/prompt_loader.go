package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file paths
// are specified, replacing the loaded prompt store atomically.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	all, err := c.readAllPromptFiles()
	if err != nil {
		return err
	}
	setLoadedPrompts(all)

	c.logPromptLoadingSummary()
	return nil
}

// readAllPromptFiles reads every configured prompt file into a fresh store.
// Shared by the initial load and the prompt file watcher.
func (c *Config) readAllPromptFiles() (AllLoadedPrompts, error) {
	var all AllLoadedPrompts

	// Global prompts
	if err := c.loadPromptSet(&c.AI.CustomPrompts, &all.Global.SystemPrompts, &all.Global.UserPrompts, "global"); err != nil {
		return all, err
	}

	// Stage-specific prompts
	if err := c.loadPromptSet(&c.AI.Fit.CustomPrompts, &all.Fit.SystemPrompts, &all.Fit.UserPrompts, "fit"); err != nil {
		return all, err
	}
	if err := c.loadPromptSet(&c.AI.Suggest.CustomPrompts, &all.Suggest.SystemPrompts, &all.Suggest.UserPrompts, "suggest"); err != nil {
		return all, err
	}

	return all, nil
}

// loadPromptSet loads one PromptConfig's file-backed prompts into the targets
func (c *Config) loadPromptSet(prompts *PromptConfig, sysTarget *LoadedSystemPrompts, userTarget *LoadedUserPrompts, scope string) error {
	if prompts.SystemPrompts.FitAnalysisFile != "" {
		content, err := loadPromptFromFile(prompts.SystemPrompts.FitAnalysisFile, scope+" system", "fitAnalysis")
		if err != nil {
			return err
		}
		sysTarget.FitAnalysis = content
	}
	if prompts.SystemPrompts.SuggestionsFile != "" {
		content, err := loadPromptFromFile(prompts.SystemPrompts.SuggestionsFile, scope+" system", "suggestions")
		if err != nil {
			return err
		}
		sysTarget.Suggestions = content
	}
	if prompts.UserPrompts.FitAnalysisFile != "" {
		content, err := loadPromptFromFile(prompts.UserPrompts.FitAnalysisFile, scope+" user", "fitAnalysis")
		if err != nil {
			return err
		}
		userTarget.FitAnalysis = content
	}
	if prompts.UserPrompts.SuggestionsFile != "" {
		content, err := loadPromptFromFile(prompts.UserPrompts.SuggestionsFile, scope+" user", "suggestions")
		if err != nil {
			return err
		}
		userTarget.Suggestions = content
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// PromptFilePaths returns every configured prompt file path, for the file
// watcher. Empty entries are skipped.
func (c *Config) PromptFilePaths() []string {
	candidates := []string{
		c.AI.CustomPrompts.SystemPrompts.FitAnalysisFile,
		c.AI.CustomPrompts.SystemPrompts.SuggestionsFile,
		c.AI.CustomPrompts.UserPrompts.FitAnalysisFile,
		c.AI.CustomPrompts.UserPrompts.SuggestionsFile,
		c.AI.Fit.CustomPrompts.SystemPrompts.FitAnalysisFile,
		c.AI.Fit.CustomPrompts.UserPrompts.FitAnalysisFile,
		c.AI.Suggest.CustomPrompts.SystemPrompts.SuggestionsFile,
		c.AI.Suggest.CustomPrompts.UserPrompts.SuggestionsFile,
	}

	var paths []string
	for _, p := range candidates {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, filePath := range c.PromptFilePaths() {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid prompt file path: %s", filePath))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("prompt file not found: %s", absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	snapshot := snapshotLoadedPrompts()
	promptChecks := []struct {
		content string
		message string
	}{
		{snapshot.Global.SystemPrompts.FitAnalysis, "[CONFIG] Global system fit-analysis prompt: loaded from file"},
		{snapshot.Global.SystemPrompts.Suggestions, "[CONFIG] Global system suggestions prompt: loaded from file"},
		{snapshot.Global.UserPrompts.FitAnalysis, "[CONFIG] Global user fit-analysis prompt: loaded from file"},
		{snapshot.Global.UserPrompts.Suggestions, "[CONFIG] Global user suggestions prompt: loaded from file"},
		{snapshot.Fit.SystemPrompts.FitAnalysis, "[CONFIG] Fit-specific system prompt: loaded from file"},
		{snapshot.Fit.UserPrompts.FitAnalysis, "[CONFIG] Fit-specific user prompt: loaded from file"},
		{snapshot.Suggest.SystemPrompts.Suggestions, "[CONFIG] Suggest-specific system prompt: loaded from file"},
		{snapshot.Suggest.UserPrompts.Suggestions, "[CONFIG] Suggest-specific user prompt: loaded from file"},
	}

	promptCount := 0
	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
