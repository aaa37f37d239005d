package config

import (
	"sync"
)

// loadedPrompts is the process-wide store of prompt text read from files.
// It is mutated by the initial load and by the prompt file watcher, so all
// access goes through the mutex.
var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   AllLoadedPrompts
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	FitAnalysis string
	Suggestions string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	FitAnalysis string
	Suggestions string
}

// OperationLoadedPrompts holds loaded prompts for a specific stage
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all stages
type AllLoadedPrompts struct {
	Global  LoadedPrompts
	Fit     OperationLoadedPrompts
	Suggest OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an
// operation type, with global prompts filling stage-level blanks.
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	var result OperationLoadedPrompts
	switch operationType {
	case "fit_analysis":
		result = loadedPrompts.Fit
		if result.SystemPrompts.FitAnalysis == "" {
			result.SystemPrompts.FitAnalysis = loadedPrompts.Global.SystemPrompts.FitAnalysis
		}
		if result.UserPrompts.FitAnalysis == "" {
			result.UserPrompts.FitAnalysis = loadedPrompts.Global.UserPrompts.FitAnalysis
		}
	case "suggestions":
		result = loadedPrompts.Suggest
		if result.SystemPrompts.Suggestions == "" {
			result.SystemPrompts.Suggestions = loadedPrompts.Global.SystemPrompts.Suggestions
		}
		if result.UserPrompts.Suggestions == "" {
			result.UserPrompts.Suggestions = loadedPrompts.Global.UserPrompts.Suggestions
		}
	default:
		result = OperationLoadedPrompts{
			SystemPrompts: loadedPrompts.Global.SystemPrompts,
			UserPrompts:   loadedPrompts.Global.UserPrompts,
		}
	}

	return result
}

// setLoadedPrompts replaces the whole loaded prompt store. Used by the
// initial load and by the prompt file watcher after a reload.
func setLoadedPrompts(all AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = all
}

// snapshotLoadedPrompts returns a copy of the current loaded prompt store.
func snapshotLoadedPrompts() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}
