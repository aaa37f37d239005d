package ai

import (
	"fmt"

	"careermatch/internal/config"
	cmErrors "careermatch/internal/errors"

	"google.golang.org/genai"
)

// buildResponseConfig returns the generation config for an operation,
// including the strict JSON response schema the model is asked to follow.
// The schema is a request, not a guarantee; the contract validator in the
// fit package remains the authority on what gets accepted.
func buildResponseConfig(operationType string, cfg *config.OperationAIConfig) (*genai.GenerateContentConfig, error) {
	var schema *genai.Schema
	switch operationType {
	case OpFitAnalysis:
		schema = buildFitAnalysisSchema()
	case OpSuggestions:
		schema = buildSuggestionsSchema()
	default:
		return nil, cmErrors.NewConfigError(cmErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unknown AI operation type: %s", operationType), nil)
	}

	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	// Apply temperature configuration if set
	if *cfg.Temperature > 0 {
		genaiConfig.Temperature = cfg.Temperature
	}

	return genaiConfig, nil
}

// requirementMatchSchema is shared by the must-have and nice-to-have arrays.
func requirementMatchSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"requirement": {Type: genai.TypeString},
			"status":      {Type: genai.TypeString},
			"evidence": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"requirement", "status", "evidence"},
	}
}

// buildFitAnalysisSchema creates the response schema for fit analysis
func buildFitAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fit_score":  {Type: genai.TypeInteger},
			"confidence": {Type: genai.TypeString},
			"must_have_match": {
				Type:  genai.TypeArray,
				Items: requirementMatchSchema(),
			},
			"nice_to_have_match": {
				Type:  genai.TypeArray,
				Items: requirementMatchSchema(),
			},
			"gaps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"gap":    {Type: genai.TypeString},
						"impact": {Type: genai.TypeString},
						"how_to_fix": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"gap", "impact", "how_to_fix"},
				},
			},
		},
		Required: []string{"fit_score", "confidence", "must_have_match", "nice_to_have_match", "gaps"},
	}
}

// suggestionSchema is shared by CV and LinkedIn suggestion arrays.
func suggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"section":  {Type: genai.TypeString},
			"change":   {Type: genai.TypeString},
			"reason":   {Type: genai.TypeString},
			"priority": {Type: genai.TypeString},
		},
		Required: []string{"section", "change", "reason", "priority"},
	}
}

// buildSuggestionsSchema creates the response schema for the suggestion stage
func buildSuggestionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"cv_suggestions": {
				Type:  genai.TypeArray,
				Items: suggestionSchema(),
			},
			"linkedin_suggestions": {
				Type:  genai.TypeArray,
				Items: suggestionSchema(),
			},
			"ats_keywords": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"keyword":      {Type: genai.TypeString},
						"where_to_add": {Type: genai.TypeString},
						"note":         {Type: genai.TypeString},
					},
					Required: []string{"keyword", "where_to_add", "note"},
				},
			},
			"final_note": {Type: genai.TypeString},
		},
		Required: []string{"summary", "cv_suggestions", "linkedin_suggestions", "ats_keywords", "final_note"},
	}
}
