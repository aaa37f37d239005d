package fit

import (
	"regexp"
	"strings"

	"careermatch/internal/errors"

	"github.com/tidwall/gjson"
)

// Contract names the required top-level keys of one stage's JSON output.
// A missing key is a hard failure; over-long arrays are truncated later,
// never rejected.
type Contract struct {
	Name         string
	RequiredKeys []string
}

var (
	fitContract = Contract{
		Name: "fit_analysis",
		RequiredKeys: []string{
			"fit_score",
			"confidence",
			"must_have_match",
			"nice_to_have_match",
			"gaps",
		},
	}

	suggestionContract = Contract{
		Name: "suggestions",
		RequiredKeys: []string{
			"summary",
			"cv_suggestions",
			"linkedin_suggestions",
			"ats_keywords",
			"final_note",
		},
	}
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ExtractJSON pulls the first JSON object out of raw model output and applies
// minimal repairs: newlines become spaces and trailing commas are dropped.
// Anything beyond that (single quotes, unquoted keys) is left to fail
// downstream parsing.
func ExtractJSON(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Empty model output", nil)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.NewAIError(errors.ErrCodeSchemaViolation,
			"No JSON object found in model output", nil)
	}

	s := strings.TrimSpace(raw[start : end+1])
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s, nil
}

// Validate checks that every required top-level key is present. Defaults are
// never filled in for absent keys.
func (c Contract) Validate(jsonText string) error {
	if !gjson.Valid(jsonText) {
		return errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Model output is not valid JSON for "+c.Name, nil)
	}

	var missing []string
	for _, key := range c.RequiredKeys {
		if !gjson.Get(jsonText, key).Exists() {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Model output for "+c.Name+" is missing required keys: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
