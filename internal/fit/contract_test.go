package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careermatch/internal/errors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expected    string
		expectError bool
	}{
		{
			name:     "bare object",
			raw:      `{"fit_score": 80}`,
			expected: `{"fit_score": 80}`,
		},
		{
			name:     "markdown fenced object",
			raw:      "```json\n{\"fit_score\": 80}\n```",
			expected: `{"fit_score": 80}`,
		},
		{
			name:     "prose around object",
			raw:      "Here is the analysis:\n{\"fit_score\": 80}\nHope this helps!",
			expected: `{"fit_score": 80}`,
		},
		{
			name:     "newlines inside object become spaces",
			raw:      "{\"a\": 1,\r\n\"b\": 2}",
			expected: `{"a": 1,  "b": 2}`,
		},
		{
			name:     "trailing comma in object removed",
			raw:      `{"a": 1, "b": 2,}`,
			expected: `{"a": 1, "b": 2}`,
		},
		{
			name:     "trailing comma in array removed",
			raw:      `{"items": [1, 2, ]}`,
			expected: `{"items": [1, 2]}`,
		},
		{
			name:        "empty output",
			raw:         "   \n\t ",
			expectError: true,
		},
		{
			name:        "no object at all",
			raw:         "I cannot produce that report.",
			expectError: true,
		},
		{
			name:        "closing brace before opening",
			raw:         "} nonsense {",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, errors.KindSchemaViolation, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestContractValidate(t *testing.T) {
	tests := []struct {
		name        string
		contract    Contract
		jsonText    string
		expectError bool
		errContains string
	}{
		{
			name:     "all keys present",
			contract: fitContract,
			jsonText: `{"fit_score":1,"confidence":"low","must_have_match":[],"nice_to_have_match":[],"gaps":[]}`,
		},
		{
			name:        "single missing key",
			contract:    fitContract,
			jsonText:    `{"fit_score":1,"confidence":"low","must_have_match":[],"nice_to_have_match":[]}`,
			expectError: true,
			errContains: "gaps",
		},
		{
			name:        "multiple missing keys listed",
			contract:    suggestionContract,
			jsonText:    `{"summary":"s","final_note":"n"}`,
			expectError: true,
			errContains: "cv_suggestions, linkedin_suggestions, ats_keywords",
		},
		{
			name:        "single quotes are not valid JSON",
			contract:    fitContract,
			jsonText:    `{'fit_score': 1}`,
			expectError: true,
		},
		{
			name:     "extra keys tolerated",
			contract: suggestionContract,
			jsonText: `{"summary":"s","cv_suggestions":[],"linkedin_suggestions":[],"ats_keywords":[],"final_note":"n","bonus":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contract.Validate(tt.jsonText)
			if !tt.expectError {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errors.KindSchemaViolation, errors.KindOf(err))
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}
