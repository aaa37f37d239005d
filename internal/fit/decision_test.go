package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"careermatch/internal/types"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name           string
		report         types.FitReport
		expectedCode   string
		reasonContains string
	}{
		{
			name: "strong score and clean matches",
			report: types.FitReport{
				FitScore:      85,
				MustHaveMatch: matches(types.StatusMatch, types.StatusMatch),
			},
			expectedCode: types.DecisionYes,
		},
		{
			name: "strong score demoted by missing must-have",
			report: types.FitReport{
				FitScore:      80,
				MustHaveMatch: matches(types.StatusMatch, types.StatusMissing),
			},
			expectedCode:   types.DecisionMaybe,
			reasonContains: "gaps that could affect screening",
		},
		{
			name: "strong score demoted by high-impact gap",
			report: types.FitReport{
				FitScore:      90,
				MustHaveMatch: matches(types.StatusMatch),
				Gaps: []types.Gap{
					{Gap: "No production experience", Impact: types.LevelHigh},
				},
			},
			expectedCode: types.DecisionMaybe,
		},
		{
			name: "medium-impact gap does not demote strong score",
			report: types.FitReport{
				FitScore:      80,
				MustHaveMatch: matches(types.StatusMatch),
				Gaps: []types.Gap{
					{Gap: "Limited Terraform", Impact: types.LevelMedium},
				},
			},
			expectedCode: types.DecisionYes,
		},
		{
			name:         "decent score",
			report:       types.FitReport{FitScore: 60},
			expectedCode: types.DecisionMaybe,
		},
		{
			name:         "exact strong threshold",
			report:       types.FitReport{FitScore: 75},
			expectedCode: types.DecisionYes,
		},
		{
			name:         "exact decent threshold",
			report:       types.FitReport{FitScore: 55},
			expectedCode: types.DecisionMaybe,
		},
		{
			name:           "low score generic reason",
			report:         types.FitReport{FitScore: 30},
			expectedCode:   types.DecisionNo,
			reasonContains: "Fit currently low",
		},
		{
			name: "low score with missing must-have",
			report: types.FitReport{
				FitScore:      20,
				MustHaveMatch: matches(types.StatusMissing),
			},
			expectedCode:   types.DecisionNo,
			reasonContains: "key requirements appear missing",
		},
		{
			name: "low score with high-impact gap only",
			report: types.FitReport{
				FitScore: 20,
				Gaps: []types.Gap{
					{Gap: "No relevant stack", Impact: types.LevelHigh},
				},
			},
			expectedCode:   types.DecisionNo,
			reasonContains: "high-impact gaps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.report)
			assert.Equal(t, tt.expectedCode, decision.Code)
			assert.NotEmpty(t, decision.Label)
			assert.NotEmpty(t, decision.Reason)
			assert.NotEmpty(t, decision.NextStep)
			if tt.reasonContains != "" {
				assert.Contains(t, decision.Reason, tt.reasonContains)
			}
		})
	}
}
