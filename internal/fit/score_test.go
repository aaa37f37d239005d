package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"careermatch/internal/types"
)

func matches(statuses ...string) []types.RequirementMatch {
	out := make([]types.RequirementMatch, len(statuses))
	for i, status := range statuses {
		out[i] = types.RequirementMatch{Requirement: "req", Status: status, Evidence: []string{}}
	}
	return out
}

func TestComputeFitScore(t *testing.T) {
	tests := []struct {
		name       string
		mustHave   []types.RequirementMatch
		niceToHave []types.RequirementMatch
		expected   int
	}{
		{
			name:       "everything matches",
			mustHave:   matches(types.StatusMatch, types.StatusMatch),
			niceToHave: matches(types.StatusMatch),
			expected:   100,
		},
		{
			name:       "nothing matches",
			mustHave:   matches(types.StatusMissing, types.StatusMissing),
			niceToHave: matches(types.StatusMissing),
			expected:   0,
		},
		{
			name:       "no requirements at all",
			mustHave:   nil,
			niceToHave: nil,
			expected:   0,
		},
		{
			name:       "half the must-haves",
			mustHave:   matches(types.StatusMatch, types.StatusMissing),
			niceToHave: nil,
			expected:   35,
		},
		{
			name:       "partial earns half weight",
			mustHave:   matches(types.StatusPartial),
			niceToHave: nil,
			expected:   35,
		},
		{
			name:       "nice-to-haves alone cap at 30",
			mustHave:   nil,
			niceToHave: matches(types.StatusMatch, types.StatusMatch),
			expected:   30,
		},
		{
			name:       "uneven thirds round to nearest",
			mustHave:   matches(types.StatusMatch, types.StatusMissing, types.StatusMissing),
			niceToHave: nil,
			expected:   23,
		},
		{
			name:       "mixed statuses",
			mustHave:   matches(types.StatusMatch, types.StatusPartial, types.StatusMissing, types.StatusMissing),
			niceToHave: matches(types.StatusMatch, types.StatusMissing),
			expected:   41,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeFitScore(tt.mustHave, tt.niceToHave))
		})
	}
}
