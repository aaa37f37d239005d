package fit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careermatch/internal/ai"
	"careermatch/internal/errors"
	"careermatch/internal/types"
)

const validSuggestionOutput = `{
  "summary": "Solid base, a few gaps.",
  "cv_suggestions": [
    {"section": "skills", "change": "Add Kubernetes", "reason": "core requirement", "priority": "high"}
  ],
  "linkedin_suggestions": [
    {"section": "summary", "change": "Mention Go", "reason": "keywords", "priority": "medium"}
  ],
  "ats_keywords": [
    {"keyword": "Go", "where_to_add": "both", "note": ""}
  ],
  "final_note": "Tailor per application."
}`

// fakeStage returns canned output and records the variables it was called
// with.
type fakeStage struct {
	output   string
	usage    *ai.TokenUsage
	err      error
	calls    int
	lastVars map[string]string
}

func (f *fakeStage) Generate(_ context.Context, vars map[string]string) (string, *ai.TokenUsage, error) {
	f.calls++
	f.lastVars = vars
	if f.err != nil {
		return "", nil, f.err
	}
	return f.output, f.usage, nil
}

func newTestPipeline(t *testing.T, fitStage, suggestStage *fakeStage) *Pipeline {
	t.Helper()
	logger, err := errors.New("debug")
	require.NoError(t, err)
	return NewPipeline(fitStage, suggestStage, logger)
}

func TestPipelineAnalyze(t *testing.T) {
	input := types.AnalyzeInput{
		CVText:  "Senior Go engineer, 5 years of Go, some Terraform.",
		JobText: "Must have Go and Kubernetes. Terraform is a plus.",
	}

	t.Run("happy path", func(t *testing.T) {
		fitStage := &fakeStage{
			output: validFitOutput,
			usage:  &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
		}
		suggestStage := &fakeStage{
			output: validSuggestionOutput,
			usage:  &ai.TokenUsage{InputTokens: 200, OutputTokens: 80, TotalTokens: 280},
		}
		p := newTestPipeline(t, fitStage, suggestStage)

		combined, usage, err := p.Analyze(context.Background(), input)
		require.NoError(t, err)

		assert.Equal(t, 1, fitStage.calls)
		assert.Equal(t, 1, suggestStage.calls)

		// must: one match of two (35) + nice: one partial of one (15)
		assert.Equal(t, 50, combined.Fit.FitScore)
		assert.Equal(t, "Solid base, a few gaps.", combined.Suggestions.Summary)
		assert.Equal(t, types.DecisionNo, combined.Decision.Code)

		require.NotNil(t, usage)
		assert.Equal(t, int64(300), usage.InputTokens)
		assert.Equal(t, int64(430), usage.TotalTokens)
	})

	t.Run("stage variables", func(t *testing.T) {
		fitStage := &fakeStage{output: validFitOutput}
		suggestStage := &fakeStage{output: validSuggestionOutput}
		p := newTestPipeline(t, fitStage, suggestStage)

		_, _, err := p.Analyze(context.Background(), input)
		require.NoError(t, err)

		assert.Contains(t, fitStage.lastVars["cv_text"], "Senior Go engineer")
		assert.Contains(t, fitStage.lastVars["job_text"], "Kubernetes")

		assert.Contains(t, suggestStage.lastVars["fit_report_json"], `"fit_score"`)
		assert.Contains(t, suggestStage.lastVars["fit_report_json"], "Kubernetes")
		assert.Contains(t, suggestStage.lastVars["cv_text"], "Senior Go engineer")
		assert.Contains(t, suggestStage.lastVars["job_text"], "Terraform")
	})

	t.Run("model score is overridden", func(t *testing.T) {
		raw := `{"fit_score": 3, "confidence": "high",
  "must_have_match": [{"requirement": "Go", "status": "match", "evidence": ["Go"]}],
  "nice_to_have_match": [{"requirement": "Terraform", "status": "match", "evidence": ["IaC"]}],
  "gaps": []}`
		p := newTestPipeline(t, &fakeStage{output: raw}, &fakeStage{output: validSuggestionOutput})

		combined, _, err := p.Analyze(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 100, combined.Fit.FitScore)
		assert.Equal(t, types.DecisionYes, combined.Decision.Code)
	})

	t.Run("empty cv text", func(t *testing.T) {
		fitStage := &fakeStage{output: validFitOutput}
		p := newTestPipeline(t, fitStage, &fakeStage{output: validSuggestionOutput})

		_, _, err := p.Analyze(context.Background(), types.AnalyzeInput{CVText: "  ", JobText: "something"})
		require.Error(t, err)
		assert.Equal(t, errors.KindInputInvalid, errors.KindOf(err))
		assert.Zero(t, fitStage.calls)
	})

	t.Run("empty job text", func(t *testing.T) {
		_, _, err := newTestPipeline(t, &fakeStage{}, &fakeStage{}).
			Analyze(context.Background(), types.AnalyzeInput{CVText: "cv", JobText: "\n"})
		require.Error(t, err)
		assert.Equal(t, errors.KindInputInvalid, errors.KindOf(err))
	})

	t.Run("fit stage transport error propagates", func(t *testing.T) {
		upstreamErr := errors.NewAIError(errors.ErrCodeAIServiceFailed, "model unavailable", nil)
		suggestStage := &fakeStage{output: validSuggestionOutput}
		p := newTestPipeline(t, &fakeStage{err: upstreamErr}, suggestStage)

		_, _, err := p.Analyze(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
		assert.Zero(t, suggestStage.calls)
	})

	t.Run("fit stage schema violation stops the pipeline", func(t *testing.T) {
		suggestStage := &fakeStage{output: validSuggestionOutput}
		p := newTestPipeline(t, &fakeStage{output: "not json at all"}, suggestStage)

		_, _, err := p.Analyze(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, errors.KindSchemaViolation, errors.KindOf(err))
		assert.Zero(t, suggestStage.calls)
	})

	t.Run("suggestion stage failure fails the whole request", func(t *testing.T) {
		p := newTestPipeline(t, &fakeStage{output: validFitOutput},
			&fakeStage{output: `{"summary": "missing the rest"}`})

		combined, _, err := p.Analyze(context.Background(), input)
		require.Error(t, err)
		assert.Nil(t, combined)
		assert.Equal(t, errors.KindSchemaViolation, errors.KindOf(err))
	})
}

func TestPipelineSparseMustHaveCap(t *testing.T) {
	fourMatches := `{"fit_score": 0, "confidence": "medium",
  "must_have_match": [
    {"requirement": "a", "status": "match", "evidence": ["x"]},
    {"requirement": "b", "status": "match", "evidence": ["x"]},
    {"requirement": "c", "status": "missing", "evidence": []},
    {"requirement": "d", "status": "missing", "evidence": []}
  ],
  "nice_to_have_match": [],
  "gaps": []}`

	t.Run("posting without qualifiers caps must-haves at two", func(t *testing.T) {
		p := newTestPipeline(t, &fakeStage{output: fourMatches}, &fakeStage{output: validSuggestionOutput})

		combined, _, err := p.Analyze(context.Background(), types.AnalyzeInput{
			CVText:  "Go engineer",
			JobText: "We are looking for a Go developer to join the platform team.",
		})
		require.NoError(t, err)

		require.Len(t, combined.Fit.MustHaveMatch, 2)
		// Both surviving entries match, so the score reflects full must-have
		// weight.
		assert.Equal(t, 70, combined.Fit.FitScore)
	})

	t.Run("posting with qualifiers keeps the full list", func(t *testing.T) {
		p := newTestPipeline(t, &fakeStage{output: fourMatches}, &fakeStage{output: validSuggestionOutput})

		combined, _, err := p.Analyze(context.Background(), types.AnalyzeInput{
			CVText:  "Go engineer",
			JobText: "Required: Go. Must have Kubernetes.",
		})
		require.NoError(t, err)

		require.Len(t, combined.Fit.MustHaveMatch, 4)
		assert.Equal(t, 35, combined.Fit.FitScore)
	})
}

func TestPipelineArtifactSink(t *testing.T) {
	input := types.AnalyzeInput{
		CVText:  "Go engineer",
		JobText: "Must have Go and Kubernetes.",
	}

	t.Run("raw and extracted output recorded per stage", func(t *testing.T) {
		p := newTestPipeline(t,
			&fakeStage{output: "Here is the analysis:\n" + validFitOutput + "\nDone."},
			&fakeStage{output: validSuggestionOutput})
		artifacts := map[string]string{}
		p.SetArtifactSink(func(name, content string) { artifacts[name] = content })

		_, _, err := p.Analyze(context.Background(), input)
		require.NoError(t, err)

		assert.Contains(t, artifacts["fit_raw.txt"], "Here is the analysis")
		assert.Contains(t, artifacts["fit_extracted.json"], `"fit_score"`)
		assert.NotContains(t, artifacts["fit_extracted.json"], "Here is the analysis")
		assert.Contains(t, artifacts["suggestions_raw.txt"], `"summary"`)
		assert.Contains(t, artifacts["suggestions_extracted.json"], `"ats_keywords"`)
	})

	t.Run("rejected stage output stays inspectable", func(t *testing.T) {
		p := newTestPipeline(t,
			&fakeStage{output: `{"fit_score": 5}`},
			&fakeStage{output: validSuggestionOutput})
		artifacts := map[string]string{}
		p.SetArtifactSink(func(name, content string) { artifacts[name] = content })

		_, _, err := p.Analyze(context.Background(), input)
		require.Error(t, err)

		assert.Equal(t, `{"fit_score": 5}`, artifacts["fit_raw.txt"])
		assert.Contains(t, artifacts["fit_rejected.txt"], "missing required keys")
	})

	t.Run("no sink configured", func(t *testing.T) {
		p := newTestPipeline(t, &fakeStage{output: validFitOutput}, &fakeStage{output: validSuggestionOutput})
		_, _, err := p.Analyze(context.Background(), input)
		require.NoError(t, err)
	})
}

func TestHasMustHaveQualifier(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Must have Go", true},
		{"MANDATORY: on-site", true},
		{"a minimum of 3 years", true},
		{"essential skills include", true},
		{"required qualifications", true},
		{"we would like someone with Go", false},
		{"", false},
		// Whole words only; substrings inside other words do not count.
		{"mustard and relish experience", false},
		{"covers the essentials of the trade", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasMustHaveQualifier(tt.text))
		})
	}
}
