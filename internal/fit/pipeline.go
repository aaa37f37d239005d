package fit

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"careermatch/internal/ai"
	"careermatch/internal/errors"
	"careermatch/internal/extract"
	"careermatch/internal/types"
)

// Stage abstracts one model-backed pipeline stage so tests can substitute a
// deterministic fake returning canned output.
type Stage interface {
	Generate(ctx context.Context, vars map[string]string) (string, *ai.TokenUsage, error)
}

// mustHaveQualifiers mark requirements as hard requirements in job postings.
// When a posting contains none of them, the must-have list is capped at two
// entries instead of four. Matching is on whole words so that "mustard" or
// "a minimum of fuss" in prose does not lift the cap.
var mustHaveQualifierRe = regexp.MustCompile(`\b(?:must|required|mandatory|minimum|essential)\b`)

const sparseMustHaveCap = 2

// ArtifactSink receives intermediate model output for debugging: the raw
// text of each stage, the extracted JSON, and rejection details. name is a
// flat filename, content the artifact body.
type ArtifactSink func(name, content string)

// Pipeline runs the fit-analysis stage followed by the suggestion stage and
// merges both outputs into one report. The stages are strictly sequential:
// stage two consumes stage one's validated JSON.
type Pipeline struct {
	fit     Stage
	suggest Stage
	logger  *errors.Logger
	sink    ArtifactSink
}

// NewPipeline wires the two stages together.
func NewPipeline(fitStage, suggestStage Stage, logger *errors.Logger) *Pipeline {
	return &Pipeline{
		fit:     fitStage,
		suggest: suggestStage,
		logger:  logger,
	}
}

// SetArtifactSink installs a sink for per-stage debug artifacts. Without a
// sink the pipeline keeps nothing beyond the final report.
func (p *Pipeline) SetArtifactSink(sink ArtifactSink) {
	p.sink = sink
}

// saveStageOutput emits the raw model text and, when one can be extracted,
// the repaired JSON for one stage.
func (p *Pipeline) saveStageOutput(stage, raw string) {
	if p.sink == nil {
		return
	}
	p.sink(stage+"_raw.txt", raw)
	if jsonText, err := ExtractJSON(raw); err == nil {
		p.sink(stage+"_extracted.json", jsonText)
	}
}

func (p *Pipeline) saveStageRejection(stage string, err error) {
	if p.sink == nil {
		return
	}
	p.sink(stage+"_rejected.txt", err.Error())
}

// Analyze runs the full pipeline on one CV/job pair. A failure in either
// stage fails the whole request; no partial report is returned.
func (p *Pipeline) Analyze(ctx context.Context, input types.AnalyzeInput) (*types.CombinedReport, *ai.TokenUsage, error) {
	cvText := strings.TrimSpace(input.CVText)
	if cvText == "" {
		return nil, nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"CV text is empty", nil)
	}
	jobText := strings.TrimSpace(input.JobText)
	if jobText == "" {
		return nil, nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"Job text is empty", nil)
	}

	// Normalize once, before any model call. PDF extraction sometimes yields
	// letter-spaced text that would wreck requirement matching.
	cvText = extract.NormalizeSpacedText(cvText)
	jobText = extract.NormalizeSpacedText(jobText)

	start := time.Now()

	fitReport, fitUsage, err := p.runFitStage(ctx, cvText, jobText)
	if err != nil {
		return nil, nil, err
	}

	suggestions, suggestUsage, err := p.runSuggestionStage(ctx, cvText, jobText, fitReport)
	if err != nil {
		return nil, nil, err
	}

	combined := &types.CombinedReport{
		Fit:         *fitReport,
		Suggestions: *suggestions,
		Decision:    Decide(*fitReport),
	}
	usage := fitUsage.Add(suggestUsage)

	p.logger.Info("Analysis pipeline completed",
		"fit_score", fitReport.FitScore,
		"confidence", fitReport.Confidence,
		"decision", combined.Decision.Code,
		"duration_ms", time.Since(start).Milliseconds())

	return combined, usage, nil
}

func (p *Pipeline) runFitStage(ctx context.Context, cvText, jobText string) (*types.FitReport, *ai.TokenUsage, error) {
	raw, usage, err := p.fit.Generate(ctx, map[string]string{
		"cv_text":  cvText,
		"job_text": jobText,
	})
	if err != nil {
		return nil, nil, err
	}
	p.saveStageOutput("fit", raw)

	report, err := ParseFitReport(raw)
	if err != nil {
		p.logger.LogError(err, "Fit analysis output rejected")
		p.saveStageRejection("fit", err)
		return nil, nil, err
	}

	// The model's own score is advisory; the final number comes from the
	// match statuses.
	report.FitScore = ComputeFitScore(report.MustHaveMatch, report.NiceToHaveMatch)

	if !hasMustHaveQualifier(jobText) && len(report.MustHaveMatch) > sparseMustHaveCap {
		report.MustHaveMatch = report.MustHaveMatch[:sparseMustHaveCap]
		report.FitScore = ComputeFitScore(report.MustHaveMatch, report.NiceToHaveMatch)
	}

	return report, usage, nil
}

func (p *Pipeline) runSuggestionStage(ctx context.Context, cvText, jobText string, fitReport *types.FitReport) (*types.SuggestionReport, *ai.TokenUsage, error) {
	fitJSON, err := json.MarshalIndent(fitReport, "", "  ")
	if err != nil {
		return nil, nil, errors.NewInternalError(errors.ErrCodeSchemaViolation,
			"Failed to serialize fit report for suggestion stage", err)
	}

	raw, usage, err := p.suggest.Generate(ctx, map[string]string{
		"fit_report_json": string(fitJSON),
		"cv_text":         cvText,
		"job_text":        jobText,
	})
	if err != nil {
		return nil, nil, err
	}
	p.saveStageOutput("suggestions", raw)

	report, err := ParseSuggestionReport(raw)
	if err != nil {
		p.logger.LogError(err, "Suggestion output rejected")
		p.saveStageRejection("suggestions", err)
		return nil, nil, err
	}
	return report, usage, nil
}

func hasMustHaveQualifier(jobText string) bool {
	return mustHaveQualifierRe.MatchString(strings.ToLower(jobText))
}
