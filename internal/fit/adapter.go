package fit

import (
	"encoding/json"
	"fmt"
	"strings"

	"careermatch/internal/errors"
	"careermatch/internal/types"
)

// Array caps requested by the stage instructions. The model may overshoot
// them, in which case trailing excess is dropped rather than failing the
// whole response.
const (
	maxMustHave            = 4
	maxNiceToHave          = 4
	maxCVSuggestions       = 5
	maxLinkedInSuggestions = 5
	maxATSKeywords         = 10
)

// allowedSections are the CV sections a suggestion may target. Anything the
// model invents outside this set is folded into "other".
var sectionAliases = map[string]string{
	"education":       "other",
	"certifications":  "skills",
	"certification":   "skills",
	"training":        "skills",
	"courses":         "skills",
	"course":          "skills",
	"projects":        "projects",
	"project":         "projects",
	"work experience": "experience",
	"experience":      "experience",
	"skills":          "skills",
	"summary":         "summary",
	"about":           "summary",
}

var allowedSections = map[string]bool{
	"summary":    true,
	"experience": true,
	"skills":     true,
	"projects":   true,
	"other":      true,
}

// ParseFitReport turns raw model output into a validated FitReport.
// Missing required keys or malformed JSON fail hard; over-long arrays are
// truncated.
func ParseFitReport(raw string) (*types.FitReport, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := fitContract.Validate(jsonText); err != nil {
		return nil, err
	}

	var report types.FitReport
	if err := json.Unmarshal([]byte(jsonText), &report); err != nil {
		return nil, errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Failed to parse fit analysis output", err)
	}

	if err := normalizeFitReport(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ParseSuggestionReport turns raw model output into a validated
// SuggestionReport, applying section normalization and array caps.
func ParseSuggestionReport(raw string) (*types.SuggestionReport, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := suggestionContract.Validate(jsonText); err != nil {
		return nil, err
	}

	var report types.SuggestionReport
	if err := json.Unmarshal([]byte(jsonText), &report); err != nil {
		return nil, errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Failed to parse suggestions output", err)
	}

	if err := normalizeSuggestionReport(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

func normalizeFitReport(report *types.FitReport) error {
	if report.FitScore < 0 || report.FitScore > 100 {
		return schemaErrorf("fit_score %d is out of range 0-100", report.FitScore)
	}
	if !validConfidence(report.Confidence) {
		return schemaErrorf("invalid confidence %q", report.Confidence)
	}

	report.MustHaveMatch = truncate(report.MustHaveMatch, maxMustHave)
	report.NiceToHaveMatch = truncate(report.NiceToHaveMatch, maxNiceToHave)

	// Arrays serialize as [] rather than null.
	if report.MustHaveMatch == nil {
		report.MustHaveMatch = []types.RequirementMatch{}
	}
	if report.NiceToHaveMatch == nil {
		report.NiceToHaveMatch = []types.RequirementMatch{}
	}
	if report.Gaps == nil {
		report.Gaps = []types.Gap{}
	}

	for i := range report.MustHaveMatch {
		if err := normalizeMatch(&report.MustHaveMatch[i]); err != nil {
			return err
		}
	}
	for i := range report.NiceToHaveMatch {
		if err := normalizeMatch(&report.NiceToHaveMatch[i]); err != nil {
			return err
		}
	}
	for i := range report.Gaps {
		if !validLevel(report.Gaps[i].Impact) {
			return schemaErrorf("invalid gap impact %q", report.Gaps[i].Impact)
		}
		if report.Gaps[i].HowToFix == nil {
			report.Gaps[i].HowToFix = []string{}
		}
	}

	return nil
}

func normalizeMatch(m *types.RequirementMatch) error {
	switch m.Status {
	case types.StatusMatch, types.StatusPartial, types.StatusMissing:
	default:
		return schemaErrorf("invalid match status %q", m.Status)
	}

	// A requirement absent from the CV carries the explicit unknown marker
	// rather than an empty evidence list.
	if m.Status == types.StatusMissing && len(m.Evidence) == 0 {
		m.Evidence = []string{types.EvidenceUnknown}
	}
	if m.Evidence == nil {
		m.Evidence = []string{}
	}
	return nil
}

func normalizeSuggestionReport(report *types.SuggestionReport) error {
	report.CVSuggestions = truncate(report.CVSuggestions, maxCVSuggestions)
	report.LinkedInSuggestions = truncate(report.LinkedInSuggestions, maxLinkedInSuggestions)
	report.ATSKeywords = truncate(report.ATSKeywords, maxATSKeywords)

	for i := range report.CVSuggestions {
		s := &report.CVSuggestions[i]
		s.Section = normalizeSection(s.Section)
		if err := normalizePriority(&s.Priority); err != nil {
			return err
		}
	}
	for i := range report.LinkedInSuggestions {
		s := &report.LinkedInSuggestions[i]
		if strings.TrimSpace(s.Section) == "" {
			s.Section = "other"
		}
		if err := normalizePriority(&s.Priority); err != nil {
			return err
		}
	}
	for i := range report.ATSKeywords {
		k := &report.ATSKeywords[i]
		switch k.WhereToAdd {
		case types.TargetCV, types.TargetLinkedIn, types.TargetBoth:
		case "":
			k.WhereToAdd = types.TargetCV
		default:
			return schemaErrorf("invalid ats keyword target %q", k.WhereToAdd)
		}
	}

	if report.CVSuggestions == nil {
		report.CVSuggestions = []types.Suggestion{}
	}
	if report.LinkedInSuggestions == nil {
		report.LinkedInSuggestions = []types.Suggestion{}
	}
	if report.ATSKeywords == nil {
		report.ATSKeywords = []types.ATSKeyword{}
	}
	return nil
}

func normalizeSection(section string) string {
	s := strings.ToLower(strings.TrimSpace(section))
	if mapped, ok := sectionAliases[s]; ok {
		s = mapped
	}
	if !allowedSections[s] {
		return "other"
	}
	return s
}

func normalizePriority(priority *string) error {
	switch *priority {
	case types.LevelHigh, types.LevelMedium, types.LevelLow:
		return nil
	case "":
		*priority = types.LevelMedium
		return nil
	default:
		return schemaErrorf("invalid priority %q", *priority)
	}
}

func validConfidence(c string) bool {
	return c == types.ConfidenceLow || c == types.ConfidenceMedium || c == types.ConfidenceHigh
}

func validLevel(l string) bool {
	return l == types.LevelHigh || l == types.LevelMedium || l == types.LevelLow
}

func truncate[T any](items []T, max int) []T {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func schemaErrorf(format string, args ...any) error {
	return errors.NewAIError(errors.ErrCodeSchemaViolation,
		fmt.Sprintf(format, args...), nil)
}
