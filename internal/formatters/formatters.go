package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"careermatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "CombinedReport", &CombinedTextFormatter{})
	registry.RegisterFormatter("markdown", "CombinedReport", &CombinedMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CombinedReport, *types.CombinedReport:
		return "CombinedReport"
	default:
		return "any"
	}
}

func asCombinedReport(data any) (*types.CombinedReport, error) {
	switch v := data.(type) {
	case types.CombinedReport:
		return &v, nil
	case *types.CombinedReport:
		return v, nil
	default:
		return nil, fmt.Errorf("expected CombinedReport, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// CombinedTextFormatter handles text formatting for fit reports
type CombinedTextFormatter struct{}

func (ctf *CombinedTextFormatter) Format(data any) (string, error) {
	result, err := asCombinedReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== FIT REPORT ===\n\n")
	if result.JobTitle != "" {
		output.WriteString(fmt.Sprintf("Position: %s\n", result.JobTitle))
	}
	output.WriteString(fmt.Sprintf("Fit score: %d/100 (confidence: %s)\n\n", result.Fit.FitScore, result.Fit.Confidence))

	output.WriteString("=== DECISION ===\n")
	output.WriteString(fmt.Sprintf("%s\n", result.Decision.Label))
	output.WriteString(fmt.Sprintf("Reason: %s\n", result.Decision.Reason))
	output.WriteString(fmt.Sprintf("Next step: %s\n\n", result.Decision.NextStep))

	writeMatchesText(&output, "MUST-HAVE REQUIREMENTS", result.Fit.MustHaveMatch)
	writeMatchesText(&output, "NICE-TO-HAVE REQUIREMENTS", result.Fit.NiceToHaveMatch)

	if len(result.Fit.Gaps) > 0 {
		output.WriteString("=== GAPS ===\n")
		for i, gap := range result.Fit.Gaps {
			output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, gap.Impact, gap.Gap))
			for _, fix := range gap.HowToFix {
				output.WriteString(fmt.Sprintf("   - %s\n", fix))
			}
		}
		output.WriteString("\n")
	}

	output.WriteString("=== SUMMARY ===\n")
	output.WriteString(result.Suggestions.Summary)
	output.WriteString("\n\n")

	writeSuggestionsText(&output, "CV SUGGESTIONS", result.Suggestions.CVSuggestions)
	writeSuggestionsText(&output, "LINKEDIN SUGGESTIONS", result.Suggestions.LinkedInSuggestions)

	if len(result.Suggestions.ATSKeywords) > 0 {
		output.WriteString("=== ATS KEYWORDS ===\n")
		for _, kw := range result.Suggestions.ATSKeywords {
			output.WriteString(fmt.Sprintf("- %s (add to: %s)", kw.Keyword, kw.WhereToAdd))
			if kw.Note != "" {
				output.WriteString(fmt.Sprintf(" %s", kw.Note))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if result.Suggestions.FinalNote != "" {
		output.WriteString(result.Suggestions.FinalNote)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (ctf *CombinedTextFormatter) SupportedType() string {
	return "CombinedReport"
}

func writeMatchesText(output *strings.Builder, heading string, matches []types.RequirementMatch) {
	if len(matches) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("=== %s ===\n", heading))
	for _, m := range matches {
		output.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(m.Status), m.Requirement))
		for _, ev := range m.Evidence {
			output.WriteString(fmt.Sprintf("   evidence: %s\n", ev))
		}
	}
	output.WriteString("\n")
}

func writeSuggestionsText(output *strings.Builder, heading string, suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("=== %s ===\n", heading))
	for i, s := range suggestions {
		output.WriteString(fmt.Sprintf("%d. [%s/%s] %s\n", i+1, s.Section, s.Priority, s.Change))
		if s.Reason != "" {
			output.WriteString(fmt.Sprintf("   %s\n", s.Reason))
		}
	}
	output.WriteString("\n")
}

// CombinedMarkdownFormatter handles markdown formatting for fit reports
type CombinedMarkdownFormatter struct{}

func (cmf *CombinedMarkdownFormatter) Format(data any) (string, error) {
	result, err := asCombinedReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Fit Report\n\n")
	if result.JobTitle != "" {
		output.WriteString(fmt.Sprintf("**Position:** %s\n\n", result.JobTitle))
	}
	output.WriteString(fmt.Sprintf("**Fit score:** %d/100 (confidence: %s)\n\n", result.Fit.FitScore, result.Fit.Confidence))

	output.WriteString("## Decision\n\n")
	output.WriteString(fmt.Sprintf("**%s**\n\n", result.Decision.Label))
	output.WriteString(fmt.Sprintf("%s\n\n", result.Decision.Reason))
	output.WriteString(fmt.Sprintf("**Next step:** %s\n\n", result.Decision.NextStep))

	writeMatchesMarkdown(&output, "Must-Have Requirements", result.Fit.MustHaveMatch)
	writeMatchesMarkdown(&output, "Nice-to-Have Requirements", result.Fit.NiceToHaveMatch)

	if len(result.Fit.Gaps) > 0 {
		output.WriteString("## Gaps\n\n")
		for i, gap := range result.Fit.Gaps {
			output.WriteString(fmt.Sprintf("### %d. %s (%s impact)\n\n", i+1, gap.Gap, gap.Impact))
			for _, fix := range gap.HowToFix {
				output.WriteString(fmt.Sprintf("- %s\n", fix))
			}
			output.WriteString("\n")
		}
	}

	output.WriteString("## Summary\n\n")
	output.WriteString(result.Suggestions.Summary)
	output.WriteString("\n\n")

	writeSuggestionsMarkdown(&output, "CV Suggestions", result.Suggestions.CVSuggestions)
	writeSuggestionsMarkdown(&output, "LinkedIn Suggestions", result.Suggestions.LinkedInSuggestions)

	if len(result.Suggestions.ATSKeywords) > 0 {
		output.WriteString("## ATS Keywords\n\n")
		for _, kw := range result.Suggestions.ATSKeywords {
			output.WriteString(fmt.Sprintf("- **%s** (add to: %s)", kw.Keyword, kw.WhereToAdd))
			if kw.Note != "" {
				output.WriteString(fmt.Sprintf(" %s", kw.Note))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if result.Suggestions.FinalNote != "" {
		output.WriteString(result.Suggestions.FinalNote)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (cmf *CombinedMarkdownFormatter) SupportedType() string {
	return "CombinedReport"
}

func writeMatchesMarkdown(output *strings.Builder, heading string, matches []types.RequirementMatch) {
	if len(matches) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("## %s\n\n", heading))
	for _, m := range matches {
		output.WriteString(fmt.Sprintf("- **%s** `%s`\n", m.Requirement, m.Status))
		for _, ev := range m.Evidence {
			output.WriteString(fmt.Sprintf("  - %s\n", ev))
		}
	}
	output.WriteString("\n")
}

func writeSuggestionsMarkdown(output *strings.Builder, heading string, suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("## %s\n\n", heading))
	for i, s := range suggestions {
		output.WriteString(fmt.Sprintf("%d. **%s** (%s, %s priority)", i+1, s.Change, s.Section, s.Priority))
		if s.Reason != "" {
			output.WriteString(fmt.Sprintf(" %s", s.Reason))
		}
		output.WriteString("\n")
	}
	output.WriteString("\n")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
