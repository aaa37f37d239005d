// Package report renders a CombinedReport as a standalone HTML page.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"careermatch/internal/types"
)

//go:embed template.html
var pageTemplate string

const (
	defaultJobTitle = "LinkedIn position"
	maxHighlights   = 3
)

// RenderHTML produces the self-contained HTML fit report for a completed
// analysis. jobID shows up in the page header; an empty job title falls back
// to a generic one.
func RenderHTML(combined *types.CombinedReport, jobID string) string {
	decision := combined.Decision
	score := clampScore(combined.Fit.FitScore)

	jobTitle := combined.JobTitle
	if jobTitle == "" {
		jobTitle = defaultJobTitle
	}

	strengths := topStrengths(combined.Fit)
	blockers := topBlockers(combined.Fit)

	values := map[string]string{
		"json_file_name":  "report.json",
		"decision_label":  html.EscapeString(decision.Label),
		"decision_reason": html.EscapeString(decision.Reason),
		"decision_badge":  html.EscapeString(strings.ToLower(decision.Code)),
		"decision_code":   html.EscapeString(decision.Code),
		"fit_score":       fmt.Sprintf("%d", score),
		"confidence":      html.EscapeString(combined.Fit.Confidence),
		"next_step":       html.EscapeString(decision.NextStep),
		"summary":         html.EscapeString(combined.Suggestions.Summary),
		"final_note":      html.EscapeString(combined.Suggestions.FinalNote),
		"json_dump":       html.EscapeString(jsonPretty(combined)),
		"job_title":       html.EscapeString(jobTitle),
		"score_bar_class": scoreBarClass(score),
		"job_id":          html.EscapeString(jobID),
		"strengths_cards": renderCards(strengths, "pos", "No notable strengths found."),
		"blockers_cards":  renderCards(blockers, "neg", "No major blockers."),
		"strengths_count": fmt.Sprintf("%d/%d", len(strengths), maxHighlights),
		"blockers_count":  fmt.Sprintf("%d/%d", len(blockers), maxHighlights),
	}

	return renderTemplate(pageTemplate, values)
}

// topStrengths lists up to three requirements the CV covers, full matches
// before partial ones, must-haves before nice-to-haves.
func topStrengths(fit types.FitReport) []string {
	all := append(append([]types.RequirementMatch{}, fit.MustHaveMatch...), fit.NiceToHaveMatch...)

	var strengths []string
	for _, status := range []string{types.StatusMatch, types.StatusPartial} {
		for _, m := range all {
			if m.Status == status {
				strengths = append(strengths, m.Requirement)
			}
		}
	}
	if len(strengths) > maxHighlights {
		strengths = strengths[:maxHighlights]
	}
	return strengths
}

// topBlockers lists up to three high or medium impact gaps, highest impact
// first. When the model reported no such gaps, missing must-haves stand in.
func topBlockers(fit types.FitReport) []string {
	rank := map[string]int{types.LevelHigh: 0, types.LevelMedium: 1, types.LevelLow: 2}

	gaps := append([]types.Gap{}, fit.Gaps...)
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, ok := rank[gaps[i].Impact]
		if !ok {
			ri = len(rank) + 1
		}
		rj, ok := rank[gaps[j].Impact]
		if !ok {
			rj = len(rank) + 1
		}
		return ri < rj
	})

	var blockers []string
	for _, g := range gaps {
		if g.Impact == types.LevelHigh || g.Impact == types.LevelMedium {
			blockers = append(blockers, g.Gap)
		}
	}

	if len(blockers) == 0 {
		for _, m := range fit.MustHaveMatch {
			if m.Status == types.StatusMissing {
				blockers = append(blockers, m.Requirement)
			}
		}
	}

	if len(blockers) > maxHighlights {
		blockers = blockers[:maxHighlights]
	}
	return blockers
}

func renderCards(items []string, kind, emptyText string) string {
	if len(items) == 0 {
		return fmt.Sprintf(`<div class="qempty">%s</div>`, html.EscapeString(emptyText))
	}

	icon := "!"
	if kind == "pos" {
		icon = "✓"
	}

	cards := make([]string, 0, len(items))
	for _, item := range items {
		cards = append(cards, fmt.Sprintf(
			`<div class="qitem"><div class="qicon %s">%s</div><div class="qtext">%s</div></div>`,
			kind, icon, html.EscapeString(item)))
	}
	return strings.Join(cards, "\n")
}

func scoreBarClass(score int) string {
	switch {
	case score <= 50:
		return "bar-red"
	case score <= 75:
		return "bar-yellow"
	default:
		return "bar-green"
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func jsonPretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// renderTemplate substitutes {{key}} placeholders, leaving unknown
// placeholders verbatim.
func renderTemplate(tmpl string, values map[string]string) string {
	out := tmpl
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
