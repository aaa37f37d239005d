package fit

import (
	"careermatch/internal/types"
)

// Score bands for the apply/skip verdict.
const (
	strongFitThreshold = 75
	decentFitThreshold = 55
)

// Decide maps a FitReport to an apply/skip verdict. High-impact gaps can
// demote a strong score to MAYBE but never to NO.
func Decide(report types.FitReport) types.Decision {
	hasMissingMust := false
	for _, m := range report.MustHaveMatch {
		if m.Status == types.StatusMissing {
			hasMissingMust = true
			break
		}
	}

	hasHighGap := false
	for _, g := range report.Gaps {
		if g.Impact == types.LevelHigh {
			hasHighGap = true
			break
		}
	}

	if report.FitScore >= strongFitThreshold {
		if hasMissingMust || hasHighGap {
			return types.Decision{
				Code:     types.DecisionMaybe,
				Label:    "Worth applying only if highly motivated",
				Reason:   "Strong score, but there are gaps that could affect screening. Clarify them with concrete evidence or projects.",
				NextStep: "Apply only if you can clearly demonstrate or mitigate the highlighted gaps (examples, portfolio, interview framing).",
			}
		}
		return types.Decision{
			Code:     types.DecisionYes,
			Label:    "Worth applying",
			Reason:   "Strong alignment with key requirements; remaining gaps are not blocking.",
			NextStep: "Apply and tailor your CV and LinkedIn profile to highlight your strengths.",
		}
	}

	if report.FitScore >= decentFitThreshold {
		return types.Decision{
			Code:     types.DecisionMaybe,
			Label:    "Worth applying only if highly motivated",
			Reason:   "Decent alignment, but concrete evidence is needed to pass initial screening.",
			NextStep: "Apply only if you can clearly demonstrate the missing skills with real examples or projects.",
		}
	}

	reason := "Fit currently low."
	if hasMissingMust {
		reason = "Some key requirements appear missing, with a high risk of early screening rejection."
	} else if hasHighGap {
		reason = "There are high-impact gaps that likely block the role for now."
	}

	return types.Decision{
		Code:     types.DecisionNo,
		Label:    "Not worth applying (for now)",
		Reason:   reason,
		NextStep: "Focus on better-aligned roles or build targeted projects before applying.",
	}
}
