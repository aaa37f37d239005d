package ai

import "strings"

// SystemPrompts contains the system-level instructions for each stage
type SystemPrompts struct {
	FitAnalysis string
	Suggestions string
}

// UserPrompts contains the user prompt templates for each stage. Templates
// use {name} placeholders filled by FormatPrompt.
type UserPrompts struct {
	FitAnalysis string
	Suggestions string
}

// FormatPrompt substitutes {name} placeholders in a template with the given
// variable values. Unknown placeholders are left untouched so a typo in a
// custom template shows up verbatim in the rendered prompt.
func FormatPrompt(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	FitAnalysis: `You are a senior technical recruiter performing a strict, evidence-based comparison between a candidate's CV and a job posting. Your core principles are:

- Use ONLY explicit textual evidence from the CV; never infer skills that are not stated
- Never invent, exaggerate, or assume any experience
- Classify conservatively: when evidence is ambiguous, prefer "partial" over "match"
- Respond with a single JSON object and nothing else`,

	Suggestions: `You are a career coach turning a fit analysis into concrete, honest improvement suggestions. Your core principles are:

- Do not invent experience: every suggestion must be phrased as an edit to existing material
- Never assert availability, location, salary, or visa status as fact; phrase such points as conditional, optional statements ("If you are available full-time, add...")
- Keep suggestions specific and actionable
- Respond with a single JSON object and nothing else`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	FitAnalysis: `Compare the CV and the job posting below and produce a fit analysis as a single JSON object with exactly these top-level keys: "fit_score", "confidence", "must_have_match", "nice_to_have_match", "gaps".

**Rules:**

1. Extract at most 4 must-have and at most 4 nice-to-have requirements from the job posting.
   A requirement is must-have ONLY if the posting marks it with qualifying language ("must", "required", "mandatory", "minimum", "essential"). Everything else is nice-to-have.
   If the posting contains no such qualifying language at all, list at most 2 must-have items.
2. Merge duplicate or synonymous requirements into one entry.
3. For each requirement, set "status" to "match", "partial" or "missing" based only on explicit CV text.
   For "match" and "partial", "evidence" must quote short literal snippets from the CV.
   For "missing", use exactly ["Not stated in CV (unknown)"] as evidence.
4. "gaps" lists shortfalls with "impact" ("high", "medium", "low") and "how_to_fix" steps.
5. Exclude non-technical constraints (availability, location, salary, visa) from requirements and gaps unless the posting states a direct conflict with CV content.
6. "fit_score" is an integer 0-100; "confidence" is "low", "medium" or "high".

**CV:**
-----
{cv_text}
-----

**Job posting:**
-----
{job_text}
-----`,

	Suggestions: `The JSON below is a fit analysis of a candidate's CV against a job posting. Using ONLY this analysis as factual input, produce a single JSON object with exactly these top-level keys: "summary", "cv_suggestions", "linkedin_suggestions", "ats_keywords", "final_note".

**Rules:**

1. At most 5 "cv_suggestions" and 5 "linkedin_suggestions". Each has "section" (summary, experience, skills, projects or other), "change", "reason" and "priority" ("high", "medium", "low").
2. Every suggestion must be an edit to existing material. Do not invent experience.
3. Non-technical clarifications (availability, location, salary, visa) must be conditional and optional ("If you are available full-time, add...") and must never assert a fact not already in the CV.
4. At most 10 "ats_keywords". Each has "keyword", "where_to_add" ("cv", "linkedin" or "both") and "note". Include keywords for missing must-have requirements.
5. "summary" is a short overall assessment; "final_note" is one closing remark.

**Fit analysis:**
-----
{fit_report_json}
-----`,
}
