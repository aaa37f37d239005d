package types

// Match status values for a single requirement.
const (
	StatusMatch   = "match"
	StatusPartial = "partial"
	StatusMissing = "missing"
)

// Impact and priority levels share the same scale.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// Confidence levels reported by the fit analysis.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Targets for ATS keyword placement.
const (
	TargetCV       = "cv"
	TargetLinkedIn = "linkedin"
	TargetBoth     = "both"
)

// EvidenceUnknown is the sentinel evidence entry for requirements the CV
// never mentions.
const EvidenceUnknown = "Not stated in CV (unknown)"

// AnalyzeInput carries the two free-text inputs of an analysis request.
type AnalyzeInput struct {
	CVText  string `json:"cvText"`
	JobText string `json:"jobText"`
}

// RequirementMatch records how one job requirement compares against the CV.
// Evidence holds literal CV snippets for match/partial; for missing it holds
// the EvidenceUnknown sentinel.
type RequirementMatch struct {
	Requirement string   `json:"requirement"`
	Status      string   `json:"status"`
	Evidence    []string `json:"evidence"`
}

// Gap describes a shortfall between the CV and the job posting.
type Gap struct {
	Gap      string   `json:"gap"`
	Impact   string   `json:"impact"`
	HowToFix []string `json:"how_to_fix"`
}

// FitReport is the output of the fit-analysis stage.
type FitReport struct {
	FitScore        int                `json:"fit_score"`
	Confidence      string             `json:"confidence"`
	MustHaveMatch   []RequirementMatch `json:"must_have_match"`
	NiceToHaveMatch []RequirementMatch `json:"nice_to_have_match"`
	Gaps            []Gap              `json:"gaps"`
}

// Suggestion is one proposed edit to the CV or LinkedIn profile. Section is
// normalized to summary/experience/skills/projects/other.
type Suggestion struct {
	Section  string `json:"section"`
	Change   string `json:"change"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// ATSKeyword recommends a term to add for applicant-tracking-system scans.
type ATSKeyword struct {
	Keyword    string `json:"keyword"`
	WhereToAdd string `json:"where_to_add"`
	Note       string `json:"note"`
}

// SuggestionReport is the output of the suggestion stage.
type SuggestionReport struct {
	Summary             string       `json:"summary"`
	CVSuggestions       []Suggestion `json:"cv_suggestions"`
	LinkedInSuggestions []Suggestion `json:"linkedin_suggestions"`
	ATSKeywords         []ATSKeyword `json:"ats_keywords"`
	FinalNote           string       `json:"final_note"`
}

// Decision is the apply/skip verdict derived deterministically from a
// FitReport.
type Decision struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Reason   string `json:"reason"`
	NextStep string `json:"next_step"`
}

// Decision codes.
const (
	DecisionYes   = "YES"
	DecisionMaybe = "MAYBE"
	DecisionNo    = "NO"
)

// CombinedReport is the single document returned to the caller: both stage
// outputs plus the derived decision and the job title when one was extracted.
type CombinedReport struct {
	Fit         FitReport        `json:"fit"`
	Suggestions SuggestionReport `json:"suggestions"`
	Decision    Decision         `json:"decision"`
	JobTitle    string           `json:"job_title,omitempty"`
}
