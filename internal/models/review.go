package models

import "time"

// RiskLevel is the overall risk assessment of a reviewed change.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// EvaluationLabel is the severity/quality tier attached to a finding,
// a task, or a per-dimension feedback item. Ordered from most to least
// severe: critical, required, suggestion, nit, good.
type EvaluationLabel string

const (
	LabelCritical   EvaluationLabel = "critical"
	LabelRequired   EvaluationLabel = "required"
	LabelSuggestion EvaluationLabel = "suggestion"
	LabelNit        EvaluationLabel = "nit"
	LabelGood       EvaluationLabel = "good"
)

// Valid reports whether l is a known evaluation label.
func (l EvaluationLabel) Valid() bool {
	switch l {
	case LabelCritical, LabelRequired, LabelSuggestion, LabelNit, LabelGood:
		return true
	}
	return false
}

// Rank returns the severity rank of a label (0 = most severe).
// Unknown labels sort last.
func (l EvaluationLabel) Rank() int {
	switch l {
	case LabelCritical:
		return 0
	case LabelRequired:
		return 1
	case LabelSuggestion:
		return 2
	case LabelNit:
		return 3
	case LabelGood:
		return 4
	}
	return 5
}

// ReviewTarget identifies what was reviewed as a pair of revision
// references. The strings are opaque to the store.
type ReviewTarget struct {
	Base string `json:"base"`
	Head string `json:"head"`
}

// Finding is one concrete issue or observation embedded in a review.
// Findings are value types: they are never addressed or mutated
// individually, only replaced wholesale with their review.
type Finding struct {
	Severity            EvaluationLabel `json:"severity"`
	Category            Dimension       `json:"category,omitempty"`
	File                string          `json:"file,omitempty"`
	StartLine           int             `json:"startLine,omitempty"`
	EndLine             int             `json:"endLine,omitempty"`
	Title               string          `json:"title"`
	Detail              string          `json:"detail"`
	SuggestionPatchDiff string          `json:"suggestion_patch_diff,omitempty"`
}

// Review records one reviewing-agent pass over a change.
type Review struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Target    ReviewTarget      `json:"target"`
	Summary   string            `json:"summary"`
	Risk      RiskLevel         `json:"risk,omitempty"`
	Criteria  *CriteriaFeedback `json:"criteria_feedback,omitempty"`
	Findings  []Finding         `json:"findings"`
}
