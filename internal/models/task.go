package models

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is an independently tracked unit of remediation work,
// optionally linked back to the review finding that spawned it.
type Task struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Status    TaskStatus `json:"status"`

	// Set iff the task was produced by review conversion. The index is
	// the zero-based position of the originating finding within its
	// review's findings at conversion time; a pointer keeps index 0
	// distinguishable from absent.
	SourceReviewID     string `json:"source_review_id,omitempty"`
	SourceFindingIndex *int   `json:"source_finding_index,omitempty"`

	Title               string          `json:"title"`
	Description         string          `json:"description"`
	File                string          `json:"file,omitempty"`
	StartLine           int             `json:"startLine,omitempty"`
	EndLine             int             `json:"endLine,omitempty"`
	Severity            EvaluationLabel `json:"severity"`
	Category            Dimension       `json:"category,omitempty"`
	SuggestionPatchDiff string          `json:"suggestion_patch_diff,omitempty"`

	// Completion metadata, absent until the task reaches completed.
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	VerificationNote string     `json:"verification_note,omitempty"`
}

// FromReview reports whether the task was produced by review
// conversion.
func (t *Task) FromReview() bool {
	return t.SourceReviewID != "" && t.SourceFindingIndex != nil
}
