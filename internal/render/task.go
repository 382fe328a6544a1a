package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/revqdev/revq/internal/models"
)

// TaskReport renders one task to structured text, including linkage
// back to the originating review finding and completion metadata when
// present.
func TaskReport(t *models.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task %s: %s\n", t.ID, t.Title)
	fmt.Fprintf(&b, "  Status:    %s\n", t.Status)
	fmt.Fprintf(&b, "  Severity:  %s\n", t.Severity)
	if t.Category != "" {
		fmt.Fprintf(&b, "  Category:  %s\n", t.Category)
	}
	if loc := location(t.File, t.StartLine, t.EndLine); loc != "" {
		fmt.Fprintf(&b, "  Location:  %s\n", loc)
	}
	if t.FromReview() {
		fmt.Fprintf(&b, "  Source:    %s finding %d\n", t.SourceReviewID, *t.SourceFindingIndex)
	}
	fmt.Fprintf(&b, "  Created:   %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Updated:   %s\n", t.UpdatedAt.Format(time.RFC3339))

	if t.Description != "" {
		b.WriteString("\nDescription:\n")
		writeIndented(&b, t.Description)
	}

	if t.SuggestionPatchDiff != "" {
		b.WriteString("\nSuggested patch:\n")
		writePatch(&b, t.SuggestionPatchDiff)
	}

	if t.CompletedAt != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Completed: %s\n", t.CompletedAt.Format(time.RFC3339))
		if t.VerificationNote != "" {
			fmt.Fprintf(&b, "Verification: %s\n", t.VerificationNote)
		}
	}

	return b.String()
}
