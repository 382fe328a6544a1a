package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/revqdev/revq/internal/models"
)

// ReviewReport renders a full review to structured text: header,
// summary, findings table, per-finding sections, and per-dimension
// criteria feedback. Findings appear exactly in stored order; callers
// pre-sort if they want severity ordering.
func ReviewReport(r *models.Review) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review %s\n", r.ID)
	fmt.Fprintf(&b, "  Target:   %s...%s\n", r.Target.Base, r.Target.Head)
	if r.Risk != "" {
		fmt.Fprintf(&b, "  Risk:     %s\n", r.Risk)
	}
	fmt.Fprintf(&b, "  Created:  %s\n", r.CreatedAt.Format(time.RFC3339))
	b.WriteString("\n")

	b.WriteString("Summary:\n")
	writeIndented(&b, r.Summary)
	b.WriteString("\n")

	if len(r.Findings) > 0 {
		fmt.Fprintf(&b, "Findings (%d):\n", len(r.Findings))
		writeFindingsTable(&b, r.Findings)
		b.WriteString("\n")

		for i, f := range r.Findings {
			writeFindingSection(&b, i, f)
		}
	} else {
		b.WriteString("Findings: none\n\n")
	}

	writeCriteria(&b, r.Criteria)

	return b.String()
}

// writeFindingsTable renders the summary table in stored order.
func writeFindingsTable(b *strings.Builder, findings []models.Finding) {
	table := tablewriter.NewTable(b,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "  ", Right: "  "}),
	)
	table.Header([]string{"#", "Severity", "Category", "Location", "Title"})
	for i, f := range findings {
		_ = table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(f.Severity),
			string(f.Category),
			location(f.File, f.StartLine, f.EndLine),
			f.Title,
		})
	}
	_ = table.Render()
}

func writeFindingSection(b *strings.Builder, index int, f models.Finding) {
	fmt.Fprintf(b, "Finding %d: %s\n", index+1, f.Title)
	fmt.Fprintf(b, "  Severity:  %s\n", f.Severity)
	if f.Category != "" {
		fmt.Fprintf(b, "  Category:  %s\n", f.Category)
	}
	if loc := location(f.File, f.StartLine, f.EndLine); loc != "" {
		fmt.Fprintf(b, "  Location:  %s\n", loc)
	}
	if f.Detail != "" {
		writeIndented(b, f.Detail)
	}
	if f.SuggestionPatchDiff != "" {
		b.WriteString("  Suggested patch:\n")
		writePatch(b, f.SuggestionPatchDiff)
	}
	b.WriteString("\n")
}

// writeCriteria renders one subsection per quality dimension in
// canonical order. Dimensions without feedback are omitted entirely.
func writeCriteria(b *strings.Builder, c *models.CriteriaFeedback) {
	if c.Empty() {
		return
	}
	b.WriteString("Criteria feedback:\n")
	for _, d := range models.Dimensions() {
		item := c.ByDimension(d)
		if item == nil {
			continue
		}
		if item.Label != "" {
			fmt.Fprintf(b, "  %s [%s]\n", d, item.Label)
		} else {
			fmt.Fprintf(b, "  %s\n", d)
		}
		for _, note := range item.Notes {
			fmt.Fprintf(b, "    - %s\n", note)
		}
	}
	b.WriteString("\n")
}

func writeIndented(b *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(b, "  %s\n", line)
	}
}

func writePatch(b *strings.Builder, patch string) {
	normalized := NormalizePatch(patch)
	for _, line := range strings.Split(normalized, "\n") {
		fmt.Fprintf(b, "    %s\n", line)
	}
}
