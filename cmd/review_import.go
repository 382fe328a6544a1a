package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/revqdev/revq/internal/models"
	"github.com/revqdev/revq/internal/output"
)

var importConvert bool

var reviewImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a review from a YAML document",
	Long: `Import a review written by a reviewing agent as a YAML document.

The document carries the target revisions, summary, optional risk and
per-dimension criteria feedback, and an ordered list of findings.
Finding order is preserved exactly as written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewImportRun(args[0])
	},
}

func init() {
	reviewImportCmd.Flags().BoolVar(&importConvert, "convert", false, "Immediately expand findings into pending tasks")
	reviewCmd.AddCommand(reviewImportCmd)
}

// reviewDocument is the YAML shape accepted by 'review import'.
type reviewDocument struct {
	Target struct {
		Base string `yaml:"base"`
		Head string `yaml:"head"`
	} `yaml:"target"`
	Summary  string                       `yaml:"summary"`
	Risk     string                       `yaml:"risk"`
	Criteria map[string]criterionDocument `yaml:"criteria_feedback"`
	Findings []findingDocument            `yaml:"findings"`
}

type criterionDocument struct {
	Label string   `yaml:"label"`
	Notes []string `yaml:"notes"`
}

type findingDocument struct {
	Severity            string `yaml:"severity"`
	Category            string `yaml:"category"`
	File                string `yaml:"file"`
	StartLine           int    `yaml:"startLine"`
	EndLine             int    `yaml:"endLine"`
	Title               string `yaml:"title"`
	Detail              string `yaml:"detail"`
	SuggestionPatchDiff string `yaml:"suggestion_patch_diff"`
}

func reviewImportRun(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("file is empty: %s", file)
	}

	var doc reviewDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	r, err := reviewFromDocument(&doc)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would import review for %s...%s with %d finding(s)",
			r.Target.Base, r.Target.Head, len(r.Findings))
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := s.CreateReview(ctx, r); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	ui.Success("Imported review %s with %d finding(s)", output.Cyan(r.ID), len(r.Findings))

	if !importConvert {
		return nil
	}

	svc, err := getService()
	if err != nil {
		return err
	}
	created, err := svc.ConvertReview(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("convert review: %w", err)
	}
	for _, t := range created {
		ui.Success("Created task %s: %s", output.Cyan(t.ID), t.Title)
	}
	return nil
}

// reviewFromDocument validates an imported document and builds the
// review record. Findings keep document order.
func reviewFromDocument(doc *reviewDocument) (*models.Review, error) {
	if doc.Target.Base == "" || doc.Target.Head == "" {
		return nil, fmt.Errorf("target.base and target.head are required")
	}
	if strings.TrimSpace(doc.Summary) == "" {
		return nil, fmt.Errorf("summary is required")
	}
	if doc.Risk != "" && !models.RiskLevel(doc.Risk).Valid() {
		return nil, fmt.Errorf("unknown risk level %q (low, medium, high)", doc.Risk)
	}

	r := &models.Review{
		Target:  models.ReviewTarget{Base: doc.Target.Base, Head: doc.Target.Head},
		Summary: doc.Summary,
		Risk:    models.RiskLevel(doc.Risk),
	}

	if len(doc.Criteria) > 0 {
		criteria := &models.CriteriaFeedback{}
		for key, item := range doc.Criteria {
			d := models.Dimension(key)
			if !d.Valid() {
				return nil, fmt.Errorf("unknown quality dimension %q", key)
			}
			if item.Label != "" && !models.EvaluationLabel(item.Label).Valid() {
				return nil, fmt.Errorf("dimension %s: unknown label %q", key, item.Label)
			}
			criteria.SetDimension(d, &models.CriterionFeedback{
				Label: models.EvaluationLabel(item.Label),
				Notes: item.Notes,
			})
		}
		r.Criteria = criteria
	}

	for i, f := range doc.Findings {
		if !models.EvaluationLabel(f.Severity).Valid() {
			return nil, fmt.Errorf("finding %d: unknown severity %q", i, f.Severity)
		}
		if f.Category != "" && !models.Dimension(f.Category).Valid() {
			return nil, fmt.Errorf("finding %d: unknown category %q", i, f.Category)
		}
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("finding %d: title is required", i)
		}
		if f.StartLine < 0 || f.EndLine < 0 {
			return nil, fmt.Errorf("finding %d: line numbers must be positive", i)
		}
		if f.StartLine > 0 && f.EndLine > 0 && f.EndLine < f.StartLine {
			return nil, fmt.Errorf("finding %d: endLine %d precedes startLine %d", i, f.EndLine, f.StartLine)
		}
		r.Findings = append(r.Findings, models.Finding{
			Severity:            models.EvaluationLabel(f.Severity),
			Category:            models.Dimension(f.Category),
			File:                f.File,
			StartLine:           f.StartLine,
			EndLine:             f.EndLine,
			Title:               f.Title,
			Detail:              f.Detail,
			SuggestionPatchDiff: f.SuggestionPatchDiff,
		})
	}

	return r, nil
}
