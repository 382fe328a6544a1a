package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/revqdev/revq/internal/models"
	"github.com/revqdev/revq/internal/output"
	"github.com/revqdev/revq/internal/render"
	"github.com/revqdev/revq/internal/store"
)

var (
	reviewBase    string
	reviewHead    string
	reviewSummary string
	reviewRisk    string
	reviewLimit   int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manage persisted reviews",
	Long:  "Store review findings and expand them into remediation tasks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewListRun()
	},
}

var reviewAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a review without findings",
	Long:  "Create a review record from flags. Use 'review import' for reviews with findings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewAddRun()
	},
}

var reviewListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reviews, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewListRun()
	},
}

var reviewShowCmd = &cobra.Command{
	Use:   "show <review-id>",
	Short: "Show a full review report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewShowRun(args[0])
	},
}

var reviewConvertCmd = &cobra.Command{
	Use:   "convert <review-id>",
	Short: "Expand a review's findings into pending tasks",
	Long: `Create one pending task per finding, linked back to the review.

Converting the same review twice creates a second, independent set of
tasks; nothing is deduplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewConvertRun(args[0])
	},
}

func init() {
	reviewAddCmd.Flags().StringVar(&reviewBase, "base", "", "Base revision reference (required)")
	reviewAddCmd.Flags().StringVar(&reviewHead, "head", "", "Head revision reference (required)")
	reviewAddCmd.Flags().StringVar(&reviewSummary, "summary", "", "Review summary (required)")
	reviewAddCmd.Flags().StringVar(&reviewRisk, "risk", "", "Risk level: low, medium, high")
	_ = reviewAddCmd.MarkFlagRequired("base")
	_ = reviewAddCmd.MarkFlagRequired("head")
	_ = reviewAddCmd.MarkFlagRequired("summary")

	reviewListCmd.Flags().IntVar(&reviewLimit, "limit", 0, "Maximum reviews to list")

	reviewCmd.AddCommand(reviewAddCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewShowCmd)
	reviewCmd.AddCommand(reviewConvertCmd)
	rootCmd.AddCommand(reviewCmd)
}

func reviewAddRun() error {
	if strings.TrimSpace(reviewSummary) == "" {
		return fmt.Errorf("summary is required")
	}
	if reviewRisk != "" && !models.RiskLevel(reviewRisk).Valid() {
		return fmt.Errorf("unknown risk level %q (low, medium, high)", reviewRisk)
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r := &models.Review{
		Target:  models.ReviewTarget{Base: reviewBase, Head: reviewHead},
		Summary: reviewSummary,
		Risk:    models.RiskLevel(reviewRisk),
	}

	if dryRun {
		ui.DryRunMsg("Would create review for %s...%s", reviewBase, reviewHead)
		return nil
	}

	if err := s.CreateReview(ctx, r); err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	ui.Success("Created review %s", output.Cyan(r.ID))
	return nil
}

func reviewListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	limit := reviewLimit
	if limit <= 0 {
		limit = viper.GetInt("list.limit")
	}

	reviews, err := s.ListReviews(ctx, limit)
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		ui.Info("No reviews found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Target", "Risk", "Findings", "Created"})
	for _, r := range reviews {
		_ = table.Append([]string{
			r.ID,
			fmt.Sprintf("%s...%s", r.Target.Base, r.Target.Head),
			output.RiskColor(string(r.Risk)),
			fmt.Sprintf("%d", len(r.Findings)),
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func reviewShowRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := findReview(ctx, s, id)
	if err != nil {
		return err
	}

	fmt.Fprint(ui.Out, render.ReviewReport(r))
	return nil
}

func reviewConvertRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	s, _ := getStore()
	ctx := context.Background()

	r, err := findReview(ctx, s, id)
	if err != nil {
		return err
	}

	warnExistingTasks(ctx, s, r.ID)

	if dryRun {
		ui.DryRunMsg("Would create %d task(s) from review %s", len(r.Findings), shortID(r.ID))
		return nil
	}

	created, err := svc.ConvertReview(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("convert review: %w", err)
	}

	if len(created) == 0 {
		ui.Info("Review %s has no findings; no tasks created.", shortID(r.ID))
		return nil
	}

	for _, t := range created {
		ui.Success("Created task %s: %s", output.Cyan(t.ID), t.Title)
	}
	return nil
}

// warnExistingTasks flags re-conversion without blocking it:
// duplicate task sets are the documented behavior.
func warnExistingTasks(ctx context.Context, s store.Store, reviewID string) {
	existing, err := s.ListTasks(ctx, store.TaskFilter{Limit: store.ScanAll})
	if err != nil {
		return
	}
	n := 0
	for _, t := range existing {
		if t.SourceReviewID == reviewID {
			n++
		}
	}
	if n > 0 {
		ui.Warning("Review %s already has %d linked task(s); converting again will duplicate them", shortID(reviewID), n)
	}
}

// findReview finds a review by full ID or unique prefix match.
func findReview(ctx context.Context, s store.Store, id string) (*models.Review, error) {
	if r, err := s.GetReview(ctx, id); err == nil {
		return r, nil
	}

	reviews, err := s.ListReviews(ctx, store.ScanAll)
	if err != nil {
		return nil, err
	}

	var matches []*models.Review
	for _, r := range reviews {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("review not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous review ID %s: matches %d reviews", id, len(matches))
	}
}
