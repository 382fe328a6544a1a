package tasks

import (
	"context"
	"fmt"

	"github.com/revqdev/revq/internal/models"
)

// ConvertReview expands a persisted review into one pending task per
// finding, in finding order, each linked back to the review and the
// finding's position. A review with no findings converts to zero
// tasks without error.
//
// Conversion is not idempotent: converting the same review twice
// creates two independent task sets with no deduplication.
func (s *Service) ConvertReview(ctx context.Context, reviewID string) ([]*models.Task, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(review.Findings))
	for i, f := range review.Findings {
		idx := i
		t := &models.Task{
			Status:              models.TaskStatusPending,
			SourceReviewID:      review.ID,
			SourceFindingIndex:  &idx,
			Title:               f.Title,
			Description:         f.Detail,
			File:                f.File,
			StartLine:           f.StartLine,
			EndLine:             f.EndLine,
			Severity:            f.Severity,
			Category:            f.Category,
			SuggestionPatchDiff: f.SuggestionPatchDiff,
		}
		if err := s.store.CreateTask(ctx, t); err != nil {
			return nil, fmt.Errorf("create task for finding %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
