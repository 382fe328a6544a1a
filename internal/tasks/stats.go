package tasks

import (
	"context"

	"github.com/revqdev/revq/internal/models"
)

// Stats holds derived counts over the task population.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Cancelled  int
}

// Stats recomputes task counts from the store. Nothing is cached or
// persisted; every call rescans the collection.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.CountTasksByStatus(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Pending:    counts[models.TaskStatusPending],
		InProgress: counts[models.TaskStatusInProgress],
		Completed:  counts[models.TaskStatusCompleted],
		Cancelled:  counts[models.TaskStatusCancelled],
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}
