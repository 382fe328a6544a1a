// Package tasks implements the task lifecycle state machine, review
// conversion, and derived statistics over the record store.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/revqdev/revq/internal/models"
	"github.com/revqdev/revq/internal/store"
)

// Lifecycle guard errors. Both are reported precondition failures, not
// crashes: the wrapped message carries guidance for the caller.
var (
	// ErrInvalidTransition means a lifecycle operation is not legal
	// from the task's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState means a read-only operation's status
	// precondition does not hold.
	ErrInvalidState = errors.New("invalid task state")
)

// Service drives tasks through their lifecycle on top of the store.
type Service struct {
	store store.Store
}

// NewService creates a lifecycle service backed by the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Execute moves a task into in_progress. Re-executing an in_progress
// task is allowed and only refreshes updated_at. Executing a completed
// task is a no-op: the stored record is returned unchanged and
// alreadyDone is true. Executing a cancelled task fails with
// ErrInvalidTransition; un-cancel it first with SetStatus.
func (s *Service) Execute(ctx context.Context, id string) (task *models.Task, alreadyDone bool, err error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, false, err
	}

	switch t.Status {
	case models.TaskStatusCompleted:
		return t, true, nil
	case models.TaskStatusCancelled:
		return nil, false, fmt.Errorf("%w: task %s is cancelled; set status back to pending before executing", ErrInvalidTransition, id)
	}

	status := models.TaskStatusInProgress
	t, err = s.store.UpdateTask(ctx, id, store.TaskUpdate{Status: &status})
	if err != nil {
		return nil, false, err
	}
	return t, false, nil
}

// Complete moves an in_progress task to completed, stamping
// completed_at and storing the verification note when supplied.
// Completing an already-completed task is a no-op that returns the
// stored record (with its original completed_at) and alreadyDone true.
func (s *Service) Complete(ctx context.Context, id, verificationNote string) (task *models.Task, alreadyDone bool, err error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, false, err
	}

	switch t.Status {
	case models.TaskStatusCompleted:
		return t, true, nil
	case models.TaskStatusInProgress:
		// legal transition
	default:
		return nil, false, fmt.Errorf("%w: task %s is %s; only an in_progress task can be completed", ErrInvalidTransition, id, t.Status)
	}

	status := models.TaskStatusCompleted
	completedAt := time.Now().UTC()
	upd := store.TaskUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
	}
	if verificationNote != "" {
		upd.VerificationNote = &verificationNote
	}
	t, err = s.store.UpdateTask(ctx, id, upd)
	if err != nil {
		return nil, false, err
	}
	return t, false, nil
}

// Verify returns the task for inspection. It is read-only and valid
// only while the task is in_progress; otherwise it fails with
// ErrInvalidState and guidance on how to proceed.
func (s *Service) Verify(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	switch t.Status {
	case models.TaskStatusInProgress:
		return t, nil
	case models.TaskStatusPending:
		return nil, fmt.Errorf("%w: task %s is pending; execute it before verifying", ErrInvalidState, id)
	case models.TaskStatusCompleted:
		return nil, fmt.Errorf("%w: task %s is already completed", ErrInvalidState, id)
	case models.TaskStatusCancelled:
		return nil, fmt.Errorf("%w: task %s is cancelled", ErrInvalidState, id)
	}
	return nil, fmt.Errorf("%w: task %s has unknown status %q", ErrInvalidState, id, t.Status)
}

// SetStatus is the unconditional escape hatch for manual correction
// (e.g. un-cancelling). It validates the status value but applies no
// transition guard.
func (s *Service) SetStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.store.UpdateTask(ctx, id, store.TaskUpdate{Status: &status})
}
