package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/revqdev/revq/internal/models"
)

// Sentinel errors for store operations. Callers match with errors.Is;
// wrapped messages carry the identifier or path involved.
var (
	// ErrNotFound means no record with the given identifier exists in
	// the collection.
	ErrNotFound = errors.New("record not found")

	// ErrWriteFailure means the underlying medium rejected a write.
	// The record on disk is left in its prior state.
	ErrWriteFailure = errors.New("write failure")

	// ErrMalformedRecord means a stored file exists but does not parse
	// as a valid record. Surfaced on every read, including mid-List:
	// silently skipping a corrupt file would hide data loss.
	ErrMalformedRecord = errors.New("malformed record")
)

// DefaultListLimit caps List results when the caller does not supply
// a limit.
const DefaultListLimit = 20

// ScanAll is a limit that never truncates. Lookups that must see every
// record (prefix resolution, linkage scans) pass it explicitly; user
// facing listings keep their bounded limits.
const ScanAll = math.MaxInt

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	Status models.TaskStatus // equality filter when non-empty
	Limit  int               // DefaultListLimit when <= 0
}

// TaskUpdate describes a partial task mutation. Only non-nil fields
// are applied; id and created_at are not expressible here and so can
// never be overwritten.
type TaskUpdate struct {
	Status              *models.TaskStatus
	Title               *string
	Description         *string
	File                *string
	StartLine           *int
	EndLine             *int
	Severity            *models.EvaluationLabel
	Category            *models.Dimension
	SuggestionPatchDiff *string
	CompletedAt         *time.Time
	VerificationNote    *string
}

// Store defines the persistence interface for revq. Every read goes
// back to durable storage; no in-memory state is authoritative.
// Concurrent writes to the same identifier are last-write-wins.
type Store interface {
	// Reviews
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	UpdateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, limit int) ([]*models.Review, error)

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CountTasksByStatus(ctx context.Context) (map[models.TaskStatus]int, error)
}
