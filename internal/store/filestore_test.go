package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revqdev/revq/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewFileStore_CreatesCollections(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewFileStore(root)
	require.NoError(t, err)

	for _, sub := range []string{"reviews", "tasks"} {
		info, err := os.Stat(filepath.Join(root, sub))
		require.NoError(t, err, "collection dir should exist")
		assert.True(t, info.IsDir())
	}
}

// --- Review CRUD ---

func TestReviewCreateRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &models.Review{
		Target:  models.ReviewTarget{Base: "main", Head: "feat-x"},
		Summary: "Looks mostly fine",
		Risk:    models.RiskMedium,
		Findings: []models.Finding{
			{Severity: models.LabelRequired, Title: "Check error", Detail: "err is dropped"},
		},
	}
	require.NoError(t, s.CreateReview(ctx, r))
	assert.NotEmpty(t, r.ID)
	assert.True(t, HasPrefix(r.ID, ReviewIDPrefix))
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Target, got.Target)
	assert.Equal(t, r.Summary, got.Summary)
	assert.Equal(t, r.Risk, got.Risk)
	assert.Equal(t, r.Findings, got.Findings)
	assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
}

func TestReviewPersistedLayout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	r := &models.Review{
		Target:  models.ReviewTarget{Base: "a", Head: "b"},
		Summary: "s",
	}
	require.NoError(t, s.CreateReview(ctx, r))

	// One self-describing JSON file per record, named by identifier.
	data, err := os.ReadFile(filepath.Join(root, "reviews", r.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id"`)
	assert.Contains(t, string(data), `"created_at"`)
	assert.Contains(t, string(data), `"target"`)
}

func TestReviewUpdate_PreservesIdentityFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &models.Review{Target: models.ReviewTarget{Base: "a", Head: "b"}, Summary: "v1"}
	require.NoError(t, s.CreateReview(ctx, r))
	createdAt := r.CreatedAt

	updated := &models.Review{
		ID:      r.ID,
		Target:  r.Target,
		Summary: "v2",
		Findings: []models.Finding{
			{Severity: models.LabelNit, Title: "typo", Detail: "spelling"},
		},
	}
	require.NoError(t, s.UpdateReview(ctx, updated))

	got, err := s.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Summary)
	assert.Len(t, got.Findings, 1)
	assert.True(t, createdAt.Equal(got.CreatedAt), "created_at must survive overwrite")
}

func TestReviewUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateReview(context.Background(), &models.Review{ID: "rev-missing", Summary: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReview_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetReview(context.Background(), "rev-nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReviews_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		r := &models.Review{Target: models.ReviewTarget{Base: "a", Head: "b"}, Summary: "s"}
		require.NoError(t, s.CreateReview(ctx, r))
		ids = append(ids, r.ID)
		time.Sleep(2 * time.Millisecond) // distinct ULID timestamps
	}

	reviews, err := s.ListReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, ids[2], reviews[0].ID)
	assert.Equal(t, ids[1], reviews[1].ID)
	assert.Equal(t, ids[0], reviews[2].ID)
}

// --- Task CRUD ---

func TestTaskCreateRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{
		Status:      models.TaskStatusPending,
		Title:       "Fix the thing",
		Description: "Details here",
		Severity:    models.LabelRequired,
		Category:    models.DimensionCorrectness,
		File:        "internal/foo.go",
		StartLine:   10,
		EndLine:     20,
	}
	require.NoError(t, s.CreateTask(ctx, task))
	assert.True(t, HasPrefix(task.ID, TaskIDPrefix))
	assert.False(t, task.CreatedAt.IsZero())
	assert.False(t, task.UpdatedAt.IsZero())

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Description, got.Description)
	assert.Equal(t, task.Severity, got.Severity)
	assert.Equal(t, task.Category, got.Category)
	assert.Equal(t, task.StartLine, got.StartLine)
	assert.Equal(t, task.EndLine, got.EndLine)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateTask_ShallowMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{
		Status:   models.TaskStatusPending,
		Title:    "original",
		Severity: models.LabelSuggestion,
	}
	require.NoError(t, s.CreateTask(ctx, task))
	createdAt := task.CreatedAt
	firstUpdatedAt := task.UpdatedAt

	status := models.TaskStatusInProgress
	got, err := s.UpdateTask(ctx, task.ID, TaskUpdate{Status: &status})
	require.NoError(t, err)

	// Only the supplied field changed; updated_at refreshed.
	assert.Equal(t, models.TaskStatusInProgress, got.Status)
	assert.Equal(t, "original", got.Title)
	assert.Equal(t, models.LabelSuggestion, got.Severity)
	assert.True(t, createdAt.Equal(got.CreatedAt), "created_at is immutable")
	assert.True(t, got.UpdatedAt.After(firstUpdatedAt), "updated_at must advance on every update")

	// And the change is durable.
	reread, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, reread.Status)
}

func TestUpdateTask_RefreshesUpdatedAtWithoutFieldChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{Status: models.TaskStatusPending, Title: "t", Severity: models.LabelNit}
	require.NoError(t, s.CreateTask(ctx, task))
	before := task.UpdatedAt

	got, err := s.UpdateTask(ctx, task.ID, TaskUpdate{})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(before))
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateTask(context.Background(), "task-missing", TaskUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{Status: models.TaskStatusPending, Title: "t", Severity: models.LabelNit}
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	_, err := s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Second delete is not idempotent.
	err = s.DeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasks_StatusFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Status: models.TaskStatusPending, Title: "p", Severity: models.LabelNit,
		}))
	}
	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Status: models.TaskStatusCompleted, Title: "c", Severity: models.LabelNit,
	}))

	list, err := s.ListTasks(ctx, TaskFilter{Status: models.TaskStatusPending, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, task := range list {
		assert.Equal(t, models.TaskStatusPending, task.Status)
	}

	all, err := s.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListTasks_DefaultLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < DefaultListLimit+5; i++ {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Status: models.TaskStatusPending, Title: "t", Severity: models.LabelNit,
		}))
	}

	list, err := s.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, DefaultListLimit)
}

func TestListTasks_ScanAllNeverTruncates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total := DefaultListLimit + 5
	for i := 0; i < total; i++ {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Status: models.TaskStatusPending, Title: "t", Severity: models.LabelNit,
		}))
	}

	list, err := s.ListTasks(ctx, TaskFilter{Limit: ScanAll})
	require.NoError(t, err)
	assert.Len(t, list, total)
}

func TestListReviews_ScanAllNeverTruncates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total := DefaultListLimit + 5
	for i := 0; i < total; i++ {
		require.NoError(t, s.CreateReview(ctx, &models.Review{
			Target: models.ReviewTarget{Base: "a", Head: "b"}, Summary: "s",
		}))
	}

	reviews, err := s.ListReviews(ctx, ScanAll)
	require.NoError(t, err)
	assert.Len(t, reviews, total)
}

// --- Malformed records ---

func TestGetTask_MalformedRecord(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	path := filepath.Join(root, "tasks", "task-corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err = s.GetTask(context.Background(), "task-corrupt")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestListTasks_MalformedRecordFailsScan(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Status: models.TaskStatusPending, Title: "ok", Severity: models.LabelNit,
	}))
	path := filepath.Join(root, "tasks", "task-corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	// A corrupt file must fail the scan visibly, never be skipped.
	_, err = s.ListTasks(ctx, TaskFilter{})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestCountTasksByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, status := range []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
	} {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Status: status, Title: "t", Severity: models.LabelNit,
		}))
	}

	counts, err := s.CountTasksByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.TaskStatusPending])
	assert.Equal(t, 1, counts[models.TaskStatusInProgress])
	assert.Equal(t, 1, counts[models.TaskStatusCompleted])
	assert.Equal(t, 0, counts[models.TaskStatusCancelled])
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, s.CreateTask(context.Background(), &models.Task{
		Status: models.TaskStatusPending, Title: "t", Severity: models.LabelNit,
	}))

	entries, err := os.ReadDir(filepath.Join(root, "tasks"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, filepath.Ext(entries[0].Name()) == ".json")
}

func TestWriteFailure_WrappedAndNoPartialWrite(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	task := &models.Task{Status: models.TaskStatusPending, Title: "keep", Severity: models.LabelNit}
	require.NoError(t, s.CreateTask(ctx, task))

	tasksPath := filepath.Join(root, "tasks")
	require.NoError(t, os.Chmod(tasksPath, 0555))
	t.Cleanup(func() { _ = os.Chmod(tasksPath, 0755) })

	err = s.CreateTask(ctx, &models.Task{
		Status: models.TaskStatusPending, Title: "rejected", Severity: models.LabelNit,
	})
	assert.ErrorIs(t, err, ErrWriteFailure)

	title := "renamed"
	_, err = s.UpdateTask(ctx, task.ID, TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrWriteFailure)

	// The stored record survives untouched and nothing new appeared,
	// not even a temp file.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Title)

	entries, err := os.ReadDir(tasksPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, task.ID+".json", entries[0].Name())
}

func TestErrorsAreDistinguishable(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrMalformedRecord))
	assert.False(t, errors.Is(ErrWriteFailure, ErrNotFound))
}
