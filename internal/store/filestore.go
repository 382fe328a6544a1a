package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/revqdev/revq/internal/models"
)

// Collection names under the storage root. The layout is a
// compatibility contract: one complete JSON record per file, named by
// identifier, with no external index.
const (
	reviewsDir = "reviews"
	tasksDir   = "tasks"
)

// FileStore implements Store with one JSON file per record. Writes are
// atomic (temp file + rename) so a reader never observes a partial
// record; there is no cross-process locking, so concurrent writers to
// the same identifier are last-write-wins.
type FileStore struct {
	root string
	now  func() time.Time // injectable clock for deterministic tests
}

// NewFileStore opens (or creates) a store rooted at the given
// directory. The root is resolved by the caller once per process;
// the store never rediscovers it.
func NewFileStore(root string) (*FileStore, error) {
	for _, sub := range []string{reviewsDir, tasksDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			return nil, fmt.Errorf("create %s collection: %w", sub, err)
		}
	}
	return &FileStore{root: root, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *FileStore) recordPath(collection, id string) string {
	return filepath.Join(s.root, collection, id+".json")
}

// writeRecord marshals v and atomically replaces the record file.
func (s *FileStore) writeRecord(collection, id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}
	data = append(data, '\n')

	dir := filepath.Join(s.root, collection)
	tmp, err := os.CreateTemp(dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w: %v", id, ErrWriteFailure, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w: %v", id, ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w: %v", id, ErrWriteFailure, err)
	}
	if err := os.Rename(tmpName, s.recordPath(collection, id)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w: %v", id, ErrWriteFailure, err)
	}
	return nil
}

// readRecord loads one record file into v.
func (s *FileStore) readRecord(collection, id string, v any) error {
	data, err := os.ReadFile(s.recordPath(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w: %v", id, ErrMalformedRecord, err)
	}
	return nil
}

// listIDs returns record identifiers in a collection sorted descending
// (newest first, since identifiers embed a sortable timestamp).
func (s *FileStore) listIDs(collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, collection))
	if err != nil {
		return nil, fmt.Errorf("read %s collection: %w", collection, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// --- Reviews ---

// CreateReview assigns an identifier, stamps created_at, and persists
// the review.
func (s *FileStore) CreateReview(_ context.Context, r *models.Review) error {
	r.ID = NewID(ReviewIDPrefix)
	r.CreatedAt = s.now()
	return s.writeRecord(reviewsDir, r.ID, r)
}

// GetReview loads one review by identifier.
func (s *FileStore) GetReview(_ context.Context, id string) (*models.Review, error) {
	var r models.Review
	if err := s.readRecord(reviewsDir, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReview overwrites a stored review wholesale. The stored id and
// created_at are preserved; findings are replaced as a unit, never
// edited in place.
func (s *FileStore) UpdateReview(ctx context.Context, r *models.Review) error {
	current, err := s.GetReview(ctx, r.ID)
	if err != nil {
		return err
	}
	r.CreatedAt = current.CreatedAt
	return s.writeRecord(reviewsDir, r.ID, r)
}

// ListReviews returns reviews newest-first, up to limit
// (DefaultListLimit when limit <= 0).
func (s *FileStore) ListReviews(_ context.Context, limit int) ([]*models.Review, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	ids, err := s.listIDs(reviewsDir)
	if err != nil {
		return nil, err
	}
	reviews := make([]*models.Review, 0, min(limit, len(ids)))
	for _, id := range ids {
		var r models.Review
		if err := s.readRecord(reviewsDir, id, &r); err != nil {
			return nil, err
		}
		reviews = append(reviews, &r)
		if len(reviews) >= limit {
			break
		}
	}
	return reviews, nil
}

// --- Tasks ---

// CreateTask assigns an identifier, stamps created_at/updated_at, and
// persists the task.
func (s *FileStore) CreateTask(_ context.Context, t *models.Task) error {
	t.ID = NewID(TaskIDPrefix)
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.writeRecord(tasksDir, t.ID, t)
}

// GetTask loads one task by identifier.
func (s *FileStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.readRecord(tasksDir, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies the non-nil fields of upd over the stored task,
// refreshes updated_at, and rewrites the record. id and created_at
// are never touched.
func (s *FileStore) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*models.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.File != nil {
		t.File = *upd.File
	}
	if upd.StartLine != nil {
		t.StartLine = *upd.StartLine
	}
	if upd.EndLine != nil {
		t.EndLine = *upd.EndLine
	}
	if upd.Severity != nil {
		t.Severity = *upd.Severity
	}
	if upd.Category != nil {
		t.Category = *upd.Category
	}
	if upd.SuggestionPatchDiff != nil {
		t.SuggestionPatchDiff = *upd.SuggestionPatchDiff
	}
	if upd.CompletedAt != nil {
		completed := *upd.CompletedAt
		t.CompletedAt = &completed
	}
	if upd.VerificationNote != nil {
		t.VerificationNote = *upd.VerificationNote
	}

	t.UpdatedAt = s.now()
	if err := s.writeRecord(tasksDir, id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks newest-first, optionally filtered by status,
// up to filter.Limit (DefaultListLimit when unset). The scan stops
// once enough matches are collected, but its cost is O(files scanned),
// not O(limit), since the status filter applies after each read.
func (s *FileStore) ListTasks(_ context.Context, filter TaskFilter) ([]*models.Task, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	ids, err := s.listIDs(tasksDir)
	if err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, min(limit, len(ids)))
	for _, id := range ids {
		var t models.Task
		if err := s.readRecord(tasksDir, id, &t); err != nil {
			return nil, err
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tasks = append(tasks, &t)
		if len(tasks) >= limit {
			break
		}
	}
	return tasks, nil
}

// DeleteTask removes a task. Deleting an absent task fails with
// ErrNotFound; a second delete is not a no-op.
func (s *FileStore) DeleteTask(_ context.Context, id string) error {
	err := os.Remove(s.recordPath(tasksDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// CountTasksByStatus scans the whole task collection and returns the
// population count per status. Counts are derived on demand; nothing
// is persisted.
func (s *FileStore) CountTasksByStatus(_ context.Context) (map[models.TaskStatus]int, error) {
	ids, err := s.listIDs(tasksDir)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.TaskStatus]int)
	for _, id := range ids {
		var t models.Task
		if err := s.readRecord(tasksDir, id, &t); err != nil {
			return nil, err
		}
		counts[t.Status]++
	}
	return counts, nil
}
