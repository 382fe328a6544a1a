package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revqdev/revq/internal/models"
)

func TestStats_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
}

func TestStats_CountsByStatus(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	createTask(t, s, models.TaskStatusPending)
	createTask(t, s, models.TaskStatusPending)
	createTask(t, s, models.TaskStatusInProgress)
	createTask(t, s, models.TaskStatusCompleted)
	createTask(t, s, models.TaskStatusCancelled)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 1, st.InProgress)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Cancelled)
}

func TestStats_RecomputedOnDemand(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	task := createTask(t, s, models.TaskStatusPending)
	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Pending)

	_, _, err = svc.Execute(ctx, task.ID)
	require.NoError(t, err)

	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Pending)
	assert.Equal(t, 1, st.InProgress)
}
