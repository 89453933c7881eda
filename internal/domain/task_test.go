package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	ownerID := uuid.New()
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	t.Run("defaults", func(t *testing.T) {
		task, err := NewTask(ownerID, "  Write the design doc  ", "", nil, now)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.Equal(t, "Write the design doc", task.Title)
		assert.Empty(t, task.Description)
		assert.Nil(t, task.DueDate)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.Equal(t, now.UTC(), task.CreatedAt)
		assert.Equal(t, time.UTC, task.CreatedAt.Location())
	})

	t.Run("due date in the past is accepted", func(t *testing.T) {
		due := now.Add(-48 * time.Hour)
		task, err := NewTask(ownerID, "Overdue", "already late", &due, now)
		require.NoError(t, err)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
	})

	t.Run("blank title", func(t *testing.T) {
		task, err := NewTask(ownerID, " \t\n ", "", nil, now)
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)
		assert.Nil(t, task)
	})

	t.Run("missing owner", func(t *testing.T) {
		task, err := NewTask(uuid.Nil, "title", "", nil, now)
		assert.ErrorIs(t, err, ErrEmptyTaskOwnerID)
		assert.Nil(t, task)
	})
}

func TestTaskValidate_Status(t *testing.T) {
	task := Task{ID: uuid.New(), OwnerID: uuid.New(), Title: "t", Status: "archived"}
	assert.ErrorIs(t, task.Validate(), ErrInvalidTaskStatus)

	for _, status := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusDone} {
		task.Status = status
		assert.NoError(t, task.Validate(), "status %s", status)
	}
}
