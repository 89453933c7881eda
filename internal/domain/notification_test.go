package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCreatedMessage(t *testing.T) {
	msg := TaskCreatedMessage("Write the design doc")
	assert.Contains(t, msg, "Write the design doc")
	assert.Equal(t, "New task created: Write the design doc", msg)
}

func TestNewNotification(t *testing.T) {
	ownerID := uuid.New()
	now := time.Now()

	n, err := NewNotification(ownerID, "hello", now)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, ownerID, n.OwnerID)
	assert.Equal(t, "hello", n.Message)
	assert.Equal(t, now.UTC(), n.CreatedAt)

	_, err = NewNotification(uuid.Nil, "hello", now)
	assert.ErrorIs(t, err, ErrEmptyNotificationOwnerID)

	_, err = NewNotification(ownerID, "   ", now)
	assert.ErrorIs(t, err, ErrEmptyNotificationMessage)
}
