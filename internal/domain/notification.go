package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID      = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationOwnerID = errors.New("notification owner ID cannot be empty")
	ErrEmptyNotificationMessage = errors.New("notification message cannot be empty")
)

// Notification is the durable record of an alert shown to a user.
// It carries a snapshot of the text rather than a reference to the task it
// was raised for.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedMessage renders the notification text for a newly created task.
func TaskCreatedMessage(title string) string {
	return fmt.Sprintf("New task created: %s", title)
}

// NewNotification creates a Notification for the given owner.
func NewNotification(ownerID uuid.UUID, message string, now time.Time) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Message:   message,
		CreatedAt: now.UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}
	if n.OwnerID == uuid.Nil {
		return ErrEmptyNotificationOwnerID
	}
	if strings.TrimSpace(n.Message) == "" {
		return ErrEmptyNotificationMessage
	}
	return nil
}
