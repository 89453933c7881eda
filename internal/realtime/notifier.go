package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MessageTypeNotification is the frame type used for notification pushes.
const MessageTypeNotification = "notification"

// ErrHubClosed is returned when sending through a hub that has been closed.
var ErrHubClosed = errors.New("realtime hub closed")

// ErrSessionBackpressure is returned when at least one live session could
// not accept the message because its send buffer was full.
var ErrSessionBackpressure = errors.New("session send buffer full")

// Notifier delivers a message to all live sessions of a user.
type Notifier interface {
	// SendNotification enqueues message for every live session of ownerID.
	// A user with no live sessions is not an error.
	SendNotification(ctx context.Context, ownerID uuid.UUID, message string) error
}

// Frame is the JSON payload written to websocket clients.
type Frame struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}
