package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// SessionServer upgrades a request into a live notification session.
type SessionServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error
}

// NotificationHandler serves stored notifications and the live hub.
type NotificationHandler struct {
	tasks  service.TaskService
	hub    SessionServer
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(tasks service.TaskService, hub SessionServer, log *slog.Logger) *NotificationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationHandler{
		tasks:  tasks,
		hub:    hub,
		logger: log.With("component", "notification_handler"),
	}
}

// ListNotifications handles GET /api/notifications?page=&page_size=.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}

	page, pageSize, err := parsePagination(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tasks.ListNotifications(r.Context(), userID, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, mapPage(result, notificationToResponse))
}

// Connect handles GET /ws/notifications. It blocks for the life of the
// websocket session.
func (h *NotificationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger).With(slog.String("user_id", userID.String()))

	err := h.hub.ServeWS(w, r, userID)
	switch {
	case err == nil:
		log.Debug("notification session ended")
	case errors.Is(err, realtime.ErrHubClosed):
		log.Debug("notification session refused", slog.String("error", err.Error()))
	default:
		// The upgrader has already written the HTTP error response.
		log.Warn("notification session failed", slog.String("error", err.Error()))
	}
}
