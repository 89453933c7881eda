package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler_CreateTask(t *testing.T) {
	a := newTestAPI(t)
	owner := uuid.New()
	due := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	rec := a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{
		Title:       "Write the design doc",
		Description: "cover the tail jobs",
		DueDate:     &due,
	}, tokenFor(owner))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[CreateTaskResponse](t, rec)

	tasks := a.store.CommittedTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.Equal(t, owner, tasks[0].OwnerID)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))

	notifications := a.store.CommittedNotifications()
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "Write the design doc")

	assert.Equal(t, []uuid.UUID{owner}, a.cache.Removals())
}

func TestTaskHandler_CreateTaskRejections(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		token          bool
		expectedStatus int
	}{
		{
			name:           "no token",
			body:           CreateTaskRequest{Title: "x"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "blank title",
			body:           CreateTaskRequest{Title: "   "},
			token:          true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing title",
			body:           CreateTaskRequest{Description: "no title"},
			token:          true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "owner in body",
			body:           fmt.Sprintf(`{"title":"x","owner_id":%q}`, uuid.NewString()),
			token:          true,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAPI(t)
			token := ""
			if tc.token {
				token = tokenFor(uuid.New())
			}

			rec := a.do(t, http.MethodPost, "/api/tasks", tc.body, token)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Empty(t, a.store.CommittedTasks())
			assert.Empty(t, a.store.CommittedNotifications())
			assert.Empty(t, a.cache.Removals())
		})
	}
}

func TestTaskHandler_CreateTask_BlankTitleMessage(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: "   "}, tokenFor(uuid.New()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input: task title cannot be empty", decode[shared.ErrorResponse](t, rec).Error)
}

func TestTaskHandler_CreateTask_PersistenceFailure(t *testing.T) {
	a := newTestAPI(t)
	a.store.FailCommit = errors.New("connection reset by peer at 10.1.2.3")

	rec := a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: "doomed"}, tokenFor(uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, "Failed to save data", body.Error)
	assert.NotEmpty(t, body.TraceID)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Empty(t, a.store.CommittedTasks())
	assert.Empty(t, a.cache.Removals())
}

func TestTaskHandler_ListTasks(t *testing.T) {
	a := newTestAPI(t)
	owner := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		rec := a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: fmt.Sprintf("task %d", i)}, tokenFor(owner))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: "not mine"}, tokenFor(other))

	rec := a.do(t, http.MethodGet, "/api/tasks?page=1&page_size=2", nil, tokenFor(owner))

	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PageResponse[TaskResponse]](t, rec)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	for _, item := range page.Items {
		assert.NotEqual(t, "not mine", item.Title)
		assert.Equal(t, "pending", item.Status)
	}

	rec = a.do(t, http.MethodGet, "/api/tasks", nil, tokenFor(owner))
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[PageResponse[TaskResponse]](t, rec)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.PageSize)
	assert.Len(t, defaults.Items, 3)
}

func TestTaskHandler_ListTasks_ServedFromCacheUntilInvalidated(t *testing.T) {
	a := newTestAPI(t)
	owner := uuid.New()
	token := tokenFor(owner)

	a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: "first"}, token)
	first := decode[PageResponse[TaskResponse]](t, a.do(t, http.MethodGet, "/api/tasks", nil, token))
	assert.Equal(t, 1, first.TotalCount)
	assert.Equal(t, 1, a.cache.Sets())

	a.do(t, http.MethodPost, "/api/tasks", CreateTaskRequest{Title: "second"}, token)
	second := decode[PageResponse[TaskResponse]](t, a.do(t, http.MethodGet, "/api/tasks", nil, token))
	assert.Equal(t, 2, second.TotalCount, "creation invalidates the cached listing")
}

func TestTaskHandler_ListTasks_BadPagination(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/tasks?page=abc", nil, tokenFor(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "page must be an integer", decode[shared.ErrorResponse](t, rec).Error)
}

func TestTaskHandler_ListTasks_PageOutOfRange(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/tasks?page=922337203685477582&page_size=10", nil, tokenFor(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input: page is out of range", decode[shared.ErrorResponse](t, rec).Error)
	assert.Empty(t, a.logs.FindByMessage("failed to list tasks"))
	assert.Zero(t, a.cache.Gets())
}
