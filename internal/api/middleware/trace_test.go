package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware_AttachesTraceIDAndLogger(t *testing.T) {
	log, handler := testutils.NewTestLogger()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handled")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	TraceMiddleware(log)(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, traceID, 32)
	entries := handler.FindByMessage("handled")
	require.Len(t, entries, 1)
	assert.Equal(t, traceID, entries[0]["request_id"])
	assert.NotEmpty(t, handler.FindByMessage("request started"))
}

func TestTraceMiddleware_ReusesChiRequestID(t *testing.T) {
	log, _ := testutils.NewTestLogger()

	var traceID, requestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		requestID = chimw.GetReqID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	chimw.RequestID(TraceMiddleware(log)(next)).ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, traceID)
}
