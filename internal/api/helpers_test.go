package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/background"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/testutils"
	"github.com/stretchr/testify/require"
)

// testAPI wires the handlers to real services over in-memory collaborators.
type testAPI struct {
	router     http.Handler
	store      *testutils.MemoryStore
	cache      *testutils.RecordingCache
	hub        *realtime.Hub
	dispatcher *background.Dispatcher
	logs       *testutils.TestSlogHandler
}

// tokenFor is the opaque token the test JWT service issues for a user.
func tokenFor(userID uuid.UUID) string {
	return "token-" + userID.String()
}

// roundTripJWT issues tokenFor(userID) and accepts only tokens of that shape.
func roundTripJWT() *auth.MockJWTService {
	return &auth.MockJWTService{
		GenerateTokenFunc: func(_ context.Context, userID uuid.UUID) (string, error) {
			return tokenFor(userID), nil
		},
		ValidateTokenFunc: func(_ context.Context, token string) (*auth.Claims, error) {
			id, err := uuid.Parse(strings.TrimPrefix(token, "token-"))
			if err != nil || !strings.HasPrefix(token, "token-") {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: id, TokenType: "access"}, nil
		},
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, logs := testutils.NewTestLogger()
	a := &testAPI{
		store:      testutils.NewMemoryStore(),
		cache:      testutils.NewRecordingCache(),
		hub:        realtime.NewHub(realtime.HubConfig{SendBuffer: 4, WriteTimeout: time.Second, PingInterval: time.Minute}, log),
		dispatcher: background.New(background.Config{MaxInFlight: 8, JobTimeout: time.Second}, log),
		logs:       logs,
	}
	t.Cleanup(a.hub.Close)

	tasks, err := service.NewTaskService(service.TaskServiceDeps{
		Transactor:    a.store,
		Tasks:         a.store.Tasks(),
		Notifications: a.store.Notifications(),
		Cache:         a.cache,
		Notifier:      a.hub,
		Dispatcher:    a.dispatcher,
		ListingTTL:    time.Minute,
		Logger:        log,
	})
	require.NoError(t, err)
	users := service.NewUserService(a.store.Users(), auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), a.cache, time.Minute, log)

	jwtService := roundTripJWT()
	authMW := middleware.NewAuthMiddleware(jwtService)
	authHandler := NewAuthHandler(users, jwtService, log)
	userHandler := NewUserHandler(users)
	taskHandler := NewTaskHandler(tasks, log)
	notificationHandler := NewNotificationHandler(tasks, a.hub, log)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/me", userHandler.GetMe)
			r.Get("/users", userHandler.ListUsers)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/notifications", notificationHandler.ListNotifications)
		})
	})
	r.With(authMW.Authenticate).Get("/ws/notifications", notificationHandler.Connect)
	a.router = r

	return a
}

// do sends a request, waits for background jobs and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	a.dispatcher.Wait()
	return rec
}

// register creates an account and returns its auth response.
func (a *testAPI) register(t *testing.T, email string) AuthResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
		FullName: "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
