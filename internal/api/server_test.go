package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evepupil/onaho-crawler/internal/crawler"
	"github.com/evepupil/onaho-crawler/internal/task"
)

func newTestServer(t *testing.T) (*Server, *task.Store) {
	t.Helper()
	store, err := task.NewStore(filepath.Join(t.TempDir(), "tasks.json"), zap.NewNop())
	require.NoError(t, err)
	return NewServer(store, zap.NewNop()), store
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestListTasksEndpoint(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	require.NoError(t, store.Add(crawler.Task{
		ID:        "t1",
		Name:      "demo",
		StartURL:  "https://example.com",
		Status:    crawler.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Add(crawler.Task{
		ID:        "t2",
		Name:      "done",
		StartURL:  "https://example.com",
		Status:    crawler.TaskStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary task.Summary     `json:"summary"`
		Tasks   []map[string]any `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Summary.Total)
	require.Equal(t, 1, body.Summary.Pending)
	require.Len(t, body.Tasks, 2)
	require.Equal(t, "t1", body.Tasks[0]["task_id"])
}

func TestGetTaskEndpoint(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	require.NoError(t, store.Add(crawler.Task{
		ID:       "t1",
		Name:     "demo",
		StartURL: "https://example.com",
		Status:   crawler.TaskStatusPending,
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/t1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "demo", body["name"])
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
