package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/config"
	"github.com/ErickLaufer/Caixeiro-Viajante/internal/logging"
)

// testConfig creates a test configuration with default values
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
	}

	cfg.HTTP.Port = 8080
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 120 * time.Second
	cfg.HTTP.ShutdownTimeout = 30 * time.Second

	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "stdout"

	cfg.Solver.PopulationSize = 20
	cfg.Solver.Generations = 50
	cfg.Solver.MutationRate = 0.05
	cfg.Solver.TournamentSize = 3

	return cfg
}

// testLogger creates a test logger
func testLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.NewLogger(&logging.Config{
		Level:  "error",
		Format: "json",
		Output: "stdout",
	})
	require.NoError(t, err)
	return logger
}

func testRouter(t *testing.T) (*Server, *chi.Mux) {
	t.Helper()

	srv := NewServer(testConfig(t), testLogger(t))
	t.Cleanup(func() { _ = srv.Close() })

	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return srv, r
}

func postSolve(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewServer(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	assert.NotNil(t, srv)
}

func TestHandleSolveAccepted(t *testing.T) {
	_, r := testRouter(t)

	w := postSolve(t, r, `{"cities": [[0,0],[0,1],[1,1],[1,0]], "seed": 42}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["job_id"])
	assert.Equal(t, "pending", resp["status"])
}

func TestHandleSolveRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed JSON",
			body: `{"cities": [[0,0`,
		},
		{
			name: "empty city list",
			body: `{"cities": []}`,
		},
		{
			name: "city with wrong arity",
			body: `{"cities": [[0,0],[1]]}`,
		},
		{
			name: "odd population size",
			body: `{"cities": [[0,0],[1,1]], "population_size": 21}`,
		},
		{
			name: "mutation rate out of range",
			body: `{"cities": [[0,0],[1,1]], "mutation_rate": 1.5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := testRouter(t)
			w := postSolve(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSolveJobLifecycle(t *testing.T) {
	_, r := testRouter(t)

	w := postSolve(t, r, `{"cities": [[0,0],[0,1],[1,1],[1,0]], "generations": 100, "seed": 42}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	var status map[string]interface{}
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/status/%s", accepted.JobID), nil)
		sw := httptest.NewRecorder()
		r.ServeHTTP(sw, req)
		if sw.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(sw.Body.Bytes(), &status); err != nil {
			return false
		}
		return status["status"] == "completed"
	}, 10*time.Second, 10*time.Millisecond, "job did not complete")

	tour, ok := status["best_tour"].([]interface{})
	require.True(t, ok, "completed status must carry the best tour")
	assert.Len(t, tour, 4)
	assert.LessOrEqual(t, status["best_distance"].(float64), 4.01)
}

func TestHandleStatusNotFound(t *testing.T) {
	_, r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleCancel(t *testing.T) {
	_, r := testRouter(t)

	// A long run so the cancel lands while the job is still evolving
	w := postSolve(t, r, `{"cities": [[0,0],[0,1],[1,1],[1,0],[2,0],[2,2]], "generations": 10000000, "seed": 1}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/solve/%s", accepted.JobID), nil)
	cw := httptest.NewRecorder()
	r.ServeHTTP(cw, req)
	require.Equal(t, http.StatusOK, cw.Code)

	// A second cancel hits a terminal state
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/solve/%s", accepted.JobID), nil)
	cw = httptest.NewRecorder()
	r.ServeHTTP(cw, req)
	assert.Equal(t, http.StatusConflict, cw.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/status/%s", accepted.JobID), nil)
	sw := httptest.NewRecorder()
	r.ServeHTTP(sw, req)
	require.Equal(t, http.StatusOK, sw.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(sw.Body.Bytes(), &status))
	assert.Equal(t, "cancelled", status["status"])
}

func TestHandleCancelNotFound(t *testing.T) {
	_, r := testRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/solve/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
