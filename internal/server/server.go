package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/config"
	"github.com/ErickLaufer/Caixeiro-Viajante/internal/logging"
	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp"
	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp/genetic"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsp_solve_jobs_started_total",
		Help: "Number of solve jobs accepted.",
	})
	jobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsp_solve_jobs_completed_total",
		Help: "Number of solve jobs that finished successfully.",
	})
	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsp_solve_jobs_failed_total",
		Help: "Number of solve jobs that returned an error.",
	})
	jobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsp_solve_jobs_cancelled_total",
		Help: "Number of solve jobs cancelled by the caller.",
	})
	jobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tsp_solve_jobs_running",
		Help: "Number of solve jobs currently evolving.",
	})
)

// SolveState tracks one solve job: its status, progress, and result.
// Access is guarded by the server's mutex.
type SolveState struct {
	ID           string
	Status       string // "pending", "running", "completed", "failed", "cancelled"
	StartTime    time.Time
	EndTime      *time.Time
	Generation   int
	Generations  int
	BestDistance float64
	BestTour     tsp.Tour
	Err          string
	CancelFunc   context.CancelFunc
	LastUpdated  time.Time
}

// Server implements the HTTP API of the solver service. It manages
// solve jobs and provides endpoints to start, monitor, and cancel them.
type Server struct {
	cfg    *config.Config
	logger Logger

	jobs   map[string]*SolveState
	jobsMu sync.RWMutex // Protects the jobs map
}

// NewServer creates a new server instance with the given config and logger
func NewServer(cfg *config.Config, logger Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		jobs:   make(map[string]*SolveState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/solve/{id}", s.handleCancel)
	})
}

// solveRequest is the body of POST /api/v1/solve. The GA parameters are
// optional; absent fields fall back to the configured defaults.
type solveRequest struct {
	Cities         [][]float64 `json:"cities"`
	PopulationSize *int        `json:"population_size,omitempty"`
	Generations    *int        `json:"generations,omitempty"`
	MutationRate   *float64    `json:"mutation_rate,omitempty"`
	TournamentSize *int        `json:"tournament_size,omitempty"`
	Seed           *int64      `json:"seed,omitempty"`
}

// handleSolve handles POST /api/v1/solve. It validates the request,
// registers a job, and starts the solve in a goroutine.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cities := make([]tsp.City, len(req.Cities))
	for i, c := range req.Cities {
		if len(c) != 2 {
			s.respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("city %d: expected [x, y], got %d values", i, len(c)))
			return
		}
		cities[i] = tsp.City{X: c[0], Y: c[1]}
	}

	// Reject malformed city lists before accepting the job
	if _, err := tsp.BuildDistanceMatrix(cities); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := fmt.Sprintf("solve_%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())

	solverCfg := s.solverConfig(req)
	state := &SolveState{
		ID:           id,
		Status:       "pending",
		StartTime:    time.Now(),
		Generations:  solverCfg.Generations,
		BestDistance: math.Inf(1),
		CancelFunc:   cancel,
		LastUpdated:  time.Now(),
	}

	// Progress updates arrive from the solver goroutine once per
	// generation; they share the jobs mutex with the status endpoint.
	solverCfg.OnGeneration = func(gen int, best float64) {
		s.jobsMu.Lock()
		state.Generation = gen + 1
		state.BestDistance = best
		state.LastUpdated = time.Now()
		s.jobsMu.Unlock()
	}

	solver, err := genetic.NewGeneticSolver(solverCfg)
	if err != nil {
		cancel()
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jobsMu.Lock()
	s.jobs[id] = state
	s.jobsMu.Unlock()

	jobsStarted.Inc()
	go s.runSolve(ctx, state, solver, cities)

	s.logger.Info("Solve job accepted", map[string]interface{}{
		"job_id":      id,
		"cities":      len(cities),
		"generations": solverCfg.Generations,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": id,
		"status": "pending",
	})
}

// solverConfig merges the request overrides onto the configured defaults.
func (s *Server) solverConfig(req solveRequest) tsp.SolverConfig {
	cfg := tsp.SolverConfig{
		PopulationSize: s.cfg.Solver.PopulationSize,
		Generations:    s.cfg.Solver.Generations,
		MutationRate:   s.cfg.Solver.MutationRate,
		TournamentSize: s.cfg.Solver.TournamentSize,
	}
	if req.PopulationSize != nil {
		cfg.PopulationSize = *req.PopulationSize
	}
	if req.Generations != nil {
		cfg.Generations = *req.Generations
	}
	if req.MutationRate != nil {
		cfg.MutationRate = *req.MutationRate
	}
	if req.TournamentSize != nil {
		cfg.TournamentSize = *req.TournamentSize
	}
	if req.Seed != nil {
		cfg.RandomSeed = *req.Seed
	}
	return cfg
}

// runSolve executes the solve in a goroutine and records the outcome.
func (s *Server) runSolve(ctx context.Context, state *SolveState, solver tsp.Solver, cities []tsp.City) {
	s.jobsMu.Lock()
	state.Status = "running"
	s.jobsMu.Unlock()

	jobsRunning.Inc()
	result, err := solver.Solve(ctx, cities)
	jobsRunning.Dec()

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	switch {
	case ctx.Err() != nil && state.Status == "cancelled":
		// Cancellation was recorded by handleCancel; keep any best
		// solution the solver had found before stopping.
		if best := solver.BestSolution(); best != nil {
			state.BestTour = best.Tour
			state.BestDistance = best.Distance
		}
	case err != nil:
		s.logger.Error("Solve job failed", map[string]interface{}{
			"job_id": state.ID,
			"error":  err.Error(),
		})
		state.Status = "failed"
		state.Err = err.Error()
		jobsFailed.Inc()
	default:
		state.Status = "completed"
		state.BestTour = result.BestSolution.Tour
		state.BestDistance = result.BestSolution.Distance
		state.Generation = result.Generations
		jobsCompleted.Inc()
		s.logger.Info("Solve job completed", map[string]interface{}{
			"job_id":        state.ID,
			"best_distance": state.BestDistance,
			"evaluations":   result.Evaluations,
		})
	}
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondWithError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	state, exists := s.jobs[id]
	if !exists {
		s.respondWithError(w, http.StatusNotFound, "job not found")
		return
	}

	response := map[string]interface{}{
		"job_id":      state.ID,
		"status":      state.Status,
		"generation":  state.Generation,
		"generations": state.Generations,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.BestTour != nil {
		response["best_tour"] = state.BestTour
		response["best_distance"] = state.BestDistance
	} else if !math.IsInf(state.BestDistance, 1) {
		response["best_distance"] = state.BestDistance
	}
	if state.Err != "" {
		response["error"] = state.Err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleCancel handles DELETE /api/v1/solve/{id}. Cancellation is
// cooperative: the solver stops at the next generation boundary.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondWithError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	state, exists := s.jobs[id]
	if !exists {
		s.respondWithError(w, http.StatusNotFound, "job not found")
		return
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		s.respondWithError(w, http.StatusConflict,
			fmt.Sprintf("cannot cancel job with status: %s", state.Status))
		return
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}

	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now
	jobsCancelled.Inc()

	s.logger.Info("Solve job cancelled", map[string]interface{}{
		"job_id": id,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "cancellation requested",
	})
}

// respondWithError sends a JSON error response.
func (s *Server) respondWithError(w http.ResponseWriter, status int, message string) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  status,
		"message": message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": message,
	})
}

// Close cancels all running jobs.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.CancelFunc != nil {
			job.CancelFunc()
		}
	}
	return nil
}
