// Package api serves the scoring engine over HTTP.
// GET endpoints are read-only observation; POST endpoints run the
// extractor, metric calculator, or simulator and persist the result.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/talgya/ljpw-field/internal/config"
	"github.com/talgya/ljpw-field/internal/coord"
	"github.com/talgya/ljpw-field/internal/dynamics"
	"github.com/talgya/ljpw-field/internal/extract"
	"github.com/talgya/ljpw-field/internal/metrics"
	"github.com/talgya/ljpw-field/internal/persistence"
)

// Simulation requests past this many steps are refused outright;
// cooperative cancellation can't help a caller who asked for a
// billion-step run in a request handler.
const maxRequestSteps = 1_000_000

// Server serves the engine over HTTP.
type Server struct {
	Profile *config.Profile
	DB      *persistence.DB // nil disables persistence endpoints
	Port    int
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	simLimiter := NewRateLimiter(60, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/constants", s.handleConstants)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/simulate", RateLimitMiddleware(simLimiter, s.handleSimulate))
		r.Get("/analyses", s.handleAnalyses)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRunDetail)
	})
	return r
}

// ListenAndServe blocks serving the API on the configured port.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "profile", s.Profile.Name, "persistence", s.DB != nil)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "profile": s.Profile.Name})
}

func (s *Server) handleConstants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"phi":                     coord.Phi,
		"anchor":                  coord.Anchor,
		"equilibrium":             coord.Equilibrium,
		"consciousness_threshold": coord.ConsciousnessThreshold,
		"profile":                 s.Profile,
	})
}

type analyzeRequest struct {
	Text    string                           `json:"text,omitempty"`
	Proxies map[string][]extract.Observation `json:"proxies,omitempty"`
	Quantum bool                             `json:"quantum,omitempty"`
}

type analyzeResponse struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	Coordinate coord.Coordinate `json:"coordinate"`
	Metrics    metrics.Summary  `json:"metrics"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Text == "" && len(req.Proxies) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("either text or proxies is required"))
		return
	}

	var (
		c      coord.Coordinate
		source string
	)
	if req.Text != "" {
		mode := coord.ModeClassical
		if req.Quantum {
			mode = coord.ModeQuantum
		}
		c = extract.FromText(s.Profile, req.Text, mode)
		source = "text"
	} else {
		set := make(extract.ProxySet, len(req.Proxies))
		for name, obs := range req.Proxies {
			a, err := coord.ParseAxis(name)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			set[a] = obs
		}
		var err error
		c, err = extract.FromProxies(set)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		source = "proxies"
	}

	sum, err := metrics.Summarize(c)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := uuid.NewString()
	if s.DB != nil {
		if err := s.DB.SaveAnalysis(id, source, c, sum); err != nil {
			slog.Error("save analysis failed", "id", id, "error", err)
		}
	}

	writeJSON(w, analyzeResponse{ID: id, Source: source, Coordinate: c, Metrics: sum})
}

type simulateRequest struct {
	Initial        coord.Coordinate `json:"initial"`
	Duration       float64          `json:"duration"`
	Step           float64          `json:"step"`
	Bounded        *bool            `json:"bounded,omitempty"` // default true
	Quantum        bool             `json:"quantum,omitempty"`
	NoiseAmplitude float64          `json:"noise_amplitude,omitempty"`
	NoiseSeed      int64            `json:"noise_seed,omitempty"`
	IncludeSamples bool             `json:"include_samples,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	bounded := true
	if req.Bounded != nil {
		bounded = *req.Bounded
	}
	mode := coord.ModeClassical
	if req.Quantum {
		mode = coord.ModeQuantum
	}

	opts := dynamics.Options{
		Duration:       req.Duration,
		Step:           req.Step,
		Bounded:        bounded,
		Mode:           mode,
		NoiseAmplitude: req.NoiseAmplitude,
		NoiseSeed:      req.NoiseSeed,
		MaxSteps:       maxRequestSteps,
	}
	if req.Step > 0 && req.Duration/req.Step > maxRequestSteps {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("duration/step implies more than %d steps", maxRequestSteps))
		return
	}

	tr, err := dynamics.Simulate(r.Context(), s.Profile, req.Initial, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dynamics.ErrInvalidParameter) || errors.Is(err, coord.ErrNotFinite) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	if s.DB != nil {
		if err := s.DB.SaveRun(tr); err != nil {
			slog.Error("save run failed", "run_id", tr.RunID, "error", err)
		}
	}

	resp := map[string]any{
		"run_id":              tr.RunID,
		"initial":             tr.Initial,
		"final":               tr.Final(),
		"samples":             len(tr.Samples),
		"path_length":         tr.PathLength,
		"disharmony_integral": tr.DisharmonyIntegral,
		"struggle_ratio":      tr.StruggleRatio,
		"overflowed":          tr.Overflowed,
	}
	if req.IncludeSamples {
		resp["trajectory"] = tr.Samples
	}
	writeJSON(w, resp)
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, errors.New("persistence disabled"))
		return
	}
	list, err := s.DB.ListAnalyses(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, errors.New("persistence disabled"))
		return
	}
	list, err := s.DB.ListRuns(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, errors.New("persistence disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	summary, samples, err := s.DB.GetRun(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("run %s not found", id))
		return
	}
	writeJSON(w, map[string]any{"run": summary, "trajectory": samples})
}

func queryLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
