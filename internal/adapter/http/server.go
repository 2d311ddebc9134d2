// Package http exposes the prediction API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
	"github.com/couchcryptid/cyclone-inference-service/internal/observability"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Predictor runs one inference over a validated feature vector.
type Predictor interface {
	Predict(ctx context.Context, features domain.FeatureVector) (domain.Prediction, error)
}

// ModelDescriber reports metadata about the loaded classifier.
type ModelDescriber interface {
	Describe() (domain.ModelInfo, error)
}

// RecordStore persists prediction records and serves the recent history.
type RecordStore interface {
	SavePrediction(ctx context.Context, rec domain.PredictionRecord) error
	RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}

// Publisher forwards prediction records to downstream consumers.
type Publisher interface {
	PublishRecord(ctx context.Context, rec domain.PredictionRecord) error
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the prediction API over HTTP.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	models     ModelDescriber
	store      RecordStore
	publisher  Publisher
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires the API routes. publisher may be nil when no Kafka sink is
// configured; records are then only persisted locally.
func NewServer(
	addr string,
	predictor Predictor,
	models ModelDescriber,
	store RecordStore,
	publisher Publisher,
	ready ReadinessChecker,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		models:    models,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)
	mux.HandleFunc("GET /api/v1/predictions", s.handleListPredictions)
	mux.HandleFunc("GET /api/v1/model", s.handleModel)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// predictRequest mirrors FeatureVector with pointer fields so missing keys can
// be told apart from zero values.
type predictRequest struct {
	SeaSurfaceTemp *float64 `json:"sea_surface_temp"`
	Pressure       *float64 `json:"pressure"`
	Humidity       *float64 `json:"humidity"`
	WindShear      *float64 `json:"wind_shear"`
	Vorticity      *float64 `json:"vorticity"`
	Latitude       *float64 `json:"latitude"`
	OceanDepth     *float64 `json:"ocean_depth"`
	Proximity      *float64 `json:"proximity"`
	Disturbance    *float64 `json:"disturbance"`
}

func (r predictRequest) toFeatureVector() (domain.FeatureVector, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"sea_surface_temp", r.SeaSurfaceTemp},
		{"pressure", r.Pressure},
		{"humidity", r.Humidity},
		{"wind_shear", r.WindShear},
		{"vorticity", r.Vorticity},
		{"latitude", r.Latitude},
		{"ocean_depth", r.OceanDepth},
		{"proximity", r.Proximity},
		{"disturbance", r.Disturbance},
	}
	for _, f := range fields {
		if f.value == nil {
			return domain.FeatureVector{}, fmt.Errorf("missing field %s", f.name)
		}
	}
	return domain.FeatureVector{
		SeaSurfaceTemp: *r.SeaSurfaceTemp,
		Pressure:       *r.Pressure,
		Humidity:       *r.Humidity,
		WindShear:      *r.WindShear,
		Vorticity:      *r.Vorticity,
		Latitude:       *r.Latitude,
		OceanDepth:     *r.OceanDepth,
		Proximity:      *r.Proximity,
		Disturbance:    *r.Disturbance,
	}, nil
}

type predictResponse struct {
	Prediction  int      `json:"prediction"`
	Label       string   `json:"label"`
	Probability *float64 `json:"probability"`
	LatencyMS   float64  `json:"latency_ms"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req predictRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	features, err := req.toFeatureVector()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := features.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	prediction, err := s.predictor.Predict(r.Context(), features)
	if err != nil {
		s.writePredictError(w, err)
		return
	}
	latency := time.Since(start)

	rec := domain.NewPredictionRecord(uuid.NewString(), features, prediction)
	if err := s.store.SavePrediction(r.Context(), rec); err != nil {
		s.logger.Warn("failed to persist prediction", "id", rec.ID, "error", err)
		s.metrics.StoreErrors.Inc()
	} else {
		s.metrics.RecordsStored.Inc()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecord(r.Context(), rec); err != nil {
			s.logger.Warn("failed to publish prediction", "id", rec.ID, "error", err)
			s.metrics.PublishErrors.Inc()
		} else {
			s.metrics.RecordsPublished.Inc()
		}
	}

	latencyMS := float64(latency.Microseconds()) / 1000.0
	s.logger.Info("prediction served", "id", rec.ID, "label", rec.Label, "latency_ms", latencyMS)

	writeJSON(w, http.StatusOK, predictResponse{
		Prediction:  prediction.Class,
		Label:       prediction.Label(),
		Probability: prediction.Probability,
		LatencyMS:   latencyMS,
	})
}

// writePredictError maps prediction failures onto status codes: a missing or
// unloadable model means the service is not usable (503), a model that loaded
// but failed to score a row is an internal fault (500).
func (s *Server) writePredictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrModelNotFound), errors.Is(err, model.ErrModelLoad):
		s.logger.Error("model unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	records, err := s.store.RecentPredictions(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list predictions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": records,
		"count":       len(records),
	})
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	info, err := s.models.Describe()
	if err != nil {
		s.logger.Error("model unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
