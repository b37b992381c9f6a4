package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"site-checker/internal/interfaces"
	"site-checker/internal/target"
)

const maxBodyBytes = 64 << 10

type Options struct {
	RateLimit float64
	RateBurst int

	// TrustForwardedFor keys the rate limit on X-Forwarded-For. Only enable it
	// behind a proxy that overwrites the header.
	TrustForwardedFor bool

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Server exposes assessments over HTTP.
type Server struct {
	assessor interfaces.Assessor
	opts     Options
	logger   *zap.Logger
	mux      *http.ServeMux
	limiters *limiterMap
	handler  http.Handler
}

type AssessRequest struct {
	URL string `json:"url"`
}

type CompareRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(assessor interfaces.Assessor, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		assessor: assessor,
		opts:     opts,
		logger:   logger.With(zap.String("component", "server")),
		mux:      http.NewServeMux(),
		limiters: newLimiterMap(),
	}
	s.routes()
	s.handler = withRequestID(s.withLogging(s.withRateLimit(s.mux)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/assess", s.handleAssess)
	s.mux.HandleFunc("POST /api/v1/compare", s.handleCompare)
	if s.opts.Metrics != nil {
		s.mux.Handle("GET /metrics", s.opts.Metrics)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	assessment, err := s.assessor.Assess(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	comparison, err := s.assessor.Compare(r.Context(), req.First, req.Second)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, target.ErrInvalidURL) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		s.requestLogger(r).Error("internal server error",
			zap.Error(err),
			zap.Int("status", status))
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return s.logger.With(
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
