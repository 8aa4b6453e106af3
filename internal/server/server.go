// Package server exposes the sampler over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bft-labs/evalsample/internal/app"
	"github.com/bft-labs/evalsample/internal/ports"
	"github.com/bft-labs/evalsample/pkg/stratify"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// SampleRequest is the body of POST /v1/samples.
type SampleRequest struct {
	Dataset      string            `json:"dataset"`
	Split        string            `json:"split"`
	Count        int               `json:"count"`
	Seed         int64             `json:"seed"`
	SamplePrefix string            `json:"samplePrefix"`
	Records      []stratify.Record `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Defaults fill omitted request fields.
type Defaults struct {
	Dataset string
	Split   string
	Prefix  string
}

// Server routes sampling requests to the pure sampling core. Handlers share
// no mutable state.
type Server struct {
	router   chi.Router
	defaults Defaults
	logger   ports.Logger
}

// New builds the router.
func New(defaults Defaults, logger ports.Logger) *Server {
	s := &Server{router: chi.NewRouter(), defaults: defaults, logger: logger}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/samples", s.handleSample)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decode request: " + err.Error()})
		return
	}
	if req.Dataset == "" {
		req.Dataset = s.defaults.Dataset
	}
	if req.Split == "" {
		req.Split = s.defaults.Split
	}
	if req.SamplePrefix == "" {
		req.SamplePrefix = s.defaults.Prefix
	}

	doc, err := app.BuildDocument(req.Records, app.SamplerConfig{
		Dataset: req.Dataset,
		Split:   req.Split,
		Count:   req.Count,
		Seed:    req.Seed,
		Prefix:  req.SamplePrefix,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, stratify.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("sample request failed",
			ports.String("requestId", middleware.GetReqID(r.Context())),
			ports.Int("status", status),
			ports.Err(err))
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("sample served",
		ports.String("requestId", middleware.GetReqID(r.Context())),
		ports.String("sampleId", doc.SampleID),
		ports.Int("records", len(req.Records)))
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
