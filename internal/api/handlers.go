package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/dynalayout/pkg/buildinfo"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout. When Options.Formats is
// set, the response also carries rendered snapshots.
type LayoutRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	RunID     string            `json:"run_id"`
	Cached    bool              `json:"cached"`
	Layout    graph.Layout      `json:"layout"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// DiscretiseRequest is the body of POST /v1/discretise.
type DiscretiseRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// DiscretiseResponse is the body of a successful POST /v1/discretise.
type DiscretiseResponse struct {
	RunID  string      `json:"run_id"`
	Cached bool        `json:"cached"`
	Graph  graph.Graph `json:"graph"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Layout  graph.Layout     `json:"layout"`
	Options pipeline.Options `json:"options"`
}

// RenderResponse is the body of a successful POST /v1/render. Artifacts
// are keyed by format; every supported format is text.
type RenderResponse struct {
	RunID     string            `json:"run_id"`
	Cached    bool              `json:"cached"`
	Artifacts map[string]string `json:"artifacts"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := graph.ToDyGraph(req.Graph)
	if err != nil {
		s.respondError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed graph"))
		return
	}

	runID := uuid.NewString()
	resp := LayoutResponse{RunID: runID}
	if len(req.Options.Formats) > 0 {
		res, err := s.runner.Execute(r.Context(), g, req.Options)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp.Layout = res.Layout
		resp.Cached = res.CacheInfo.LayoutHit
		resp.Artifacts = textArtifacts(res.Artifacts)
	} else {
		layout, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), g, req.Options)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp.Layout, resp.Cached = layout, hit
	}
	resp.Layout.RunID = runID

	w.Header().Set("X-Run-ID", runID)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiscretise(w http.ResponseWriter, r *http.Request) {
	var req DiscretiseRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := graph.ToDyGraph(req.Graph)
	if err != nil {
		s.respondError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed graph"))
		return
	}

	sliced, hit, err := s.runner.DiscretiseWithCacheInfo(r.Context(), g, req.Options)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	runID := uuid.NewString()
	w.Header().Set("X-Run-ID", runID)
	s.respondJSON(w, http.StatusOK, DiscretiseResponse{
		RunID:  runID,
		Cached: hit,
		Graph:  graph.FromDyGraph(sliced),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := pipeline.LayoutGraph(req.Layout); err != nil {
		s.respondError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed layout"))
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), req.Layout, req.Options)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	runID := uuid.NewString()
	w.Header().Set("X-Run-ID", runID)
	s.respondJSON(w, http.StatusOK, RenderResponse{
		RunID:     runID,
		Cached:    hit,
		Artifacts: textArtifacts(artifacts),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a JSON body strictly: unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func textArtifacts(in map[string][]byte) map[string]string {
	out := make(map[string]string, len(in))
	for format, data := range in {
		out[format] = string(data)
	}
	return out
}

// statusFor maps an error to its HTTP status. Input errors are the
// client's fault; everything without a code is an internal failure.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch errs.ClassOf(err) {
	case errs.ClassInput, errs.ClassConflict:
		return http.StatusBadRequest
	case errs.ClassNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		Error:     err.Error(),
		Code:      string(errs.GetCode(err)),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", resp.RequestID)
		resp.Error = http.StatusText(status)
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
