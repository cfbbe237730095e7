package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/impred/pkg/config"
	"github.com/matzehuels/impred/pkg/errors"
	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/pipeline"
	"github.com/matzehuels/impred/pkg/store"
)

// layoutRequest is the body of POST /v1/layouts.
type layoutRequest struct {
	Graph      json.RawMessage `json:"graph"`
	Config     *config.Config  `json:"config,omitempty"`
	Iterations int             `json:"iterations,omitempty"`
}

// runResponse describes a stored run.
type runResponse struct {
	*store.Run
	DurationMS int64           `json:"duration_ms"`
	Layout     json.RawMessage `json:"layout,omitempty"`
}

func newRunResponse(run *store.Run, withLayout bool) runResponse {
	resp := runResponse{Run: run, DurationMS: run.Duration.Milliseconds()}
	if withLayout {
		resp.Layout = run.Layout
	}
	return resp
}

var renderContentTypes = map[string]string{
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatDOT: "text/vnd.graphviz",
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if req.Iterations < 0 {
		s.writeError(w, errors.Invalid("iterations must not be negative, got %d", req.Iterations))
		return
	}
	if len(req.Graph) == 0 {
		s.writeError(w, errors.Invalid("graph is required"))
		return
	}
	doc, err := io.ReadJSON(bytes.NewReader(req.Graph))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if n := doc.Graph.NodeCount(); n > s.maxNodes {
		s.writeError(w, errors.Invalid("graph has %d nodes (max %d)", n, s.maxNodes))
		return
	}

	if req.Config != nil && req.Config.Iterations == 0 {
		req.Config.Iterations = config.DefaultIterations
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Execute(ctx, doc, pipeline.Options{
		Config:     req.Config,
		Iterations: req.Iterations,
		Formats:    []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	run := store.NewRun()
	run.Iterations = result.Stats.Iterations
	run.NodeCount = result.Stats.NodeCount
	run.EdgeCount = result.Stats.EdgeCount
	run.Crossings = result.Stats.After.Crossings
	run.Duration = time.Since(start)
	run.CacheHit = result.CacheInfo.LayoutHit
	run.Layout = result.Layout
	if err := s.store.Save(ctx, run); err != nil {
		s.writeError(w, fmt.Errorf("store run: %w", err))
		return
	}

	s.logger.Info("layout created",
		"id", run.ID,
		"nodes", run.NodeCount,
		"iterations", run.Iterations,
		"cached", run.CacheHit,
		"duration", run.Duration.Round(time.Millisecond))
	w.Header().Set("Location", "/v1/layouts/"+run.ID)
	writeJSON(w, http.StatusCreated, newRunResponse(run, true))
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, errors.Invalid("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]runResponse, len(runs))
	for i, run := range runs {
		out[i] = newRunResponse(run, false)
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": out})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run, true))
}

func (s *Server) renderLayout(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	contentType, ok := renderContentTypes[format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown format %q", format))
		return
	}
	run, ok := s.lookup(w, r)
	if !ok {
		return
	}
	doc, err := io.ReadJSON(bytes.NewReader(run.Layout))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "stored layout %s", run.ID))
		return
	}

	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), doc, run.Layout, pipeline.Options{
		Formats:  []string{format},
		Directed: r.URL.Query().Get("directed") == "true",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, errors.Invalid("invalid layout id %q", id))
		return nil, false
	}
	run, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "layout %s not found", id))
		return nil, false
	}
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return run, true
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	code := errors.GetCode(err)
	msg := err.Error()
	if code != "" {
		msg = errors.UserMessage(err)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func statusOf(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	code := errors.GetCode(err)
	switch {
	case code.Input():
		return http.StatusBadRequest
	case code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
