package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	bferrors "github.com/matzehuels/breadthfirst/pkg/errors"
	"github.com/matzehuels/breadthfirst/pkg/graph"
	"github.com/matzehuels/breadthfirst/pkg/pipeline"
)

// createRequest is the body of POST /v1/layouts.
type createRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
	Save    bool             `json:"save,omitempty"`
}

// createResponse wraps the computed layout with cache information.
type createResponse struct {
	Layout graph.Layout `json:"layout"`
	Cached bool         `json:"cached"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req := createRequest{Options: s.defaultOptions()}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.maxBody))
			return
		}
		writeError(w, r, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	for _, n := range req.Graph.Nodes {
		if err := bferrors.ValidateNodeID(n.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	g, err := graph.ToDigraph(req.Graph)
	if err != nil {
		writeError(w, r, bferrors.Wrap(bferrors.ErrCodeInvalidGraph, err, "invalid graph: %v", err))
		return
	}

	req.Options.Logger = s.logger.With("request_id", RequestID(r.Context()))
	layout, cached, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), g, req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if req.Save {
		layout.ID = ""
		layout.CreatedAt = time.Now().UTC()
		if _, err := s.store.Save(r.Context(), &layout); err != nil {
			writeError(w, r, bferrors.Wrap(bferrors.ErrCodeStoreUnavailable, err, "save layout"))
			return
		}
		w.Header().Set("Location", "/v1/layouts/"+layout.ID)
		status = http.StatusCreated
	}

	writeJSON(w, status, createResponse{Layout: layout, Cached: cached})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, bferrors.New(bferrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, bferrors.Wrap(bferrors.ErrCodeStoreUnavailable, err, "list layouts"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": summaries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	layout, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := bferrors.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: q.Get("detailed") == "true",
		Logger:   s.logger,
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 || scale > 8 {
			writeError(w, r, bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid scale %q (must be in (0, 8])", v))
			return
		}
		opts.Scale = scale
	}

	layout, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), layout, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}
