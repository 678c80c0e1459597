// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes pipeline runs over HTTP.
//
// Each run is a row in the run store. A request loads the run, applies one
// pipeline action through a pipeline.Session and saves the result. Requests
// on the same run are serialized; requests on different runs proceed in
// parallel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/pitchcrew/internal/pipeline"
	"github.com/pdiddy/pitchcrew/internal/render"
	"github.com/pdiddy/pitchcrew/internal/runstore"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

const (
	defaultRequestTimeout = 2 * time.Minute
	maxBodyBytes          = 1 << 20
)

// ErrNotExportable is returned for an export of a run without a selected
// name or polished pitch.
var ErrNotExportable = errors.New("run has no selected name or polished pitch")

// Options configures a Server.
type Options struct {
	// Logger receives request logs. Nil discards them.
	Logger *slog.Logger

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	// RequestTimeout bounds pipeline actions (default 2m).
	RequestTimeout time.Duration

	// Subtitle is printed under the title of exported PDFs.
	Subtitle string
}

// Server handles the HTTP API.
type Server struct {
	pipeline *pipeline.Pipeline
	store    *runstore.Store
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	timeout  time.Duration
	subtitle string
	locks    *runLocks
}

// New returns a Server backed by p and store.
func New(p *pipeline.Pipeline, store *runstore.Store, opts Options) (*Server, error) {
	if p == nil {
		return nil, errors.New("pipeline required")
	}
	if store == nil {
		return nil, errors.New("run store required")
	}

	s := &Server{
		pipeline: p,
		store:    store,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
		timeout:  opts.RequestTimeout,
		subtitle: opts.Subtitle,
		locks:    newRunLocks(),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.timeout <= 0 {
		s.timeout = defaultRequestTimeout
	}
	return s, nil
}

// Routes returns the API handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/runs", s.handleCreate)
	mux.HandleFunc("GET /api/runs", s.handleList)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/runs/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/runs/{id}/names", s.action(func(ctx context.Context, sess *pipeline.Session, _ *http.Request) error {
		return sess.GenerateNames(ctx)
	}))
	mux.HandleFunc("POST /api/runs/{id}/names/regenerate", s.action(func(ctx context.Context, sess *pipeline.Session, _ *http.Request) error {
		return sess.RegenerateNames(ctx)
	}))
	mux.HandleFunc("POST /api/runs/{id}/full", s.action(func(ctx context.Context, sess *pipeline.Session, _ *http.Request) error {
		return sess.Run(ctx)
	}))
	mux.HandleFunc("POST /api/runs/{id}/select", s.action(s.selectName))
	mux.HandleFunc("POST /api/runs/{id}/clear", s.action(func(_ context.Context, sess *pipeline.Session, _ *http.Request) error {
		sess.Clear()
		return nil
	}))
	mux.HandleFunc("GET /api/runs/{id}/export.pdf", s.handleExportPDF)
	mux.HandleFunc("GET /api/runs/{id}/export.html", s.handleExportHTML)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return logMiddleware(s.logger, mux)
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// --- handlers ---

type createReq struct {
	Idea string `json:"idea"`
}

type selectReq struct {
	Name string `json:"name"`
}

type listResp struct {
	Runs []*types.PipelineRun `json:"runs"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Idea) == "" {
		writeError(w, http.StatusBadRequest, pipeline.ErrEmptyIdea)
		return
	}
	run, err := s.store.Create(r.Context(), req.Idea)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []*types.PipelineRun{}
	}
	writeJSON(w, http.StatusOK, listResp{Runs: runs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionAction applies one pipeline action to a loaded run.
type sessionAction func(ctx context.Context, sess *pipeline.Session, r *http.Request) error

// action wraps fn with the load, lock and save cycle of a run.
func (s *Server) action(fn sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		unlock := s.locks.lock(id)
		defer unlock()

		run, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		if err := fn(ctx, pipeline.NewSession(s.pipeline, run), r); err != nil {
			s.fail(w, r, err)
			return
		}

		if err := s.store.Save(r.Context(), run); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func (s *Server) selectName(ctx context.Context, sess *pipeline.Session, r *http.Request) error {
	var req selectReq
	if err := decodeJSON(r, &req); err != nil {
		return badRequest{err}
	}
	return sess.Select(ctx, req.Name)
}

func (s *Server) exportable(w http.ResponseWriter, r *http.Request) (*types.PipelineRun, bool) {
	run, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !run.Exportable() {
		writeError(w, http.StatusConflict, ErrNotExportable)
		return nil, false
	}
	return run, true
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	run, ok := s.exportable(w, r)
	if !ok {
		return
	}
	doc, err := render.PDF(run.SelectedName, run.PolishedPitch, s.subtitle)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.FileName(run.SelectedName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	run, ok := s.exportable(w, r)
	if !ok {
		return
	}
	page, err := render.HTML(run.SelectedName, run.PolishedPitch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// --- helpers ---

// badRequest marks a client error raised inside an action.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, runstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrEmptyIdea), errors.Is(err, pipeline.ErrEmptyName), errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// runLocks hands out one mutex per run ID.
type runLocks struct {
	mu    sync.Mutex
	locks map[string]*runLock
}

type runLock struct {
	mu   sync.Mutex
	refs int
}

func newRunLocks() *runLocks {
	return &runLocks{locks: make(map[string]*runLock)}
}

// lock blocks until the run is free and returns its unlock function.
func (l *runLocks) lock(id string) func() {
	l.mu.Lock()
	rl, ok := l.locks[id]
	if !ok {
		rl = &runLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
