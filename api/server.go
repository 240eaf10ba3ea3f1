package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rescp17/stageCatalog/pkg/catalog"
)

// Repository is what the HTTP API needs from a catalog store.
type Repository interface {
	List(ctx context.Context, filter catalog.Filter) ([]catalog.Event, error)
	Get(ctx context.Context, id catalog.ID) (catalog.Event, error)
	Create(ctx context.Context, c catalog.Candidate) (catalog.Event, error)
	Delete(ctx context.Context, id catalog.ID) error
}

// API serves a json-server compatible /events resource plus static covers.
type API struct {
	repo      Repository
	coversDir string
	mux       *http.ServeMux
}

// NewAPI creates the HTTP API for repo. Covers are served from coversDir
// when it is non-empty.
func NewAPI(repo Repository, coversDir string) *API {
	api := &API{
		repo:      repo,
		coversDir: coversDir,
		mux:       http.NewServeMux(),
	}
	api.registerRoutes()
	return api
}

// ServeHTTP allows the API struct to satisfy the http.Handler interface.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// registerRoutes connects all handlers and middleware.
func (a *API) registerRoutes() {
	a.mux.Handle("GET /events", requestLogger(http.HandlerFunc(a.ListHandler)))
	a.mux.Handle("POST /events", requestLogger(http.HandlerFunc(a.CreateHandler)))
	a.mux.Handle("GET /events/{id}", requestLogger(http.HandlerFunc(a.GetHandler)))
	a.mux.Handle("DELETE /events/{id}", requestLogger(http.HandlerFunc(a.DeleteHandler)))
	a.mux.Handle("GET /covers/{name}", requestLogger(http.HandlerFunc(a.CoverHandler)))
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"client", r.Header.Get(clientIDHeader),
			"duration", time.Since(start))
	})
}

// ListHandler answers GET /events and GET /events?type=opera|ballet.
func (a *API) ListHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseFilter(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events, err := a.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to list events", "filter", filter, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to list events"))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// CreateHandler answers POST /events with the stored event.
func (a *API) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var c catalog.Candidate
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	created, err := a.repo.Create(r.Context(), c)
	switch {
	case catalog.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		slog.Error("Failed to create event", "title", c.Title, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to create event"))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetHandler answers GET /events/{id}.
func (a *API) GetHandler(w http.ResponseWriter, r *http.Request) {
	e, err := a.repo.Get(r.Context(), catalog.ID(r.PathValue("id")))
	if err != nil {
		a.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteHandler answers DELETE /events/{id}.
func (a *API) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.Delete(r.Context(), catalog.ID(r.PathValue("id"))); err != nil {
		a.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, catalog.ErrNotFound)
		return
	}
	slog.Error("Event lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, errors.New("event lookup failed"))
}

// CoverHandler serves a cover image, sniffing its content type.
func (a *API) CoverHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if a.coversDir == "" || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusNotFound, errors.New("cover not found"))
		return
	}

	path := filepath.Join(a.coversDir, name)
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, errors.New("cover not found"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, errors.New("cover not found"))
		return
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		slog.Warn("Failed to detect cover type", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to read cover"))
		return
	}
	w.Header().Set("Content-Type", mime.String())
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
