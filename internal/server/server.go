// Package server serves the events API over an event repository.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/javiermolinar/almanac/internal/api"
	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// errBadRequest marks errors caused by the request itself.
var errBadRequest = errors.New("bad request")

// Server exposes an event.Repository as the JSON events API.
type Server struct {
	repo   event.Repository
	logger *slog.Logger
	router chi.Router
}

// New builds the router. Routes live under /api.
func New(repo event.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{repo: repo, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)

	router.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleList)
		r.Post("/events", s.handleCreate)
		r.Get("/events/day", s.handleDay)
		r.Get("/events/week", s.handleWeek)
		r.Get("/events/month", s.handleMonth)
		r.Get("/events/{id}", s.handleGet)
		r.Put("/events/{id}", s.handleUpdate)
		r.Delete("/events/{id}", s.handleDelete)
	})

	s.router = router
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.list(w, r, q)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	loc, err := location(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		s.respondError(w, badRequest("date is required"))
		return
	}
	day, err := dateutil.ParseDate(date, loc)
	if err != nil {
		s.respondError(w, badRequest(err.Error()))
		return
	}
	s.list(w, r, overlapQuery(day, day.AddDate(0, 0, 1)))
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	loc, err := location(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		s.respondError(w, err)
		return
	}
	week, err := intParam(r, "week")
	if err != nil {
		s.respondError(w, err)
		return
	}
	if week < 1 || week > dateutil.ISOWeeksInYear(year) {
		s.respondError(w, badRequest(fmt.Sprintf("week %d out of range for %d", week, year)))
		return
	}
	monday := dateutil.ISOWeekStart(year, week, loc)
	s.list(w, r, overlapQuery(monday, monday.AddDate(0, 0, 7)))
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	loc, err := location(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		s.respondError(w, err)
		return
	}
	month, err := intParam(r, "month")
	if err != nil {
		s.respondError(w, err)
		return
	}
	if month < 1 || month > 12 {
		s.respondError(w, badRequest(fmt.Sprintf("month %d out of range", month)))
		return
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	s.list(w, r, overlapQuery(first, first.AddDate(0, 1, 0)))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, q event.Query) {
	events, err := s.repo.List(r.Context(), q)
	if err != nil {
		s.respondError(w, err)
		return
	}
	out := make([]api.Event, 0, len(events))
	for _, e := range events {
		out = append(out, api.FromEvent(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromEvent(e))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	e, err := s.repo.Create(r.Context(), d)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("event created", "id", e.ID, "interval", e.Interval.String())
	writeKV(w, http.StatusOK, "uuid", e.ID)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.repo.Update(r.Context(), id, d); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("event updated", "id", id, "interval", d.Interval.String())
	writeKV(w, http.StatusOK, "message", "success")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("event deleted", "id", id)
	writeKV(w, http.StatusOK, "message", "success")
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		writeKV(w, http.StatusNotFound, "message", "does not exist")
	case errors.Is(err, event.ErrEventOverlap):
		writeKV(w, http.StatusConflict, "message", err.Error())
	case errors.Is(err, errBadRequest),
		errors.Is(err, event.ErrEmptyTitle),
		errors.Is(err, event.ErrEndBeforeStart),
		errors.Is(err, event.ErrEmptyInterval):
		writeKV(w, http.StatusBadRequest, "message", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeKV(w, http.StatusInternalServerError, "message", "internal error")
	}
}

// parseQuery reads the list filter: start, end (RFC 3339), sort, ord, limit.
func parseQuery(r *http.Request) (event.Query, error) {
	v := r.URL.Query()
	var q event.Query

	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return event.Query{}, badRequest("start must be RFC 3339")
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return event.Query{}, badRequest("end must be RFC 3339")
		}
	}
	if s := v.Get("sort"); s != "" {
		if q.Sort, err = event.ParseSortField(s); err != nil {
			return event.Query{}, badRequest(err.Error())
		}
		if q.Order, err = event.ParseOrder(v.Get("ord")); err != nil {
			return event.Query{}, badRequest(err.Error())
		}
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return event.Query{}, badRequest("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

func overlapQuery(start, end time.Time) event.Query {
	return event.Query{Start: start, End: end, Sort: event.SortByDateFrom, Order: event.Asc}
}

// location resolves the tz parameter. Empty means UTC. "Local" is refused
// since it names the server's zone, not the caller's.
func location(r *http.Request) (*time.Location, error) {
	if r.URL.Query().Get("tz") == "Local" {
		return nil, badRequest(`time zone "Local" is ambiguous; send an IANA name`)
	}
	loc, err := time.LoadLocation(r.URL.Query().Get("tz"))
	if err != nil {
		return nil, badRequest(fmt.Sprintf("unknown time zone %q", r.URL.Query().Get("tz")))
	}
	return loc, nil
}

func intParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, badRequest(name + " is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}

func decodeDraft(r *http.Request) (event.Draft, error) {
	var body api.EventBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return event.Draft{}, badRequest("invalid JSON body")
	}
	return body.Draft()
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeKV(w http.ResponseWriter, status int, key, value string) {
	writeJSON(w, status, map[string]string{key: value})
}
