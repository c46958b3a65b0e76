// Package api serves a family tree over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness and tree size
//	GET  /people[?q=]             people sorted by ID, optionally filtered
//	POST /people                  create from a partial record
//	POST /people/extract          create from free text
//	GET  /people/{id}             one person
//	PUT  /people/{id}             apply an edit, updating relatives
//	POST /people/{id}/bio         generate a biography (?save=true stores it)
//	GET  /tree                    the whole tree as JSON
//	GET  /tree/hierarchy[?root=]  descendants of root as nested JSON
//	GET  /export.ged              GEDCOM 5.5.1 download
//	POST /import[?lenient=true]   add the people of a GEDCOM body
//
// Errors are JSON objects of the form {"error":{"code":..,"message":..}}
// with a status derived from the error code.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lineage/pkg/extract"
	"github.com/matzehuels/lineage/pkg/store"
)

// MaxBodyBytes bounds request bodies. Photos are stored inline, so single
// person updates can be a few megabytes.
const MaxBodyBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Server handles API requests for one store.
type Server struct {
	store     *store.Store
	extractor extract.Extractor
	logger    *log.Logger
	now       func() time.Time
}

// New creates a server. A nil extractor disables the AI routes and a nil
// logger uses log.Default().
func New(st *store.Store, ex extract.Extractor, logger *log.Logger) *Server {
	if ex == nil {
		ex = extract.Disabled{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, extractor: ex, logger: logger, now: time.Now}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/people", func(r chi.Router) {
		r.Get("/", s.listPeople)
		r.Post("/", s.createPerson)
		r.Post("/extract", s.extractPerson)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getPerson)
			r.Put("/", s.updatePerson)
			r.Post("/bio", s.biography)
		})
	})

	r.Get("/tree", s.getTree)
	r.Get("/tree/hierarchy", s.getHierarchy)
	r.Get("/export.ged", s.exportGedcom)
	r.Post("/import", s.importGedcom)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and waits for pending relative writes.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := s.store.Flush(shutdownCtx); err != nil {
		s.logger.Warn("relative updates failed", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
