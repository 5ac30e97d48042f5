// Package web serves the browser live view: an embedded canvas page, a JSON
// snapshot endpoint, an SSE update stream, and mutation endpoints that call
// the same store operations the terminal view uses.
package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/ingest"
	"github.com/matzehuels/skein/pkg/observability"
	"github.com/matzehuels/skein/pkg/publish"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":7878"

//go:embed index.html
var indexHTML []byte

// Server bundles the HTTP surface over a store, an ingestion driver and a
// publisher. Construct with [New], mount via [Server.Handler] or run with
// [Server.ListenAndServe].
type Server struct {
	store  *graph.Store
	driver *ingest.Driver
	pub    *publish.Publisher
	logger *log.Logger
}

// New creates a server. A nil logger discards all output.
func New(store *graph.Store, driver *ingest.Driver, pub *publish.Publisher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{store: store, driver: driver, pub: pub, logger: logger}
}

// Handler returns the route tree. It is exposed separately from
// [Server.ListenAndServe] so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/api/graph", s.handleSnapshot)
	r.Get("/events", s.handleEvents)
	r.Post("/api/groups", s.handleAddGroup)
	r.Post("/api/nodes/{id}/position", s.handlePosition)
	r.Post("/api/nodes/{id}/pin", s.handlePin)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// connections. An empty addr falls back to [DefaultAddr]. Request contexts
// descend from ctx, so cancellation also ends in-flight event streams.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
		// No WriteTimeout: it would sever long-lived event streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("web view listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("web view stopped")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

// observe reports every request to the registered web hooks and logs slow
// or failing responses.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Web()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))

		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status)
		} else {
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
		}
	})
}
