// Package web provides the HTTP host: a JSON API that copies from, pastes
// into and undoes pastes on one sheet.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/zjrosen/gridclip/internal/clipboard"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/pubsub"
)

// DefaultRequestTimeout bounds every request.
const DefaultRequestTimeout = 30 * time.Second

// Default growth limits for a sheet edited over HTTP.
const (
	DefaultMaxRows = 100000
	DefaultMaxCols = 1000
)

// Store persists the sheet after each mutation.
type Store interface {
	SaveSheet(ctx context.Context, s *grid.Sheet) error
}

// Options configures a Server.
type Options struct {
	// Store may be nil, in which case changes live in memory only.
	Store          Store
	RequestTimeout time.Duration
	// MaxRows and MaxCols cap how far a paste may grow the sheet. Zero
	// selects the defaults.
	MaxRows int
	MaxCols int
	// BeforeSave runs right before each store write.
	BeforeSave func()
	// Manager options applied after the server's own clipboard.
	ManagerOptions []copypaste.Option
}

// Server is the HTTP host for one sheet.
type Server struct {
	// mu serializes gestures; the engine itself holds no locks.
	mu    sync.Mutex
	sheet *grid.Sheet
	mgr   *copypaste.Manager
	clip  *clipboard.Memory
	opts  Options

	last pubsub.Event[copypaste.Notification]

	router *chi.Mux
	server *http.Server
}

// NewServer creates a server over sheet. Requests carry their own clipboard
// text, so the manager gets a private in-memory clipboard.
func NewServer(sheet *grid.Sheet, cfg copypaste.Config, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxCols <= 0 {
		opts.MaxCols = DefaultMaxCols
	}
	s := &Server{
		sheet:  sheet,
		clip:   clipboard.NewMemory(""),
		opts:   opts,
		router: chi.NewRouter(),
	}
	mgrOpts := append([]copypaste.Option{
		copypaste.WithClipboard(s.clip),
		copypaste.WithGrowthLimit(opts.MaxRows, opts.MaxCols),
	}, opts.ManagerOptions...)
	s.mgr = copypaste.New(sheet, cfg, mgrOpts...)
	s.mgr.OnNotify(func(e pubsub.Event[copypaste.Notification]) { s.last = e })

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/sheet", s.handleSheet)
		r.Post("/copy", s.handleCopy)
		r.Post("/paste", s.handlePaste)
		r.Post("/undo", s.handleUndo)
		r.Get("/copied", s.handleCopied)
		r.Delete("/copied", s.handleCancelCopy)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Info(log.CatWeb, "Starting server", "addr", addr, "sheet", s.sheet.Name())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.mgr.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Manager returns the copy/paste manager behind the API.
func (s *Server) Manager() *copypaste.Manager {
	return s.mgr
}

// requestID assigns a UUID to requests that arrive without an X-Request-Id
// header; middleware.RequestID then adopts it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		w.Header().Set(middleware.RequestIDHeader, r.Header.Get(middleware.RequestIDHeader))
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request through the category logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug(log.CatWeb, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
