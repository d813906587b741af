package server

import (
	"context"
	"net/http"
	"time"

	"miniblog/internal/store"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "miniblog"

// Server exposes the article and user stores over HTTP. A nil store is
// treated as unconfigured and every request needing it fails with 500.
type Server struct {
	articles store.ArticleStore
	users    store.UserStore
	queue    store.Queue
	logger   *zap.Logger
	registry *prometheus.Registry
	router   *mux.Router
	server   *http.Server
}

type Option func(*Server)

// WithQueue makes the server push every created article ID to q.
func WithQueue(q store.Queue) Option {
	return func(s *Server) { s.queue = q }
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func NewServer(articles store.ArticleStore, users store.UserStore, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		articles: articles,
		users:    users,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	m := newMetrics(s.registry)

	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(m.middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(render.SetContentType(render.ContentTypeJSON))

	s.router.HandleFunc("/article", s.handleListArticles).Methods(http.MethodGet)
	s.router.HandleFunc("/article", s.handleCreateArticle).Methods(http.MethodPost)
	s.router.HandleFunc("/article/{id}", s.handleGetArticle).Methods(http.MethodGet)
	s.router.HandleFunc("/user", s.handleListUsers).Methods(http.MethodGet)
	s.router.HandleFunc("/user", s.handleCreateUser).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	}).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the traced router.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, serviceName)
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
