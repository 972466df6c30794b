package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/oneword-blog-backend/config"
	"github.com/rpupo63/oneword-blog-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, publisher *services.Publisher, authenticator services.Authenticator, db pinger) Server {
	address := fmt.Sprintf("0.0.0.0:%d", cfg.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	handler := newRouter(publisher, authenticator,
		withConfig(cfg),
		withStartupTime(startupTime),
		withDatabase(db),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response; must exceed the generation timeout
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}
}

type router struct {
	config      *config.Config
	startupTime time.Time
	publisher   blogPublisher
	db          pinger
}

func withConfig(c *config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withDatabase(db pinger) func(*router) {
	return func(r *router) {
		r.db = db
	}
}

func newRouter(publisher blogPublisher, authenticator services.Authenticator, opts ...func(*router)) *chi.Mux {
	router := router{
		config:      &config.Config{AcceptedOrigin: []string{"*"}},
		startupTime: time.Now(),
		publisher:   publisher,
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(router.config.LogFormat == "console"))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.config.AcceptedOrigin,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAnyOrigin(router.config.AcceptedOrigin),
		MaxAge:           300,
	}))

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(authenticator)

	// Initialize all handlers
	handlers := initializeHandlers(router, authMiddleware)

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Start serves until the server is shut down. A graceful shutdown is not an error.
func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ShutdownGracefully(timeout time.Duration) error {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
		return err
	}
	log.Info().Msg("HttpServer gracefully shut down")
	return nil
}
