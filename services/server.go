package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepwise/interview-coach/repository"
)

// Server holds all server dependencies
type Server struct {
	config           *Config
	repo             *repository.GORMRepository
	pool             *pgxpool.Pool
	coachService     *CoachService
	coachEndpoints   *CoachEndpoints
	authService      *AuthService
	authEndpoints    *AuthEndpoints
	sessionEndpoints *SessionEndpoints
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

// SetDatabase sets the database connections: the GORM repository for data
// access and the pgx pool for health checks.
func (s *Server) SetDatabase(repo *repository.GORMRepository, pool *pgxpool.Pool) {
	s.repo = repo
	s.pool = pool
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	// Initialize the model provider and prompt gateway. A selected provider
	// that cannot be constructed fails startup instead of leaving the coach
	// routes unmounted.
	var provider ModelProvider
	switch s.config.Model.Provider {
	case "gemini":
		if s.config.Model.GeminiAPIKey == "" {
			return fmt.Errorf("gemini provider selected but gemini.api_key is not configured")
		}
		g := NewGeminiService(s.config.Model.GeminiAPIKey)
		if g == nil {
			return fmt.Errorf("failed to initialize gemini provider")
		}
		provider = g
		slog.Info("Gemini provider initialized")
	default:
		provider = NewOllamaService(s.config.Model.OllamaURL, s.config.Model.OllamaModel)
		slog.Info("Ollama provider initialized", "url", s.config.Model.OllamaURL, "model", s.config.Model.OllamaModel)
	}

	s.coachService = NewCoachService(provider)
	s.coachEndpoints = NewCoachEndpoints(s.coachService)
	slog.Info("Coach service initialized")

	// Initialize authentication and session services
	if s.config.JWT.Secret != "" && s.repo != nil {
		s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		s.sessionEndpoints = NewSessionEndpoints(s.repo)
		slog.Info("Authentication service initialized")
	} else {
		slog.Warn("Auth disabled: JWT secret or database not configured")
	}

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API route group
	r.Route("/api", func(r chi.Router) {
		// Coach routes (public, like the rest of the practice flow)
		if s.coachEndpoints != nil {
			s.coachEndpoints.RegisterRoutes(r)
		}

		// Authentication routes
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}

		// Session routes (protected)
		if s.sessionEndpoints != nil && s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				s.sessionEndpoints.RegisterRoutes(r)
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.pool != nil {
		if err := s.pool.Ping(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))

	slog.Info("Health check", "status", status, "database", dbStatus)
}
