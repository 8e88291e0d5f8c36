package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/Amaan112005/mindmate/repository"
	ws "github.com/Amaan112005/mindmate/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	gormDB             *repository.GORMRepository
	rawDB              *gorm.DB
	geminiService      *GeminiService
	statsService       *StatsService
	moduleDispatcher   *ModuleDispatcher
	websocketHandler   *WebSocketHandler
	authService        *AuthService
	authEndpoints      *AuthEndpoints
	trackingEndpoints  *TrackingEndpoints
	journalEndpoints   *JournalEndpoints
	goalEndpoints      *GoalEndpoints
	statsEndpoints     *StatsEndpoints
	chatEndpoints      *ChatEndpoints
	moduleEndpoints    *ModuleEndpoints
	therapistEndpoints *TherapistEndpoints
	communityEndpoints *CommunityEndpoints
	wsHub              *ws.Hub
	upgrader           websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(db *repository.GORMRepository, rawDB *gorm.DB) {
	s.gormDB = db
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey, s.config.AI.Model)
		if s.geminiService != nil {
			slog.Info("Gemini service initialized", "model", s.config.AI.Model)
		}
	} else {
		slog.Warn("Gemini API key not configured, AI assistant disabled")
	}

	if s.config.JWT.Secret != "" && s.gormDB != nil {
		s.authService = NewAuthService(s.gormDB, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.gormDB != nil {
		s.statsService = NewStatsService(s.gormDB)
		s.moduleDispatcher = NewModuleDispatcher(s.gormDB, s.statsService)

		s.trackingEndpoints = NewTrackingEndpoints(s.gormDB, s.statsService)
		s.journalEndpoints = NewJournalEndpoints(s.gormDB, s.statsService)
		s.goalEndpoints = NewGoalEndpoints(s.gormDB)
		s.statsEndpoints = NewStatsEndpoints(s.statsService)
		s.chatEndpoints = NewChatEndpoints(s.gormDB, s.geminiService)
		s.moduleEndpoints = NewModuleEndpoints(s.moduleDispatcher)
		s.therapistEndpoints = NewTherapistEndpoints(s.gormDB)
		s.communityEndpoints = NewCommunityEndpoints(s.gormDB)
	}

	// Idle chats evicted from the AI cache get their sessions ended too.
	if s.geminiService != nil && s.gormDB != nil {
		s.geminiService.OnStaleChat = func(sessionID string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.gormDB.EndChatSession(ctx, sessionID); err != nil {
				slog.Error("Failed to end stale chat session", "error", err, "session_id", sessionID)
			}
		}
	}

	if s.chatEndpoints != nil {
		s.websocketHandler = NewWebSocketHandler(s.chatEndpoints, s.geminiService)
		slog.Info("WebSocket handler initialized")
	}

	if s.gormDB != nil {
		go s.cleanupExpiredSessions()
	}

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// cleanupExpiredSessions periodically removes expired auth sessions.
func (s *Server) cleanupExpiredSessions() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.gormDB.DeleteExpiredSessions(ctx); err != nil {
			slog.Error("Failed to clean up expired sessions", "error", err)
		}
		cancel()
	}
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

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		// WebSocket route (protected)
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Get("/ws", s.websocketHandlerFunc)
			})
		}

		if s.authEndpoints != nil {
			// Public auth routes
			s.authEndpoints.RegisterRoutes(r)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Route("/auth", func(r chi.Router) {
					r.Post("/logout", s.authEndpoints.LogoutHandler)
					r.Get("/me", s.authEndpoints.MeHandler)
					r.Put("/me", s.authEndpoints.UpdateProfileHandler)
					r.Delete("/me", s.authEndpoints.DeactivateHandler)
				})
			})
		}

		if s.authService != nil && s.gormDB != nil {
			// Protected application routes
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)

				s.trackingEndpoints.RegisterRoutes(r)
				s.journalEndpoints.RegisterRoutes(r)
				s.goalEndpoints.RegisterRoutes(r)
				s.statsEndpoints.RegisterRoutes(r)
				s.chatEndpoints.RegisterRoutes(r)
				s.moduleEndpoints.RegisterRoutes(r)
				s.communityEndpoints.RegisterRoutes(r)
				s.therapistEndpoints.RegisterPatientRoutes(r)

				// Therapist-only routes
				r.Group(func(r chi.Router) {
					r.Use(s.authService.RequireRole(models.RoleTherapist))
					s.therapistEndpoints.RegisterTherapistRoutes(r)
				})
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

// checkOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func checkOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// An existing chat session may be attached up front
	chatSessionID := r.URL.Query().Get("session_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "username", user.Username)

	client := s.wsHub.RegisterClient(conn, user.ID)
	client.ChatSessionID = chatSessionID

	if s.websocketHandler != nil {
		client.MessageHandler = func(c *ws.Client, messageBytes []byte) {
			s.websocketHandler.HandleWebSocketMessage(c, messageBytes)
		}
	}

	go client.WritePump()

	if s.websocketHandler != nil {
		s.websocketHandler.HandleWebSocketConnection(client)
	}

	// ReadPump blocks until the connection drops
	client.ReadPump()
}
