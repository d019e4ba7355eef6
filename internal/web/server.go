// Package web serves the browser chat surface and the conversation API.
//
// The page itself is rendered once; after that every state change of the
// page's controller is pushed over the chat websocket as rendered fragments.
// API clients drive registered conversations over plain JSON instead.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/convlog"
	"github.com/ashureev/agentchat/internal/middleware"
	"github.com/ashureev/agentchat/internal/session"
	assets "github.com/ashureev/agentchat/web"
)

// SocketPath is the chat websocket endpoint.
const SocketPath = "/ws/chat"

// Config controls the browser-facing surface.
type Config struct {
	AllowedOrigins     []string
	IsDevelopment      bool
	MaxRequestBodySize int64
}

// Server wires chat controllers to HTTP.
type Server struct {
	backend  agentapi.Backend
	registry *chat.Registry
	convlog  convlog.Logger
	logger   *slog.Logger
	cfg      Config
	render   *renderer
	started  time.Time
}

// NewServer creates a Server. registry holds API conversations; page
// conversations live only as long as their websocket.
func NewServer(backend agentapi.Backend, registry *chat.Registry, conversationLog convlog.Logger, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if conversationLog == nil {
		conversationLog = convlog.Nop()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		backend:  backend,
		registry: registry,
		convlog:  conversationLog,
		logger:   logger,
		cfg:      cfg,
		render:   r,
		started:  time.Now(),
	}, nil
}

// RegisterRoutes registers every route on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Page)
	r.Handle("/static/*", http.StripPrefix("/static", assets.StaticHandler()))
	r.Get(SocketPath, s.ChatSocket)
	r.Get("/health", s.Health)

	r.Route("/api/conversations", func(r chi.Router) {
		r.Use(middleware.CORS(s.cfg.AllowedOrigins))
		r.Post("/", s.CreateConversation)
		r.Route("/{"+session.URLParam+"}", func(r chi.Router) {
			r.Use(session.Middleware)
			r.Get("/", s.GetConversation)
			r.Delete("/", s.DeleteConversation)
			r.Post("/messages", s.PostMessage)
			r.Post("/field", s.PostField)
			r.Get("/server-messages", s.GetServerMessages)
		})
	})
}

// Page renders the chat page. The session is created when the page's
// websocket connects, so the page starts in the awaiting-session state.
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	view := chat.NewController(s.backend, chat.Options{}).Snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.render.page(w, view, SocketPath); err != nil {
		s.logger.Error("Failed to render chat page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Health reports liveness and the number of API conversations.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"checks":        map[string]string{"api": "ok"},
		"conversations": s.registry.Len(),
		"uptime":        time.Since(s.started).Round(time.Second).String(),
	})
}
