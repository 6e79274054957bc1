package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/skillgomoku/internal/api/handler"
	"github.com/mcoot/skillgomoku/internal/middleware"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/game"
	"github.com/mcoot/skillgomoku/internal/web/sse"
	"github.com/mcoot/skillgomoku/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	HubManager     *sse.HubManager // Optional; disables the event stream if nil
	SocketManager  *ws.HubManager  // Optional; disables websocket events if nil
	Pinger         handler.Pinger  // Optional; used by the health check
	DefaultRules   *model.Rules    // Optional; defaults to model.DefaultRules()
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	defaultRules := model.DefaultRules()
	if cfg.DefaultRules != nil {
		defaultRules = *cfg.DefaultRules
	}

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.HubManager, cfg.SocketManager, defaultRules, cfg.Logger)
	systemHandler := handler.NewSystemHandler(cfg.Pinger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, handler.PanicHandler)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// Game routes
	games := api.PathPrefix("/games").Subrouter()
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	games.HandleFunc("/{id}/restart", gameHandler.Restart).Methods(http.MethodPost)
	games.HandleFunc("/{id}/operations", gameHandler.Submit).Methods(http.MethodPost)
	games.HandleFunc("/{id}/players/{player}", gameHandler.PlayerStatus).Methods(http.MethodGet)
	games.HandleFunc("/{id}/legal-moves", gameHandler.LegalMoves).Methods(http.MethodGet)
	games.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	games.HandleFunc("/{id}/ws", gameHandler.Socket).Methods(http.MethodGet)

	// Skill catalogue and health check
	api.HandleFunc("/skills", systemHandler.Skills).Methods(http.MethodGet)
	api.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)

	return r
}
