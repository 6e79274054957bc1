package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/skillgomoku/internal/api/apierr"
	"github.com/mcoot/skillgomoku/internal/api/request"
	"github.com/mcoot/skillgomoku/internal/api/response"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/game"
	"github.com/mcoot/skillgomoku/internal/web/sse"
	"github.com/mcoot/skillgomoku/internal/web/ws"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	socketManager  *ws.HubManager
	defaultRules   model.Rules
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. Either hub manager may be nil,
// in which case that event transport is unavailable.
func NewGameHandler(
	gameController *game.Controller,
	hubManager *sse.HubManager,
	socketManager *ws.HubManager,
	defaultRules model.Rules,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
		socketManager:  socketManager,
		defaultRules:   defaultRules,
		logger:         logger,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	g, err := h.gameController.CreateGame(r.Context(), req.Rules(h.defaultRules))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(g.ID), response.GameStateFromModel(g))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.gameController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameList{Games: summaries})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if err := h.gameController.DeleteGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	if h.hubManager != nil {
		h.hubManager.RemoveHub(id)
	}
	if h.socketManager != nil {
		h.socketManager.RemoveHub(id)
	}
	response.NoContent(w)
}

// Restart handles POST /api/v1/games/{id}/restart
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.RestartGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

// Submit handles POST /api/v1/games/{id}/operations
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	player, op, err := req.ToOperation()
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.gameController.SubmitOperation(r.Context(), gameID(r), player, op)
	if err != nil {
		if result != nil {
			apierr.WriteErrorWithDetails(w, err, response.TurnResultFromModel(result))
			return
		}
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TurnResultFromModel(result))
}

// PlayerStatus handles GET /api/v1/games/{id}/players/{player}
func (h *GameHandler) PlayerStatus(w http.ResponseWriter, r *http.Request) {
	player := model.Player(mux.Vars(r)["player"])

	status, err := h.gameController.PlayerStatus(r.Context(), gameID(r), player)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

// LegalMoves handles GET /api/v1/games/{id}/legal-moves?player=
func (h *GameHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	player := model.Player(r.URL.Query().Get("player"))

	positions, err := h.gameController.LegalPlacements(r.Context(), gameID(r), player)
	if err != nil {
		WriteError(w, err)
		return
	}
	if positions == nil {
		positions = []model.Position{}
	}
	response.JSON(w, http.StatusOK, response.LegalMoves{Player: string(player), Positions: positions})
}

// Events handles GET /api/v1/games/{id}/events as an SSE stream.
// The optional player query parameter only labels the connection.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hubManager == nil {
		WriteError(w, apierr.NewUnavailableError("Event stream is not enabled"))
		return
	}

	id := gameID(r)
	player, err := h.watcher(r, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	sse.ServeSSE(w, r, hub, player)
}

// Socket handles GET /api/v1/games/{id}/ws, pushing the same events as
// Events over a websocket
func (h *GameHandler) Socket(w http.ResponseWriter, r *http.Request) {
	if h.socketManager == nil {
		WriteError(w, apierr.NewUnavailableError("Websocket events are not enabled"))
		return
	}

	id := gameID(r)
	player, err := h.watcher(r, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	ws.ServeWS(w, r, h.socketManager.GetOrCreateHub(id), player, h.logger)
}

// watcher checks the game exists and returns the optional player label
func (h *GameHandler) watcher(r *http.Request, id model.GameID) (model.Player, error) {
	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		return "", err
	}
	player := model.Player(r.URL.Query().Get("player"))
	if player != "" && !player.Valid() {
		return "", model.ErrInvalidPlayer
	}
	return player, nil
}
