package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/skillgomoku/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError. Details carries optional context such as
// the failed turn.
type ErrorResponse struct {
	Error   APIError `json:"error"`
	Details any      `json:"details,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidRules       = "INVALID_RULES"
	CodeInvalidPlayer      = "INVALID_PLAYER"
	CodeInvalidOperation   = "INVALID_OPERATION"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeGameNotPlaying     = "GAME_NOT_PLAYING"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeOutOfBounds        = "OUT_OF_BOUNDS"
	CodeCellOccupied       = "CELL_OCCUPIED"
	CodeCellForbidden      = "CELL_FORBIDDEN"
	CodeUnknownSkill       = "UNKNOWN_SKILL"
	CodeInsufficientEnergy = "INSUFFICIENT_ENERGY"
	CodeSkillOnCooldown    = "SKILL_ON_COOLDOWN"
	CodeSkillEffectFailed  = "SKILL_EFFECT_FAILED"
	CodeNothingToUndo      = "NOTHING_TO_UNDO"
	CodeTurnFailed         = "TURN_FAILED"
	CodeEffectTimeout      = "EFFECT_TIMEOUT"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWithDetails(w, err, nil)
}

// WriteErrorWithDetails writes an error response carrying extra details
func WriteErrorWithDetails(w http.ResponseWriter, err error, details any) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError, Details: details})
}

// toHTTPError converts an error to an httpError. Turn failures wrap both
// ErrHookFailed and the specific cause, so causes are checked first.
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrInvalidRules):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRules, err.Error()}}
	case errors.Is(err, model.ErrInvalidPlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayer, "Player must be black or white"}}
	case errors.Is(err, model.ErrInvalidOperation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOperation, err.Error()}}
	case errors.Is(err, model.ErrNotPlaying):
		return &httpError{http.StatusConflict, APIError{CodeGameNotPlaying, "Game has ended"}}
	case errors.Is(err, model.ErrWrongTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrOutOfBounds):
		return &httpError{http.StatusBadRequest, APIError{CodeOutOfBounds, "Position is off the board"}}
	case errors.Is(err, model.ErrCellOccupied):
		return &httpError{http.StatusConflict, APIError{CodeCellOccupied, "Cell is already occupied"}}
	case errors.Is(err, model.ErrCellForbidden):
		return &httpError{http.StatusConflict, APIError{CodeCellForbidden, "Cell is inside a forbidden region"}}
	case errors.Is(err, model.ErrUnknownSkill):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownSkill, "Unknown skill"}}
	case errors.Is(err, model.ErrInsufficientEnergy):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientEnergy, "Not enough energy"}}
	case errors.Is(err, model.ErrSkillOnCooldown):
		return &httpError{http.StatusConflict, APIError{CodeSkillOnCooldown, "Skill is on cooldown"}}
	case errors.Is(err, model.ErrSkillEffectFailed):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeSkillEffectFailed, err.Error()}}
	case errors.Is(err, model.ErrNothingToUndo):
		return &httpError{http.StatusConflict, APIError{CodeNothingToUndo, "No placement to undo"}}
	case errors.Is(err, model.ErrEffectTimeout):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeEffectTimeout, "Effect timed out"}}
	case errors.Is(err, model.ErrHookFailed):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeTurnFailed, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
