package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/skillgomoku/internal/api/apierr"
	"github.com/mcoot/skillgomoku/internal/api/response"
	"github.com/mcoot/skillgomoku/internal/model"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the skill catalogue and health check
type SystemHandler struct {
	pinger Pinger
}

// NewSystemHandler creates a new system handler. A nil pinger is always healthy.
func NewSystemHandler(pinger Pinger) *SystemHandler {
	return &SystemHandler{pinger: pinger}
}

// Skills handles GET /api/v1/skills
func (h *SystemHandler) Skills(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SkillList{Skills: model.Skills()})
}

// Health handles GET /api/v1/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			WriteError(w, apierr.NewUnavailableError("Storage unreachable"))
			return
		}
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
