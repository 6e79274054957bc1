package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Broadcaster forwards game events to the SSE clients watching that game.
// It satisfies the game controller's Notifier.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends the event as a JSON payload named after its type.
// Events for games nobody is watching are dropped.
func (b *Broadcaster) Publish(_ context.Context, event model.Event) {
	hub := b.hubManager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	hub.BroadcastEvent(string(event.Type), string(data))
}
