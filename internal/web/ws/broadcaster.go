package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Broadcaster pushes game events to websocket watchers
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "ws-broadcaster")),
	}
}

// Publish wraps the event in a Message named after its type
func (b *Broadcaster) Publish(_ context.Context, event model.Event) {
	hub := b.hubManager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(event)
	if err == nil {
		data, err = json.Marshal(Message{Event: string(event.Type), Data: data})
	}
	if err != nil {
		b.logger.Error("ws failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	hub.Broadcast(data)
}
