package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/skillgomoku/internal/dependencies/mocks"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/services/turn"
	"github.com/mcoot/skillgomoku/internal/storage"
	"github.com/mcoot/skillgomoku/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App over the given storage backend
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(
		store, mockClock, mockRandom, mockRandom, model.DefaultRules(),
		turn.DefaultConfig(), effects.DefaultConfig(), logger,
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreateGame creates a game with the given id and rules
func (t *TestApp) CreateGame(id model.GameID, gameRules model.Rules) (*model.Game, error) {
	t.MockRandom.QueueString(string(id))
	return t.GameController.CreateGame(context.Background(), gameRules)
}
