package turn

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/skillgomoku/internal/dependencies/mocks"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	manager *Manager
	game    *model.Game
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = NewManager(DefaultConfig(), s.clock, testutil.NopLogger())
	s.game = model.NewGame("game-1", model.DefaultRules(), s.clock.Now())
	s.ctx = context.Background()
}

func (s *ManagerSuite) newContext(op model.Operation) *Context {
	return &Context{
		Game: s.game,
		Turn: s.manager.CreateTurn(s.game, model.PlayerBlack, op),
	}
}

func (s *ManagerSuite) TestTurnIDsAreMonotonicFromOne() {
	for want := 1; want <= 3; want++ {
		turn := s.manager.CreateTurn(s.game, model.PlayerBlack, model.PassOperation())
		s.Equal(want, turn.ID)
		s.Equal(model.TurnPending, turn.Status)
		s.Equal(s.clock.Now(), turn.CreatedAt)
	}
}

func (s *ManagerSuite) TestPhasesRunInOrder() {
	var visited []string
	record := func(name string) Hook {
		return func(_ context.Context, tc *Context) error {
			visited = append(visited, tc.Turn.Phase.String()+":"+name)
			return nil
		}
	}
	// Registered out of phase order on purpose
	s.manager.Register(model.PhaseTurnSwitch, "d", record("d"))
	s.manager.Register(model.PhasePreCheck, "a", record("a"))
	s.manager.Register(model.PhaseEffectSettlement, "c", record("c"))
	s.manager.Register(model.PhaseCoreOperation, "b1", record("b1"))
	s.manager.Register(model.PhaseCoreOperation, "b2", record("b2"))

	tc := s.newContext(model.PassOperation())
	s.Require().NoError(s.manager.Execute(s.ctx, tc))

	s.Equal([]string{
		"PRE_CHECK:a",
		"CORE_OPERATION:b1",
		"CORE_OPERATION:b2",
		"EFFECT_SETTLEMENT:c",
		"TURN_SWITCH:d",
	}, visited)
	s.Equal(model.TurnCompleted, tc.Turn.Status)
	s.NotNil(tc.Turn.CompletedAt)
	s.Equal([]string{"b1", "b2"}, s.manager.Hooks(model.PhaseCoreOperation))
}

func (s *ManagerSuite) TestFirstErrorAbortsTurn() {
	boom := errors.New("boom")
	var ranAfter bool
	s.manager.Register(model.PhaseCoreOperation, "fails", func(context.Context, *Context) error { return boom })
	s.manager.Register(model.PhaseCoreOperation, "same_phase", func(context.Context, *Context) error {
		ranAfter = true
		return nil
	})
	s.manager.Register(model.PhaseTurnSwitch, "later_phase", func(context.Context, *Context) error {
		ranAfter = true
		return nil
	})

	tc := s.newContext(model.PassOperation())
	err := s.manager.Execute(s.ctx, tc)

	s.ErrorIs(err, boom)
	s.ErrorIs(err, model.ErrHookFailed)
	s.False(ranAfter)
	s.Equal(model.TurnFailed, tc.Turn.Status)
	s.Equal(model.PhaseCoreOperation, tc.Turn.Phase)
	s.Contains(tc.Turn.Error, "boom")
	s.Empty(s.game.Turns.Completed)
}

func (s *ManagerSuite) TestFailedTurnKeepsItsID() {
	s.manager.Register(model.PhasePreCheck, "fails", func(context.Context, *Context) error { return model.ErrWrongTurn })

	tc := s.newContext(model.PassOperation())
	s.Error(s.manager.Execute(s.ctx, tc))

	next := s.manager.CreateTurn(s.game, model.PlayerBlack, model.PassOperation())
	s.Equal(tc.Turn.ID+1, next.ID)
}

func (s *ManagerSuite) TestHistoryIsBounded() {
	manager := NewManager(Config{HistoryCap: 3}, s.clock, testutil.NopLogger())
	for i := 0; i < 5; i++ {
		tc := &Context{Game: s.game, Turn: manager.CreateTurn(s.game, model.PlayerBlack, model.PassOperation())}
		s.Require().NoError(manager.Execute(s.ctx, tc))
	}

	s.Require().Len(s.game.Turns.Completed, 3)
	s.Equal(3, s.game.Turns.Completed[0].ID)
	s.Equal(5, s.game.Turns.Completed[2].ID)
}

func (s *ManagerSuite) TestEffectsFinishBeforeTurnSwitch() {
	var finished atomic.Bool
	s.manager.Register(model.PhaseEffectSettlement, "spawn", func(_ context.Context, tc *Context) error {
		tc.Effects.Register("slow", func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			finished.Store(true)
			return nil
		})
		return nil
	})
	var seenAtSwitch bool
	s.manager.Register(model.PhaseTurnSwitch, "switch", func(context.Context, *Context) error {
		seenAtSwitch = finished.Load()
		return nil
	})

	tc := s.newContext(model.PassOperation())
	tc.Effects = effects.NewManager(effects.DefaultConfig(), s.clock, testutil.NopLogger())
	s.Require().NoError(s.manager.Execute(s.ctx, tc))

	s.True(seenAtSwitch)
}

func (s *ManagerSuite) TestEffectFailureDoesNotFailTurn() {
	s.manager.Register(model.PhaseEffectSettlement, "spawn", func(_ context.Context, tc *Context) error {
		tc.Effects.Register("broken", func(context.Context) error { return errors.New("broken") })
		return nil
	})

	tc := s.newContext(model.PassOperation())
	manager := effects.NewManager(effects.DefaultConfig(), s.clock, testutil.NopLogger())
	tc.Effects = manager
	s.Require().NoError(s.manager.Execute(s.ctx, tc))

	s.Equal(model.TurnCompleted, tc.Turn.Status)
	s.Equal(1, manager.Stats().Failed)
}
