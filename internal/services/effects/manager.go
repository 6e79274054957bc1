package effects

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/model"
)

// Config holds the tunables of an effect manager
type Config struct {
	Concurrency int
	Timeout     time.Duration
	// ResultHistory caps how many finished results are kept
	ResultHistory int
}

// DefaultConfig returns the default effect manager configuration
func DefaultConfig() Config {
	return Config{
		Concurrency:   3,
		Timeout:       5 * time.Second,
		ResultHistory: 100,
	}
}

// Func is the body of an async effect. It should return when ctx is done.
type Func func(ctx context.Context) error

// Status is the lifecycle status of an effect
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result records the outcome of one effect
type Result struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     Status        `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Stats is a snapshot of the manager's queue
type Stats struct {
	Queued    int `json:"queued"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type task struct {
	id   string
	name string
	fn   Func
}

// Manager runs ancillary effects with bounded concurrency and a per-effect
// timeout. It never touches game state; failures are logged, never returned.
type Manager struct {
	config Config
	sem    *semaphore.Weighted
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	queue     []task
	active    map[string]task
	results   []Result // Most recent ResultHistory results, oldest first
	completed int
	failed    int
	idle      chan struct{} // Closed while nothing is queued or active
}

// NewManager creates a new effect Manager
func NewManager(config Config, clock clock.Clock, logger *slog.Logger) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.ResultHistory <= 0 {
		config.ResultHistory = DefaultConfig().ResultHistory
	}
	idle := make(chan struct{})
	close(idle)
	return &Manager{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.Concurrency)),
		clock:  clock,
		logger: logger,
		active: make(map[string]task),
		idle:   idle,
	}
}

// Register enqueues an effect and starts it if a slot is free.
// Returns the effect id.
func (m *Manager) Register(name string, fn Func) string {
	t := task{
		id:   uuid.NewString(),
		name: name,
		fn:   fn,
	}

	m.mu.Lock()
	if m.pendingLocked() == 0 {
		select {
		case <-m.idle:
			m.idle = make(chan struct{})
		default:
			// The last effect has finished but not yet signalled idle;
			// reuse its channel so current waiters are not stranded
		}
	}
	m.queue = append(m.queue, t)
	m.mu.Unlock()

	m.drain()
	return t.id
}

// drain starts queued effects while concurrency slots are available
func (m *Manager) drain() {
	for {
		if !m.sem.TryAcquire(1) {
			return
		}
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			m.sem.Release(1)
			return
		}
		t := m.queue[0]
		m.queue = m.queue[1:]
		m.active[t.id] = t
		m.mu.Unlock()

		go m.run(t)
	}
}

// run executes one effect, racing it against its timeout
func (m *Manager) run(t task) {
	started := m.clock.Now()
	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("effect panicked: %v", rec)
			}
		}()
		done <- t.fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("%w: %s after %s", model.ErrEffectTimeout, t.name, m.config.Timeout)
	}

	result := Result{
		ID:         t.id,
		Name:       t.name,
		Status:     StatusCompleted,
		StartedAt:  started,
		FinishedAt: m.clock.Now(),
		Duration:   m.clock.Since(started),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		m.logger.Warn("effect failed",
			slog.String("effect_id", t.id),
			slog.String("effect", t.name),
			slog.String("error", err.Error()),
		)
	}

	m.mu.Lock()
	delete(m.active, t.id)
	if result.Status == StatusFailed {
		m.failed++
	} else {
		m.completed++
	}
	m.results = append(m.results, result)
	if over := len(m.results) - m.config.ResultHistory; over > 0 {
		m.results = append(m.results[:0:0], m.results[over:]...)
	}
	m.mu.Unlock()

	m.sem.Release(1)
	m.drain()

	m.mu.Lock()
	if m.pendingLocked() == 0 {
		select {
		case <-m.idle:
		default:
			close(m.idle)
		}
	}
	m.mu.Unlock()
}

func (m *Manager) pendingLocked() int {
	return len(m.queue) + len(m.active)
}

// WaitForAllEffects blocks until no effect is queued or running, or ctx is done
func (m *Manager) WaitForAllEffects(ctx context.Context) error {
	for {
		m.mu.Lock()
		idle := m.idle
		m.mu.Unlock()

		select {
		case <-idle:
			// A new effect may have been registered between the close and now
			m.mu.Lock()
			pending := m.pendingLocked()
			m.mu.Unlock()
			if pending == 0 {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Results returns a copy of the most recent finished results
func (m *Manager) Results() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Result, len(m.results))
	copy(result, m.results)
	return result
}

// Stats returns a snapshot of the queue
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Queued:    len(m.queue),
		Active:    len(m.active),
		Completed: m.completed,
		Failed:    m.failed,
	}
}

// Interface for dependency injection
type ManagerInterface interface {
	Register(name string, fn Func) string
	WaitForAllEffects(ctx context.Context) error
	Results() []Result
	Stats() Stats
}

var _ ManagerInterface = (*Manager)(nil)
