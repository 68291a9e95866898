package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/events"
	"lazy-tourist-be/pkg/planner/checkpoint"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already ended")
	ErrNotSuspended    = errors.New("session is not waiting for input")
	ErrTurnLimit       = errors.New("turn limit reached")
	ErrStepLimit       = errors.New("step limit reached without suspending")
)

const (
	DefaultMaxStepsPerTurn = 30
	DefaultMaxTurns        = 20
)

type DriverOption func(*Driver)

func WithMaxSteps(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxSteps = n
		}
	}
}

func WithMaxTurns(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxTurns = n
		}
	}
}

func WithPublisher(p events.Publisher) DriverOption {
	return func(d *Driver) {
		if p != nil {
			d.publisher = p
		}
	}
}

func WithIDGenerator(fn func() string) DriverOption {
	return func(d *Driver) {
		if fn != nil {
			d.newID = fn
		}
	}
}

func WithClock(now func() time.Time) DriverOption {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// Driver advances sessions turn by turn. Every turn runs under a per-session
// lock and ends with a checkpoint.
type Driver struct {
	planner   *Planner
	store     checkpoint.Store
	publisher events.Publisher
	logger    logger.ILogger
	locks     *keyedMutex
	now       func() time.Time
	newID     func() string
	maxSteps  int
	maxTurns  int
}

func NewDriver(planner *Planner, store checkpoint.Store, log logger.ILogger, opts ...DriverOption) *Driver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	d := &Driver{
		planner:   planner,
		store:     store,
		publisher: events.NopPublisher{},
		logger:    log,
		locks:     newKeyedMutex(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		maxSteps:  DefaultMaxStepsPerTurn,
		maxTurns:  DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start opens a session from the user's first request and runs it to the
// first suspension or to the end.
func (d *Driver) Start(ctx context.Context, text string) (*state.Session, error) {
	s := state.New(d.newID(), d.now())
	s.AddUser(text)
	s.Turns = 1

	unlock := d.locks.Lock(s.ID)
	defer unlock()

	d.logger.Info("DRIVER", "Session started", map[string]interface{}{"session_id": s.ID})
	d.publish(ctx, events.TypeSessionStarted, s, map[string]interface{}{"request": text})

	if err := d.run(ctx, s); err != nil {
		return s, err
	}
	return s, nil
}

// Resume feeds one line of user input to a suspended session.
func (d *Driver) Resume(ctx context.Context, id, text string) (*state.Session, error) {
	unlock := d.locks.Lock(id)
	defer unlock()

	s, err := d.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Done() {
		return s, ErrSessionClosed
	}
	if !s.Suspended() {
		return s, ErrNotSuspended
	}

	if s.Turns >= d.maxTurns {
		s.Fail(ErrTurnLimit)
		s.UpdatedAt = d.now()
		if err := d.checkpoint(ctx, s); err != nil {
			return s, err
		}
		d.publishEnded(ctx, s)
		d.logger.Warn("DRIVER", "Turn limit reached", map[string]interface{}{
			"session_id": s.ID,
			"turns":      s.Turns,
		})
		return s, ErrTurnLimit
	}
	s.Turns++

	switch s.NextStep {
	case state.NodeExtractIntent:
		s.AddUser(text)
	case state.NodeGetFeedback:
		s.UserFeedbackInput = text
		s.HasFeedbackInput = true
	}
	s.NeedsUserInput = false

	if err := d.run(ctx, s); err != nil {
		return s, err
	}
	return s, nil
}

// Abort ends a session without saving the itinerary.
func (d *Driver) Abort(ctx context.Context, id, reason string) (*state.Session, error) {
	unlock := d.locks.Lock(id)
	defer unlock()

	s, err := d.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Done() {
		return s, nil
	}

	s.Status = state.StatusAborted
	s.Error = reason
	s.NeedsUserInput = false
	s.NextStep = state.NodeEnd
	s.UpdatedAt = d.now()

	if err := d.checkpoint(ctx, s); err != nil {
		return s, err
	}
	d.logger.Info("DRIVER", "Session aborted", map[string]interface{}{
		"session_id": s.ID,
		"reason":     reason,
	})
	d.publishEnded(ctx, s)
	return s, nil
}

func (d *Driver) Get(ctx context.Context, id string) (*state.Session, error) {
	return d.load(ctx, id)
}

func (d *Driver) load(ctx context.Context, id string) (*state.Session, error) {
	s, err := d.store.Load(ctx, id)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return s, nil
}

func (d *Driver) run(ctx context.Context, s *state.Session) error {
	steps := 0
	for !s.Done() && !s.Suspended() {
		if steps >= d.maxSteps {
			s.Fail(ErrStepLimit)
			break
		}
		res := d.planner.Step(ctx, s)
		steps++

		switch {
		case res.Node == state.NodeCompileItinerary && s.Budget != nil && s.Preferences != nil:
			d.publish(ctx, events.TypeItineraryCompiled, s, map[string]interface{}{
				"total":       s.Budget.Total,
				"remaining":   s.Budget.Remaining,
				"days":        len(s.DailyItinerary),
				"iteration":   s.IterationCount,
				"destination": s.Preferences.Destination,
			})
		case res.Node == state.NodeSaveAndExit && s.Status == state.StatusCompleted:
			d.publish(ctx, events.TypeItinerarySaved, s, map[string]interface{}{
				"location": s.SavedLocation,
			})
		}
	}

	if err := d.checkpoint(ctx, s); err != nil {
		return err
	}

	if s.Done() {
		d.publishEnded(ctx, s)
	} else {
		d.publish(ctx, events.TypeSessionSuspended, s, map[string]interface{}{
			"node": s.NextStep,
		})
	}
	d.logger.Debug("DRIVER", "Turn complete", map[string]interface{}{
		"session_id": s.ID,
		"steps":      steps,
		"next":       s.NextStep,
		"status":     s.Status,
	})
	return nil
}

func (d *Driver) checkpoint(ctx context.Context, s *state.Session) error {
	if err := d.store.Save(ctx, s); err != nil {
		d.logger.Error("CHECKPOINT", "Failed to save session", map[string]interface{}{
			"session_id": s.ID,
			"error":      err.Error(),
		})
		return fmt.Errorf("checkpoint session %s: %w", s.ID, err)
	}
	return nil
}

func (d *Driver) publishEnded(ctx context.Context, s *state.Session) {
	d.publish(ctx, events.TypeSessionEnded, s, map[string]interface{}{
		"status": s.Status,
		"error":  s.Error,
		"turns":  s.Turns,
	})
}

// publish never fails the turn; delivery problems are only logged.
func (d *Driver) publish(ctx context.Context, eventType string, s *state.Session, data map[string]interface{}) {
	data["session_id"] = s.ID
	err := d.publisher.Publish(ctx, events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: d.now(),
	})
	if err != nil {
		d.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"session_id": s.ID,
			"type":       eventType,
			"error":      err.Error(),
		})
	}
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
