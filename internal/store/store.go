package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DispatchFunc hands an action to the store.
type DispatchFunc func(ctx context.Context, action Action)

// GetStateFunc returns the current state.
type GetStateFunc func() AppState

// Intent is a unit of work that may perform I/O and emits zero or more
// events through dispatch. Intents run on the dispatching goroutine.
type Intent func(ctx context.Context, dispatch DispatchFunc, getState GetStateFunc)

func (Intent) isAction() {}

// Middleware wraps the event path of the store. Intents are resolved before
// any middleware sees them, so next only ever receives events.
type Middleware func(next DispatchFunc) DispatchFunc

// Listener is called after every state replacement with the context of the
// dispatch that caused it. A listener may dispatch; the event is queued and
// applied once the current notification round completes.
type Listener func(ctx context.Context, state AppState)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current AppState and applies events one at a time in
// arrival order.
type Store struct {
	reducer Reducer
	logger  *zap.Logger
	chain   DispatchFunc

	applyMu sync.Mutex

	mu        sync.RWMutex
	state     AppState
	listeners []subscription
	nextID    int
	notifying bool
	pending   []Event
}

func New(reducer Reducer, initial AppState, logger *zap.Logger, middlewares ...Middleware) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		reducer: reducer,
		logger:  logger,
		state:   initial,
	}

	chain := DispatchFunc(s.apply)
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}
	s.chain = chain
	return s
}

// Dispatch accepts an Event or an Intent. Events have been applied and
// listeners notified by the time Dispatch returns, except when they arrive
// while listeners are being notified: those are queued behind the running
// round and applied by the goroutine notifying. Intents run to completion
// before Dispatch returns.
func (s *Store) Dispatch(ctx context.Context, action Action) {
	switch a := action.(type) {
	case Intent:
		if a == nil {
			return
		}
		a(ctx, s.Dispatch, s.GetState)
	case Event:
		s.chain(ctx, a)
	default:
		s.logger.Warn("Ignoring unsupported action", zap.Any("action", action))
	}
}

func (s *Store) GetState() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := make([]subscription, 0, len(s.listeners))
			for _, sub := range s.listeners {
				if sub.id != id {
					kept = append(kept, sub)
				}
			}
			s.listeners = kept
		})
	}
}

func (s *Store) apply(ctx context.Context, action Action) {
	ev, ok := action.(Event)
	if !ok {
		return
	}

	if s.enqueueDuringNotify(ev) {
		return
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	queue := []Event{ev}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		s.mu.Lock()
		s.state = s.reducer(s.state, next)
		state := s.state
		listeners := s.listeners
		s.notifying = true
		s.mu.Unlock()

		for _, sub := range listeners {
			sub.fn(ctx, state)
		}

		s.mu.Lock()
		s.notifying = false
		queue = append(queue, s.pending...)
		s.pending = nil
		s.mu.Unlock()
	}
}

// enqueueDuringNotify queues ev for the running notification round.
// Listeners run with applyMu held, whatever context they dispatch with.
func (s *Store) enqueueDuringNotify(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.notifying {
		return false
	}
	s.pending = append(s.pending, ev)
	return true
}

// LoggingMiddleware logs every event that reaches the store.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, action Action) {
			if ev, ok := action.(Event); ok {
				logger.Debug("Dispatching event", zap.String("event", ev.EventName()))
			}
			next(ctx, action)
		}
	}
}
