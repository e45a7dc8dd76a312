package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-lookup/internal/service"
)

func newTestStore(t *testing.T, middlewares ...Middleware) *Store {
	t.Helper()
	return New(Reduce, InitialState(), zaptest.NewLogger(t), middlewares...)
}

func TestStore_DispatchEvent(t *testing.T) {
	s := newTestStore(t)
	s.Dispatch(context.Background(), FetchStart{})
	assert.True(t, s.GetState().Loading)
}

func TestStore_DispatchIntent(t *testing.T) {
	s := newTestStore(t)

	var seen AppState
	intent := Intent(func(ctx context.Context, dispatch DispatchFunc, getState GetStateFunc) {
		dispatch(ctx, FetchStart{})
		seen = getState()
		dispatch(ctx, FetchError{Message: "boom"})
	})

	s.Dispatch(context.Background(), intent)

	assert.True(t, seen.Loading)
	assert.False(t, s.GetState().Loading)
	assert.Equal(t, "boom", s.GetState().Error)
}

func TestStore_NestedIntent(t *testing.T) {
	s := newTestStore(t)

	inner := Intent(func(ctx context.Context, dispatch DispatchFunc, _ GetStateFunc) {
		dispatch(ctx, SetForecastDays{Days: 9})
	})
	outer := Intent(func(ctx context.Context, dispatch DispatchFunc, _ GetStateFunc) {
		dispatch(ctx, inner)
	})

	s.Dispatch(context.Background(), outer)
	assert.Equal(t, 9, s.GetState().ForecastDays)
}

func TestStore_ListenerCalledOncePerEvent(t *testing.T) {
	s := newTestStore(t)

	var calls []bool
	unsubscribe := s.Subscribe(func(_ context.Context, state AppState) {
		calls = append(calls, state.Loading)
	})

	s.Dispatch(context.Background(), FetchStart{})
	s.Dispatch(context.Background(), FetchError{Message: "x"})
	assert.Equal(t, []bool{true, false}, calls)

	unsubscribe()
	unsubscribe()
	s.Dispatch(context.Background(), FetchStart{})
	assert.Len(t, calls, 2)
}

func TestStore_ListenerMayDispatch(t *testing.T) {
	s := newTestStore(t)

	var order []string
	s.Subscribe(func(ctx context.Context, state AppState) {
		order = append(order, fmt.Sprintf("days=%d", state.ForecastDays))
		if state.ForecastDays == 4 {
			s.Dispatch(ctx, SetForecastDays{Days: 5})
			order = append(order, "dispatched")
		}
	})

	s.Dispatch(context.Background(), SetForecastDays{Days: 4})

	assert.Equal(t, []string{"days=4", "dispatched", "days=5"}, order)
	assert.Equal(t, 5, s.GetState().ForecastDays)
}

func TestStore_MiddlewareOrder(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action) {
				trace = append(trace, name+":"+action.(Event).EventName())
				next(ctx, action)
			}
		}
	}

	s := newTestStore(t, mw("a"), mw("b"), LoggingMiddleware(zaptest.NewLogger(t)))
	s.Dispatch(context.Background(), Intent(func(ctx context.Context, dispatch DispatchFunc, _ GetStateFunc) {
		dispatch(ctx, FetchStart{})
	}))

	assert.Equal(t, []string{"a:FETCH_START", "b:FETCH_START"}, trace)
	assert.True(t, s.GetState().Loading)
}

func TestStore_ConcurrentIntentsDoNotInterleave(t *testing.T) {
	s := newTestStore(t)

	var (
		mu    sync.Mutex
		calls int
	)
	s.Subscribe(func(_ context.Context, _ AppState) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(context.Background(), Intent(func(ctx context.Context, dispatch DispatchFunc, _ GetStateFunc) {
				dispatch(ctx, FetchStart{})
				dispatch(ctx, FetchSuccess{Payload: &service.WeatherPayload{
					Current: &service.CurrentConditions{ID: int64(i + 1), CityName: "c"},
				}})
				dispatch(ctx, AddRecentCity{City: service.CurrentConditions{ID: int64(i + 1)}})
			}))
		}()
	}
	wg.Wait()

	state := s.GetState()
	assert.Equal(t, 3*workers, calls)
	assert.False(t, state.Loading)
	require.NotNil(t, state.Weather)
	assert.Len(t, state.Recent, maxRecent)

	seen := map[int64]bool{}
	for _, c := range state.Recent {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestStore_ListenerMayDispatchWithAnyContext(t *testing.T) {
	s := newTestStore(t)

	s.Subscribe(func(_ context.Context, state AppState) {
		if state.ForecastDays == 4 {
			s.Dispatch(context.Background(), SetForecastDays{Days: 5})
			s.Dispatch(context.TODO(), Intent(func(ctx context.Context, dispatch DispatchFunc, _ GetStateFunc) {
				dispatch(ctx, FetchStart{})
			}))
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Dispatch(context.Background(), SetForecastDays{Days: 4})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch from a listener did not return")
	}

	state := s.GetState()
	assert.Equal(t, 5, state.ForecastDays)
	assert.True(t, state.Loading)
}
