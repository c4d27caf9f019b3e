package we

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

type StoreOption[S any] func(store *Store[S])

// WithState starts the store from state instead of the slice's initial state.
func WithState[S any](state S) StoreOption[S] {
	return func(store *Store[S]) {
		store.state = &state
	}
}

func WithLogger[S any](logger *zerolog.Logger) StoreOption[S] {
	return func(store *Store[S]) {
		store.log = logger
	}
}

// Store holds the single current value of a slice and serialises dispatches
// against it.
type Store[S any] struct {
	mu    sync.RWMutex
	slice Slice[S]
	state *S
	log   *zerolog.Logger

	subscribers map[int]func(S)
	next        int

	// changes are numbered under mu and delivered strictly in that order
	committed uint64
	delivered uint64
	turn      *sync.Cond
}

func NewStore[S any](slice Slice[S], options ...StoreOption[S]) *Store[S] {
	store := &Store[S]{
		slice:       slice,
		subscribers: make(map[int]func(S)),
		turn:        sync.NewCond(&sync.Mutex{}),
	}

	for _, option := range options {
		option(store)
	}

	if store.state == nil {
		store.state = slice.Initial()
	}

	if store.log == nil {
		store.log = &log.Logger
	}

	return store
}

func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return *s.state
}

// Dispatch reduces action into the current state and returns the result.
// Subscribers are notified only when the reducer produced a new state, in the
// order the states were committed. Subscribers must not dispatch to the same
// store synchronously.
func (s *Store[S]) Dispatch(ctx context.Context, action Action) (S, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("dispatch %s", ActionTypeOf(action)))
	defer span.End()

	decoded, err := s.slice.Decode(ctx, action)
	if err != nil {
		s.log.Info().Err(err).Str("slice", s.slice.Name).Msg("failed to decode action")
		var zero S
		return zero, err
	}

	s.mu.Lock()
	previous := s.state
	next := s.slice.Reduce(previous, decoded)
	s.state = next

	var notify []func(S)
	var ticket uint64
	if next != previous {
		s.committed++
		ticket = s.committed
		notify = make([]func(S), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			notify = append(notify, fn)
		}
	}
	current := *next
	s.mu.Unlock()

	s.log.Debug().
		Str("slice", s.slice.Name).
		Str("action", ActionTypeOf(decoded).String()).
		Bool("changed", next != previous).
		Msg("dispatched")

	if ticket != 0 {
		s.deliver(ticket, notify, current)
	}

	return current, nil
}

func (s *Store[S]) deliver(ticket uint64, notify []func(S), state S) {
	s.turn.L.Lock()
	for s.delivered+1 != ticket {
		s.turn.Wait()
	}
	s.turn.L.Unlock()

	defer func() {
		s.turn.L.Lock()
		s.delivered = ticket
		s.turn.Broadcast()
		s.turn.L.Unlock()
	}()

	for _, fn := range notify {
		fn(state)
	}
}

// Subscribe registers fn to receive every new state. The returned func
// removes the subscription.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
