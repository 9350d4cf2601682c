package session

import (
	"errors"
	"sync"

	"github.com/sakif/binamite/internal/model"
)

// ErrNilReducer is returned by Dispatch when it is given no function to run.
var ErrNilReducer = errors.New("session: nil reducer")

// Store owns one State and applies changes to it atomically.
//
// WHY A MUTEX IF THE MODEL IS SINGLE-THREADED?
// The session model is "read the snapshot, decide, then mutate" with nothing
// in between. An HTTP server can run two requests for the same browser
// session at once, so Dispatch holds the lock across the whole
// read-decide-mutate step. Readers take the read lock and get a copy.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// New creates an empty store: no users, nobody signed in.
func New() *Store {
	return NewWithUsers(nil)
}

// NewWithUsers creates a store whose user list starts as a copy of users.
// Nobody is signed in. Users with a duplicate email are dropped (first wins)
// so the store starts out honouring its uniqueness invariant.
func NewWithUsers(users []model.User) *Store {
	list := make([]model.User, 0, len(users))
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		if _, dup := seen[u.Email]; dup {
			continue
		}
		seen[u.Email] = struct{}{}
		list = append(list, u)
	}

	return &Store{
		state:     State{UserList: list},
		listeners: make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch runs fn against the current state and, if fn returns no error,
// installs the state it returns.
//
// fn receives a private copy, so it may not observe or cause partial
// updates: either the whole new state is installed or nothing changes.
// Subscribers are notified after the lock is released.
func (s *Store) Dispatch(fn func(State) (State, error)) error {
	if fn == nil {
		return ErrNilReducer
	}

	next, listeners, err := s.apply(fn)
	if err != nil {
		return err
	}

	for _, l := range listeners {
		l(next.Clone())
	}
	return nil
}

// apply runs fn under the write lock. The deferred unlock keeps the store
// usable when fn panics.
func (s *Store) apply(fn func(State) (State, error)) (State, []func(State), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state.Clone())
	if err != nil {
		return State{}, nil, err
	}
	s.state = next.Clone()

	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return next, listeners, nil
}

// Subscribe registers fn to be called with the new state after every
// successful Dispatch. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
