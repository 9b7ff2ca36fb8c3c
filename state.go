package authclient

import (
	"sort"
	"sync"
)

// State is the controller's position in the session state machine.
type State uint8

const (
	// StateLoggedOut is the initial state when the logged-in marker is absent.
	StateLoggedOut State = iota
	// StateLoggedIn is entered only after a 200 response to POST /login.
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// SessionState is the value observed by views.
type SessionState struct {
	IsLoggedIn bool
}

// State maps the flag to the state machine position.
func (s SessionState) State() State {
	if s.IsLoggedIn {
		return StateLoggedIn
	}
	return StateLoggedOut
}

// StateContainer holds the current SessionState and notifies subscribers when it
// changes. Listeners run synchronously on the goroutine that caused the change,
// outside the container lock, in subscription order.
type StateContainer struct {
	mu        sync.Mutex
	current   SessionState
	nextID    uint64
	listeners map[uint64]func(SessionState)
}

// NewStateContainer returns a container holding initial.
func NewStateContainer(initial SessionState) *StateContainer {
	return &StateContainer{
		current:   initial,
		listeners: make(map[uint64]func(SessionState)),
	}
}

// Current returns the latest state.
func (s *StateContainer) Current() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *StateContainer) Subscribe(fn func(SessionState)) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// set stores next and reports whether it differed from the previous value.
// Listeners are only called on a change.
func (s *StateContainer) set(next SessionState) bool {
	s.mu.Lock()
	if s.current == next {
		s.mu.Unlock()
		return false
	}
	s.current = next

	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	fns := make([]func(SessionState), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return true
}
