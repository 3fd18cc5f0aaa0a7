package domain

import "sync"

// Store holds the state of one view and applies events to it in order.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextId      int
}

func NewStore() *Store {
	return NewStoreWithState(NewState())
}

func NewStoreWithState(state State) *Store {
	return &Store{
		state:       state,
		subscribers: make(map[int]func(State)),
	}
}

// Dispatch reduces the event into the state, notifies subscribers and
// returns the new state.
func (s *Store) Dispatch(event Event) State {
	s.mu.Lock()
	s.state = Reduce(s.state, event)
	state := s.state
	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
	return state
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after every event. The returned
// function removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextId
	s.nextId++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
